package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"morningProofAPI/handlers"
	"morningProofAPI/internal/notification"
	"morningProofAPI/internal/workers"
	"morningProofAPI/middleware"
	"morningProofAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	docService          *services.DocService
	settingsService     *services.SettingsService
	subscriptionService *services.SubscriptionService
	streakService       *services.StreakService
	habitService        *services.HabitService
	verificationService *services.VerificationService
	widgetService       *services.WidgetService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to NeonDB")

	var paddleClient *paddle.SDK
	paddleAPIKey := os.Getenv("PADDLE_API_KEY")
	if paddleAPIKey != "" {
		baseURL := paddle.SandboxBaseURL
		if os.Getenv("PADDLE_ENV") == "production" {
			baseURL = paddle.ProductionBaseURL
		}
		paddleClient, err = paddle.New(paddleAPIKey, paddle.WithBaseURL(baseURL))
		if err != nil {
			log.Printf("Warning: Could not initialize Paddle client: %v", err)
			paddleClient = nil
		} else {
			log.Println("Paddle client initialized successfully")
		}
	} else {
		log.Println("PADDLE_API_KEY not set, billing routes will be degraded")
	}

	userService = services.NewUserService(dbPool)
	docService = services.NewDocService(dbPool)
	settingsService = services.NewSettingsService(dbPool)
	subscriptionService = services.NewSubscriptionService(dbPool, paddleClient)
	streakService = services.NewStreakService(dbPool, settingsService, subscriptionService)

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey != "" {
		verificationService, err = services.NewVerificationService(
			openAIKey,
			os.Getenv("OPENAI_BASE_URL"),
			os.Getenv("VERIFICATION_MODEL"),
		)
		if err != nil {
			log.Printf("Warning: Could not initialize photo verification: %v", err)
			verificationService = nil
		} else {
			log.Println("Photo verification model initialized successfully")
		}
	} else {
		log.Println("OPENAI_API_KEY not set, completions will be accepted unverified")
	}

	habitService = services.NewHabitService(dbPool, settingsService, streakService, verificationService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		fcmService = nil
	} else {
		log.Println("FCM Push Provider initialized successfully")
	}

	notificationService = services.NewNotificationService(dbPool, fcmService, settingsService)
	habitService.SetNotifier(notificationService)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	widgetService, err = services.NewWidgetService(redisURL, dbPool, settingsService, habitService)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
		widgetService.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	docHandler := handlers.NewDocHandler(docService)
	habitHandler := handlers.NewHabitHandler(habitService, widgetService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, widgetService)
	streakHandler := handlers.NewStreakHandler(streakService, settingsService)
	widgetHandler := handlers.NewWidgetHandler(widgetService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	paddleHandler := handlers.NewPaddleHandler(subscriptionService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "morningProof-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	standardRouter.HandleFunc("/webhooks/paddle", paddleHandler.PaddleWebhookHandler).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	// This inherits middleware from standardRouter
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/habits/catalog", habitHandler.GetCatalog).Methods("GET")
	api.HandleFunc("/payment-success", paddleHandler.PaymentSuccessPage).Methods("GET")
	api.HandleFunc("/privacy-policy", docHandler.ServePrivacyPolicy).Methods("GET")
	api.HandleFunc("/terms-of-services", docHandler.ServeTermsOfServices).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/achievements", userHandler.GetAchievements).Methods("GET")
	protected.HandleFunc("/user/stats", userHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/user/stats/weekly", userHandler.GetWeeklyPerfectDays).Methods("GET")
	protected.HandleFunc("/user/stats/monthly", userHandler.GetMonthlyPerfectDays).Methods("GET")
	protected.HandleFunc("/user/stats/yearly", userHandler.GetYearlyPerfectDays).Methods("GET")
	protected.HandleFunc("/user/calendar", userHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/habits", habitHandler.GetConfigs).Methods("GET")
	protected.HandleFunc("/habits/{habitType}", habitHandler.UpdateConfig).Methods("PUT")
	protected.HandleFunc("/habits/complete", habitHandler.CompleteHabit).Methods("POST")
	protected.HandleFunc("/habits/complete", habitHandler.RemoveCompletion).Methods("DELETE")
	protected.HandleFunc("/habits/day", habitHandler.GetDay).Methods("GET")

	protected.HandleFunc("/settings", settingsHandler.GetSettings).Methods("GET")
	protected.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods("PUT")
	protected.HandleFunc("/settings/reset", settingsHandler.ResetData).Methods("POST")

	protected.HandleFunc("/streak", streakHandler.GetStatus).Methods("GET")
	protected.HandleFunc("/streak/ledger", streakHandler.GetLedger).Methods("GET")

	protected.HandleFunc("/widget/snapshot", widgetHandler.GetSnapshot).Methods("GET")
	protected.HandleFunc("/widget/refresh", widgetHandler.RefreshSnapshot).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/register-device", notificationHandler.UnregisterDevice).Methods("DELETE")

	protected.HandleFunc("/min-version", docHandler.GetAppMinVersion).Methods("GET")

	protected.HandleFunc("/billing/prices", paddleHandler.GetPrices).Methods("GET")
	protected.HandleFunc("/billing/tier", paddleHandler.GetTier).Methods("GET")
	protected.HandleFunc("/billing/transaction", paddleHandler.CreateTransaction).Methods("POST")

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	workers.StartWidgetRefreshWorker(workerCtx, widgetService, 10*time.Minute)
	workers.StartStreakRiskWorker(workerCtx, notificationService, 5*time.Minute)

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
