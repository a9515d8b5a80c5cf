package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"morningProofAPI/internal/subscription"
	"morningProofAPI/middleware"
	"morningProofAPI/services"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
)

type PaddleHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewPaddleHandler(subscriptionService *services.SubscriptionService) *PaddleHandler {
	return &PaddleHandler{
		subscriptionService: subscriptionService,
	}
}

type PriceResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

func (h *PaddleHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if h.subscriptionService.PaddleClient == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
		return
	}

	req := &paddle.ListPricesRequest{
		Status: []string{string(paddle.StatusActive)},
	}

	priceCollection, err := h.subscriptionService.PaddleClient.ListPrices(ctx, req)

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var prices []PriceResponse

	for {
		result := priceCollection.Next(ctx)

		if !result.Ok() {
			if err := result.Err(); err != nil {
				respondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			break
		}

		p := result.Value()

		interval := ""
		if p.BillingCycle != nil {
			interval = string(p.BillingCycle.Interval)
		}

		prices = append(prices, PriceResponse{
			ID:          p.ID,
			ProductID:   p.ProductID,
			Description: p.Description,
			Amount:      p.UnitPrice.Amount,
			Currency:    string(p.UnitPrice.CurrencyCode),
			Interval:    interval,
		})
	}

	respondWithJSON(w, http.StatusOK, prices)
}

// GetTier tells the client which tier to render. Billing errors resolve to
// premium so a Paddle outage never locks paying users out.
func (h *PaddleHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	tier := h.subscriptionService.Tier(ctx, clerkID)
	respondWithJSON(w, http.StatusOK, map[string]string{"tier": string(tier)})
}

type CreateTransactionRequest struct {
	PriceID string `json:"priceId"`
}

func (h *PaddleHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.subscriptionService.PaddleClient == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
		return
	}

	var reqBody CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var checkoutUrl string = "morningproof://payment-success"

	createReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{
			*paddle.NewCreateTransactionItemsCatalogItem(&paddle.CatalogItem{
				Quantity: 1,
				PriceID:  reqBody.PriceID,
			}),
		},
		CustomData: paddle.CustomData{
			"userId": clerkID,
		},
		CollectionMode: paddle.PtrTo(paddle.CollectionModeAutomatic),

		Checkout: &paddle.TransactionCheckout{
			URL: &checkoutUrl,
		},
	}

	tx, err := h.subscriptionService.PaddleClient.CreateTransaction(ctx, createReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create transaction: %v", err), http.StatusInternalServerError)
		return
	}

	paddleEnv := os.Getenv("PADDLE_CHECKOUT_ENV")
	if paddleEnv == "" {
		paddleEnv = "sandbox-checkout"
	}
	checkoutURL := fmt.Sprintf("https://%s.paddle.com/checkout/custom?_ptxn=%s", paddleEnv, tx.ID)

	response := map[string]string{
		"transactionId": tx.ID,
		"checkoutUrl":   checkoutURL,
	}

	respondWithJSON(w, http.StatusOK, response)
}

func (h *PaddleHandler) PaddleWebhookHandler(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("PADDLE_SECRET_KEY")
	if secret == "" {
		log.Println("PADDLE_SECRET_KEY missing")
		http.Error(w, "Configuration Error", http.StatusInternalServerError)
		return
	}

	verifier := paddle.NewWebhookVerifier(secret)

	valid, err := verifier.Verify(r)
	if err != nil {
		http.Error(w, "Verification failed", http.StatusInternalServerError)
		return
	}
	if !valid {
		http.Error(w, "Invalid signature", http.StatusForbidden)
		return
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	type WebhookPartial struct {
		EventID   string               `json:"event_id"`
		EventType paddle.EventTypeName `json:"event_type"`
	}

	var webhook WebhookPartial
	if err := json.Unmarshal(bodyBytes, &webhook); err != nil {
		http.Error(w, "Unable to parse JSON", http.StatusBadRequest)
		return
	}

	var entityID string

	switch webhook.EventType {

	case paddle.EventTypeNameSubscriptionCreated,
		paddle.EventTypeNameSubscriptionUpdated,
		paddle.EventTypeNameSubscriptionCanceled:
		type SubscriptionEvent struct {
			Data subscriptionEventData `json:"data"`
		}

		var fullEvent SubscriptionEvent
		if err := json.Unmarshal(bodyBytes, &fullEvent); err != nil {
			log.Printf("Error parsing subscription event: %v", err)
			break
		}
		entityID = fullEvent.Data.ID

		if err := h.applySubscriptionEvent(r.Context(), &fullEvent.Data); err != nil {
			log.Printf("Error applying subscription event %s: %v", entityID, err)
		}

	default:
		entityID = webhook.EventID
		log.Printf("Unhandled Paddle event type: %s", webhook.EventType)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"ID": "%s"}`, entityID)))
}

// subscriptionEventData is the slice of the Paddle subscription payload we
// persist. Decoded by hand so schema additions on Paddle's side never break
// the webhook.
type subscriptionEventData struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	CustomerID string         `json:"customer_id"`
	CustomData map[string]any `json:"custom_data"`
	Items      []struct {
		Price struct {
			ID string `json:"id"`
		} `json:"price"`
	} `json:"items"`
	CurrentBillingPeriod *struct {
		EndsAt string `json:"ends_at"`
	} `json:"current_billing_period"`
}

// applySubscriptionEvent mirrors the Paddle subscription state into our
// subscriptions table. The userId travels in custom data, set when the
// checkout transaction was created.
func (h *PaddleHandler) applySubscriptionEvent(ctx context.Context, data *subscriptionEventData) error {
	userID := ""
	if data.CustomData != nil {
		if v, ok := data.CustomData["userId"].(string); ok {
			userID = v
		}
	}
	if userID == "" {
		return fmt.Errorf("subscription %s has no userId in custom data", data.ID)
	}

	priceID := ""
	if len(data.Items) > 0 {
		priceID = data.Items[0].Price.ID
	}

	periodEnd := time.Time{}
	if data.CurrentBillingPeriod != nil {
		if t, err := time.Parse(time.RFC3339, data.CurrentBillingPeriod.EndsAt); err == nil {
			periodEnd = t
		}
	}

	sub := &subscription.Subscription{
		UserID:               userID,
		PaddleCustomerID:     data.CustomerID,
		PaddleSubscriptionID: data.ID,
		PaddlePriceID:        priceID,
		Status:               data.Status,
		CurrentPeriodEnd:     periodEnd,
	}

	return h.subscriptionService.Upsert(ctx, sub)
}

func (h *PaddleHandler) PaymentSuccessPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Payment Successful</title>
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<style>
			body { background-color: #121212; color: white; font-family: sans-serif; text-align: center; padding: 50px 20px; }
			h1 { color: #F59E0B; }
			p { color: #888; }
			.card { background: #1E1E1E; padding: 30px; border-radius: 15px; max-width: 400px; margin: 0 auto; }
		</style>
	</head>
	<body>
		<div class="card">
			<h1>Payment Successful!</h1>
			<p>Thank you for subscribing to Morning Proof Premium.</p>
			<p>You can now close this window and return to the app.</p>
		</div>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
