package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morningProofAPI/handlers"
	"morningProofAPI/internal/dailylog"
	"morningProofAPI/internal/habit"
	"morningProofAPI/internal/settings"
	"morningProofAPI/internal/streak"
	"morningProofAPI/middleware"
	"morningProofAPI/services"
	"morningProofAPI/tests/helpers"
)

// TestMorningRoutineFlow simulates a user signing up, checking off habits
// and reading their streak back.
func TestMorningRoutineFlow(t *testing.T) {
	// Setup
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	settingsService := services.NewSettingsService(pool)
	subscriptionService := services.NewSubscriptionService(pool, nil)
	streakService := services.NewStreakService(pool, settingsService, subscriptionService)
	habitService := services.NewHabitService(pool, settingsService, streakService, nil)

	userHandler := handlers.NewUserHandler(userService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, nil)
	habitHandler := handlers.NewHabitHandler(habitService, nil)
	streakHandler := handlers.NewStreakHandler(streakService, settingsService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Step 1: User signs up via Clerk webhook
	t.Log("Step 1: User signs up")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req1 := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr1 := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr1, req1)
	require.Equal(t, http.StatusOK, rr1.Code, "Webhook should succeed")

	// Step 2: First settings read creates defaults
	t.Log("Step 2: Settings defaults")

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	ctx := context.WithValue(req2.Context(), middleware.ClerkIDKey, clerkID)
	req2 = req2.WithContext(ctx)
	rr2 := httptest.NewRecorder()

	settingsHandler.GetSettings(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)

	var st settings.Settings
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &st))
	assert.True(t, st.RemindersEnabled)
	assert.False(t, st.StrictMode)
	assert.Equal(t, 0, st.CurrentStreak)

	// Step 3: Push the deadline to end of day so completions land before it
	t.Log("Step 3: Move deadline")

	updateData := `{"deadline": {"mode": 0, "uniform_minutes": 1439}}`
	req3 := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(updateData))
	req3.Header.Set("Content-Type", "application/json")
	req3 = req3.WithContext(context.WithValue(req3.Context(), middleware.ClerkIDKey, clerkID))
	rr3 := httptest.NewRecorder()

	settingsHandler.UpdateSettings(rr3, req3)
	require.Equal(t, http.StatusOK, rr3.Code)

	// Step 4: Disable everything except meditation and journaling
	t.Log("Step 4: Configure habits")

	for _, entry := range habit.Catalog {
		enable := entry.Type == habit.HabitMeditation || entry.Type == habit.HabitJournaling
		body := `{"is_enabled": ` + boolJSON(enable) + `}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/habits/"+string(entry.Type), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))
		req = mux.SetURLVars(req, map[string]string{"habitType": string(entry.Type)})
		rr := httptest.NewRecorder()

		habitHandler.UpdateConfig(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "config update for %s", entry.Type)
	}

	// Step 5: Complete both enabled habits
	t.Log("Step 5: Complete habits")

	var lastResp dailylog.CompleteHabitResponse
	for _, habitType := range []habit.HabitType{habit.HabitMeditation, habit.HabitJournaling} {
		body := `{"habit_type": "` + string(habitType) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits/complete", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))
		rr := httptest.NewRecorder()

		habitHandler.CompleteHabit(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "completing %s: %s", habitType, rr.Body.String())
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lastResp))
	}

	assert.True(t, lastResp.PerfectMorning, "both enabled habits done before deadline")
	assert.Equal(t, 1, lastResp.CurrentStreak)
	assert.Len(t, lastResp.Day.Completions, 2)

	// Step 6: Streak status reflects the perfect morning
	t.Log("Step 6: Streak status")

	req6 := httptest.NewRequest(http.MethodGet, "/api/v1/streak", nil)
	req6 = req6.WithContext(context.WithValue(req6.Context(), middleware.ClerkIDKey, clerkID))
	rr6 := httptest.NewRecorder()

	streakHandler.GetStatus(rr6, req6)
	require.Equal(t, http.StatusOK, rr6.Code)

	var status streak.Status
	require.NoError(t, json.Unmarshal(rr6.Body.Bytes(), &status))
	assert.Equal(t, 1, status.CurrentStreak)
	assert.Equal(t, 1, status.TotalPerfectMornings)

	// Step 7: Pulling the deadline back before the completion times flips
	// today's verdict and takes the streak with it
	t.Log("Step 7: Deadline moved before completions")

	updateData = `{"deadline": {"mode": 0, "uniform_minutes": 0}}`
	req7 := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(updateData))
	req7.Header.Set("Content-Type", "application/json")
	req7 = req7.WithContext(context.WithValue(req7.Context(), middleware.ClerkIDKey, clerkID))
	rr7 := httptest.NewRecorder()

	settingsHandler.UpdateSettings(rr7, req7)
	require.Equal(t, http.StatusOK, rr7.Code)

	reqDay := httptest.NewRequest(http.MethodGet, "/api/v1/habits/day", nil)
	reqDay = reqDay.WithContext(context.WithValue(reqDay.Context(), middleware.ClerkIDKey, clerkID))
	rrDay := httptest.NewRecorder()

	habitHandler.GetDay(rrDay, reqDay)
	require.Equal(t, http.StatusOK, rrDay.Code)

	var rescored dailylog.DayLog
	require.NoError(t, json.Unmarshal(rrDay.Body.Bytes(), &rescored))
	assert.False(t, rescored.AllCompletedBeforeCutoff, "completions now land after the cutoff")
	assert.Len(t, rescored.Completions, 2, "completions themselves survive the rescore")

	reqSt := httptest.NewRequest(http.MethodGet, "/api/v1/streak", nil)
	reqSt = reqSt.WithContext(context.WithValue(reqSt.Context(), middleware.ClerkIDKey, clerkID))
	rrSt := httptest.NewRecorder()

	streakHandler.GetStatus(rrSt, reqSt)
	require.Equal(t, http.StatusOK, rrSt.Code)

	require.NoError(t, json.Unmarshal(rrSt.Body.Bytes(), &status))
	assert.Equal(t, 0, status.CurrentStreak, "spoiled morning resets the streak")
	assert.Equal(t, 0, status.TotalPerfectMornings)

	// Step 8: Stats include today's verdict
	t.Log("Step 8: User stats")

	req8 := httptest.NewRequest(http.MethodGet, "/api/v1/user/stats", nil)
	req8 = req8.WithContext(context.WithValue(req8.Context(), middleware.ClerkIDKey, clerkID))
	rr8 := httptest.NewRecorder()

	userHandler.GetUserStats(rr8, req8)
	assert.Equal(t, http.StatusOK, rr8.Code)

	// Step 9: User deletes account
	t.Log("Step 9: Delete account")

	req9 := httptest.NewRequest(http.MethodDelete, "/api/v1/user/delete-account", nil)
	req9 = req9.WithContext(context.WithValue(req9.Context(), middleware.ClerkIDKey, clerkID))
	rr9 := httptest.NewRecorder()

	userHandler.DeleteAccount(rr9, req9)
	assert.Equal(t, http.StatusOK, rr9.Code)

	_, err := userService.GetUserByClerkID(context.Background(), clerkID)
	assert.Error(t, err, "User should be deleted")
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
