package handlers

import (
	"context"
	"net/http"
	"time"

	"morningProofAPI/middleware"
	"morningProofAPI/services"
)

type StreakHandler struct {
	streakService   *services.StreakService
	settingsService *services.SettingsService
}

func NewStreakHandler(streakService *services.StreakService, settingsService *services.SettingsService) *StreakHandler {
	return &StreakHandler{
		streakService:   streakService,
		settingsService: settingsService,
	}
}

// GetStatus recomputes the streak from the ledger and returns the derived
// counters along with recovery availability.
func (h *StreakHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status, err := h.streakService.Status(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// GetLedger returns the raw day-by-day record, used by the history screen.
func (h *StreakHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.settingsService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records, err := h.streakService.Ledger(ctx, st.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}
