package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"morningProofAPI/internal/settings"
	"morningProofAPI/middleware"
	"morningProofAPI/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
	widgetService   *services.WidgetService
}

func NewSettingsHandler(settingsService *services.SettingsService, widgetService *services.WidgetService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		widgetService:   widgetService,
	}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, st)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req settings.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, err := h.settingsService.Update(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Deadline or timezone changes move the cutoff the widget displays.
	if h.widgetService != nil {
		h.widgetService.Invalidate(ctx, clerkID)
	}

	respondWithJSON(w, http.StatusOK, st)
}

// ResetData wipes the user's logs, streaks and achievements and restores
// default settings. The profile itself survives.
func (h *SettingsHandler) ResetData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.settingsService.ResetData(ctx, clerkID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.widgetService != nil {
		h.widgetService.Invalidate(ctx, clerkID)
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Data reset successfully"})
}
