package handlers

import (
	"context"
	"net/http"
	"time"

	"morningProofAPI/middleware"
	"morningProofAPI/services"
)

type WidgetHandler struct {
	widgetService *services.WidgetService
}

func NewWidgetHandler(widgetService *services.WidgetService) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
	}
}

// GetSnapshot serves the widget payload. The widget extension polls this
// with a short budget, so reads come from the cache when possible.
func (h *WidgetHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	snap, err := h.widgetService.Get(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, snap)
}

// RefreshSnapshot forces a rebuild; the app calls this after any change the
// widget should reflect immediately.
func (h *WidgetHandler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	snap, err := h.widgetService.Refresh(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, snap)
}
