package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"morningProofAPI/internal/dailylog"
	"morningProofAPI/internal/habit"
	"morningProofAPI/middleware"
	"morningProofAPI/services"
)

type HabitHandler struct {
	habitService  *services.HabitService
	widgetService *services.WidgetService
}

func NewHabitHandler(habitService *services.HabitService, widgetService *services.WidgetService) *HabitHandler {
	return &HabitHandler{
		habitService:  habitService,
		widgetService: widgetService,
	}
}

// invalidateWidget drops the cached home-screen snapshot after any write
// that changes what the widget shows.
func (h *HabitHandler) invalidateWidget(ctx context.Context, clerkID string) {
	if h.widgetService != nil {
		h.widgetService.Invalidate(ctx, clerkID)
	}
}

// GetCatalog returns the fixed list of habits the app supports. No auth
// needed, it is reference data.
func (h *HabitHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, habit.Catalog)
}

func (h *HabitHandler) GetConfigs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	configs, err := h.habitService.GetConfigs(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, configs)
}

func (h *HabitHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.HabitType = habit.HabitType(mux.Vars(r)["habitType"])

	config, err := h.habitService.UpdateConfig(ctx, clerkID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnknownHabit) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.invalidateWidget(ctx, clerkID)
	respondWithJSON(w, http.StatusOK, config)
}

// CompleteHabit is the main write path of the app: checking off one habit.
// Completion timeouts are longer here because photo verification may call
// out to the vision model.
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req dailylog.CompleteHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.habitService.CompleteHabit(ctx, clerkID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownHabit):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrPhotoRejected):
			// The client should prompt for a new photo, nothing was saved.
			respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  err.Error(),
				"retake": true,
			})
		case errors.Is(err, services.ErrHabitDisabled),
			errors.Is(err, services.ErrFutureDate),
			errors.Is(err, services.ErrPhotoRequired):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.invalidateWidget(ctx, clerkID)
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HabitHandler) RemoveCompletion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitType := habit.HabitType(r.URL.Query().Get("habit_type"))
	if habitType == "" {
		respondWithError(w, http.StatusBadRequest, "habit_type query parameter is required")
		return
	}
	date, err := parseDateParam(r, "date")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := h.habitService.RemoveCompletion(ctx, clerkID, habitType, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "No completion found for the specified date")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.invalidateWidget(ctx, clerkID)
	respondWithJSON(w, http.StatusOK, day)
}

func (h *HabitHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := h.habitService.GetDay(ctx, clerkID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, day)
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today
// when absent.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return d, nil
}
