package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
	"github.com/imishab/track-me/internal/habits"
	"github.com/imishab/track-me/internal/prayer"
)

const dateLayout = "2006-01-02"

type upsertCompletionRequest struct {
	HabitID   string  `json:"habit_id"`
	Date      string  `json:"date"` // YYYY-MM-DD; defaults to today
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
}

// UpsertCompletion logs a day's entry for a habit, replacing any previous
// entry for the same day.
// @Summary Log a habit completion
// @Tags completions
// @Accept json
// @Produce json
// @Param body body upsertCompletionRequest true "Completion"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/completions [put]
// @Security BearerAuth
func (h *Handler) UpsertCompletion(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req upsertCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	if req.HabitID == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "habit_id required")
		return
	}
	if req.Date == "" {
		req.Date = prayer.CalendarDate(time.Now(), h.loc)
	} else if _, err := time.Parse(dateLayout, req.Date); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "date must be YYYY-MM-DD")
		return
	}

	err := h.habits.UpsertCompletion(r.Context(), habits.Completion{
		HabitID:   req.HabitID,
		UserID:    userID,
		Date:      req.Date,
		Value:     req.Value,
		Completed: req.Completed,
	})
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to save completion", err.Error())
		return
	}
	h.invalidateAnalytics(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// ListCompletions returns the user's completions in an inclusive date range,
// defaulting to the last 30 days.
// @Summary List completions
// @Tags completions
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/completions [get]
// @Security BearerAuth
func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	now := time.Now().In(h.loc)
	to := r.URL.Query().Get("to")
	from := r.URL.Query().Get("from")
	if to == "" {
		to = now.Format(dateLayout)
	}
	if from == "" {
		from = now.AddDate(0, 0, -29).Format(dateLayout)
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "dates must be YYYY-MM-DD")
			return
		}
	}

	list, err := h.habits.ListCompletions(r.Context(), userID, from, to)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to list completions", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"completions": list})
}
