package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
	"github.com/imishab/track-me/internal/habits"
)

type createHabitRequest struct {
	Title        string   `json:"title"`
	TrackingType string   `json:"tracking_type"`
	TargetValue  *float64 `json:"target_value"`
	Unit         *string  `json:"unit"`
	CategoryID   *string  `json:"category_id"`
}

// ListHabits returns the user's habits in display order.
// @Summary List habits
// @Tags habits
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/habits [get]
// @Security BearerAuth
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.habits.ListHabits(r.Context(), userID)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to list habits", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"habits": list})
}

// CreateHabit adds a habit at the end of the user's ordering.
// @Summary Create a habit
// @Tags habits
// @Accept json
// @Produce json
// @Param body body createHabitRequest true "Habit"
// @Success 201 {object} habits.Habit
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/habits [post]
// @Security BearerAuth
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "title required")
		return
	}
	if !habits.ValidTrackingType(req.TrackingType) {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "tracking_type must be checkbox, numeric, or duration")
		return
	}

	created, err := h.habits.CreateHabit(r.Context(), habits.Habit{
		UserID:       userID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		TrackingType: habits.TrackingType(req.TrackingType),
		TargetValue:  req.TargetValue,
		Unit:         req.Unit,
	})
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to create habit", err.Error())
		return
	}
	h.invalidateAnalytics(userID)
	respond.WriteJSONObject(w, http.StatusCreated, created)
}

// UpdateHabit applies a partial update (title, category, target, unit,
// archived flag) to one habit.
// @Summary Update a habit
// @Tags habits
// @Accept json
// @Produce json
// @Param id path string true "Habit id"
// @Param body body habits.HabitPatch true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/habits/{id} [patch]
// @Security BearerAuth
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	habitID := chi.URLParam(r, "id")

	var patch habits.HabitPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}

	if err := h.habits.UpdateHabit(r.Context(), userID, habitID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Habit not found")
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to update habit", err.Error())
		return
	}
	h.invalidateAnalytics(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// DeleteHabit removes a habit and its completion history.
// @Summary Delete a habit
// @Tags habits
// @Produce json
// @Param id path string true "Habit id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/habits/{id} [delete]
// @Security BearerAuth
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	habitID := chi.URLParam(r, "id")

	if err := h.habits.DeleteHabit(r.Context(), userID, habitID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Habit not found")
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete habit", err.Error())
		return
	}
	h.invalidateAnalytics(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderHabits rewrites the user's habit ordering to the given id sequence.
// @Summary Reorder habits
// @Tags habits
// @Accept json
// @Produce json
// @Param body body reorderRequest true "Habit ids in display order"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/habits/reorder [put]
// @Security BearerAuth
func (h *Handler) ReorderHabits(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "ids required")
		return
	}

	if err := h.habits.ReorderHabits(r.Context(), userID, req.IDs); err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to reorder habits", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}
