package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
)

type subscribeRequest struct {
	SubscriberID string `json:"subscriber_id"`
}

// Subscribe saves the PushAlert subscriber id for the current user so the
// daily summary can target them. One subscription per user; re-subscribing
// overwrites the previous identity.
// @Summary Register a push subscriber
// @Tags push
// @Accept json
// @Produce json
// @Param body body subscribeRequest true "Subscriber"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /api/v1/push/subscribe [post]
// @Security BearerAuth
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	subscriberID := strings.TrimSpace(req.SubscriberID)
	if subscriberID == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "subscriber_id required")
		return
	}

	if err := h.subs.Upsert(r.Context(), userID, subscriberID); err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to save subscription", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}
