package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
	"github.com/imishab/track-me/internal/cache"
	"github.com/imishab/track-me/internal/habits"
)

const (
	defaultAnalyticsDays = 30
	minAnalyticsDays     = 7
	maxAnalyticsDays     = 365
)

// Analytics returns aggregate completion statistics over a trailing window:
// per-day rates, per-habit rates, today's percent, and the current streak.
// Responses are cached per (user, window) with ETag revalidation.
// @Summary Habit analytics
// @Tags analytics
// @Produce json
// @Param days query int false "Window size in days (7-365, default 30)"
// @Success 200 {object} habits.Stats
// @Success 304 {string} string "Not modified"
// @Router /api/v1/analytics [get]
// @Security BearerAuth
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	days := defaultAnalyticsDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "days must be an integer")
			return
		}
		days = n
	}
	if days < minAnalyticsDays {
		days = minAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	cacheKey := analyticsCacheKey(userID, days)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLAnalytics, true)
		return
	}

	// Ascending range ending today in the configured timezone.
	now := time.Now().In(h.loc)
	dateRange := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dateRange = append(dateRange, now.AddDate(0, 0, -i).Format(dateLayout))
	}

	list, err := h.habits.ListHabits(r.Context(), userID)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to load habits", err.Error())
		return
	}
	comps, err := h.habits.ListCompletions(r.Context(), userID, dateRange[0], dateRange[len(dateRange)-1])
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to load completions", err.Error())
		return
	}

	stats := habits.ComputeStats(list, comps, dateRange)
	data, err := json.Marshal(stats)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to encode stats", err.Error())
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLAnalytics)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLAnalytics, false)
}

func analyticsCacheKey(userID string, days int) string {
	return fmt.Sprintf("analytics:%s:%d", userID, days)
}

// invalidateAnalytics drops all cached analytics windows for a user after a
// write that changes their aggregates.
func (h *Handler) invalidateAnalytics(userID string) {
	h.cache.InvalidatePrefix("analytics:" + userID + ":")
}
