package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/push"
	"github.com/imishab/track-me/internal/scheduler"
)

// PrayerCron is the minute-granularity cron entry point. The external cron
// service calls it every minute; it performs at most one notification
// category per invocation.
//
// @Summary Cron tick for prayer and daily-summary notifications
// @Description Invoked once per minute by the external cron service. Sends the prayer reminder or daily summary due at the current minute, if any. `?test=<prayerKey>` forces a prayer broadcast without ledger checks; `?test=daily` forces the summary flow.
// @Tags cron
// @Produce json
// @Param test query string false "Prayer key or 'daily' to force a flow"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/cron/prayer-notifications [get]
func (h *Handler) PrayerCron(w http.ResponseWriter, r *http.Request) {
	// The shared secret guards against third parties triggering sends. When
	// unset, all callers are accepted; main logs that as a security gap.
	if h.cfg.CronSecret != "" && r.Header.Get("Authorization") != "Bearer "+h.cfg.CronSecret {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	testParam := strings.ToLower(r.URL.Query().Get("test"))

	out, err := h.sched.Run(r.Context(), testParam)
	if err != nil {
		if errors.Is(err, push.ErrNotConfigured) {
			respond.WriteErrorDetail(w, http.StatusServiceUnavailable,
				"CONFIG_MISSING", "Push provider not configured", err.Error())
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"LEDGER_ERROR", "Sent-ledger lookup failed", err.Error())
		return
	}

	switch out.Kind {
	case scheduler.KindNoop:
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"message": "No prayer or daily summary at this time",
		})

	case scheduler.KindSummary:
		body := map[string]interface{}{
			"ok":           true,
			"dailySummary": true,
			"sent":         out.SummarySent,
			"errors":       out.SummaryErrors,
		}
		if out.Test {
			body["test"] = true
		}
		respond.WriteJSONObject(w, http.StatusOK, body)

	case scheduler.KindPrayerAlreadySent:
		msg := "Already sent today"
		if out.Race {
			msg = "Already sent today (race)"
		}
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"message": msg,
			"prayer":  out.Prayer,
		})

	case scheduler.KindPrayerSendFailed:
		respond.WriteErrorDetail(w, http.StatusBadGateway,
			"PUSH_SEND_FAILED", "PushAlert send failed", out.Detail)

	case scheduler.KindRecordFailed:
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"RECORD_FAILED", "Failed to record sent", out.Detail)

	case scheduler.KindPrayerSent:
		body := map[string]interface{}{
			"ok":             true,
			"sent":           true,
			"prayer":         out.Prayer,
			"notificationId": out.NotificationID,
		}
		if out.Test {
			body["test"] = true
		}
		respond.WriteJSONObject(w, http.StatusOK, body)
	}
}
