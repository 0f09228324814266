// Package push sends web push notifications through the PushAlert REST API
// and stores the per-user subscriber registrations the daily summary targets.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	defaultSendURL = "https://api.pushalert.co/rest/v1/send"
	sendTimeout    = 15 * time.Second

	// PushAlert truncates beyond these; cut client-side so the payload we
	// log matches what subscribers see.
	maxTitleLen   = 64
	maxMessageLen = 192
)

// ErrNotConfigured is returned when no API key is set. Callers must treat it
// as a configuration error, not a delivery failure.
var ErrNotConfigured = errors.New("pushalert: PUSHALERT_API_KEY not set")

// DeliveryError is a provider-level rejection or transport failure.
// One send is one outbound call; no retries happen here.
type DeliveryError struct {
	Status int    // HTTP status, 0 for transport errors
	Reason string // provider msg or error text
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 && e.Reason == "" {
		return fmt.Sprintf("pushalert: HTTP %d", e.Status)
	}
	return "pushalert: " + e.Reason
}

// Message is one notification payload.
type Message struct {
	Title string
	Body  string
	URL   string
	Icon  string
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client calls the PushAlert send endpoint. apiKey may be empty, in which
// case every send fails with ErrNotConfigured.
type Client struct {
	apiKey     string
	sendURL    string
	httpClient *http.Client
}

// NewClient creates a PushAlert client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		sendURL: defaultSendURL,
		httpClient: &http.Client{
			Timeout: sendTimeout,
		},
	}
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// SendBroadcast sends msg to every current PushAlert subscriber and returns
// the provider's notification id.
func (c *Client) SendBroadcast(ctx context.Context, msg Message) (int64, error) {
	return c.send(ctx, "", msg)
}

// SendToSubscriber sends msg to a single subscriber identity.
func (c *Client) SendToSubscriber(ctx context.Context, subscriberID string, msg Message) (int64, error) {
	return c.send(ctx, subscriberID, msg)
}

func (c *Client) send(ctx context.Context, subscriberID string, msg Message) (int64, error) {
	if c.apiKey == "" {
		return 0, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("title", truncate(msg.Title, maxTitleLen))
	form.Set("message", truncate(msg.Body, maxMessageLen))
	form.Set("url", msg.URL)
	if msg.Icon != "" {
		form.Set("icon", msg.Icon)
	}
	if subscriberID != "" {
		form.Set("subscriber", subscriberID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "api_key="+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &DeliveryError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		ID      int64  `json:"id"`
		Msg     string `json:"msg"`
	}
	// A malformed body is treated like any other provider failure.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if body.Success && body.ID != 0 {
		return body.ID, nil
	}
	reason := body.Msg
	if reason == "" {
		reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return 0, &DeliveryError{Status: resp.StatusCode, Reason: reason}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
