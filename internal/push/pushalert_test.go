package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.sendURL = srv.URL
	return c
}

func TestSendBroadcast(t *testing.T) {
	var gotForm map[string]string
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotAuth = r.Header.Get("Authorization")
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"success":true,"id":4217}`))
	})

	id, err := c.SendBroadcast(context.Background(), Message{
		Title: "Fajr prayer time",
		Body:  "Time to pray.",
		URL:   "https://example.com",
		Icon:  "https://example.com/icon.png",
	})
	if err != nil {
		t.Fatalf("SendBroadcast: %v", err)
	}
	if id != 4217 {
		t.Errorf("id = %d, want 4217", id)
	}
	if gotAuth != "api_key=test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotForm["title"] != "Fajr prayer time" || gotForm["url"] != "https://example.com" {
		t.Errorf("form = %v", gotForm)
	}
	if _, ok := gotForm["subscriber"]; ok {
		t.Error("broadcast must not set subscriber field")
	}
}

func TestSendToSubscriberSetsSubscriberField(t *testing.T) {
	var subscriber string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		subscriber = r.PostForm.Get("subscriber")
		w.Write([]byte(`{"success":true,"id":1}`))
	})

	if _, err := c.SendToSubscriber(context.Background(), "sub-99", Message{Title: "t", Body: "b", URL: "u"}); err != nil {
		t.Fatalf("SendToSubscriber: %v", err)
	}
	if subscriber != "sub-99" {
		t.Errorf("subscriber = %q, want sub-99", subscriber)
	}
}

func TestSendTruncatesTitleAndMessage(t *testing.T) {
	var title, message string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		title = r.PostForm.Get("title")
		message = r.PostForm.Get("message")
		w.Write([]byte(`{"success":true,"id":1}`))
	})

	long := strings.Repeat("x", 500)
	if _, err := c.SendBroadcast(context.Background(), Message{Title: long, Body: long, URL: "u"}); err != nil {
		t.Fatalf("SendBroadcast: %v", err)
	}
	if len(title) != maxTitleLen {
		t.Errorf("title length = %d, want %d", len(title), maxTitleLen)
	}
	if len(message) != maxMessageLen {
		t.Errorf("message length = %d, want %d", len(message), maxMessageLen)
	}
}

func TestSendProviderRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"msg":"invalid icon url"}`))
	})

	_, err := c.SendBroadcast(context.Background(), Message{Title: "t", Body: "b", URL: "u"})
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if de.Reason != "invalid icon url" || de.Status != http.StatusBadRequest {
		t.Errorf("DeliveryError = %+v", de)
	}
}

func TestSendMalformedBodyFallsBackToStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("not json"))
	})

	_, err := c.SendBroadcast(context.Background(), Message{Title: "t", Body: "b", URL: "u"})
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if de.Reason != "HTTP 502" {
		t.Errorf("reason = %q, want HTTP 502", de.Reason)
	}
}

func TestSendWithoutKeyIsConfigError(t *testing.T) {
	c := NewClient("")
	_, err := c.SendBroadcast(context.Background(), Message{Title: "t"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		t.Error("missing key must not be a DeliveryError")
	}
}
