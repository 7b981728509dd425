package notify

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hairscan/hairscan-admin/internal/models"
)

// WebhookForwarder forwards audit events to an external HTTP endpoint.
// Delivery is fire and forget.
type WebhookForwarder struct {
	url        string
	httpClient *http.Client
}

// NewWebhookForwarder creates a forwarder. Returns nil when no URL is
// configured so callers can pass the result straight to NewNotifier.
func NewWebhookForwarder(url string, timeout time.Duration) *WebhookForwarder {
	if url == "" {
		return nil
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookForwarder{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Forward posts the event payload to the configured endpoint
func (f *WebhookForwarder) Forward(eventType models.EventType, payload []byte) {
	go func() {
		req, err := http.NewRequest(http.MethodPost, f.url, bytes.NewReader(payload))
		if err != nil {
			log.Error().Err(err).Msg("Failed to build webhook request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", string(eventType))

		resp, err := f.httpClient.Do(req)
		if err != nil {
			log.Warn().Err(err).Str("url", f.url).Msg("Webhook delivery failed")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Warn().
				Int("status", resp.StatusCode).
				Str("url", f.url).
				Msg("Webhook endpoint returned error")
		}
	}()
}
