package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trade-journal/internal/config"
	"trade-journal/internal/resilience"
)

// MarshalJSON encodes the notification with its duration in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		DurationMs int64 `json:"duration_ms"`
	}{
		alias:      alias(n),
		DurationMs: n.DurationMillis(),
	})
}

// WebhookNotifier sends notifications via HTTP webhook. Transient failures
// are retried; repeated failures open a circuit so a dead endpoint does not
// stall every trade.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker("webhook", resilience.DefaultBreakerConfig()),
	}
}

// SetRetry replaces the retry policy.
func (w *WebhookNotifier) SetRetry(cfg resilience.RetryConfig) {
	w.retry = cfg
}

// Breaker returns the circuit breaker guarding delivery.
func (w *WebhookNotifier) Breaker() *resilience.Breaker {
	return w.breaker
}

// Name returns the channel name.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// IsEnabled returns whether the channel is enabled.
func (w *WebhookNotifier) IsEnabled() bool {
	return w.enabled
}

// Send posts the notification as JSON to the configured URL.
func (w *WebhookNotifier) Send(ctx context.Context, n Notification) error {
	if !w.enabled {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	return w.breaker.Execute(func() error {
		return resilience.Retry(ctx, w.retry, func() error {
			return w.post(ctx, body)
		})
	})
}

// post makes one delivery attempt. 4xx responses are permanent.
func (w *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return resilience.Permanent(fmt.Errorf("creating webhook request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TradeJournal/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return resilience.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
	return fmt.Errorf("webhook returned status %d", resp.StatusCode)
}
