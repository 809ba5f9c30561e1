package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reqarchitect/platform-health/internal/model"
)

// Record is one alert dispatch attempt. It is constructed per attempt,
// handed to the sink and discarded; nothing persists it.
type Record struct {
	ID             string       `json:"id"`
	ServiceName    string       `json:"service_name"`
	Status         model.Status `json:"status"`
	Critical       bool         `json:"critical"`
	Environment    string       `json:"environment"`
	ResponseTimeMs *float64     `json:"response_time_ms"`
	Subject        string       `json:"subject"`
	Message        string       `json:"message"`
	Priority       string       `json:"priority"`
	Timestamp      time.Time    `json:"timestamp"`
}

// Sink delivers alerts. Delivery failures are reported as errors; the
// dispatcher logs and counts them but never retries within a tick.
type Sink interface {
	Deliver(ctx context.Context, rec Record) error
}

// WebhookSink POSTs alert records to a notification endpoint.
type WebhookSink struct {
	client *resty.Client
	url    string
}

// NewWebhookSink creates a sink for the given endpoint URL.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &WebhookSink{client: c, url: url}
}

// Deliver posts the record. Any non-2xx response counts as a failure.
func (s *WebhookSink) Deliver(ctx context.Context, rec Record) error {
	resp, err := s.client.R().SetContext(ctx).SetBody(&rec).Post(s.url)
	if err != nil {
		return fmt.Errorf("alert delivery: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert delivery: sink returned %d", resp.StatusCode())
	}
	return nil
}
