// Package probe issues bounded health requests against monitored services
// and classifies the outcome. A probe never fails: every failure mode is
// encoded in the returned ServiceHealth status.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/reqarchitect/platform-health/internal/model"
	"github.com/reqarchitect/platform-health/internal/registry"
)

// healthPayload is the minimal contract a monitored service must return
// from its health endpoint.
type healthPayload struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Uptime      string `json:"uptime"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// HTTPProber probes services over HTTP GET.
type HTTPProber struct {
	client            *resty.Client
	timeout           time.Duration
	degradedThreshold time.Duration
	log               zerolog.Logger
}

// Option configures an HTTPProber.
type Option func(*HTTPProber)

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *HTTPProber) { p.timeout = d }
}

// WithDegradedThreshold sets the soft response-time threshold above which a
// successful probe is classified degraded.
func WithDegradedThreshold(d time.Duration) Option {
	return func(p *HTTPProber) { p.degradedThreshold = d }
}

// NewHTTPProber creates a prober with the default 5s timeout and 1s
// degraded threshold.
func NewHTTPProber(log zerolog.Logger, opts ...Option) *HTTPProber {
	p := &HTTPProber{
		timeout:           5 * time.Second,
		degradedThreshold: time.Second,
		log:               log,
	}
	for _, o := range opts {
		o(p)
	}
	p.client = resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(p.timeout)
	return p
}

// Probe performs one health check against the descriptor. It never returns
// an error; the classification carries all failure detail.
func (p *HTTPProber) Probe(ctx context.Context, d registry.ServiceDescriptor) model.ServiceHealth {
	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Get(d.URL())
	elapsed := time.Since(start)

	h := model.ServiceHealth{
		LastCheck: time.Now().UTC(),
		Critical:  d.Critical,
	}

	if err != nil {
		h.Status = classifyError(err)
		msg := err.Error()
		h.Error = &msg
		p.log.Debug().Str("service", d.Name).Str("status", string(h.Status)).Err(err).Msg("probe failed")
		return h
	}

	ms := float64(elapsed.Milliseconds())
	h.ResponseTimeMs = &ms

	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		var payload healthPayload
		if jerr := json.Unmarshal(resp.Body(), &payload); jerr != nil || payload.Status == "" {
			h.Status = model.StatusDegraded
			msg := "malformed health payload"
			h.Error = &msg
			return h
		}
		h.Uptime = payload.Uptime
		h.Version = payload.Version
		h.Environment = payload.Environment
		if payload.Status != "healthy" {
			h.Status = model.StatusDegraded
			msg := "service reported status " + payload.Status
			h.Error = &msg
			return h
		}
		if elapsed > p.degradedThreshold {
			h.Status = model.StatusDegraded
			msg := "slow response"
			h.Error = &msg
			return h
		}
		h.Status = model.StatusHealthy
	default:
		// 4xx/5xx: the service answered but is not serving health.
		h.Status = model.StatusDegraded
		msg := "health endpoint returned " + http.StatusText(code)
		h.Error = &msg
	}
	return h
}

// classifyError maps transport errors onto probe statuses. Reachability
// errors (DNS failures, refused connections, resets) become unhealthy;
// deadline and timeout errors become timeout; anything else is unknown.
// DNS errors are checked first so that a DNS lookup timing out still reads
// as a reachability problem, not a slow service.
func classifyError(err error) model.Status {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.StatusUnhealthy
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.StatusTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return model.StatusTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.StatusUnhealthy
	}
	return model.StatusUnknown
}
