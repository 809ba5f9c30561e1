// Package alert watches critical services and dispatches deduplicated
// alerts to a notification sink. One dispatcher goroutine owns the cooldown
// ledger; nothing else reads or writes it.
package alert

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reqarchitect/platform-health/internal/model"
)

// Source produces a force-refreshed snapshot for a dispatcher tick.
type Source interface {
	Refresh(ctx context.Context) *model.PlatformSnapshot
}

// Config controls tick cadence and cooldown policy.
type Config struct {
	Interval        time.Duration // tick interval
	Cooldown        time.Duration // minimum gap between alerts per service
	Environment     string        // stamped onto alert records
	ResetOnRecovery bool          // clear a service's cooldown when it returns healthy
}

// Stats are cumulative dispatcher counters, safe for concurrent reads.
type Stats struct {
	AlertsSent       int64 `json:"alerts_sent"`
	DeliveryFailures int64 `json:"delivery_failures"`
	TicksCompleted   int64 `json:"ticks_completed"`
}

// Dispatcher runs the alert loop. Ticks are strictly serialized: the loop
// body runs to completion before the next tick is taken, and time.Ticker
// drops intermediate ticks when a tick overruns the interval.
type Dispatcher struct {
	source   Source
	sink     Sink
	cfg      Config
	ledger   map[string]time.Time
	now      func() time.Time
	log      zerolog.Logger
	sent     atomic.Int64
	failures atomic.Int64
	ticks    atomic.Int64
}

// NewDispatcher creates a dispatcher. Defaults: 60s interval, 300s cooldown.
func NewDispatcher(source Source, sink Sink, cfg Config, log zerolog.Logger) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 300 * time.Second
	}
	return &Dispatcher{
		source: source,
		sink:   sink,
		cfg:    cfg,
		ledger: make(map[string]time.Time),
		now:    time.Now,
		log:    log,
	}
}

// Run executes the dispatch loop until ctx is cancelled. The first
// evaluation happens after one full interval, not immediately, so the rest
// of the process finishes starting up first.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info().
		Dur("interval", d.cfg.Interval).
		Dur("cooldown", d.cfg.Cooldown).
		Msg("alert dispatcher starting")
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("alert dispatcher stopping")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick force-refreshes the snapshot and evaluates every critical service
// against the cooldown ledger. A sink failure for one service never blocks
// evaluation of the others.
func (d *Dispatcher) Tick(ctx context.Context) {
	snap := d.source.Refresh(ctx)
	now := d.now()

	for name, h := range snap.Services {
		if !h.Critical {
			continue
		}
		if !h.Status.Degraded() {
			if d.cfg.ResetOnRecovery {
				delete(d.ledger, name)
			}
			continue
		}

		last, seen := d.ledger[name]
		if seen && now.Sub(last) < d.cfg.Cooldown {
			continue
		}

		rec := d.buildRecord(name, h, now)
		if err := d.sink.Deliver(ctx, rec); err != nil {
			d.failures.Add(1)
			d.log.Error().Stack().Err(err).
				Str("alert_service", name).
				Str("status", string(h.Status)).
				Msg("alert delivery failed")
		} else {
			d.sent.Add(1)
			d.log.Warn().
				Str("alert_service", name).
				Str("status", string(h.Status)).
				Str("priority", rec.Priority).
				Msg("alert dispatched")
		}
		// The ledger advances on every attempt, delivered or not, so a
		// broken sink cannot cause an alert storm.
		d.ledger[name] = now
	}
	d.ticks.Add(1)
	d.log.Debug().
		Int64("ticks", d.ticks.Load()).
		Int64("alerts_sent", d.sent.Load()).
		Int64("delivery_failures", d.failures.Load()).
		Msg("alert tick complete")
}

func (d *Dispatcher) buildRecord(name string, h model.ServiceHealth, now time.Time) Record {
	priority := "medium"
	if h.Status == model.StatusUnhealthy || h.Status == model.StatusTimeout {
		priority = "high"
	}
	detail := ""
	if h.Error != nil {
		detail = ": " + *h.Error
	}
	return Record{
		ID:             uuid.NewString(),
		ServiceName:    name,
		Status:         h.Status,
		Critical:       true,
		Environment:    d.cfg.Environment,
		ResponseTimeMs: h.ResponseTimeMs,
		Subject:        fmt.Sprintf("[%s] critical service %s is %s", d.cfg.Environment, name, h.Status),
		Message:        fmt.Sprintf("critical service %s reported %s at %s%s", name, h.Status, now.UTC().Format(time.RFC3339), detail),
		Priority:       priority,
		Timestamp:      now.UTC(),
	}
}

// Stats returns a copy of the cumulative counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		AlertsSent:       d.sent.Load(),
		DeliveryFailures: d.failures.Load(),
		TicksCompleted:   d.ticks.Load(),
	}
}
