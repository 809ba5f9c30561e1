// Package aggregate fans probes out across the registry and folds the
// results into an immutable platform snapshot.
package aggregate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reqarchitect/platform-health/internal/model"
	"github.com/reqarchitect/platform-health/internal/registry"
)

// Prober is implemented by anything that can classify one service's health.
type Prober interface {
	Probe(ctx context.Context, d registry.ServiceDescriptor) model.ServiceHealth
}

// Aggregator runs one concurrent probe per registered service and merges
// the results within an overall deadline. Aggregation itself cannot fail:
// a failing probe only degrades that service's entry, and a probe still
// outstanding at the deadline is recorded as timeout.
type Aggregator struct {
	reg      *registry.Registry
	prober   Prober
	deadline time.Duration
	log      zerolog.Logger
}

// New creates an aggregator. A non-positive deadline falls back to 30s.
func New(reg *registry.Registry, prober Prober, deadline time.Duration, log zerolog.Logger) *Aggregator {
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	return &Aggregator{reg: reg, prober: prober, deadline: deadline, log: log}
}

type probeResult struct {
	name   string
	health model.ServiceHealth
}

// Aggregate probes every registered service concurrently and returns a new
// snapshot. Exactly one ServiceHealth is produced per descriptor.
func (a *Aggregator) Aggregate(ctx context.Context) *model.PlatformSnapshot {
	descs := a.reg.Services()
	results := make(chan probeResult, len(descs))

	probeCtx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	for _, d := range descs {
		go func(d registry.ServiceDescriptor) {
			results <- probeResult{name: d.Name, health: a.prober.Probe(probeCtx, d)}
		}(d)
	}

	services := make(map[string]model.ServiceHealth, len(descs))
collect:
	for len(services) < len(descs) {
		select {
		case r := <-results:
			services[r.name] = r.health
		case <-probeCtx.Done():
			break collect
		}
	}

	// Stragglers at the deadline are recorded as timeout so the snapshot is
	// always complete and the caller never blocks past the deadline.
	now := time.Now().UTC()
	for _, d := range descs {
		if _, ok := services[d.Name]; ok {
			continue
		}
		msg := "probe did not complete before the aggregation deadline"
		services[d.Name] = model.ServiceHealth{
			Status:    model.StatusTimeout,
			LastCheck: now,
			Critical:  d.Critical,
			Error:     &msg,
		}
	}

	snap := &model.PlatformSnapshot{
		Timestamp: now,
		Services:  services,
		Summary:   model.ComputeSummary(services),
	}
	a.log.Debug().
		Int("total", snap.Summary.TotalServices).
		Int("healthy", snap.Summary.HealthyServices).
		Str("overall", string(snap.Summary.OverallStatus)).
		Msg("aggregation pass complete")
	return snap
}
