package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqarchitect/platform-health/internal/model"
	"github.com/reqarchitect/platform-health/internal/registry"
)

// stubProber returns canned statuses per service name. Services listed in
// hang never return until the context is cancelled.
type stubProber struct {
	statuses map[string]model.Status
	hang     map[string]bool
}

func (s *stubProber) Probe(ctx context.Context, d registry.ServiceDescriptor) model.ServiceHealth {
	if s.hang[d.Name] {
		<-ctx.Done()
		return model.ServiceHealth{Status: model.StatusTimeout, Critical: d.Critical, LastCheck: time.Now()}
	}
	st, ok := s.statuses[d.Name]
	if !ok {
		st = model.StatusHealthy
	}
	return model.ServiceHealth{Status: st, Critical: d.Critical, LastCheck: time.Now()}
}

func testRegistry(t *testing.T, descs ...registry.ServiceDescriptor) *registry.Registry {
	t.Helper()
	reg, err := registry.New(descs)
	require.NoError(t, err)
	return reg
}

func desc(name string, critical bool) registry.ServiceDescriptor {
	return registry.ServiceDescriptor{Name: name, Address: "localhost", Port: 9999, Critical: critical}
}

func TestAggregate_OneResultPerDescriptor(t *testing.T) {
	reg := testRegistry(t, desc("a", true), desc("b", false), desc("c", false))
	agg := New(reg, &stubProber{}, time.Second, zerolog.Nop())

	snap := agg.Aggregate(context.Background())
	require.Len(t, snap.Services, 3)
	for _, name := range []string{"a", "b", "c"} {
		assert.Contains(t, snap.Services, name)
	}
}

func TestAggregate_AllHealthy(t *testing.T) {
	reg := testRegistry(t, desc("a", true), desc("b", true), desc("c", false))
	agg := New(reg, &stubProber{}, time.Second, zerolog.Nop())

	snap := agg.Aggregate(context.Background())
	assert.Equal(t, float64(100), snap.Summary.SuccessRate)
	assert.Equal(t, float64(100), snap.Summary.CriticalSuccessRate)
	assert.Equal(t, model.StatusHealthy, snap.Summary.OverallStatus)
}

func TestAggregate_CriticalFailureDegrades(t *testing.T) {
	// 3 services, 2 critical, one critical failing with a 5xx-style result.
	reg := testRegistry(t, desc("auth", true), desc("billing", true), desc("search", false))
	prober := &stubProber{statuses: map[string]model.Status{"billing": model.StatusDegraded}}
	agg := New(reg, prober, time.Second, zerolog.Nop())

	snap := agg.Aggregate(context.Background())
	assert.Equal(t, float64(50), snap.Summary.CriticalSuccessRate)
	assert.Equal(t, model.StatusDegraded, snap.Summary.OverallStatus)
}

func TestAggregate_StragglerRecordedAsTimeout(t *testing.T) {
	reg := testRegistry(t, desc("fast", false), desc("stuck", true))
	prober := &stubProber{hang: map[string]bool{"stuck": true}}
	agg := New(reg, prober, 50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	snap := agg.Aggregate(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 500*time.Millisecond, "aggregation must not hang past the deadline")
	require.Len(t, snap.Services, 2)
	assert.Equal(t, model.StatusTimeout, snap.Services["stuck"].Status)
	assert.True(t, snap.Services["stuck"].Critical)
	assert.Equal(t, model.StatusHealthy, snap.Services["fast"].Status)
}

func TestAggregate_SnapshotIsComplete(t *testing.T) {
	reg := testRegistry(t, desc("a", false))
	agg := New(reg, &stubProber{hang: map[string]bool{"a": true}}, 20*time.Millisecond, zerolog.Nop())

	snap := agg.Aggregate(context.Background())
	assert.Equal(t, 1, snap.Summary.TotalServices)
	assert.False(t, snap.Timestamp.IsZero())
}
