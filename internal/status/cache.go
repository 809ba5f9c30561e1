// Package status caches the most recent platform snapshot with a TTL and
// coalesces concurrent refreshes so the monitored services never see a
// request storm from polling dashboards.
package status

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reqarchitect/platform-health/internal/model"
)

// Source produces fresh snapshots; the Aggregator satisfies it.
type Source interface {
	Aggregate(ctx context.Context) *model.PlatformSnapshot
}

// CacheInfo describes the cache state attached to an endpoint response.
type CacheInfo struct {
	LastUpdate           time.Time `json:"last_update"`
	CacheValid           bool      `json:"cache_valid"`
	CacheDurationSeconds int       `json:"cache_duration_seconds"`
}

type entry struct {
	snapshot  *model.PlatformSnapshot
	expiresAt time.Time
}

// Cache holds one snapshot behind an atomically swapped pointer. Reads on
// the hot path take no locks; refreshes are serialized through a
// single-flight group so N concurrent refreshers trigger exactly one
// aggregation pass.
type Cache struct {
	source Source
	ttl    time.Duration

	current atomic.Pointer[entry]
	group   singleflight.Group
}

// New creates a cache. A non-positive ttl falls back to 15s.
func New(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Cache{source: source, ttl: ttl}
}

// Snapshot returns the cached snapshot, refreshing when the entry is
// expired, absent, or force is set. Concurrent callers arriving during a
// refresh all receive the same freshly produced snapshot.
func (c *Cache) Snapshot(ctx context.Context, force bool) (*model.PlatformSnapshot, CacheInfo) {
	if !force {
		if e := c.current.Load(); e != nil && time.Now().Before(e.expiresAt) {
			return e.snapshot, c.info(e, true)
		}
	}

	v, _, _ := c.group.Do("refresh", func() (interface{}, error) {
		// The refresh serves every coalesced caller, so it must not die with
		// the caller that happened to start it: a client disconnecting
		// mid-refresh would otherwise publish a snapshot full of failed
		// probes. The aggregator bounds its own runtime with a deadline.
		snap := c.source.Aggregate(context.WithoutCancel(ctx))
		e := &entry{snapshot: snap, expiresAt: time.Now().Add(c.ttl)}
		// Never publish a snapshot older than the one already visible.
		for {
			prev := c.current.Load()
			if prev != nil && !snap.Timestamp.After(prev.snapshot.Timestamp) {
				e = prev
				break
			}
			if c.current.CompareAndSwap(prev, e) {
				break
			}
		}
		return e, nil
	})
	e := v.(*entry)
	return e.snapshot, c.info(e, time.Now().Before(e.expiresAt))
}

// Refresh forces a fresh aggregation pass, still coalesced with any other
// in-flight refresh. The alert dispatcher uses this each tick.
func (c *Cache) Refresh(ctx context.Context) *model.PlatformSnapshot {
	snap, _ := c.Snapshot(ctx, true)
	return snap
}

// Cached returns the current snapshot without triggering a refresh. It
// reports false when nothing has been published yet.
func (c *Cache) Cached() (*model.PlatformSnapshot, bool) {
	e := c.current.Load()
	if e == nil {
		return nil, false
	}
	return e.snapshot, true
}

func (c *Cache) info(e *entry, valid bool) CacheInfo {
	return CacheInfo{
		LastUpdate:           e.snapshot.Timestamp,
		CacheValid:           valid,
		CacheDurationSeconds: int(c.ttl / time.Second),
	}
}
