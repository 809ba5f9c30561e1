// Package api exposes the platform status query surface. The endpoint is
// read-only and fully decoupled from alert dispatch: no request ever
// triggers an alert side effect.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/reqarchitect/platform-health/internal/api/respond"
	"github.com/reqarchitect/platform-health/internal/model"
	"github.com/reqarchitect/platform-health/internal/status"
)

// SnapshotProvider serves cached snapshots; the status cache satisfies it.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, force bool) (*model.PlatformSnapshot, status.CacheInfo)
}

// PlatformStatusResponse is the wire shape of GET /platform/status.
type PlatformStatusResponse struct {
	Timestamp       time.Time                      `json:"timestamp"`
	CacheInfo       status.CacheInfo               `json:"cache_info"`
	Summary         model.Summary                  `json:"summary"`
	Services        map[string]model.ServiceHealth `json:"services"`
	CriticalSummary *model.Summary                 `json:"critical_summary,omitempty"`
}

// ServiceStatusResponse is the wire shape of the single-service view.
type ServiceStatusResponse struct {
	Timestamp time.Time           `json:"timestamp"`
	CacheInfo status.CacheInfo    `json:"cache_info"`
	Name      string              `json:"name"`
	Health    model.ServiceHealth `json:"health"`
}

// StatusHandler answers platform status queries from the cache.
type StatusHandler struct {
	provider SnapshotProvider
	log      zerolog.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(provider SnapshotProvider, log zerolog.Logger) *StatusHandler {
	return &StatusHandler{provider: provider, log: log}
}

// GetPlatformStatus handles GET /platform/status.
// Query parameters: critical_only (default false), include_metrics
// (default true), force_refresh (default false). The endpoint always
// answers 200 with a best-effort snapshot; degradation is communicated
// through the summary and per-service status fields, never as an HTTP
// error.
func (h *StatusHandler) GetPlatformStatus(w http.ResponseWriter, r *http.Request) {
	criticalOnly := boolParam(r, "critical_only", false)
	includeMetrics := boolParam(r, "include_metrics", true)
	forceRefresh := boolParam(r, "force_refresh", false)

	snap, info := h.provider.Snapshot(r.Context(), forceRefresh)

	resp := PlatformStatusResponse{
		Timestamp: snap.Timestamp,
		CacheInfo: info,
		Summary:   snap.Summary,
		Services:  snap.Services,
	}

	if criticalOnly {
		filtered := make(map[string]model.ServiceHealth)
		for name, sh := range snap.Services {
			if sh.Critical {
				filtered[name] = sh
			}
		}
		secondary := model.ComputeSummary(filtered)
		resp.Services = filtered
		resp.CriticalSummary = &secondary
	}

	if !includeMetrics {
		stripped := make(map[string]model.ServiceHealth, len(resp.Services))
		for name, sh := range resp.Services {
			sh.ResponseTimeMs = nil
			sh.Error = nil
			sh.Uptime = ""
			sh.Version = ""
			sh.Environment = ""
			stripped[name] = sh
		}
		resp.Services = stripped
	}

	respond.WriteJSON(w, http.StatusOK, resp)
}

// GetServiceStatus handles GET /platform/status/service/{name}, the
// drill-down view of one service from the same cached snapshot.
func (h *StatusHandler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	forceRefresh := boolParam(r, "force_refresh", false)

	snap, info := h.provider.Snapshot(r.Context(), forceRefresh)
	sh, ok := snap.Services[name]
	if !ok {
		respond.WriteNotFound(w, "unknown service: "+name)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ServiceStatusResponse{
		Timestamp: snap.Timestamp,
		CacheInfo: info,
		Name:      name,
		Health:    sh,
	})
}

// boolParam parses a boolean query parameter, falling back to def on
// absence or garbage.
func boolParam(r *http.Request, key string, def bool) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
