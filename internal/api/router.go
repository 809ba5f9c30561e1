package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// NewRouter wires the status endpoints onto a mux router.
func NewRouter(provider SnapshotProvider, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	statusHandler := NewStatusHandler(provider, log)
	r.HandleFunc("/platform/status", statusHandler.GetPlatformStatus).Methods("GET")
	r.HandleFunc("/platform/status/service/{name}", statusHandler.GetServiceStatus).Methods("GET")

	healthHandler := NewHealthHandler()
	r.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return r
}
