package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reqarchitect/platform-health/internal/aggregate"
	"github.com/reqarchitect/platform-health/internal/alert"
	"github.com/reqarchitect/platform-health/internal/api"
	"github.com/reqarchitect/platform-health/internal/config"
	"github.com/reqarchitect/platform-health/internal/logger"
	"github.com/reqarchitect/platform-health/internal/probe"
	"github.com/reqarchitect/platform-health/internal/registry"
	"github.com/reqarchitect/platform-health/internal/status"
)

func main() {
	// Optional registry path override.
	registryPath := flag.String("registry", "", "Override PLATFORM_HEALTH_REGISTRY_PATH")
	flag.Parse()

	log := logger.New("platform-health")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *registryPath != "" {
		cfg.RegistryPath = *registryPath
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RegistryPath).Msg("Failed to load service registry")
	}
	log.Info().Int("services", reg.Len()).Msg("Service registry loaded")

	// -------- Probing / aggregation --------
	prober := probe.NewHTTPProber(log,
		probe.WithTimeout(cfg.ProbeTimeout()),
		probe.WithDegradedThreshold(cfg.DegradedThreshold()),
	)
	aggregator := aggregate.New(reg, prober, cfg.AggregateDeadline(), log)
	cache := status.New(aggregator, cfg.CacheTTL())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// -------- Alert dispatcher -------------
	if cfg.AlertWebhookURL != "" {
		sink := alert.NewWebhookSink(cfg.AlertWebhookURL, cfg.ProbeTimeout())
		dispatcher := alert.NewDispatcher(cache, sink, alert.Config{
			Interval:        cfg.AlertInterval(),
			Cooldown:        cfg.AlertCooldown(),
			Environment:     string(cfg.Environment),
			ResetOnRecovery: cfg.AlertResetOnRecovery,
		}, log)
		go dispatcher.Run(ctx)
	} else {
		log.Warn().Msg("No alert webhook configured; alert dispatch disabled")
	}

	// -------- Router & Server --------------
	router := api.NewRouter(cache, log)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
