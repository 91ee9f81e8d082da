package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"securiguard/internal/api"
	"securiguard/internal/api/handlers"
	"securiguard/internal/config"
	"securiguard/internal/domain/services"
	"securiguard/internal/infrastructure/cache"
	"securiguard/internal/providers"
	"securiguard/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	log.Info().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("Starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without shared cache")
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	registry := providers.NewRegistry(log)
	for _, adapter := range []providers.Adapter{
		providers.NewReputationAdapter(log),
		providers.NewSafeBrowsingAdapter(log),
		providers.NewAIAnalystAdapter(log),
		providers.NewDomainAgeAdapter(log),
	} {
		if err := registry.Register(adapter); err != nil {
			log.Fatal().Err(err).Msg("Failed to register provider")
		}
	}
	if err := registry.ConfigureFromProvidersConfig(&cfg.Providers); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure providers")
	}
	log.Info().
		Int("registered", registry.Count()).
		Int("enabled", registry.CountEnabled()).
		Msg("Providers ready")

	extractor := services.NewFeatureExtractor(log)
	detectors := services.NewHeuristicDetectors(log)
	fuser := services.NewFuser(log)
	aggregator := services.NewAggregator(detectors, fuser, registry, cfg.Scan.ProviderDeadline, log)
	coordinator := services.NewScanCoordinator(extractor, aggregator, redisCache, cfg.Scan.ResultTTL, log)

	router := api.NewRouter(handlers.Dependencies{
		Config:      cfg,
		Coordinator: coordinator,
		Registry:    registry,
		Cache:       redisCache,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Stopped")
}
