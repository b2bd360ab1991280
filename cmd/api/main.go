package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"appscore-lab/internal/api"
	"appscore-lab/internal/api/handlers"
	apimiddleware "appscore-lab/internal/api/middleware"
	"appscore-lab/internal/config"
	"appscore-lab/internal/detection/permissions"
	"appscore-lab/internal/domain/services"
	"appscore-lab/internal/grpc/health"
	"appscore-lab/internal/infrastructure/cache"
	"appscore-lab/internal/infrastructure/database"
	"appscore-lab/internal/infrastructure/database/repository"
	"appscore-lab/internal/metrics"
	"appscore-lab/internal/streaming"
	"appscore-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logger.Options())

	log.WithFields(map[string]any{
		"app":       cfg.App.Name,
		"env":       cfg.App.Environment,
		"version":   cfg.App.Version,
		"log_level": cfg.Logger.Level,
		"redis":     cfg.Redis.Enabled,
		"postgres":  cfg.Database.Enabled,
		"nats":      cfg.NATS.Enabled,
	}).Info().Msg("starting appscore")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	deps := services.ReportServiceDeps{Metrics: m}
	checks := map[string]handlers.Pinger{"postgres": nil, "redis": nil}
	grpcChecks := map[string]health.Pinger{}

	if db != nil {
		payloads := repository.NewPayloadRepository(db.Pool())
		deps.Payloads = payloads
		deps.Store = repository.NewReportRepository(db.Pool())
		deps.Purger = repository.NewPurger(db)
		checks["postgres"] = db
		grpcChecks["postgres"] = db
		log.Info().Msg("repositories initialized with database")
	} else {
		log.Warn().Msg("running without database - payload ingestion and history unavailable")
	}

	var rateStore apimiddleware.RateLimitStore
	if redisCache != nil {
		deps.Cache = redisCache
		rateStore = redisCache
		checks["redis"] = redisCache
		grpcChecks["redis"] = redisCache
	} else {
		memory := cache.NewMemory()
		deps.Cache = memory
		rateStore = memory
		log.Warn().Msg("running without redis - using in-process report cache")
	}

	// Streaming
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
			natsPublisher = nil
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
			defer natsPublisher.Close()
		}
	}

	var eventBus *streaming.EventBus
	if natsPublisher != nil {
		eventBus = streaming.NewEventBus(natsPublisher, log)
	} else {
		eventBus = streaming.NewEventBus(nil, log)
	}
	defer eventBus.Close()
	deps.Events = eventBus
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	// Permission rules
	classifier, err := permissions.NewLoader(log).Load(cfg.Permissions.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Permissions.RulesFile).Msg("failed to load permission rules")
	}
	log.Info().Str("version", classifier.Rules().Version).Msg("permission rules loaded")

	// Services
	normalizer := services.NewSeverityNormalizer()
	detector := services.NewPermissionDetector(classifier, log)
	scorer := services.NewScorer(log, m)
	deps.Builder = services.NewReportBuilder(services.NewExtractor(), normalizer, detector, scorer, log)
	deps.Comparator = services.NewComparator(log, m)

	reportService := services.NewReportService(services.ReportServiceConfig{
		CacheTTL: cfg.Report.CacheTTL,
		LockTTL:  cfg.Report.LockTTL,
	}, deps, log)

	h := handlers.NewHandlers(handlers.Dependencies{
		Reports:      reportService,
		Scorer:       scorer,
		Detector:     detector,
		Events:       eventBus,
		Checks:       checks,
		Version:      cfg.App.Version,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       log,
	})

	router := api.NewRouter(*cfg, h, rateStore, m, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// gRPC health
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	checker := health.NewChecker(grpcChecks, 0, log)
	checker.Register(grpcServer)
	go checker.Run(ctx)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects the optional database and cache
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		} else if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	if !cfg.Redis.Enabled {
		return db, nil, nil
	}

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		return db, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return db, redisCache, nil
}
