package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/analytics"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/api"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/auth"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/config"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/logging"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/outbox"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/memory"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/postgres"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/planner"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/readiness"
	httptransport "github.com/divyanshukashyap0/Pulsely-AI/internal/transport/http"
)

// repositories is satisfied by both storage backends.
type repositories interface {
	domain.RecoveryRepository
	domain.ReadinessRepository
	domain.WorkoutHistoryRepository
	domain.ExerciseCatalog
	domain.PlanRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(logging.Params{
		Service:       "pulsely-api",
		LogFileName:   cfg.LogFile,
		LogToStdout:   true,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("failed to resolve time zone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store      repositories
		dispatcher *outbox.Dispatcher
	)
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart and no events are published")
		store = memory.NewSeededStore()
	default:
		pool, err := postgres.Connect(ctx, cfg.PostgresURL, 30*time.Second)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Fatalf("failed to apply migrations: %v", err)
		}
		store = postgres.NewStore(pool, loc)

		outboxLogger := logger.WithField("component", "outbox")
		producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: cfg.KafkaBatchTimeout,
			WriteTimeout: cfg.KafkaWriteTimeout,
		}, outboxLogger)
		defer producer.Close()

		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL, cfg.SchemaRegistryTimeout, outboxLogger)
		schemaIDs, err := registry.RegisterCatalog(ctx)
		if err != nil {
			// The dispatcher resolves missing subjects lazily on first delivery.
			outboxLogger.WithError(err).Warn("schema catalog registration incomplete")
		}
		dispatcher = outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize,
			outbox.WithLogger(outboxLogger), outbox.WithSchemaIDs(schemaIDs))
		go dispatcher.Start(ctx)
	}

	readinessSvc := readiness.NewService(store, store, store,
		readiness.WithLocation(loc), readiness.WithLogger(logger.WithField("component", "readiness")))
	plannerSvc := planner.NewService(store, store, store,
		planner.WithLocation(loc), planner.WithLogger(logger.WithField("component", "planner")))
	analyticsSvc := analytics.NewService(store, analytics.WithLocation(loc))

	serverCfg := httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		CORSOrigin:   cfg.CORSOrigin,
	}
	router := httptransport.NewRouter()
	api.NewHandler(readinessSvc, plannerSvc, analyticsSvc, logger).RegisterRoutes(router)
	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	server := httptransport.NewServer(serverCfg, httptransport.Wrap(serverCfg, logger, authMiddleware.Wrap(router)))

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		logger.Infof("api metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server error: %v", err)
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.HTTPAddress,
			"storage": cfg.StorageBackend,
			"tz":      loc.String(),
		}).Info("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("metrics server shutdown error: %v", err)
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
