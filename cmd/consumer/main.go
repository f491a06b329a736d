package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/config"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/consumer"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/logging"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/postgres"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/readiness"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(logging.Params{
		Service:       "pulsely-consumer",
		LogFileName:   cfg.LogFile,
		LogToStdout:   true,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	if cfg.StorageBackend != config.StoragePostgres {
		logger.Fatalf("consumer requires the %s storage backend", config.StoragePostgres)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("failed to resolve time zone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.PostgresURL, 30*time.Second)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, loc)
	readinessSvc := readiness.NewService(store, store, store,
		readiness.WithLocation(loc), readiness.WithLogger(logger.WithField("component", "readiness")))
	handler := consumer.NewWorkoutHandler(store, readinessSvc, logger.WithField("component", "workout_handler"))

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}

	go func() {
		logger.Infof("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server error: %v", err)
		}
	}()

	var wg sync.WaitGroup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})

		topicLogger := logger.WithFields(logrus.Fields{"topic": topic, "group": cfg.ConsumerGroupID})
		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(topicLogger))

		wg.Add(1)
		go func(r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()

			topicLogger.Info("consumer started")
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				topicLogger.WithError(err).Error("consumer stopped with error")
			}
		}(reader)
	}

	<-stop
	logger.Info("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("metrics server shutdown error: %v", err)
	}

	wg.Wait()
}
