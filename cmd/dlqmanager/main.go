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

	"github.com/divyanshukashyap0/Pulsely-AI/internal/config"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/logging"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/outbox"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/postgres"
)

const (
	defaultDLQBatchSize = 50
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(logging.Params{
		Service:       "pulsely-dlqmanager",
		LogFileName:   cfg.LogFile,
		LogToStdout:   true,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.PostgresURL, 30*time.Second)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay, logger.WithField("component", "dlq"))

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		logger.Infof("dlq manager metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("dlq manager received shutdown signal")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"interval":    cfg.DLQPollInterval,
		"max_retries": cfg.DLQMaxRetries,
	}).Info("dlq manager started")
	manager.Run(ctx, cfg.DLQPollInterval, defaultDLQBatchSize)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("metrics server shutdown error: %v", err)
	}
}
