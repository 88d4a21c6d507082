// Package main provides the KNMI forecast extraction HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/backend"
	kafkaadapter "go.ngs.io/knmi-forecast/internal/adapter/kafka"
	"go.ngs.io/knmi-forecast/internal/config"
	httpHandler "go.ngs.io/knmi-forecast/internal/http"
	"go.ngs.io/knmi-forecast/internal/observability"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: search ., ./config, $HOME/.knmi-forecast)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("knmi-forecast version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	metrics := observability.NewMetrics()

	catalog, err := usecase.NewCatalog(cfg.Datasets)
	if err != nil {
		logger.Error("invalid dataset catalog", "error", err)
		os.Exit(1)
	}
	opener, err := backend.New(cfg.Extraction.Backend, cfg.Extraction.TempDir)
	if err != nil {
		logger.Error("invalid extraction backend", "error", err)
		os.Exit(1)
	}

	var sink usecase.SampleSink
	var writer *kafkaadapter.Writer
	if cfg.Kafka.Enabled {
		writer = kafkaadapter.NewWriter(cfg.Kafka, logger)
		sink = writer
		logger.Info("kafka sample sink enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("kafka sample sink disabled")
	}

	extractor := usecase.NewExtractor(logger, metrics, nil, cfg.FixedAxisPolicy())
	forecastUC := usecase.NewForecastUseCase(catalog, opener, extractor, sink, logger, metrics)

	gin.SetMode(cfg.Server.GinMode)
	router := httpHandler.SetupRouter(forecastUC, cfg.Server, logger)

	srv := &http.Server{
		Addr:              cfg.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server starting",
			"addr", srv.Addr,
			"backend", cfg.Extraction.Backend,
			"datasets", len(catalog.Datasets()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
