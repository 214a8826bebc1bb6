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

	"github.com/ybakhan/flakyping/internal/config"
	"github.com/ybakhan/flakyping/internal/handlers"
	"github.com/ybakhan/flakyping/internal/logging"
	"github.com/ybakhan/flakyping/internal/metrics"
	"github.com/ybakhan/flakyping/internal/ping"
	"github.com/ybakhan/flakyping/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 2
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	collector := metrics.New()
	cache := ping.NewCache(cfg.MaxCacheLength)
	classifier := ping.NewClassifier(cache, ping.NewRandSource(),
		ping.WithRecorder(collector),
		ping.WithLogger(logger),
	)
	h := handlers.New(classifier, logger)

	srv := server.New(
		server.Config{Port: cfg.Port, GracePeriod: cfg.GracePeriod},
		h.Routes(),
		server.WithLogger(logger),
		server.WithObserver(collector),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	if err := srv.Start(context.Background()); err != nil {
		logger.Error("Error on start HTTP server", "err", err)
		return 1
	}
	logger.Info("server running", "port", cfg.Port, "maxCacheLength", cache.Cap())

	metricsSrv := startMetrics(cfg.MetricsAddr, collector, logger)

	sig := <-shutdown
	logger.Warn("The server is shutting down", "signal", sig.String())

	if err := srv.Stop(); err != nil {
		logger.Error("Error on stop HTTP server", "err", err)
	}
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GracePeriod)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
	}

	writeSummary(os.Stdout, cache)
	return 0
}

func startMetrics(addr string, collector *metrics.Collector, logger *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	return srv
}
