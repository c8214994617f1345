package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wlsexporter/wlsexporter/internal/config"
	"github.com/wlsexporter/wlsexporter/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	listen := flag.String("listen", ":8080", "address to serve metrics on")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("wlsexporter starting", "config", *configPath, "listen", *listen)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"host", cfg.Host(),
		"port", cfg.Port(),
		"queries", len(cfg.Queries()),
		"start_delay_seconds", cfg.StartDelaySeconds(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Give the managed server time to come up before the first scrape.
	if delay := cfg.StartDelaySeconds(); delay > 0 {
		slog.Info("delaying start", "seconds", delay)
		select {
		case <-time.After(time.Duration(delay) * time.Second):
		case <-ctx.Done():
			return
		}
	}

	handler := server.New(cfg, nil)

	// Watch the config file for hot reload; a changed file replaces the
	// whole live config, destination included.
	go func() {
		if err := config.Watch(ctx, *configPath, handler.Update); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:    *listen,
		Handler: handler,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", *listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("wlsexporter shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
