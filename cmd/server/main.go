package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/api"
	"github.com/dhruvsoni1802/wiredriver/internal/config"
	"github.com/dhruvsoni1802/wiredriver/internal/metrics"
	"github.com/dhruvsoni1802/wiredriver/internal/pool"
	"github.com/dhruvsoni1802/wiredriver/internal/session"
	"github.com/dhruvsoni1802/wiredriver/internal/storage"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

func setupLogger() *slog.Logger {
	var handler slog.Handler

	if os.Getenv("ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: false,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					t := a.Value.Time()
					return slog.String("time", t.Format(time.DateTime))
				}
				return a
			},
		})
	}

	return slog.New(handler)
}

func main() {
	slog.SetDefault(setupLogger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("wiredriver starting",
		"server_port", cfg.ServerPort,
		"default_provider", cfg.DefaultProvider,
		"grid_hubs", len(cfg.GridHubs),
		"driver_path", cfg.DriverPath)

	m := metrics.New()
	t := transport.NewHTTPTransport(cfg.TransportOptions())

	var repo *storage.SessionRepository
	if cfg.RedisEnabled {
		redisClient, err := storage.NewRedisClient(cfg.RedisOptions())
		if err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		repo = storage.NewSessionRepository(redisClient, cfg.SessionTTL)
		slog.Info("connected to Redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var balancer *pool.LoadBalancer
	if len(cfg.GridHubs) > 0 {
		hubs, err := pool.NewHubPool(cfg.GridHubs, t)
		if err != nil {
			slog.Error("failed to create hub pool", "error", err)
			os.Exit(1)
		}
		hubs.StartHealthChecks(ctx, cfg.HubHealthInterval)
		balancer = pool.NewLoadBalancer(hubs)
	}

	manager := session.NewManager(repo, balancer, session.ManagerConfig{
		MaxTotalSessions: cfg.MaxSessions,
		Credentials:      cfg.Credentials(),
		DriverPath:       cfg.DriverPath,
	}, session.Options{
		Transport: t,
		Wait:      cfg.WaitConfig(),
		Retry:     cfg.RetryPolicy(),
		Metrics:   m,
	})

	reaped, err := manager.ReapOrphans()
	if err != nil {
		slog.Warn("failed to reap orphaned sessions", "error", err)
	} else if reaped > 0 {
		slog.Info("reaped orphaned sessions", "count", reaped)
	}

	manager.StartCleanupWorker(cfg.CleanupInterval, cfg.IdleTimeout)

	server := api.NewServer(cfg.ServerPort, manager, balancer, m)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Ctrl+C is SIGINT, kill is SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("service ready", "status", "awaiting shutdown signal")

	sig := <-quit
	slog.Info("shutdown initiated", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	cancel()
	if err := manager.Close(); err != nil {
		slog.Warn("some sessions did not quit cleanly", "error", err)
	}

	slog.Info("shutdown complete")
}
