package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"erauchess-api/internal/cache"
	"erauchess-api/internal/config"
	"erauchess-api/internal/credential"
	"erauchess-api/internal/handler"
	"erauchess-api/internal/logging"
	"erauchess-api/internal/metrics"
	"erauchess-api/internal/repository"
	"erauchess-api/internal/router"
	"erauchess-api/internal/service"
	"erauchess-api/internal/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.SetDefault(cfg.App.Name, cfg.App.Version, cfg.App.LogFormat, cfg.App.LogLevel)
	logger.Info("starting", "environment", cfg.App.Environment, "store", cfg.Store.Type, "cache", cfg.Cache.Type)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", cfg.Store.Type, err)
	}
	defer store.Close()

	listCache, err := openCache(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize %s cache: %w", cfg.Cache.Type, err)
	}
	defer listCache.Close()

	codec, err := session.NewCodec([]byte(cfg.Session.Secret), cfg.Session.CookieSecure)
	if err != nil {
		return err
	}
	extractor := session.NewExtractor(codec)

	pool := credential.NewPool(cfg.Digest.Workers, logger)

	var m *metrics.Metrics
	if cfg.App.Metrics {
		m = metrics.New()
		pool.OnDigest(m.ObserveDigest)
	}
	logger.Info("digest pool ready", "workers", pool.Size(), "iterations", credential.Iterations)

	// Initialize services
	authService := service.NewAuthService(store, pool, listCache, logger)
	clubService := service.NewClubService(store, listCache, cfg.Cache.TTL, logger)

	// Dependencies reach handlers through constructors only.
	r := router.New(router.Config{
		Handler:        handler.New(clubService, cfg.App.Version),
		AuthHandler:    handler.NewAuthHandler(authService, codec),
		ClubHandler:    handler.NewClubHandler(clubService),
		AdminHandler:   handler.NewAdminHandler(clubService, listCache, pool),
		Extractor:      extractor,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.Server.Origins(),
		StaticDir:      staticDir(cfg.App.StaticDir, logger),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Type {
	case "mysql":
		return repository.NewMySQLStore(cfg.Database.DSN())
	case "postgres":
		return repository.NewPostgresStore(cfg.Postgres.DSN())
	default: // sqlite
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, err
		}
		return repository.NewSQLiteStore(cfg.Store.Path)
	}
}

func openCache(cfg *config.Config, logger *slog.Logger) (cache.Cache, error) {
	if cfg.Cache.Type == "redis" {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		}, logger)
	}
	return cache.NewMemoryCache(time.Minute), nil
}

// staticDir returns dir if it exists, otherwise "" so no file server is mounted.
func staticDir(dir string, logger *slog.Logger) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("static directory not found, front end disabled", "dir", dir)
		return ""
	}
	return dir
}
