package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-optics-tracer/pkg/config"
	"github.com/df07/go-optics-tracer/pkg/store"
	"github.com/df07/go-optics-tracer/web/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	levels, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open level store", "error", err)
		os.Exit(1)
	}
	defer levels.Close()

	webServer := server.NewServer(cfg, levels)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      webServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		webServer.Shutdown()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "levelDir", cfg.LevelDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore uses Postgres when DATABASE_URL is set and memory otherwise
func openStore(ctx context.Context, cfg *config.Config) (store.LevelStore, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("using in-memory level store")
		memory, err := store.NewMemory()
		if err != nil {
			return nil, err
		}
		return memory, nil
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	postgres := store.NewPostgres(pool)
	if err := postgres.EnsureSchema(ctx); err != nil {
		postgres.Close()
		return nil, err
	}
	slog.Info("using postgres level store")
	return postgres, nil
}
