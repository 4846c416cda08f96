package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fizzworks/internal/api"
	"fizzworks/internal/config"
	"fizzworks/internal/game"
	"fizzworks/internal/save"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadServerFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := save.NewFileStore(cfg.SavePath, logger)
	if err != nil {
		logger.Error("open save store failed", "err", err)
		os.Exit(1)
	}

	cat := game.NewCatalog()
	st, fresh, err := store.Load(cat)
	if err != nil {
		logger.Error("load save failed", "err", err)
		os.Exit(1)
	}
	if fresh {
		logger.Info("starting fresh game", "save", store.Path())
	} else {
		logger.Info("save loaded", "save", store.Path(), "day", st.Day, "hour", st.Hour)
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	svc := game.NewService(st, cat, store, logger, rng)

	if ticks := svc.RunOfflineCatchUp(cfg.TickEvery, cfg.MaxOfflineTicks); ticks > 0 {
		logger.Info("offline ticks replayed", "ticks", ticks, "cap", cfg.MaxOfflineTicks)
	}

	if cfg.RunOnce {
		svc.Tick()
		logger.Info("run-once tick completed")
		return
	}

	server := api.New(logger, svc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	go func() {
		ticker := time.NewTicker(cfg.TickEvery)
		defer ticker.Stop()
		logger.Info("tick loop started", "tick_every", cfg.TickEvery.String())
		for {
			select {
			case <-ctx.Done():
				if err := svc.SaveNow(); err != nil {
					logger.Warn("final save failed", "err", err)
				}
				logger.Info("tick loop shutdown")
				return
			case <-ticker.C:
				svc.Tick()
			}
		}
	}()

	logger.Info("fizzworks api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
