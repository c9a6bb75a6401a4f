package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"typerace/internal/app"
	"typerace/internal/config"
	"typerace/internal/logging"
	"typerace/internal/ports/ws"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("load env: %v", err)
	}
	cfg, err := config.ServerConfigFromEnv()
	if err != nil {
		log.Fatalf("server config: %v", err)
	}
	logger := logging.New(log.New(os.Stderr, "", log.LstdFlags), cfg.Debug)

	if cfg.GameConfigPath != "" {
		if err := config.LoadGameConfig(cfg.GameConfigPath); err != nil {
			logger.Error("main: Failed to load game config %s: %v", cfg.GameConfigPath, err)
			os.Exit(1)
		}
	}
	game := config.GetGameConfig()
	bank, err := game.SentenceBank()
	if err != nil {
		logger.Error("main: Failed to load sentences: %v", err)
		os.Exit(1)
	}

	dir := app.NewDirectory(app.Options{
		Rules: game.Rules(),
		Bank:  bank,
		Rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	srv := ws.NewServer(dir, logger, cfg)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.SweepIdleRooms(ctx, cfg.RoomIdleTTL)

	go func() {
		logger.Info("main: Listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main: Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("main: Shutdown: %v", err)
	}
	logger.Info("main: Dropped %d outbound messages", srv.Hub().Dropped())
}
