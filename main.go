package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/room4-2/OrderDesk/catalog"
	"github.com/room4-2/OrderDesk/config"
	"github.com/room4-2/OrderDesk/dialog"
	"github.com/room4-2/OrderDesk/messages"
	"github.com/room4-2/OrderDesk/metrics"
	"github.com/room4-2/OrderDesk/server"
	"github.com/room4-2/OrderDesk/session"
	"github.com/room4-2/OrderDesk/speech"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, offers, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Int("orders", cat.Len()), zap.Int("offers", offers.Len()))

	// The mirror is optional: calls keep working without Redis.
	var mirror session.Mirror
	if cfg.RedisURL != "" {
		m, err := session.NewRedisMirror(ctx, cfg.RedisURL, cfg.RedisPassword, 2*cfg.SessionTimeout, logger)
		if err != nil {
			logger.Warn("redis unavailable, session mirror disabled", zap.Error(err))
		} else {
			mirror = m
		}
	}

	store := session.NewStore(cfg.SessionTimeout, mirror, logger)
	engine := dialog.NewEngine(cat, offers, speech.NewClassifier(), store, logger)
	recorder := metrics.NewRecorder(store.Len)
	hub := server.NewHub(cfg.AllowedOrigins, logger)

	engine.OnEvent = func(ev messages.Event) {
		recorder.Observe(ev)
		hub.Publish(ev)
	}

	srv := server.NewTwilioServer(cfg, engine, store, hub, recorder.Handler(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.StartCleanupRoutine(gctx, cfg.CleanupInterval, engine.Evicted)
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		store.Shutdown()
		return err
	})

	return g.Wait()
}
