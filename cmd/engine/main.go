package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piyushdaiya/dotescrow-kit/internal/config"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	config.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
	logrus.Info("starting watchlist engine")

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("watchlist engine stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := NewMetrics()
	if n, err := store.Count(ctx); err == nil {
		metrics.flaggedAccounts.Set(float64(n))
	}

	if cfg.WatchlistURL != "" {
		syncer := NewSyncer(store, cfg.WatchlistURL, cfg.SyncInterval, cfg.HTTPTimeout, metrics)
		go syncer.Run(ctx)
	} else {
		logrus.Warn("WATCHLIST_URL not set, serving the stored watchlist only")
	}

	limiter := NewRateLimiter(RateLimit{
		RequestsPerMinute: cfg.RateLimitRPM,
		Burst:             cfg.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewServer(store, metrics, limiter).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "db": cfg.DBPath}).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
