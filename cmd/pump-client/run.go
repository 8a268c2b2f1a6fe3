package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/api/middleware"
	"github.com/pumprand/pump-client/internal/api/rest"
	"github.com/pumprand/pump-client/internal/api/server"
	"github.com/pumprand/pump-client/internal/feed"
	"github.com/pumprand/pump-client/internal/loader"
	"github.com/pumprand/pump-client/internal/logger"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the coin list in sync and serve the control API",
	Args:  cobra.NoArgs,
	RunE:  runClient,
}

func runClient(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.InfoCtx(ctx, "Starting pump-client",
		zap.String("api", cfg.API.BaseURL),
		zap.String("feed", cfg.Feed.URL))

	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	refresher := loader.NewRefresher(a.loader, cfg.API.RefreshSchedule, cfg.API.PageLimit, cfg.API.PageSleep)
	liveFeed := feed.New(feed.Config{
		URL:                  cfg.Feed.URL,
		ReconnectDelay:       cfg.Feed.ReconnectDelay,
		MaxReconnectAttempts: cfg.Feed.MaxReconnectAttempts,
	}, adapter.NewWebSocketDialer(cfg.Feed.HandshakeTimeout), a.store, a.dispatcher, a.clock, a.metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	// Initial load. A failure is recorded in the store and retried by the refresher.
	g.Go(func() error {
		if err := refresher.Trigger(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WarnCtx(gctx, "Initial coin load failed", zap.Error(err))
		}
		return nil
	})

	if cfg.API.RefreshSchedule != "" {
		g.Go(func() error {
			return refresher.Start(gctx)
		})
	}

	if cfg.Feed.URL != "" {
		if err := liveFeed.Connect(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				liveFeed.Disconnect()
			case <-liveFeed.Done():
				logger.WarnCtx(gctx, "Live feed stopped reconnecting",
					zap.Int("attempts", liveFeed.Attempts()))
			}
			return nil
		})
	} else {
		logger.WarnCtx(ctx, "Live feed URL not configured, relying on periodic refresh")
	}

	if cfg.Server.Enabled {
		handler := rest.NewHandler(a.store, liveFeed, cache, a.recorder, refresher)
		srv := server.New(server.Config{
			Debug:        cfg.Debug,
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			Auth: middleware.AuthConfig{
				JWTPublicKey: cfg.Auth.JWTPublicKey,
				APIKeys:      cfg.Auth.APIKeys,
			},
		}, handler, a.registry)

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			// Don't use the canceled ctx for shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("pump-client stopped")
	return err
}
