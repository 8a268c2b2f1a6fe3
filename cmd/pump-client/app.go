package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/config"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/loader"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/providers/coinapi"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
	"github.com/pumprand/pump-client/internal/store"
	"github.com/pumprand/pump-client/internal/trade"
	"github.com/pumprand/pump-client/internal/tradecache"
)

// app holds the components shared by every command. Chain and cache components are opened
// on demand since read-only commands do not need them.
type app struct {
	cfg      *config.ClientConfig
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	clock    adapter.Clock
	json     adapter.JSON

	store      *entitystore.Store
	api        coinapi.Client
	loader     *loader.Loader
	recorder   *notify.Recorder
	dispatcher *notify.Dispatcher

	ethClient adapter.EthClient
	client    ethereum.TradeClient
	cache     *tradecache.Cache
	trades    *trade.Manager

	closers []func()
}

func newApp(cfg *config.ClientConfig, sinks ...notify.Sink) (*app, error) {
	threshold, ok := new(big.Int).SetString(cfg.Trade.GraduationThresholdWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid trade.graduation_threshold_wei: %q", cfg.Trade.GraduationThresholdWei)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	clock := adapter.NewClock()
	entities := entitystore.New(m)

	api := coinapi.NewRateLimitedClient(
		coinapi.NewClient(
			adapter.NewHTTPClient(cfg.API.Timeout),
			adapter.NewMimeDetector(),
			cfg.API.BaseURL,
		),
		cfg.API.RequestsPerSec,
		cfg.API.Burst,
	)

	a := &app{
		cfg:      cfg,
		registry: registry,
		metrics:  m,
		clock:    clock,
		json:     adapter.NewJSON(),
		store:    entities,
		api:      api,
		loader:   loader.New(api, entities, clock, m),
		recorder: notify.NewRecorder(100),
	}

	pool := pond.NewPool(cfg.Worker.WorkerPoolSize, pond.WithQueueSize(cfg.Worker.WorkerQueueSize))
	sinks = append(sinks, notify.NewLogSink(), a.recorder)
	a.dispatcher = notify.NewDispatcher(entities, clock, threshold, pool, m, sinks...)
	a.closers = append(a.closers, a.dispatcher.Close)

	return a, nil
}

// openCache loads the local trade cache from the configured backend
func (a *app) openCache(ctx context.Context) (*tradecache.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}

	var backend tradecache.Backend
	switch a.cfg.Cache.Backend {
	case "postgres":
		db, err := store.Open(a.cfg.Database.DSN(), store.PoolConfig{
			MaxOpenConns:    a.cfg.Database.MaxOpenConns,
			MaxIdleConns:    a.cfg.Database.MaxIdleConns,
			ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: a.cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
		backend = tradecache.NewGormBackend(db)
	default:
		backend = tradecache.NewFileBackend(adapter.NewFileSystem(), a.cfg.Cache.Dir)
	}

	// without NATS, caches opened by this process still see each other's writes
	var broadcaster tradecache.Broadcaster
	if a.cfg.NATS.URL == "" {
		local := tradecache.NewLocalBroadcaster()
		a.closers = append(a.closers, local.Close)
		broadcaster = local
	} else {
		nb, err := tradecache.NewNatsBroadcaster(tradecache.NatsConfig{
			URL:            a.cfg.NATS.URL,
			MaxReconnects:  a.cfg.NATS.MaxReconnects,
			ReconnectWait:  a.cfg.NATS.ReconnectWait,
			ConnectionName: a.cfg.NATS.ConnectionName,
			SubjectPrefix:  a.cfg.NATS.SubjectPrefix,
		}, adapter.NewNatsConnector())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, nb.Close)
		broadcaster = nb
	}

	cache := tradecache.New(a.cfg.Cache.Key, backend, broadcaster, a.clock, a.json, adapter.NewJCS())
	if err := cache.Load(ctx); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cache.Close)

	a.cache = cache
	return cache, nil
}

// openTrades connects to the execution layer and creates the trade manager
func (a *app) openTrades(ctx context.Context) (*trade.Manager, error) {
	if a.trades != nil {
		return a.trades, nil
	}

	client, err := a.openChain(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	a.trades = trade.NewManager(client, a.store, cache, a.dispatcher, a.clock, a.metrics, trade.Config{
		SlippageBps: a.cfg.Trade.SlippageBps,
		Deadline:    a.cfg.Trade.Deadline,
	})
	a.closers = append(a.closers, a.trades.Close)
	return a.trades, nil
}

// openChain dials the RPC node and creates the trade client
func (a *app) openChain(ctx context.Context) (ethereum.TradeClient, error) {
	if a.client != nil {
		return a.client, nil
	}

	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, a.cfg.Ethereum.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}
	a.closers = append(a.closers, ethClient.Close)

	client, err := ethereum.NewTradeClient(ethereum.Config{
		ChainID:       a.cfg.Ethereum.ChainID,
		PrivateKey:    a.cfg.Ethereum.PrivateKey,
		PumpAddress:   a.cfg.Ethereum.PumpAddress,
		RouterAddress: a.cfg.Ethereum.RouterAddress,
		WETHAddress:   a.cfg.Ethereum.WETHAddress,
		ExplorerURL:   a.cfg.Ethereum.ExplorerURL,
		PollInterval:  a.cfg.Ethereum.ConfirmationPollInterval,
	}, ethClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade client: %w", err)
	}

	a.ethClient = ethClient
	a.client = client
	return client, nil
}

// Close releases components in reverse order of creation
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	logger.Debug("Closed pump-client components", zap.Int("count", len(a.closers)))
}
