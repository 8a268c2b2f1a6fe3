package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
	"github.com/pumprand/pump-client/internal/providers/coinapi"
)

// PageQuery selects one page of coins
type PageQuery struct {
	Limit int
	MaxID *int64 // inclusive upper bound, nil for the newest page
}

// Loader pages the full coin set from the query API into the entity store
type Loader struct {
	client  coinapi.Client
	store   *entitystore.Store
	clock   adapter.Clock
	metrics *metrics.Metrics

	// mu serializes bulk loads
	mu sync.Mutex
}

// New creates a bulk loader
func New(client coinapi.Client, store *entitystore.Store, clock adapter.Clock, m *metrics.Metrics) *Loader {
	return &Loader{
		client:  client,
		store:   store,
		clock:   clock,
		metrics: m,
	}
}

// FetchPage issues a single page request. The caller merges the result.
func (l *Loader) FetchPage(ctx context.Context, q PageQuery) ([]domain.Coin, error) {
	coins, err := l.client.FetchCoins(ctx, q.Limit, q.MaxID)
	if err != nil {
		l.metrics.LoaderFailure()
		return nil, err
	}
	l.metrics.LoaderPage()
	return coins, nil
}

// FetchAll walks every page from the newest coin down, merging each page as it arrives.
// On failure the error is recorded in the store and already merged pages are kept.
func (l *Loader) FetchAll(ctx context.Context, limit int, sleep time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.BeginLoad()
	started := l.clock.Now()

	var (
		maxID *int64
		pages int
		total int
	)
	for {
		page, err := l.FetchPage(ctx, PageQuery{Limit: limit, MaxID: maxID})
		if err != nil {
			err = fmt.Errorf("failed to load coins: %w", err)
			l.store.EndLoad(err)
			return err
		}

		l.store.Merge(page)
		pages++
		total += len(page)

		if len(page) == 0 || len(page) < limit {
			break
		}
		next := page[len(page)-1].ID - 1
		if next <= 0 {
			break
		}
		maxID = &next

		if err := adapter.SleepContext(ctx, l.clock, sleep); err != nil {
			l.store.EndLoad(err)
			return err
		}
	}

	l.store.EndLoad(nil)
	logger.InfoCtx(ctx, "Loaded coins",
		zap.Int("pages", pages),
		zap.Int("coins", total),
		zap.Duration("elapsed", l.clock.Since(started)))

	return nil
}

// RefreshCoin fetches one coin and applies it as a full record
func (l *Loader) RefreshCoin(ctx context.Context, id int64) (*domain.Coin, error) {
	coin, err := l.client.FetchCoinByID(ctx, id)
	if err != nil {
		return nil, err
	}

	l.store.ApplyUpdate(domain.CoinUpdate{Type: domain.UpdateTypeCoin, Coin: coin})

	c, _ := l.store.SelectByID(id)
	return c, nil
}
