package trade

import (
	"context"
	"fmt"
	"sync"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
)

type intentKey struct {
	coinID int64
	side   domain.Side
}

// Manager owns one Machine per (coin, side). Intents are independent of each other.
type Manager struct {
	client   ethereum.TradeClient
	store    *entitystore.Store
	cache    Cache
	notifier notify.Notifier
	clock    adapter.Clock
	metrics  *metrics.Metrics
	cfg      Config

	// previews run on ctx and are tracked by wg
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	machines map[intentKey]*Machine
}

// NewManager creates a trade manager. cache may be nil.
func NewManager(
	client ethereum.TradeClient,
	store *entitystore.Store,
	cache Cache,
	notifier notify.Notifier,
	clock adapter.Clock,
	m *metrics.Metrics,
	cfg Config,
) *Manager {
	if cfg.SlippageBps == 0 {
		cfg.SlippageBps = domain.DEFAULT_SLIPPAGE_BPS
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		client:   client,
		store:    store,
		cache:    cache,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		machines: make(map[intentKey]*Machine),
	}
}

// Intent returns the machine for the coin and side, creating it on first use
func (m *Manager) Intent(coinID int64, side domain.Side) (*Machine, error) {
	if !domain.IsValidSide(side) {
		return nil, fmt.Errorf("invalid side: %s", side)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := intentKey{coinID: coinID, side: side}
	if machine, ok := m.machines[key]; ok {
		return machine, nil
	}

	machine := &Machine{
		coinID: coinID,
		side:   side,
		mgr:    m,
		log:    logger.WithTrade(logger.TradeInfo{CoinID: coinID, Side: string(side)}),
		state:  State{Phase: PhaseIdle},
		subs:   make(map[int]func(State)),
	}
	m.machines[key] = machine
	return machine, nil
}

// Close cancels in-flight previews and waits for them to return
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
