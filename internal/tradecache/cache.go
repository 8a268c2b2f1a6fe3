package tradecache

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
)

// Cache is the local trade cache: terms acceptance, weiIn paid per coin and cached balances.
//
// Writes are persisted through a Backend, published to in-process subscribers, and broadcast to
// other instances sharing the same key. Writes that leave the canonical document unchanged are
// skipped entirely.
type Cache struct {
	key         string
	instanceID  string
	backend     Backend
	broadcaster Broadcaster
	clock       adapter.Clock
	json        adapter.JSON
	jcs         adapter.JCS

	// writeMu serializes writers and remote replacements
	writeMu  sync.Mutex
	mu       sync.RWMutex
	state    AppState
	document []byte // canonical form of state as last persisted or received

	subMu   sync.RWMutex
	subs    map[int]func(Event)
	nextSub int

	stopListen func()
}

// New creates a cache for key. A nil broadcaster keeps the cache private to this instance.
func New(
	key string,
	backend Backend,
	broadcaster Broadcaster,
	clock adapter.Clock,
	jsonAdapter adapter.JSON,
	jcsAdapter adapter.JCS,
) *Cache {
	if key == "" {
		key = DEFAULT_KEY
	}
	return &Cache{
		key:         key,
		instanceID:  uuid.NewString(),
		backend:     backend,
		broadcaster: broadcaster,
		clock:       clock,
		json:        jsonAdapter,
		jcs:         jcsAdapter,
		state:       emptyState(),
		subs:        make(map[int]func(Event)),
	}
}

// Key returns the namespaced persistence key
func (c *Cache) Key() string {
	return c.key
}

// Load reads the persisted state and starts listening for other instances.
// A corrupt document is logged and replaced by the empty state.
func (c *Cache) Load(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	data, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to load trade cache: %w", err)
	}

	state := emptyState()
	if ok {
		var loaded AppState
		if err := c.json.Unmarshal(data, &loaded); err != nil {
			logger.WarnCtx(ctx, "Ignoring corrupt trade cache",
				zap.String("key", c.key),
				zap.Error(err))
		} else {
			state = loaded.clone()
		}
	}

	document, err := c.json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal trade cache: %w", err)
	}

	c.mu.Lock()
	c.state = state
	c.document = document
	c.mu.Unlock()

	if c.broadcaster != nil && c.stopListen == nil {
		stop, err := c.broadcaster.Listen(c.key, c.onBroadcast)
		if err != nil {
			return fmt.Errorf("failed to listen for trade cache updates: %w", err)
		}
		c.stopListen = stop
	}

	logger.DebugCtx(ctx, "Loaded trade cache",
		zap.String("key", c.key),
		zap.Int("wei_in_entries", len(state.WeiIn)),
		zap.Int("balance_entries", len(state.Balances)))
	return nil
}

// Close stops listening for other instances
func (c *Cache) Close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
}

// State returns a copy of the current state
func (c *Cache) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

func (c *Cache) TermsAccepted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.TermsAccepted
}

func (c *Cache) SetTermsAccepted(ctx context.Context, accepted bool) error {
	return c.update(ctx, func(s *AppState) {
		s.TermsAccepted = accepted
	})
}

// WeiIn returns the cached weiIn of a coin, or nil when none is cached
func (c *Cache) WeiIn(coinID int64) *big.Int {
	c.mu.RLock()
	raw, ok := c.state.WeiIn[domain.CoinKey(coinID)]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil
	}
	return v
}

func (c *Cache) SetWeiIn(ctx context.Context, coinID int64, weiIn *big.Int) error {
	value := "0"
	if weiIn != nil {
		value = weiIn.String()
	}
	return c.update(ctx, func(s *AppState) {
		s.WeiIn[domain.CoinKey(coinID)] = value
	})
}

// Balance returns the cached token balance of a coin
func (c *Cache) Balance(coinID int64) (*Balance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.state.Balances[domain.CoinKey(coinID)]
	if !ok {
		return nil, false
	}
	return &b, true
}

// SetBalance caches a token balance stamped with the current time
func (c *Cache) SetBalance(ctx context.Context, coinID int64, units *big.Int) error {
	balance := Balance{
		BalanceUnits: string(domain.NewBigString(units)),
		LastUpdated:  c.clock.Now().Unix(),
	}
	return c.update(ctx, func(s *AppState) {
		s.Balances[domain.CoinKey(coinID)] = balance
	})
}

func (c *Cache) DeleteBalance(ctx context.Context, coinID int64) error {
	return c.update(ctx, func(s *AppState) {
		delete(s.Balances, domain.CoinKey(coinID))
	})
}

// Subscribe registers fn to be called after every state change, local or remote.
// Callbacks run synchronously in change order and must not write to the cache.
func (c *Cache) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cache) update(ctx context.Context, mutate func(*AppState)) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	next := c.state.clone()
	current := c.document
	c.mu.RUnlock()

	mutate(&next)

	document, err := c.json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal trade cache: %w", err)
	}

	if current != nil {
		same, err := c.jcs.Equal(current, document)
		if err != nil {
			return fmt.Errorf("failed to canonicalize trade cache: %w", err)
		}
		if same {
			return nil
		}
	}

	if err := c.backend.Put(ctx, c.key, document); err != nil {
		return fmt.Errorf("failed to persist trade cache: %w", err)
	}

	c.mu.Lock()
	c.state = next
	c.document = document
	c.mu.Unlock()

	c.publish(Event{NewState: next.clone()})
	c.broadcast(ctx, next)
	return nil
}

func (c *Cache) broadcast(ctx context.Context, state AppState) {
	if c.broadcaster == nil {
		return
	}

	data, err := c.json.Marshal(envelope{InstanceID: c.instanceID, NewState: state})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to marshal trade cache broadcast", zap.Error(err))
		return
	}
	if err := c.broadcaster.Broadcast(c.key, data); err != nil {
		logger.WarnCtx(ctx, "Failed to broadcast trade cache update",
			zap.String("key", c.key),
			zap.Error(err))
	}
}

// onBroadcast replaces the local state with one written by another instance
func (c *Cache) onBroadcast(data []byte) {
	var env envelope
	if err := c.json.Unmarshal(data, &env); err != nil {
		logger.Warn("Dropped malformed trade cache broadcast", zap.Error(err))
		return
	}
	if env.InstanceID == c.instanceID {
		return
	}

	state := env.NewState.clone()
	document, err := c.json.Marshal(state)
	if err != nil {
		logger.Warn("Failed to marshal trade cache broadcast", zap.Error(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.state = state
	c.document = document
	c.mu.Unlock()

	logger.Debug("Applied trade cache update from another instance",
		zap.String("key", c.key),
		zap.String("instance_id", env.InstanceID))
	c.publish(Event{NewState: state.clone()})
}

func (c *Cache) publish(e Event) {
	c.subMu.RLock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
