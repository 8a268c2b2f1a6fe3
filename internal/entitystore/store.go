package entitystore

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
)

// Change describes one entity write that altered at least one field
type Change struct {
	ID       string
	Fields   []string // JSON names of the top-level fields that changed
	Inserted bool
	Source   Source
}

// Source tells where a write came from
type Source string

const (
	SourceServer     Source = "server"
	SourceOptimistic Source = "optimistic"
)

// TradeView is the projection of a coin that trade flows depend on.
// It is comparable, so dependents can detect changes with ==.
type TradeView struct {
	Graduated    bool
	WeiIn        domain.BigString
	DeployedPool string
}

// Store is an in-memory, normalized cache of coins keyed by id.
//
// Every entity is held as an immutable snapshot: writes that change a field publish a new
// pointer, writes that change nothing keep the old one. Selectors therefore return the same
// reference until something they expose actually changed.
type Store struct {
	mu        sync.RWMutex
	entities  map[string]*domain.Coin
	revisions map[string]uint64
	all       []*domain.Coin // sorted by id desc, nil when stale
	loading   bool
	err       error

	// writeMu serializes writers so subscribers observe changes in write order
	writeMu sync.Mutex
	subMu   sync.RWMutex
	subs    map[int]func(Change)
	nextSub int

	metrics *metrics.Metrics
}

// New creates an empty store
func New(m *metrics.Metrics) *Store {
	return &Store{
		entities:  make(map[string]*domain.Coin),
		revisions: make(map[string]uint64),
		subs:      make(map[int]func(Change)),
		metrics:   m,
	}
}

// Merge upserts full coin records by id, as returned by the bulk loader.
// Existing records are shallow-merged: incoming top-level fields replace the current ones,
// except weiIn which the query API omits and is kept when absent.
func (s *Store) Merge(coins []domain.Coin) {
	if len(coins) == 0 {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	changes := make([]Change, 0, len(coins))

	s.mu.Lock()
	for i := range coins {
		if c, ok := s.upsertLocked(&coins[i]); ok {
			changes = append(changes, c)
		}
	}
	s.metrics.SetEntityCount(len(s.entities))
	s.mu.Unlock()

	s.publish(changes)
}

// ApplyUpdate applies a live update.
// Full variants insert or replace; partial variants merge their explicit fields into an
// existing record and are dropped when the id is unknown. It returns false when dropped.
func (s *Store) ApplyUpdate(u domain.CoinUpdate) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		change  Change
		changed bool
	)

	s.mu.Lock()
	switch {
	case u.Type.IsFull() && u.Coin != nil:
		change, changed = s.upsertLocked(u.Coin)
	case u.Patch != nil:
		patch := *u.Patch
		if u.Type == domain.UpdateTypeGraduatedCoin {
			graduated := true
			patch.Graduated = &graduated
		}

		key := domain.CoinKey(patch.ID)
		if _, ok := s.entities[key]; !ok {
			s.mu.Unlock()
			s.metrics.EntityUpdateDropped(string(u.Type))
			logger.Debug("Dropped partial update for unknown coin",
				zap.String("type", string(u.Type)),
				zap.Int64("coin_id", patch.ID))
			return false
		}
		s.revisions[key]++
		change, changed = s.patchLocked(key, &patch, SourceServer)
	default:
		s.mu.Unlock()
		return false
	}
	s.metrics.SetEntityCount(len(s.entities))
	s.mu.Unlock()

	s.metrics.EntityUpdateApplied(string(u.Type))
	if changed {
		s.publish([]Change{change})
	}
	return true
}

// ApplyOptimistic applies a locally derived patch if no server write touched the coin since
// baseRevision was read. A server write always wins over a pending optimistic one.
func (s *Store) ApplyOptimistic(patch domain.CoinPatch, baseRevision uint64) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := domain.CoinKey(patch.ID)

	s.mu.Lock()
	if _, ok := s.entities[key]; !ok || s.revisions[key] != baseRevision {
		s.mu.Unlock()
		logger.Debug("Discarded optimistic write superseded by server",
			zap.Int64("coin_id", patch.ID),
			zap.Uint64("base_revision", baseRevision))
		return false
	}
	change, changed := s.patchLocked(key, &patch, SourceOptimistic)
	s.mu.Unlock()

	if changed {
		s.publish([]Change{change})
	}
	return true
}

// Revision returns the number of server writes that touched the coin
func (s *Store) Revision(id int64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[domain.CoinKey(id)]
}

// SelectByID returns the coin snapshot for id
func (s *Store) SelectByID(id int64) (*domain.Coin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entities[domain.CoinKey(id)]
	return c, ok
}

// SelectTradeView returns the graduated/weiIn/deployedPool projection of a coin
func (s *Store) SelectTradeView(id int64) (TradeView, bool) {
	c, ok := s.SelectByID(id)
	if !ok {
		return TradeView{}, false
	}
	return tradeView(c), true
}

// SelectAll returns every coin ordered by id descending.
// The returned slice is shared and must not be modified; it is the same slice until a write
// changes or inserts an entity.
func (s *Store) SelectAll() []*domain.Coin {
	s.mu.RLock()
	all := s.all
	s.mu.RUnlock()
	if all != nil {
		return all
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.all == nil {
		all := make([]*domain.Coin, 0, len(s.entities))
		for _, c := range s.entities {
			all = append(all, c)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		s.all = all
	}
	return s.all
}

// SelectVisible returns SelectAll without hidden coins
func (s *Store) SelectVisible() []*domain.Coin {
	all := s.SelectAll()
	visible := make([]*domain.Coin, 0, len(all))
	for _, c := range all {
		if !c.Hidden {
			visible = append(visible, c)
		}
	}
	return visible
}

// SelectLoading reports whether a bulk load is running
func (s *Store) SelectLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SelectError returns the last bulk load error
func (s *Store) SelectError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// SetLoading sets the bulk load flag
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records the last bulk load error
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// BeginLoad marks a bulk load as running and clears the last error
func (s *Store) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = nil
}

// EndLoad marks the bulk load as finished, recording err if any
func (s *Store) EndLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = err
}

// Len returns the number of coins held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Subscribe registers fn to be called after every write that changed an entity.
// Callbacks run synchronously in write order and must not write to the store.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(changes []Change) {
	if len(changes) == 0 {
		return
	}

	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
}

// upsertLocked writes a full record. Caller holds mu.
func (s *Store) upsertLocked(incoming *domain.Coin) (Change, bool) {
	key := incoming.Key()
	s.revisions[key]++

	existing, ok := s.entities[key]
	if !ok {
		next := incoming.Clone()
		normalize(next)
		s.entities[key] = next
		s.all = nil
		return Change{ID: key, Inserted: true, Source: SourceServer}, true
	}

	next := incoming.Clone()
	if next.WeiIn == "" {
		next.WeiIn = existing.WeiIn
	}
	normalize(next)

	fields := diff(existing, next)
	if len(fields) == 0 {
		return Change{}, false
	}
	s.entities[key] = next
	s.all = nil
	return Change{ID: key, Fields: fields, Source: SourceServer}, true
}

// patchLocked merges the explicit fields of a patch into an existing record. Caller holds mu.
func (s *Store) patchLocked(key string, patch *domain.CoinPatch, source Source) (Change, bool) {
	existing := s.entities[key]
	next := existing.Clone()

	if patch.WeiIn != nil {
		next.WeiIn = *patch.WeiIn
	}
	if patch.Graduated != nil {
		next.Graduated = *patch.Graduated
	}
	if patch.DeployedPool != nil {
		pool := *patch.DeployedPool
		next.DeployedPool = &pool
	}
	normalize(next)

	fields := diff(existing, next)
	if len(fields) == 0 {
		return Change{}, false
	}
	s.entities[key] = next
	s.all = nil
	return Change{ID: key, Fields: fields, Source: source}, true
}

// normalize keeps deployedPool consistent with graduated
func normalize(c *domain.Coin) {
	if c.DeployedPool != nil && *c.DeployedPool != "" {
		c.Graduated = true
	}
}

func tradeView(c *domain.Coin) TradeView {
	v := TradeView{
		Graduated: c.Graduated,
		WeiIn:     c.WeiIn,
	}
	if c.DeployedPool != nil {
		v.DeployedPool = *c.DeployedPool
	}
	return v
}
