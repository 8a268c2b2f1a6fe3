package notify

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
)

// Kind is the severity of a notification
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single user-facing message
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CoinID    int64     `json:"coinId,omitempty"`
	TxHash    string    `json:"txHash,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink displays notifications
//
//go:generate mockgen -source=notify.go -destination=../mocks/notify.go -package=mocks -mock_names=Sink=MockSink,Notifier=MockNotifier
type Sink interface {
	Deliver(ctx context.Context, n Notification)
}

// Notifier is what trade flows use to surface results
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Dispatcher turns live updates and trade results into notifications and fans them out to
// every sink
type Dispatcher struct {
	store     *entitystore.Store
	clock     adapter.Clock
	threshold *big.Int
	pool      pond.Pool
	sinks     []Sink
	lanes     []pond.Pool // one single-worker subpool per sink keeps each sink in Notify order
	metrics   *metrics.Metrics
}

// NewDispatcher creates a dispatcher. A nil pool delivers synchronously.
// threshold is the weiIn value that counts as 100% graduation progress.
func NewDispatcher(store *entitystore.Store, clock adapter.Clock, threshold *big.Int, pool pond.Pool, m *metrics.Metrics, sinks ...Sink) *Dispatcher {
	if threshold == nil || threshold.Sign() <= 0 {
		threshold, _ = new(big.Int).SetString(domain.DEFAULT_GRADUATION_WEI, 10)
	}
	d := &Dispatcher{
		store:     store,
		clock:     clock,
		threshold: threshold,
		pool:      pool,
		sinks:     sinks,
		metrics:   m,
	}
	if pool != nil {
		d.lanes = make([]pond.Pool, len(sinks))
		for i := range sinks {
			d.lanes[i] = pool.NewSubpool(1)
		}
	}
	return d
}

// Dispatch maps a live update to a notification. Partial updates for coins that are not
// loaded, and plain coin updates, produce nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, u domain.CoinUpdate) {
	n, ok := d.fromUpdate(u)
	if !ok {
		return
	}
	d.Notify(ctx, n)
}

func (d *Dispatcher) fromUpdate(u domain.CoinUpdate) (Notification, bool) {
	if u.Type == domain.UpdateTypeVerifiedCoin {
		if u.Coin == nil {
			return Notification{}, false
		}
		return Notification{
			Kind:    KindInfo,
			Title:   "New coin",
			Message: fmt.Sprintf("New coin: %s (%s)", u.Coin.Name, u.Coin.Symbol),
			CoinID:  u.Coin.ID,
		}, true
	}

	if u.Patch == nil {
		return Notification{}, false
	}
	coin, ok := d.store.SelectByID(u.Patch.ID)
	if !ok {
		return Notification{}, false
	}

	n := Notification{Kind: KindInfo, CoinID: coin.ID}
	switch u.Type {
	case domain.UpdateTypeWeiInUpdated:
		if u.Patch.WeiIn == nil {
			return Notification{}, false
		}
		percent := domain.ProgressPercent(u.Patch.WeiIn.Int(), d.threshold)
		n.Title = "Graduation progress"
		n.Message = fmt.Sprintf("%s is %d%% of the way to graduation", coin.Name, percent)
	case domain.UpdateTypeGraduatedCoin:
		n.Title = "Graduated"
		n.Message = fmt.Sprintf("%s has graduated", coin.Name)
	case domain.UpdateTypeDeployedToDex:
		pool := ""
		if u.Patch.DeployedPool != nil {
			pool = *u.Patch.DeployedPool
		} else if coin.DeployedPool != nil {
			pool = *coin.DeployedPool
		}
		n.Title = "Trading on DEX"
		n.Message = fmt.Sprintf("%s is now trading at %s", coin.Name, pool)
	default:
		return Notification{}, false
	}
	return n, true
}

// Notify delivers n to every sink exactly once. Each sink sees notifications in Notify order;
// different sinks progress independently.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.clock.Now()
	}
	if n.ID == "" {
		n.ID = ulid.MustNewDefault(n.CreatedAt).String()
	}
	d.metrics.Notification(string(n.Kind))

	for i, sink := range d.sinks {
		if d.lanes == nil {
			sink.Deliver(ctx, n)
			continue
		}
		d.lanes[i].Submit(func() {
			sink.Deliver(ctx, n)
		})
	}
}

// Close waits for queued deliveries
func (d *Dispatcher) Close() {
	for _, lane := range d.lanes {
		lane.StopAndWait()
	}
	if d.pool != nil {
		d.pool.StopAndWait()
	}
}

// LogSink writes notifications to the structured log
type LogSink struct{}

// NewLogSink creates a log sink
func NewLogSink() Sink {
	return &LogSink{}
}

func (s *LogSink) Deliver(ctx context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
	}
	if n.CoinID != 0 {
		fields = append(fields, zap.Int64("coin_id", n.CoinID))
	}
	if n.TxHash != "" {
		fields = append(fields, zap.String("tx_hash", n.TxHash))
	}
	if n.URL != "" {
		fields = append(fields, zap.String("url", n.URL))
	}

	if n.Kind == KindError {
		logger.WarnCtx(ctx, n.Message, fields...)
		return
	}
	logger.InfoCtx(ctx, n.Message, fields...)
}

// Recorder keeps the most recent notifications in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

// NewRecorder creates a recorder holding at most size notifications
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 100
	}
	return &Recorder{size: size}
}

func (r *Recorder) Deliver(ctx context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if len(r.items) > r.size {
		r.items = r.items[len(r.items)-r.size:]
	}
}

// List returns the recorded notifications, oldest first
func (r *Recorder) List() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}
