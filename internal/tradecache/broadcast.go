package tradecache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/logger"
)

const (
	DEFAULT_SUBJECT_PREFIX = "pump.appstate"
	DEFAULT_LOCAL_WORKERS  = 4
)

// Broadcaster carries state changes between instances sharing a key
//
//go:generate mockgen -source=broadcast.go -destination=../mocks/tradecache_broadcaster.go -package=mocks -mock_names=Broadcaster=MockBroadcaster
type Broadcaster interface {
	Broadcast(key string, data []byte) error
	Listen(key string, handler func(data []byte)) (stop func(), err error)
}

// NatsConfig holds the configuration for the NATS broadcaster
type NatsConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	SubjectPrefix  string
}

// NatsBroadcaster publishes state changes on core NATS subjects <prefix>.<key>
type NatsBroadcaster struct {
	nc     adapter.NatsConn
	prefix string
}

// NewNatsBroadcaster connects to NATS and creates a broadcaster
func NewNatsBroadcaster(cfg NatsConfig, connector adapter.NatsConnector) (*NatsBroadcaster, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := connector.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DEFAULT_SUBJECT_PREFIX
	}

	logger.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &NatsBroadcaster{nc: nc, prefix: prefix}, nil
}

func (b *NatsBroadcaster) subject(key string) string {
	return b.prefix + "." + key
}

func (b *NatsBroadcaster) Broadcast(key string, data []byte) error {
	if err := b.nc.Publish(b.subject(key), data); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func (b *NatsBroadcaster) Listen(key string, handler func(data []byte)) (func(), error) {
	subject := b.subject(key)
	sub, err := b.nc.Subscribe(subject, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", zap.String("subject", subject), zap.Error(err))
		}
	}, nil
}

// Close closes the NATS connection
func (b *NatsBroadcaster) Close() {
	b.nc.Close()
}

// LocalBroadcaster fans state changes out to caches in the same process. Each listener gets
// broadcasts in order on its own single-worker lane, never on the broadcasting goroutine.
type LocalBroadcaster struct {
	pool pond.Pool

	mu        sync.Mutex
	listeners map[string]map[int]*localListener
	next      int
}

type localListener struct {
	handler func(data []byte)
	lane    pond.Pool
	stopped atomic.Bool
}

// NewLocalBroadcaster creates an in-process broadcaster
func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{
		pool:      pond.NewPool(DEFAULT_LOCAL_WORKERS),
		listeners: make(map[string]map[int]*localListener),
	}
}

func (b *LocalBroadcaster) Broadcast(key string, data []byte) error {
	payload := append([]byte(nil), data...)

	b.mu.Lock()
	targets := make([]*localListener, 0, len(b.listeners[key]))
	for _, l := range b.listeners[key] {
		targets = append(targets, l)
	}
	b.mu.Unlock()

	for _, l := range targets {
		l := l
		if err := l.lane.Go(func() {
			if !l.stopped.Load() {
				l.handler(payload)
			}
		}); err != nil {
			logger.Debug("Dropped local broadcast for a stopped listener", zap.String("key", key))
		}
	}
	return nil
}

func (b *LocalBroadcaster) Listen(key string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pool.Stopped() {
		return nil, fmt.Errorf("failed to listen on %s: broadcaster closed", key)
	}

	l := &localListener{handler: handler, lane: b.pool.NewSubpool(1)}
	id := b.next
	b.next++
	if b.listeners[key] == nil {
		b.listeners[key] = make(map[int]*localListener)
	}
	b.listeners[key][id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			l.stopped.Store(true)
			b.mu.Lock()
			delete(b.listeners[key], id)
			if len(b.listeners[key]) == 0 {
				delete(b.listeners, key)
			}
			b.mu.Unlock()
			// not waited on: a queued handler may need the lock its stopping cache holds
			l.lane.Stop()
		})
	}, nil
}

// Close drops every listener and waits for deliveries already running
func (b *LocalBroadcaster) Close() {
	b.mu.Lock()
	for key, listeners := range b.listeners {
		for _, l := range listeners {
			l.stopped.Store(true)
		}
		delete(b.listeners, key)
	}
	b.mu.Unlock()

	b.pool.StopAndWait()
}
