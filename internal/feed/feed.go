package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
)

const (
	DEFAULT_RECONNECT_DELAY        = 3 * time.Second
	DEFAULT_MAX_RECONNECT_ATTEMPTS = 5
	CLOSE_WRITE_TIMEOUT            = time.Second
	MAX_LOGGED_PAYLOAD             = 256
)

// State is the connection state of the feed
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateClosing      State = "closing"
)

// AllStates lists every feed state
var AllStates = []string{
	string(StateDisconnected),
	string(StateConnecting),
	string(StateConnected),
	string(StateClosing),
}

// Dispatcher receives every update after it was applied to the store
//
//go:generate mockgen -source=feed.go -destination=../mocks/feed.go -package=mocks -mock_names=Dispatcher=MockDispatcher
type Dispatcher interface {
	Dispatch(ctx context.Context, update domain.CoinUpdate)
}

// Config holds the configuration for the live feed
type Config struct {
	URL                  string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// Feed keeps a websocket subscription to the coin update stream and applies every
// update to the entity store in receipt order
type Feed struct {
	config     Config
	dialer     adapter.WebSocketDialer
	store      *entitystore.Store
	dispatcher Dispatcher
	clock      adapter.Clock
	metrics    *metrics.Metrics

	mu       sync.Mutex
	state    State
	attempts int
	stopped  bool
	started  bool
	conn     adapter.WebSocketConn
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a disconnected feed
func New(cfg Config, dialer adapter.WebSocketDialer, store *entitystore.Store, dispatcher Dispatcher, clock adapter.Clock, m *metrics.Metrics) *Feed {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DEFAULT_RECONNECT_DELAY
	}
	if cfg.MaxReconnectAttempts < 0 {
		cfg.MaxReconnectAttempts = DEFAULT_MAX_RECONNECT_ATTEMPTS
	}

	f := &Feed{
		config:     cfg,
		dialer:     dialer,
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
		metrics:    m,
		state:      StateDisconnected,
		done:       make(chan struct{}),
	}
	m.SetFeedState(string(StateDisconnected), AllStates)
	return f
}

// Connect starts the connection loop in the background.
// The loop reconnects after every close until Disconnect is called, ctx is done or the
// reconnect budget is exhausted.
func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return fmt.Errorf("feed already started")
	}
	if f.stopped {
		f.mu.Unlock()
		return fmt.Errorf("feed is stopped")
	}
	f.started = true
	ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()

	go f.run(ctx)
	return nil
}

// Disconnect stops the feed for good. It is safe to call more than once.
func (f *Feed) Disconnect() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	conn := f.conn
	cancel := f.cancel
	started := f.started
	if started && f.state != StateDisconnected {
		f.setStateLocked(StateClosing)
	}
	f.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, f.clock.Now().Add(CLOSE_WRITE_TIMEOUT))
		_ = conn.Close()
	}
	if cancel != nil {
		cancel()
	}
	if !started {
		close(f.done)
	}
}

// State returns the current connection state
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Attempts returns the number of reconnects since the last successful connect
func (f *Feed) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// Done is closed once the feed stopped reconnecting, either on Disconnect or after giving up
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

func (f *Feed) run(ctx context.Context) {
	defer close(f.done)
	defer f.setState(StateDisconnected)

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.config.ReconnectDelay), uint64(f.config.MaxReconnectAttempts)),
		ctx)

	for {
		if f.isStopped() || ctx.Err() != nil {
			return
		}

		f.setState(StateConnecting)
		conn, err := f.dialer.Dial(ctx, f.config.URL)
		if err != nil {
			if f.isStopped() {
				return
			}
			logger.WarnCtx(ctx, "Failed to connect to live feed", zap.String("url", f.config.URL), zap.Error(err))
		} else {
			if !f.attach(conn) {
				_ = conn.Close()
				return
			}
			b.Reset()
			logger.InfoCtx(ctx, "Connected to live feed", zap.String("url", f.config.URL))

			err = f.readLoop(ctx, conn)
			f.detach(conn)

			if f.isStopped() {
				logger.InfoCtx(ctx, "Live feed disconnected")
				return
			}
			logger.WarnCtx(ctx, "Live feed connection closed", zap.Error(err))
		}

		next := b.NextBackOff()
		if next == backoff.Stop {
			if ctx.Err() == nil {
				logger.ErrorCtx(ctx, fmt.Errorf("live feed gave up after %d reconnect attempts", f.Attempts()),
					zap.String("url", f.config.URL))
			}
			return
		}

		f.mu.Lock()
		f.attempts++
		attempt := f.attempts
		f.setStateLocked(StateDisconnected)
		f.mu.Unlock()
		f.metrics.FeedReconnectAttempt()

		logger.InfoCtx(ctx, "Reconnecting to live feed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.config.MaxReconnectAttempts),
			zap.Duration("delay", next))

		if err := adapter.SleepContext(ctx, f.clock, next); err != nil {
			return
		}
	}
}

// readLoop applies updates until the connection fails
func (f *Feed) readLoop(ctx context.Context, conn adapter.WebSocketConn) error {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var update domain.CoinUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			f.metrics.FeedMalformedMessage()
			logger.WarnCtx(ctx, "Dropped malformed live feed message",
				zap.Error(err),
				zap.ByteString("payload", truncate(data)))
			continue
		}

		f.store.ApplyUpdate(update)
		if f.dispatcher != nil {
			f.dispatcher.Dispatch(ctx, update)
		}
	}
}

// attach publishes a fresh connection unless the feed was stopped while dialing
func (f *Feed) attach(conn adapter.WebSocketConn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return false
	}
	f.conn = conn
	f.attempts = 0
	f.setStateLocked(StateConnected)
	return true
}

func (f *Feed) detach(conn adapter.WebSocketConn) {
	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()

	if err := conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		logger.Debug("Failed to close live feed connection", zap.Error(err))
	}
}

func (f *Feed) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *Feed) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setStateLocked(s)
}

func (f *Feed) setStateLocked(s State) {
	if f.state == s {
		return
	}
	f.state = s
	f.metrics.SetFeedState(string(s), AllStates)
}

func truncate(data []byte) []byte {
	if len(data) > MAX_LOGGED_PAYLOAD {
		return data[:MAX_LOGGED_PAYLOAD]
	}
	return data
}
