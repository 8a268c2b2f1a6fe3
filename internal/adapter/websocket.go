package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConn defines the subset of a websocket connection used by the live feed
//
//go:generate mockgen -source=websocket.go -destination=../mocks/websocket.go -package=mocks -mock_names=WebSocketConn=MockWebSocketConn,WebSocketDialer=MockWebSocketDialer
type WebSocketConn interface {
	// ReadMessage blocks until the next frame arrives
	ReadMessage() (messageType int, p []byte, err error)

	// WriteControl sends a control frame such as close
	WriteControl(messageType int, data []byte, deadline time.Time) error

	// Close closes the underlying network connection
	Close() error
}

// WebSocketDialer defines an interface for opening websocket connections
type WebSocketDialer interface {
	Dial(ctx context.Context, url string) (WebSocketConn, error)
}

// RealWebSocketDialer implements WebSocketDialer using gorilla/websocket
type RealWebSocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebSocketDialer creates a new real websocket dialer
func NewWebSocketDialer(handshakeTimeout time.Duration) WebSocketDialer {
	return &RealWebSocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (d *RealWebSocketDialer) Dial(ctx context.Context, url string) (WebSocketConn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}
