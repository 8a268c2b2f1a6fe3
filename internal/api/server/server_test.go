package server_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumprand/pump-client/internal/api/middleware"
	"github.com/pumprand/pump-client/internal/api/rest"
	"github.com/pumprand/pump-client/internal/api/server"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/feed"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/metrics"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/tradecache"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type feedStatus struct{}

func (feedStatus) State() feed.State { return feed.StateConnecting }
func (feedStatus) Attempts() int     { return 2 }

type cacheReader struct{}

func (cacheReader) State() tradecache.AppState {
	return tradecache.AppState{
		TermsAccepted: true,
		WeiIn:         map[string]string{"4": "500"},
		Balances:      map[string]tradecache.Balance{},
	}
}

// refresher merges a fixed page into the store, or fails with err
type refresher struct {
	store *entitystore.Store
	err   error
	calls int
}

func (r *refresher) Trigger(ctx context.Context) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.store.Merge([]domain.Coin{testCoin(6)})
	return nil
}

func (r *refresher) RefreshCoin(ctx context.Context, id int64) (*domain.Coin, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if id != 5 {
		return nil, fmt.Errorf("failed to fetch coin: %w", domain.ErrCoinNotFound)
	}
	coin := testCoin(5)
	coin.WeiIn = "900"
	r.store.Merge([]domain.Coin{coin})
	return &coin, nil
}

func testCoin(id int64) domain.Coin {
	return domain.Coin{
		ID:              id,
		Name:            fmt.Sprintf("Coin %d", id),
		Symbol:          "CN",
		Supply:          "1000",
		Decimals:        18,
		ContractAddress: "0x00000000000000000000000000000000000000aa",
		Creator:         "0x00000000000000000000000000000000000000bb",
		CreatedAt:       "2024-05-01T10:00:00",
		WeiIn:           "0",
	}
}

type fixture struct {
	router    http.Handler
	store     *entitystore.Store
	refresher *refresher
}

func newFixture(t *testing.T, feedStatus rest.FeedStatus, cache rest.CacheReader) *fixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := entitystore.New(m)
	store.Merge([]domain.Coin{testCoin(5), testCoin(4)})

	recorder := notify.NewRecorder(10)
	recorder.Deliver(context.Background(), notify.Notification{
		ID:        "01J0000000000000000000000",
		Kind:      notify.KindInfo,
		Title:     "New coin",
		Message:   "New coin: Coin 5 (CN)",
		CoinID:    5,
		CreatedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	})

	r := &refresher{store: store}
	handler := rest.NewHandler(store, feedStatus, cache, recorder, r)
	srv := server.New(server.Config{
		Auth: middleware.AuthConfig{APIKeys: []string{"secret-key"}},
	}, handler, reg)

	router, err := srv.Router()
	require.NoError(t, err)
	return &fixture{router: router, store: store, refresher: r}
}

func (f *fixture) do(method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestServer_ReadRoutes(t *testing.T) {
	f := newFixture(t, feedStatus{}, cacheReader{})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
		contains string
	}{
		{
			name:     "health",
			path:     "/health",
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","service":"pump-client"}`,
		},
		{
			name:     "feed",
			path:     "/api/v1/feed",
			wantCode: http.StatusOK,
			wantBody: `{"state":"connecting","attempts":2}`,
		},
		{
			name:     "cache",
			path:     "/api/v1/cache",
			wantCode: http.StatusOK,
			wantBody: `{"termsAccepted":true,"weiIn":{"4":"500"},"balances":{}}`,
		},
		{
			name:     "notifications",
			path:     "/api/v1/notifications",
			wantCode: http.StatusOK,
			contains: `"message":"New coin: Coin 5 (CN)"`,
		},
		{
			name:     "coin",
			path:     "/api/v1/coins/4",
			wantCode: http.StatusOK,
			contains: `"name":"Coin 4"`,
		},
		{
			name:     "unknown coin",
			path:     "/api/v1/coins/99",
			wantCode: http.StatusNotFound,
			wantBody: `{"code":"not_found","message":"Coin not found","details":"99"}`,
		},
		{
			name:     "invalid coin id",
			path:     "/api/v1/coins/abc",
			wantCode: http.StatusBadRequest,
			wantBody: `{"code":"bad_request","message":"Invalid coin id","details":"abc"}`,
		},
		{
			name:     "metrics",
			path:     "/metrics",
			wantCode: http.StatusOK,
			contains: "pump_entity_coins 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}
}

func TestServer_ListCoinsNewestFirst(t *testing.T) {
	f := newFixture(t, feedStatus{}, cacheReader{})

	w := f.do(http.MethodGet, "/api/v1/coins", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Less(t, strings.Index(body, `"id":5`), strings.Index(body, `"id":4`))
}

func TestServer_OptionalComponents(t *testing.T) {
	f := newFixture(t, nil, nil)

	w := f.do(http.MethodGet, "/api/v1/feed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"disconnected","attempts":0}`, w.Body.String())

	w = f.do(http.MethodGet, "/api/v1/cache", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RefreshCoins(t *testing.T) {
	f := newFixture(t, feedStatus{}, cacheReader{})

	w := f.do(http.MethodPost, "/api/v1/coins/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.refresher.calls)

	w = f.do(http.MethodPost, "/api/v1/coins/refresh", "ApiKey secret-key")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
	assert.Equal(t, 1, f.refresher.calls)

	_, ok := f.store.SelectByID(6)
	assert.True(t, ok)
}

func TestServer_RefreshCoinsUpstreamError(t *testing.T) {
	f := newFixture(t, feedStatus{}, cacheReader{})
	f.refresher.err = errors.New("connection refused")

	w := f.do(http.MethodPost, "/api/v1/coins/refresh", "ApiKey secret-key")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"code":"upstream_error","message":"Failed to refresh coins","details":"connection refused"}`, w.Body.String())
}

func TestServer_RefreshCoin(t *testing.T) {
	f := newFixture(t, feedStatus{}, cacheReader{})

	w := f.do(http.MethodPost, "/api/v1/coins/5/refresh", "ApiKey secret-key")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"weiIn":"900"`)

	coin, ok := f.store.SelectByID(5)
	require.True(t, ok)
	assert.Equal(t, domain.BigString("900"), coin.WeiIn)

	w = f.do(http.MethodPost, "/api/v1/coins/77/refresh", "ApiKey secret-key")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/v1/coins/0/refresh", "ApiKey secret-key")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_InvalidAuthConfig(t *testing.T) {
	srv := server.New(server.Config{
		Auth: middleware.AuthConfig{JWTPublicKey: "garbage"},
	}, rest.NewHandler(entitystore.New(nil), nil, nil, notify.NewRecorder(1), nil), prometheus.NewRegistry())

	_, err := srv.Router()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create authenticator")
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := server.New(server.Config{Host: "127.0.0.1"}, idleHandler(), prometheus.NewRegistry())
	require.NoError(t, srv.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept serving after Shutdown")
	}
}

func TestServer_ShutdownWhileStarting(t *testing.T) {
	for range 20 {
		srv := server.New(server.Config{Host: "127.0.0.1"}, idleHandler(), prometheus.NewRegistry())

		done := make(chan error, 1)
		go func() { done <- srv.Start() }()
		require.NoError(t, srv.Shutdown(context.Background()))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Start kept serving after Shutdown")
		}
	}
}

func idleHandler() rest.Handler {
	return rest.NewHandler(entitystore.New(nil), nil, nil, notify.NewRecorder(1), nil)
}
