package loader_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/loader"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/mocks"
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

func coins(ids ...int64) []domain.Coin {
	out := make([]domain.Coin, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Coin{ID: id, Name: "coin", Symbol: "C", Decimals: 18})
	}
	return out
}

func readyClock(ctrl *gomock.Controller) *mocks.MockClock {
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()
	clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Unix(1700000000, 0)
		return ch
	}).AnyTimes()
	return clock
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestLoader_FetchAll_Pages(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		pages         [][]domain.Coin
		expectedMaxID []*int64
		expectedIDs   []int64
	}{
		{
			name:          "short last page stops",
			limit:         3,
			pages:         [][]domain.Coin{coins(5, 4, 3), coins(2)},
			expectedMaxID: []*int64{nil, int64Ptr(2)},
			expectedIDs:   []int64{5, 4, 3, 2},
		},
		{
			name:          "next max id at zero stops",
			limit:         3,
			pages:         [][]domain.Coin{coins(3, 2, 1)},
			expectedMaxID: []*int64{nil},
			expectedIDs:   []int64{3, 2, 1},
		},
		{
			name:          "empty first page",
			limit:         3,
			pages:         [][]domain.Coin{{}},
			expectedMaxID: []*int64{nil},
			expectedIDs:   []int64{},
		},
		{
			name:          "full pages until exhausted",
			limit:         2,
			pages:         [][]domain.Coin{coins(6, 5), coins(4, 3), coins(2, 1)},
			expectedMaxID: []*int64{nil, int64Ptr(4), int64Ptr(2)},
			expectedIDs:   []int64{6, 5, 4, 3, 2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockCoinAPIClient(ctrl)
			store := entitystore.New(nil)
			l := loader.New(client, store, readyClock(ctrl), nil)

			var calls []*gomock.Call
			for i, page := range tt.pages {
				calls = append(calls, client.EXPECT().
					FetchCoins(gomock.Any(), tt.limit, tt.expectedMaxID[i]).
					Return(page, nil).
					Times(1))
			}
			gomock.InOrder(calls...)

			err := l.FetchAll(context.Background(), tt.limit, time.Millisecond)

			require.NoError(t, err)
			assert.False(t, store.SelectLoading())
			assert.NoError(t, store.SelectError())

			all := store.SelectAll()
			ids := make([]int64, 0, len(all))
			for _, c := range all {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestLoader_FetchAll_ErrorKeepsMergedPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCoinAPIClient(ctrl)
	store := entitystore.New(nil)
	l := loader.New(client, store, readyClock(ctrl), nil)

	statusErr := &adapter.HTTPStatusError{Method: http.MethodGet, StatusCode: http.StatusBadGateway, Body: "upstream down"}
	gomock.InOrder(
		client.EXPECT().FetchCoins(gomock.Any(), 3, nil).Return(coins(5, 4, 3), nil),
		client.EXPECT().FetchCoins(gomock.Any(), 3, int64Ptr(2)).Return(nil, statusErr),
	)

	err := l.FetchAll(context.Background(), 3, time.Millisecond)

	require.Error(t, err)
	var got *adapter.HTTPStatusError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, http.StatusBadGateway, got.StatusCode)

	assert.False(t, store.SelectLoading())
	assert.Equal(t, err, store.SelectError())
	assert.Equal(t, 3, store.Len())
}

func TestLoader_FetchAll_ThenLiveUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCoinAPIClient(ctrl)
	store := entitystore.New(nil)
	l := loader.New(client, store, readyClock(ctrl), nil)

	client.EXPECT().FetchCoins(gomock.Any(), 10, nil).Return(coins(5, 4, 3), nil)

	require.NoError(t, l.FetchAll(context.Background(), 10, 0))

	weiIn := domain.BigString("500")
	assert.True(t, store.ApplyUpdate(domain.CoinUpdate{
		Type:  domain.UpdateTypeWeiInUpdated,
		Patch: &domain.CoinPatch{ID: 4, WeiIn: &weiIn},
	}))
	assert.False(t, store.ApplyUpdate(domain.CoinUpdate{
		Type:  domain.UpdateTypeWeiInUpdated,
		Patch: &domain.CoinPatch{ID: 99, WeiIn: &weiIn},
	}))

	c, ok := store.SelectByID(4)
	require.True(t, ok)
	assert.Equal(t, domain.BigString("500"), c.WeiIn)
	_, ok = store.SelectByID(99)
	assert.False(t, ok)
}

func TestLoader_FetchAll_CanceledWhileSleeping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCoinAPIClient(ctrl)
	store := entitystore.New(nil)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()
	clock.EXPECT().After(time.Second).Return(make(chan time.Time)).Times(1)

	l := loader.New(client, store, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	client.EXPECT().FetchCoins(gomock.Any(), 2, nil).DoAndReturn(
		func(ctx context.Context, limit int, maxID *int64) ([]domain.Coin, error) {
			cancel()
			return coins(9, 8), nil
		})

	err := l.FetchAll(ctx, 2, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.SelectLoading())
	assert.Equal(t, 2, store.Len())
}

func TestLoader_RefreshCoin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCoinAPIClient(ctrl)
	store := entitystore.New(nil)
	l := loader.New(client, store, readyClock(ctrl), nil)

	pool := "0xpool"
	client.EXPECT().FetchCoinByID(gomock.Any(), int64(7)).Return(&domain.Coin{ID: 7, Name: "Seven", DeployedPool: &pool}, nil)
	client.EXPECT().FetchCoinByID(gomock.Any(), int64(8)).Return(nil, domain.ErrCoinNotFound)

	c, err := l.RefreshCoin(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Seven", c.Name)
	assert.True(t, c.Graduated)

	_, err = l.RefreshCoin(context.Background(), 8)
	assert.ErrorIs(t, err, domain.ErrCoinNotFound)
}

func TestRefresher_RunsOnSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCoinAPIClient(ctrl)
	store := entitystore.New(nil)
	l := loader.New(client, store, adapter.NewClock(), nil)

	client.EXPECT().FetchCoins(gomock.Any(), 5, nil).Return(coins(1), nil).MinTimes(1)

	r := loader.NewRefresher(l, "@every 1s", 5, 0)
	assert.Equal(t, "coin-refresher", r.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	assert.Eventually(t, func() bool { return store.Len() == 1 }, 5*time.Second, 50*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	require.NoError(t, <-done)
}

func TestRefresher_InvalidSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := loader.New(mocks.NewMockCoinAPIClient(ctrl), entitystore.New(nil), adapter.NewClock(), nil)
	r := loader.NewRefresher(l, "not a schedule", 5, 0)

	err := r.Start(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule refresh")
}
