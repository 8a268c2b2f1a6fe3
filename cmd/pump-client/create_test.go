package main

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/mocks"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/providers/coinapi"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
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

const PUMP_ADDRESS = "0x00000000000000000000000000000000000000aa"

var (
	creator = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	txHash  = common.HexToHash("0x01")
)

func newLauncher(ctrl *gomock.Controller) (*launcher, *mocks.MockTradeClient, *mocks.MockCoinAPIClient) {
	client := mocks.NewMockTradeClient(ctrl)
	api := mocks.NewMockCoinAPIClient(ctrl)
	return &launcher{client: client, api: api, pumpAddress: PUMP_ADDRESS}, client, api
}

func TestLauncher_Launch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, client, api := newLauncher(ctrl)
	ctx := context.Background()

	supply, _ := new(big.Int).SetString("21000000000000000000000", 10)
	handle := &ethereum.TxHandle{Hash: txHash, From: creator}
	receipt := &ethereum.Receipt{Success: true, BlockNumber: 12}

	gomock.InOrder(
		client.EXPECT().SubmitCreateCoin(ctx, "Early", "ERL", supply).Return(handle, nil),
		client.EXPECT().WaitForConfirmation(ctx, handle).Return(receipt, nil),
		client.EXPECT().ParseCoinCreated(receipt).Return(int64(42), true),
		api.EXPECT().UploadImage(ctx, int64(42), "logo.png", []byte("png")).Return("https://cdn.example/42.png", nil),
		api.EXPECT().CreateCoin(ctx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, req coinapi.CreateCoinRequest) error {
				assert.Equal(t, int64(42), req.ID)
				assert.Equal(t, domain.BigString("21000000000000000000000"), req.Supply)
				assert.Equal(t, uint8(18), req.Decimals)
				assert.Equal(t, PUMP_ADDRESS, req.ContractAddress)
				assert.Equal(t, creator.Hex(), req.Creator)
				assert.False(t, req.Graduated)
				assert.False(t, req.Verified)
				require.NotNil(t, req.ImageURL)
				assert.Equal(t, "https://cdn.example/42.png", *req.ImageURL)
				require.NotNil(t, req.Description)
				assert.Equal(t, "first", *req.Description)
				assert.Nil(t, req.Twitter)
				return nil
			}),
		api.EXPECT().VerifyCoin(ctx, int64(42)).Return(nil),
	)

	id, err := l.Launch(ctx, CoinDraft{
		Name:        "Early",
		Symbol:      "ERL",
		Supply:      DEFAULT_COIN_SUPPLY,
		Description: "first",
		ImageName:   "logo.png",
		Image:       []byte("png"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestLauncher_UploadFailureKeepsGoing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, client, api := newLauncher(ctrl)
	ctx := context.Background()

	handle := &ethereum.TxHandle{Hash: txHash, From: creator}
	receipt := &ethereum.Receipt{Success: true}
	client.EXPECT().SubmitCreateCoin(ctx, "Early", "ERL", gomock.Any()).Return(handle, nil)
	client.EXPECT().WaitForConfirmation(ctx, handle).Return(receipt, nil)
	client.EXPECT().ParseCoinCreated(receipt).Return(int64(7), true)
	api.EXPECT().UploadImage(ctx, int64(7), "logo.png", gomock.Any()).Return("", errors.New("upload failed"))
	api.EXPECT().CreateCoin(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, req coinapi.CreateCoinRequest) error {
			assert.Nil(t, req.ImageURL)
			return nil
		})
	api.EXPECT().VerifyCoin(ctx, int64(7)).Return(errors.New("status 500"))

	id, err := l.Launch(ctx, CoinDraft{Name: "Early", Symbol: "ERL", Supply: "1", ImageName: "logo.png", Image: []byte("png")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify coin 7")
	assert.Equal(t, int64(7), id)
}

func TestLauncher_Errors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		l, _, _ := newLauncher(ctrl)
		_, err := l.Launch(context.Background(), CoinDraft{Symbol: "ERL", Supply: "1"})
		assert.Error(t, err)
	})

	t.Run("invalid supply", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		l, _, _ := newLauncher(ctrl)
		_, err := l.Launch(context.Background(), CoinDraft{Name: "Early", Symbol: "ERL", Supply: "lots"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid supply")
	})

	t.Run("reverted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		l, client, _ := newLauncher(ctrl)
		handle := &ethereum.TxHandle{Hash: txHash, From: creator}
		client.EXPECT().SubmitCreateCoin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(handle, nil)
		client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(&ethereum.Receipt{Success: false}, nil)

		_, err := l.Launch(context.Background(), CoinDraft{Name: "Early", Symbol: "ERL", Supply: "1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	})

	t.Run("no event", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		l, client, _ := newLauncher(ctrl)
		handle := &ethereum.TxHandle{Hash: txHash, From: creator}
		receipt := &ethereum.Receipt{Success: true}
		client.EXPECT().SubmitCreateCoin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(handle, nil)
		client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(receipt, nil)
		client.EXPECT().ParseCoinCreated(receipt).Return(int64(0), false)

		_, err := l.Launch(context.Background(), CoinDraft{Name: "Early", Symbol: "ERL", Supply: "1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no CoinCreated event")
	})
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := newConsoleSink(&buf)

	sink.Deliver(context.Background(), notify.Notification{
		Kind:    notify.KindSuccess,
		Title:   "Spent 0.5 ETH on Early",
		Message: "Buy confirmed: 0x01",
		URL:     "https://explorer.example/tx/0x01",
	})
	sink.Deliver(context.Background(), notify.Notification{Kind: notify.KindError, Title: "Trade failed"})

	assert.Equal(t,
		"[success] Spent 0.5 ETH on Early: Buy confirmed: 0x01 https://explorer.example/tx/0x01\n[error] Trade failed\n",
		buf.String())
}

func TestCoinStatus(t *testing.T) {
	pool := "0x00000000000000000000000000000000000000cc"
	empty := ""
	threshold := big.NewInt(1000)

	tests := []struct {
		name     string
		coin     domain.Coin
		status   string
		progress int64
	}{
		{name: "unverified", coin: domain.Coin{WeiIn: "250"}, status: "unverified", progress: 25},
		{name: "bonding", coin: domain.Coin{Verified: true, WeiIn: "999"}, status: "bonding", progress: 99},
		{name: "graduated", coin: domain.Coin{Graduated: true, DeployedPool: &empty}, status: "graduated", progress: 100},
		{name: "on dex", coin: domain.Coin{Graduated: true, DeployedPool: &pool}, status: "trading on dex", progress: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, status(&tt.coin))
			assert.Equal(t, tt.progress, progress(&tt.coin, threshold))
		})
	}
}

func TestParseCoinID(t *testing.T) {
	id, err := parseCoinID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-1", "abc", "4294967296"} {
		_, err := parseCoinID(raw)
		assert.Error(t, err, raw)
	}
}
