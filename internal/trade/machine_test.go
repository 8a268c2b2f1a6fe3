package trade_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/entitystore"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/mocks"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
	"github.com/pumprand/pump-client/internal/trade"
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

const (
	PRE_GRADUATION_COIN = int64(1)
	GRADUATED_COIN      = int64(2)
)

var (
	now        = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	tokenPre   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenGrad  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	router     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	account    = common.HexToAddress("0x4444444444444444444444444444444444444444")
	oneEther   = big.NewInt(1_000_000_000_000_000_000)
	halfEther  = big.NewInt(500_000_000_000_000_000)
	sixTenths  = big.NewInt(600_000_000_000_000_000)
	submitHash = common.HexToHash("0xaaaa")
)

type harness struct {
	ctrl     *gomock.Controller
	client   *mocks.MockTradeClient
	cache    *mocks.MockTradeCache
	store    *entitystore.Store
	recorder *notify.Recorder
	manager  *trade.Manager
}

func newHarness(t *testing.T, cfg trade.Config) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	store := entitystore.New(nil)
	store.Merge([]domain.Coin{
		{ID: PRE_GRADUATION_COIN, Name: "Early", Symbol: "ERL", Decimals: 18, ContractAddress: tokenPre.Hex(), WeiIn: "500"},
		{ID: GRADUATED_COIN, Name: "Grown", Symbol: "GRW", Decimals: 18, ContractAddress: tokenGrad.Hex(), Graduated: true},
	})

	recorder := notify.NewRecorder(50)
	dispatcher := notify.NewDispatcher(store, clock, nil, nil, nil, recorder)

	client := mocks.NewMockTradeClient(ctrl)
	cache := mocks.NewMockTradeCache(ctrl)

	h := &harness{
		ctrl:     ctrl,
		client:   client,
		cache:    cache,
		store:    store,
		recorder: recorder,
		manager:  trade.NewManager(client, store, cache, dispatcher, clock, nil, cfg),
	}
	t.Cleanup(h.manager.Close)
	return h
}

func (h *harness) intent(t *testing.T, coinID int64, side domain.Side) *trade.Machine {
	t.Helper()
	m, err := h.manager.Intent(coinID, side)
	require.NoError(t, err)
	return m
}

func (h *harness) notifications(kind notify.Kind) []notify.Notification {
	var out []notify.Notification
	for _, n := range h.recorder.List() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func recordPhases(m *trade.Machine) func() []trade.Phase {
	var mu sync.Mutex
	var phases []trade.Phase
	m.Subscribe(func(s trade.State) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})
	return func() []trade.Phase {
		mu.Lock()
		defer mu.Unlock()
		return append([]trade.Phase(nil), phases...)
	}
}

func mined() *ethereum.Receipt {
	return &ethereum.Receipt{Success: true, BlockNumber: 10, GasUsed: 21_000}
}

func TestManager_Intent(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	buy := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	again := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	sell := h.intent(t, PRE_GRADUATION_COIN, domain.SideSell)

	assert.Same(t, buy, again)
	assert.NotSame(t, buy, sell)
	assert.Equal(t, domain.SideSell, sell.Side())
	assert.Equal(t, PRE_GRADUATION_COIN, sell.CoinID())
	assert.Equal(t, trade.PhaseIdle, buy.Snapshot().Phase)

	_, err := h.manager.Intent(PRE_GRADUATION_COIN, domain.Side("swap"))
	assert.Error(t, err)
}

func TestMachine_SetInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		phase  trade.Phase
		amount *big.Int
	}{
		{name: "valid", input: "1", phase: trade.PhasePreviewReady, amount: oneEther},
		{name: "fraction", input: "0.5", phase: trade.PhasePreviewReady, amount: halfEther},
		{name: "empty", input: "", phase: trade.PhaseIdle},
		{name: "non numeric", input: "abc", phase: trade.PhaseIdle},
		{name: "negative", input: "-1", phase: trade.PhaseIdle},
		{name: "zero", input: "0", phase: trade.PhaseIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, trade.Config{})
			defer h.ctrl.Finish()

			m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
			require.NoError(t, m.SetInput(tt.input))

			s := m.Snapshot()
			assert.Equal(t, tt.phase, s.Phase)
			assert.Equal(t, tt.input, s.Input)
			assert.Equal(t, tt.amount, s.Amount)
			assert.Nil(t, s.Preview)
		})
	}
}

func TestMachine_Submit_WithoutAmount(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("nope"))

	_, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrPreviewNotReady)
	assert.True(t, trade.IsRejection(err))
	assert.Empty(t, h.recorder.List())
}

func TestMachine_StalePreviewIsDiscarded(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	releaseOld := make(chan struct{})
	releaseNew := make(chan struct{})

	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, gomock.Any()).DoAndReturn(
		func(ctx context.Context, token common.Address, amount *big.Int) (*big.Int, error) {
			if amount.Cmp(halfEther) == 0 {
				<-releaseOld
				return big.NewInt(50), nil
			}
			<-releaseNew
			return big.NewInt(60), nil
		}).Times(2)

	m := h.intent(t, GRADUATED_COIN, domain.SideSell)
	require.NoError(t, m.SetInput("0.5"))
	assert.Equal(t, trade.PhasePreviewPending, m.Snapshot().Phase)
	require.NoError(t, m.SetInput("0.6"))
	assert.Equal(t, trade.PhasePreviewPending, m.Snapshot().Phase)

	close(releaseNew)
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	close(releaseOld)
	h.manager.Close()

	s := m.Snapshot()
	assert.Equal(t, trade.PhasePreviewReady, s.Phase)
	assert.Equal(t, "0.6", s.Input)
	assert.Equal(t, sixTenths, s.Amount)
	assert.Equal(t, big.NewInt(60), s.Preview)
}

func TestMachine_PreviewError(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	h.client.EXPECT().PreviewBuy(gomock.Any(), tokenGrad, oneEther).
		Return(nil, errors.New("execution reverted")).Times(1)

	m := h.intent(t, GRADUATED_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))
	h.manager.Close()

	s := m.Snapshot()
	assert.Equal(t, trade.PhaseFailed, s.Phase)
	require.Error(t, s.Err)
	assert.Equal(t, "execution reverted", s.Err.Error())

	errs := h.notifications(notify.KindError)
	require.Len(t, errs, 1)
	assert.Equal(t, "execution reverted", errs[0].Message)
}

func TestMachine_BuyPreGraduation_Success(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash, URL: "https://explorer.example/tx/" + submitHash.Hex()}
	h.client.EXPECT().SubmitBuyPreGraduation(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(mined(), nil).Times(1)

	h.cache.EXPECT().WeiIn(PRE_GRADUATION_COIN).Return(big.NewInt(100)).Times(1)
	h.cache.EXPECT().SetWeiIn(gomock.Any(), PRE_GRADUATION_COIN, new(big.Int).Add(big.NewInt(100), oneEther)).
		Return(nil).Times(1)

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))
	phases := recordPhases(m)

	result, err := m.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, submitHash.Hex(), result.TxHash)
	assert.Equal(t, handle.URL, result.URL)
	assert.Equal(t, uint64(10), result.BlockNumber)

	assert.Equal(t, []trade.Phase{trade.PhaseSubmitting, trade.PhaseConfirming, trade.PhaseConfirmed}, phases())

	s := m.Snapshot()
	assert.Equal(t, trade.PhaseConfirmed, s.Phase)
	assert.Empty(t, s.Input)
	assert.Nil(t, s.Amount)
	assert.Equal(t, submitHash.Hex(), s.TxHash)

	coin, ok := h.store.SelectByID(PRE_GRADUATION_COIN)
	require.True(t, ok)
	assert.Equal(t, domain.BigString("1000000000000000500"), coin.WeiIn)

	successes := h.notifications(notify.KindSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "Buy confirmed: "+submitHash.Hex(), successes[0].Message)
	assert.Equal(t, "Spent 1 ETH on Early", successes[0].Title)
	assert.Equal(t, handle.URL, successes[0].URL)

	infos := h.notifications(notify.KindInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "Sent buy tx: "+submitHash.Hex(), infos[0].Message)
}

func TestMachine_BuyPreGraduation_ServerWinsOverOptimistic(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().SubmitBuyPreGraduation(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).DoAndReturn(
		func(ctx context.Context, tx *ethereum.TxHandle) (*ethereum.Receipt, error) {
			server := domain.BigString("900")
			h.store.ApplyUpdate(domain.CoinUpdate{
				Type:  domain.UpdateTypeWeiInUpdated,
				Patch: &domain.CoinPatch{ID: PRE_GRADUATION_COIN, WeiIn: &server},
			})
			return mined(), nil
		}).Times(1)
	h.cache.EXPECT().WeiIn(PRE_GRADUATION_COIN).Return(nil).Times(1)
	h.cache.EXPECT().SetWeiIn(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(nil).Times(1)

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))

	_, err := m.Submit(context.Background())
	require.NoError(t, err)

	coin, _ := h.store.SelectByID(PRE_GRADUATION_COIN)
	assert.Equal(t, domain.BigString("900"), coin.WeiIn)
}

func TestMachine_SecondSubmitIsRejected(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	release := make(chan struct{})
	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().SubmitBuyPreGraduation(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).DoAndReturn(
		func(ctx context.Context, tx *ethereum.TxHandle) (*ethereum.Receipt, error) {
			<-release
			return mined(), nil
		}).Times(1)
	h.cache.EXPECT().WeiIn(PRE_GRADUATION_COIN).Return(nil).AnyTimes()
	h.cache.EXPECT().SetWeiIn(gomock.Any(), PRE_GRADUATION_COIN, gomock.Any()).Return(nil).AnyTimes()

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background())
		done <- err
	}()

	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhaseConfirming
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrAlreadyInProgress)
	assert.ErrorIs(t, m.SetInput("2"), domain.ErrAlreadyInProgress)
	assert.Equal(t, "1", m.Snapshot().Input)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, trade.PhaseConfirmed, m.Snapshot().Phase)
}

func TestMachine_Refund_Reverted(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().SubmitRefund(gomock.Any(), PRE_GRADUATION_COIN).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).
		Return(&ethereum.Receipt{Success: false, BlockNumber: 11}, nil).Times(1)
	h.cache.EXPECT().SetWeiIn(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideRefund)
	require.NoError(t, m.SetInput("0.001"))
	assert.Equal(t, trade.PhasePreviewReady, m.Snapshot().Phase)

	_, err := m.Submit(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	assert.Equal(t, "transaction reverted: "+submitHash.Hex(), err.Error())

	s := m.Snapshot()
	assert.Equal(t, trade.PhaseFailed, s.Phase)
	assert.Equal(t, submitHash.Hex(), s.TxHash)

	errs := h.notifications(notify.KindError)
	require.Len(t, errs, 1)
	assert.Equal(t, err.Error(), errs[0].Message)
	assert.Empty(t, h.notifications(notify.KindSuccess))

	// no automatic retry: submitting from Failed only resets
	_, err = m.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrPreviewNotReady)
	assert.Equal(t, trade.PhaseIdle, m.Snapshot().Phase)
}

func TestMachine_Refund_Success(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().SubmitRefund(gomock.Any(), PRE_GRADUATION_COIN).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(mined(), nil).Times(1)
	h.cache.EXPECT().SetWeiIn(gomock.Any(), PRE_GRADUATION_COIN, big.NewInt(0)).Return(nil).Times(1)

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideRefund)
	require.NoError(t, m.SetInput("0.001"))

	_, err := m.Submit(context.Background())
	require.NoError(t, err)

	successes := h.notifications(notify.KindSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "Refund confirmed: "+submitHash.Hex(), successes[0].Message)
}

func TestMachine_SubmitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "insufficient balance", err: domain.ErrInsufficientBalance},
		{name: "missing signer", err: domain.NewMissingDependencyError("signer")},
		{name: "rpc failure", err: errors.New("failed to send buy: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, trade.Config{})
			defer h.ctrl.Finish()

			h.client.EXPECT().SubmitBuyPreGraduation(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(nil, tt.err).Times(1)
			h.client.EXPECT().WaitForConfirmation(gomock.Any(), gomock.Any()).Times(0)

			m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
			require.NoError(t, m.SetInput("1"))

			_, err := m.Submit(context.Background())

			assert.ErrorIs(t, err, tt.err)
			s := m.Snapshot()
			assert.Equal(t, trade.PhaseFailed, s.Phase)
			assert.Equal(t, tt.err, s.Err)

			errs := h.notifications(notify.KindError)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.err.Error(), errs[0].Message)

			// the next edit starts over
			require.NoError(t, m.SetInput("1"))
			assert.Equal(t, trade.PhasePreviewReady, m.Snapshot().Phase)
		})
	}
}

func TestMachine_SellWithApproval(t *testing.T) {
	h := newHarness(t, trade.Config{SlippageBps: 100})
	defer h.ctrl.Finish()

	approval := &ethereum.TxHandle{Hash: common.HexToHash("0xbbbb")}
	sale := &ethereum.TxHandle{Hash: submitHash}

	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, oneEther).Return(big.NewInt(1_000), nil).Times(1)
	h.client.EXPECT().Account().Return(account, nil).Times(1)
	h.client.EXPECT().ReadTokenBalance(gomock.Any(), account, tokenGrad).Return(oneEther, nil).Times(1)
	h.client.EXPECT().Router().Return(router, nil).Times(1)
	h.client.EXPECT().ReadAllowance(gomock.Any(), account, tokenGrad, router).Return(big.NewInt(0), nil).Times(1)
	gomock.InOrder(
		h.client.EXPECT().SubmitApproval(gomock.Any(), tokenGrad, router, oneEther).Return(approval, nil),
		h.client.EXPECT().WaitForConfirmation(gomock.Any(), approval).Return(mined(), nil),
		h.client.EXPECT().SubmitSell(gomock.Any(), tokenGrad, oneEther, big.NewInt(990), now.Add(20*time.Minute)).Return(sale, nil),
		h.client.EXPECT().WaitForConfirmation(gomock.Any(), sale).Return(mined(), nil),
	)
	h.cache.EXPECT().DeleteBalance(gomock.Any(), GRADUATED_COIN).Return(nil).Times(1)

	m := h.intent(t, GRADUATED_COIN, domain.SideSell)
	phases := recordPhases(m)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []trade.Phase{
		trade.PhasePreviewPending,
		trade.PhasePreviewReady,
		trade.PhaseApproving,
		trade.PhaseApproved,
		trade.PhaseSubmitting,
		trade.PhaseConfirming,
		trade.PhaseConfirmed,
	}, phases())

	successes := h.notifications(notify.KindSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "Sell confirmed: "+submitHash.Hex(), successes[0].Message)
	assert.Equal(t, "Sold 1 GRW", successes[0].Title)
}

func TestMachine_SellSkipsApprovalWhenAllowanceCovers(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	sale := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, oneEther).Return(big.NewInt(1_000), nil).Times(1)
	h.client.EXPECT().Account().Return(account, nil).Times(1)
	h.client.EXPECT().ReadTokenBalance(gomock.Any(), account, tokenGrad).Return(oneEther, nil).Times(1)
	h.client.EXPECT().Router().Return(router, nil).Times(1)
	h.client.EXPECT().ReadAllowance(gomock.Any(), account, tokenGrad, router).Return(oneEther, nil).Times(1)
	h.client.EXPECT().SubmitApproval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	// default slippage accepts any output
	h.client.EXPECT().SubmitSell(gomock.Any(), tokenGrad, oneEther, big.NewInt(0), now.Add(20*time.Minute)).Return(sale, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), sale).Return(mined(), nil).Times(1)
	h.cache.EXPECT().DeleteBalance(gomock.Any(), GRADUATED_COIN).Return(nil).Times(1)

	m := h.intent(t, GRADUATED_COIN, domain.SideSell)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())
	require.NoError(t, err)
}

func TestMachine_SellInsufficientBalance(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, oneEther).Return(big.NewInt(1_000), nil).Times(1)
	h.client.EXPECT().Account().Return(account, nil).Times(1)
	h.client.EXPECT().ReadTokenBalance(gomock.Any(), account, tokenGrad).Return(halfEther, nil).Times(1)
	h.client.EXPECT().ReadAllowance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	h.client.EXPECT().SubmitApproval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m := h.intent(t, GRADUATED_COIN, domain.SideSell)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, trade.PhaseFailed, m.Snapshot().Phase)
	errs := h.notifications(notify.KindError)
	require.Len(t, errs, 1)
	assert.Equal(t, "insufficient balance", errs[0].Message)
}

func TestMachine_InputChangedDuringApproval(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	approval := &ethereum.TxHandle{Hash: common.HexToHash("0xbbbb")}
	var m *trade.Machine

	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, gomock.Any()).Return(big.NewInt(1_000), nil).Times(2)
	h.client.EXPECT().Account().Return(account, nil).Times(1)
	h.client.EXPECT().ReadTokenBalance(gomock.Any(), account, tokenGrad).Return(oneEther, nil).Times(1)
	h.client.EXPECT().Router().Return(router, nil).Times(1)
	h.client.EXPECT().ReadAllowance(gomock.Any(), account, tokenGrad, router).Return(big.NewInt(0), nil).Times(1)
	h.client.EXPECT().SubmitApproval(gomock.Any(), tokenGrad, router, oneEther).Return(approval, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), approval).DoAndReturn(
		func(ctx context.Context, tx *ethereum.TxHandle) (*ethereum.Receipt, error) {
			require.NoError(t, m.SetInput("0.5"))
			return mined(), nil
		}).Times(1)
	h.client.EXPECT().SubmitSell(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m = h.intent(t, GRADUATED_COIN, domain.SideSell)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrIntentChanged)
	h.manager.Close()

	s := m.Snapshot()
	assert.Equal(t, "0.5", s.Input)
	assert.Equal(t, trade.PhasePreviewReady, s.Phase)
	assert.Empty(t, h.notifications(notify.KindError))
}

func TestMachine_ApprovalRevertedAfterEditIsSilent(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	approval := &ethereum.TxHandle{Hash: common.HexToHash("0xbbbb")}
	var m *trade.Machine

	h.client.EXPECT().PreviewSell(gomock.Any(), tokenGrad, gomock.Any()).Return(big.NewInt(1_000), nil).Times(2)
	h.client.EXPECT().Account().Return(account, nil).Times(1)
	h.client.EXPECT().ReadTokenBalance(gomock.Any(), account, tokenGrad).Return(oneEther, nil).Times(1)
	h.client.EXPECT().Router().Return(router, nil).Times(1)
	h.client.EXPECT().ReadAllowance(gomock.Any(), account, tokenGrad, router).Return(big.NewInt(0), nil).Times(1)
	h.client.EXPECT().SubmitApproval(gomock.Any(), tokenGrad, router, oneEther).Return(approval, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), approval).DoAndReturn(
		func(ctx context.Context, tx *ethereum.TxHandle) (*ethereum.Receipt, error) {
			require.NoError(t, m.SetInput("0.5"))
			return &ethereum.Receipt{Success: false}, nil
		}).Times(1)
	h.client.EXPECT().SubmitSell(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m = h.intent(t, GRADUATED_COIN, domain.SideSell)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	h.manager.Close()

	s := m.Snapshot()
	assert.Equal(t, "0.5", s.Input)
	assert.Equal(t, trade.PhasePreviewReady, s.Phase)
	assert.Nil(t, s.Err)
	assert.Empty(t, h.notifications(notify.KindError))
}

func TestMachine_BuyPostGraduation(t *testing.T) {
	h := newHarness(t, trade.Config{SlippageBps: 500, Deadline: 5 * time.Minute})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().PreviewBuy(gomock.Any(), tokenGrad, oneEther).Return(big.NewInt(2_000), nil).Times(1)
	h.client.EXPECT().SubmitBuyPostGraduation(gomock.Any(), tokenGrad, oneEther, big.NewInt(1_900), now.Add(5*time.Minute)).
		Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(mined(), nil).Times(1)
	h.cache.EXPECT().DeleteBalance(gomock.Any(), GRADUATED_COIN).Return(nil).Times(1)

	m := h.intent(t, GRADUATED_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))
	assert.Eventually(t, func() bool {
		return m.Snapshot().Phase == trade.PhasePreviewReady
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, big.NewInt(2_000), m.Snapshot().Preview)

	_, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, trade.PhaseConfirmed, m.Snapshot().Phase)
}

func TestMachine_WaitError(t *testing.T) {
	h := newHarness(t, trade.Config{})
	defer h.ctrl.Finish()

	handle := &ethereum.TxHandle{Hash: submitHash}
	h.client.EXPECT().SubmitBuyPreGraduation(gomock.Any(), PRE_GRADUATION_COIN, oneEther).Return(handle, nil).Times(1)
	h.client.EXPECT().WaitForConfirmation(gomock.Any(), handle).Return(nil, context.Canceled).Times(1)

	m := h.intent(t, PRE_GRADUATION_COIN, domain.SideBuy)
	require.NoError(t, m.SetInput("1"))

	_, err := m.Submit(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
	s := m.Snapshot()
	assert.Equal(t, trade.PhaseFailed, s.Phase)
	assert.Equal(t, submitHash.Hex(), s.TxHash)
}
