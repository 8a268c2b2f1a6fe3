package trade

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
)

// Machine drives a single trade intent through preview, approval, submission and confirmation.
//
// Network calls run without holding mu. Every input change bumps generation, and a result is
// applied only if the generation it was started with is still current.
type Machine struct {
	coinID int64
	side   domain.Side
	mgr    *Manager
	log    *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	inFlight   bool
	pending    []State // committed snapshots not yet delivered

	// deliverMu serializes delivery so subscribers see transitions in commit order
	deliverMu sync.Mutex
	subMu     sync.RWMutex
	subs      map[int]func(State)
	nextSub   int
}

// submission is what Submit captured when it took ownership of the intent
type submission struct {
	generation uint64
	amount     *big.Int
	preview    *big.Int
	coin       *domain.Coin
	revision   uint64
}

// CoinID returns the coin of the intent
func (m *Machine) CoinID() int64 {
	return m.coinID
}

// Side returns the side of the intent
func (m *Machine) Side() domain.Side {
	return m.side
}

// Snapshot returns the current state
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

// Subscribe registers fn to observe every committed state, once each and in order.
// fn must not call back into the machine.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// SetInput updates the user-typed amount. Input that is not a positive number clears the
// amount and returns the intent to idle. Edits are rejected while a transaction is being
// submitted or confirmed.
func (m *Machine) SetInput(raw string) error {
	m.mu.Lock()
	if m.state.Phase == PhaseSubmitting || m.state.Phase == PhaseConfirming {
		m.mu.Unlock()
		return domain.ErrAlreadyInProgress
	}

	if m.state.Phase == PhaseFailed || m.state.Phase == PhaseConfirmed {
		m.state = State{Phase: PhaseIdle, Input: m.state.Input}
		m.commitLocked()
	}

	coin, _ := m.mgr.store.SelectByID(m.coinID)
	amount, ok := domain.ParseAmount(raw, m.decimals(coin))

	m.generation++
	gen := m.generation
	m.state.Input = raw
	m.state.Preview = nil
	m.state.Err = nil

	if !ok {
		m.state.Amount = nil
		m.state.Phase = PhaseIdle
		m.commitLocked()
		m.mu.Unlock()
		m.flush()
		return nil
	}

	m.state.Amount = amount
	previewable := m.previewable(coin)
	if previewable {
		m.state.Phase = PhasePreviewPending
	} else {
		m.state.Phase = PhasePreviewReady
	}
	m.commitLocked()
	m.mu.Unlock()
	m.flush()

	if previewable {
		m.firePreview(gen, new(big.Int).Set(amount), coin)
	}
	return nil
}

// Submit executes the intent and waits for confirmation.
// It rejects re-entrant calls without touching the network.
func (m *Machine) Submit(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	if m.inFlight || m.state.Phase.InProgress() {
		m.mu.Unlock()
		return nil, domain.ErrAlreadyInProgress
	}

	switch m.state.Phase {
	case PhaseFailed:
		m.state = State{Phase: PhaseIdle, Input: m.state.Input}
		m.commitLocked()
		m.mu.Unlock()
		m.flush()
		return nil, domain.ErrPreviewNotReady
	case PhasePreviewReady:
	default:
		m.mu.Unlock()
		return nil, domain.ErrPreviewNotReady
	}
	if m.state.Amount == nil {
		m.mu.Unlock()
		return nil, domain.ErrPreviewNotReady
	}

	job := submission{
		generation: m.generation,
		amount:     new(big.Int).Set(m.state.Amount),
		revision:   m.mgr.store.Revision(m.coinID),
	}
	if m.state.Preview != nil {
		job.preview = new(big.Int).Set(m.state.Preview)
	}
	job.coin, _ = m.mgr.store.SelectByID(m.coinID)
	m.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	return m.execute(ctx, job)
}

func (m *Machine) execute(ctx context.Context, job submission) (*Result, error) {
	client := m.mgr.client
	now := m.mgr.clock.Now()
	deadline := ethereum.DefaultDeadline(now)
	if m.mgr.cfg.Deadline > 0 {
		deadline = now.Add(m.mgr.cfg.Deadline)
	}

	var submit func() (*ethereum.TxHandle, error)
	switch {
	case m.side == domain.SideSell:
		token, err := tokenAddress(job.coin)
		if err != nil {
			return nil, m.fail(ctx, job, "", err)
		}
		if err := m.ensureApproval(ctx, job, token); err != nil {
			return nil, err
		}
		minOut := domain.ApplySlippage(job.preview, m.mgr.cfg.SlippageBps)
		submit = func() (*ethereum.TxHandle, error) {
			return client.SubmitSell(ctx, token, job.amount, minOut, deadline)
		}

	case m.side == domain.SideBuy && job.coin != nil && job.coin.Graduated:
		token, err := tokenAddress(job.coin)
		if err != nil {
			return nil, m.fail(ctx, job, "", err)
		}
		minOut := domain.ApplySlippage(job.preview, m.mgr.cfg.SlippageBps)
		submit = func() (*ethereum.TxHandle, error) {
			return client.SubmitBuyPostGraduation(ctx, token, job.amount, minOut, deadline)
		}

	case m.side == domain.SideBuy:
		submit = func() (*ethereum.TxHandle, error) {
			return client.SubmitBuyPreGraduation(ctx, m.coinID, job.amount)
		}

	default:
		submit = func() (*ethereum.TxHandle, error) {
			return client.SubmitRefund(ctx, m.coinID)
		}
	}

	if !m.transition(job.generation, PhaseSubmitting, nil) {
		return nil, domain.ErrIntentChanged
	}

	handle, err := submit()
	if err != nil {
		return nil, m.fail(ctx, job, "", err)
	}

	m.transition(job.generation, PhaseConfirming, func(s *State) {
		s.TxHash = handle.Hash.Hex()
		s.TxURL = handle.URL
	})
	m.mgr.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindInfo,
		Title:   fmt.Sprintf("%s submitted", sideLabel(m.side)),
		Message: fmt.Sprintf("Sent %s tx: %s", m.side, handle.Hash.Hex()),
		CoinID:  m.coinID,
		TxHash:  handle.Hash.Hex(),
		URL:     handle.URL,
	})

	receipt, err := client.WaitForConfirmation(ctx, handle)
	if err != nil {
		return nil, m.fail(ctx, job, handle.Hash.Hex(), err)
	}
	if !receipt.Success {
		return nil, m.fail(ctx, job, handle.Hash.Hex(),
			fmt.Errorf("%w: %s", domain.ErrTransactionReverted, handle.Hash.Hex()))
	}

	return m.confirm(ctx, job, handle, receipt), nil
}

// ensureApproval checks the token balance and approves the router when the allowance is short
func (m *Machine) ensureApproval(ctx context.Context, job submission, token common.Address) error {
	client := m.mgr.client

	owner, err := client.Account()
	if err != nil {
		return m.fail(ctx, job, "", err)
	}
	balance, err := client.ReadTokenBalance(ctx, owner, token)
	if err != nil {
		return m.fail(ctx, job, "", err)
	}
	if balance.Cmp(job.amount) < 0 {
		return m.fail(ctx, job, "", domain.ErrInsufficientBalance)
	}

	spender, err := client.Router()
	if err != nil {
		return m.fail(ctx, job, "", err)
	}
	allowance, err := client.ReadAllowance(ctx, owner, token, spender)
	if err != nil {
		return m.fail(ctx, job, "", err)
	}
	if allowance.Cmp(job.amount) >= 0 {
		return nil
	}

	if !m.transition(job.generation, PhaseApproving, nil) {
		return domain.ErrIntentChanged
	}

	handle, err := client.SubmitApproval(ctx, token, spender, job.amount)
	if err != nil {
		return m.fail(ctx, job, "", err)
	}
	m.mgr.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindInfo,
		Title:   "Approval submitted",
		Message: fmt.Sprintf("Sent approve tx: %s", handle.Hash.Hex()),
		CoinID:  m.coinID,
		TxHash:  handle.Hash.Hex(),
		URL:     handle.URL,
	})

	receipt, err := client.WaitForConfirmation(ctx, handle)
	if err != nil {
		return m.fail(ctx, job, handle.Hash.Hex(), err)
	}
	if !receipt.Success {
		return m.fail(ctx, job, handle.Hash.Hex(),
			fmt.Errorf("%w: %s", domain.ErrTransactionReverted, handle.Hash.Hex()))
	}

	if !m.transition(job.generation, PhaseApproved, nil) {
		m.log.Info("Trade input changed during approval, not submitting")
		return domain.ErrIntentChanged
	}
	return nil
}

func (m *Machine) confirm(ctx context.Context, job submission, handle *ethereum.TxHandle, receipt *ethereum.Receipt) *Result {
	m.transition(job.generation, PhaseConfirmed, func(s *State) {
		s.Input = ""
		s.Amount = nil
		s.Preview = nil
	})

	m.updateCaches(ctx, job)

	m.mgr.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindSuccess,
		Title:   m.summary(job),
		Message: fmt.Sprintf("%s confirmed: %s", sideLabel(m.side), handle.Hash.Hex()),
		CoinID:  m.coinID,
		TxHash:  handle.Hash.Hex(),
		URL:     handle.URL,
	})

	m.log.Info("Trade confirmed",
		zap.String("tx_hash", handle.Hash.Hex()),
		zap.Uint64("block_number", receipt.BlockNumber),
		zap.Uint64("gas_used", receipt.GasUsed))

	return &Result{
		TxHash:      handle.Hash.Hex(),
		URL:         handle.URL,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	}
}

// updateCaches records the effect of a confirmed trade locally.
// Cache failures are logged; the trade itself already succeeded.
func (m *Machine) updateCaches(ctx context.Context, job submission) {
	cache := m.mgr.cache
	graduated := job.coin != nil && job.coin.Graduated

	switch {
	case m.side == domain.SideBuy && !graduated:
		if cache != nil {
			weiIn := new(big.Int).Add(nonNil(cache.WeiIn(m.coinID)), job.amount)
			if err := cache.SetWeiIn(ctx, m.coinID, weiIn); err != nil {
				m.log.Warn("Failed to update cached weiIn", zap.Error(err))
			}
		}
		if job.coin != nil {
			total := domain.NewBigString(new(big.Int).Add(job.coin.WeiIn.Int(), job.amount))
			m.mgr.store.ApplyOptimistic(domain.CoinPatch{ID: m.coinID, WeiIn: &total}, job.revision)
		}

	case m.side == domain.SideRefund:
		if cache != nil {
			if err := cache.SetWeiIn(ctx, m.coinID, new(big.Int)); err != nil {
				m.log.Warn("Failed to reset cached weiIn", zap.Error(err))
			}
		}

	default:
		if cache != nil {
			if err := cache.DeleteBalance(ctx, m.coinID); err != nil {
				m.log.Warn("Failed to invalidate cached balance", zap.Error(err))
			}
		}
	}
}

// fail moves the intent to Failed if it still belongs to job and returns err.
// Only a committed failure is notified; an edited intent has already moved on.
func (m *Machine) fail(ctx context.Context, job submission, txHash string, err error) error {
	committed := m.transition(job.generation, PhaseFailed, func(s *State) {
		s.Err = err
		if txHash != "" {
			s.TxHash = txHash
		}
	})
	if !committed {
		m.log.Info("Dropped failure of a superseded trade", zap.String("tx_hash", txHash), zap.Error(err))
		return err
	}

	m.log.Warn("Trade failed", zap.String("tx_hash", txHash), zap.Error(err))
	m.mgr.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindError,
		Title:   fmt.Sprintf("%s failed", sideLabel(m.side)),
		Message: err.Error(),
		CoinID:  m.coinID,
		TxHash:  txHash,
	})
	return err
}

// transition commits phase if gen is still current and reports whether it did
func (m *Machine) transition(gen uint64, phase Phase, mutate func(*State)) bool {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return false
	}
	m.state.Phase = phase
	if mutate != nil {
		mutate(&m.state)
	}
	m.commitLocked()
	m.mu.Unlock()
	m.flush()
	return true
}

func (m *Machine) firePreview(gen uint64, amount *big.Int, coin *domain.Coin) {
	m.mgr.wg.Add(1)
	go func() {
		defer m.mgr.wg.Done()

		quote, err := m.preview(m.mgr.ctx, amount, coin)
		m.applyPreview(gen, amount, quote, err)
	}()
}

func (m *Machine) preview(ctx context.Context, amount *big.Int, coin *domain.Coin) (*big.Int, error) {
	token, err := tokenAddress(coin)
	if err != nil {
		return nil, err
	}
	if m.side == domain.SideSell {
		return m.mgr.client.PreviewSell(ctx, token, amount)
	}
	return m.mgr.client.PreviewBuy(ctx, token, amount)
}

func (m *Machine) applyPreview(gen uint64, amount, quote *big.Int, err error) {
	m.mu.Lock()
	if m.state.Phase != PhasePreviewPending || gen != m.generation ||
		m.state.Amount == nil || m.state.Amount.Cmp(amount) != 0 {
		m.mu.Unlock()
		m.log.Debug("Discarded stale preview",
			zap.Uint64("generation", gen),
			zap.String("amount", amount.String()))
		return
	}

	if err != nil {
		m.state.Phase = PhaseFailed
		m.state.Err = err
		m.commitLocked()
		m.mu.Unlock()
		m.flush()

		m.log.Warn("Preview failed", zap.Error(err))
		m.mgr.notifier.Notify(m.mgr.ctx, notify.Notification{
			Kind:    notify.KindError,
			Title:   "Preview failed",
			Message: err.Error(),
			CoinID:  m.coinID,
		})
		return
	}

	m.state.Phase = PhasePreviewReady
	m.state.Preview = quote
	m.commitLocked()
	m.mu.Unlock()
	m.flush()
}

// commitLocked queues a snapshot of the current state for delivery. Caller holds mu.
func (m *Machine) commitLocked() {
	m.pending = append(m.pending, cloneState(m.state))
	m.mgr.metrics.TradeTransition(string(m.side), string(m.state.Phase))
}

// flush delivers queued snapshots. Whoever drains the queue delivers it, so order is kept
// even when commits race.
func (m *Machine) flush() {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(pending) == 0 {
		return
	}

	m.subMu.RLock()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.RUnlock()

	for _, s := range pending {
		for _, fn := range subs {
			fn(s)
		}
	}
}

func (m *Machine) previewable(coin *domain.Coin) bool {
	switch m.side {
	case domain.SideSell:
		return true
	case domain.SideBuy:
		return coin != nil && coin.Graduated
	default:
		return false
	}
}

// decimals returns the precision of the input: coin units for sells, native units otherwise
func (m *Machine) decimals(coin *domain.Coin) uint8 {
	if m.side == domain.SideSell && coin != nil {
		return coin.Decimals
	}
	return domain.NATIVE_CURRENCY_DECIMALS
}

func (m *Machine) summary(job submission) string {
	name := fmt.Sprintf("coin #%d", m.coinID)
	symbol := ""
	if job.coin != nil {
		name = job.coin.Name
		symbol = job.coin.Symbol
	}

	switch m.side {
	case domain.SideBuy:
		return fmt.Sprintf("Spent %s ETH on %s", domain.FormatAmount(job.amount, domain.NATIVE_CURRENCY_DECIMALS), name)
	case domain.SideSell:
		decimals := uint8(domain.NATIVE_CURRENCY_DECIMALS)
		if job.coin != nil {
			decimals = job.coin.Decimals
		}
		return fmt.Sprintf("Sold %s %s", domain.FormatAmount(job.amount, decimals), symbol)
	default:
		return fmt.Sprintf("Refunded %s", name)
	}
}

func sideLabel(side domain.Side) string {
	switch side {
	case domain.SideBuy:
		return "Buy"
	case domain.SideSell:
		return "Sell"
	default:
		return "Refund"
	}
}

func tokenAddress(coin *domain.Coin) (common.Address, error) {
	if coin == nil {
		return common.Address{}, domain.ErrCoinNotFound
	}
	if !common.IsHexAddress(coin.ContractAddress) {
		return common.Address{}, domain.NewMissingDependencyError("token")
	}
	return common.HexToAddress(coin.ContractAddress), nil
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// IsRejection reports whether err was returned without the intent changing state
func IsRejection(err error) bool {
	return errors.Is(err, domain.ErrAlreadyInProgress) ||
		errors.Is(err, domain.ErrPreviewNotReady) ||
		errors.Is(err, domain.ErrIntentChanged)
}
