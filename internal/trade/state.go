package trade

import (
	"context"
	"math/big"
	"time"
)

// Phase is the position of a trade intent in its lifecycle
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhasePreviewPending Phase = "preview_pending"
	PhasePreviewReady   Phase = "preview_ready"
	PhaseApproving      Phase = "approving"
	PhaseApproved       Phase = "approved"
	PhaseSubmitting     Phase = "submitting"
	PhaseConfirming     Phase = "confirming"
	PhaseConfirmed      Phase = "confirmed"
	PhaseFailed         Phase = "failed"
)

// InProgress reports whether a submission owns the intent in this phase
func (p Phase) InProgress() bool {
	return p == PhaseApproving || p == PhaseApproved || p == PhaseSubmitting || p == PhaseConfirming
}

// State is an immutable snapshot of a trade intent
type State struct {
	Phase   Phase
	Input   string
	Amount  *big.Int // nil when Input is not a positive number
	Preview *big.Int // quoted output, nil for intents without a preview
	Err     error
	TxHash  string
	TxURL   string
}

// Result describes a confirmed trade
type Result struct {
	TxHash      string
	URL         string
	BlockNumber uint64
	GasUsed     uint64
}

// Config holds the trade defaults
type Config struct {
	SlippageBps int
	Deadline    time.Duration // 0 uses the default swap deadline
}

// Cache is the part of the local trade cache that trade flows write to
//
//go:generate mockgen -source=state.go -destination=../mocks/trade_cache.go -package=mocks -mock_names=Cache=MockTradeCache
type Cache interface {
	WeiIn(coinID int64) *big.Int
	SetWeiIn(ctx context.Context, coinID int64, weiIn *big.Int) error
	DeleteBalance(ctx context.Context, coinID int64) error
}

func cloneState(s State) State {
	if s.Amount != nil {
		s.Amount = new(big.Int).Set(s.Amount)
	}
	if s.Preview != nil {
		s.Preview = new(big.Int).Set(s.Preview)
	}
	return s
}
