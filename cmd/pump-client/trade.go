package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/trade"
	"github.com/pumprand/pump-client/internal/tradecache"
)

var acceptTerms bool

var buyCmd = &cobra.Command{
	Use:   "buy <coin-id> <amount-eth>",
	Short: "Buy a coin with native currency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, domain.SideBuy, args[0], args[1])
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <coin-id> <amount-tokens>",
	Short: "Sell coin tokens for native currency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, domain.SideSell, args[0], args[1])
	},
}

var refundCmd = &cobra.Command{
	Use:   "refund <coin-id>",
	Short: "Refund everything paid into a coin before graduation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, domain.SideRefund, args[0], "")
	},
}

func init() {
	for _, c := range []*cobra.Command{buyCmd, sellCmd, refundCmd, createCmd} {
		c.Flags().BoolVar(&acceptTerms, "accept-terms", false, "Accept the terms of use and remember the choice")
	}
}

func runTrade(cmd *cobra.Command, side domain.Side, ref, rawAmount string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(cfg, newConsoleSink(out))
	if err != nil {
		return err
	}
	defer a.Close()

	coin, err := fetchCoin(ctx, a, ref)
	if err != nil {
		return err
	}
	ctx = logger.WithFields(ctx, zap.Int64("coin_id", coin.ID), zap.String("side", string(side)))

	trades, err := a.openTrades(ctx)
	if err != nil {
		return err
	}
	if err := ensureTerms(ctx, a.cache); err != nil {
		return err
	}

	if side == domain.SideRefund {
		weiIn, err := a.client.ReadCumulativeValueIn(ctx, coin.ID)
		if err != nil {
			return err
		}
		if weiIn.Sign() == 0 {
			return fmt.Errorf("nothing to refund for coin %d", coin.ID)
		}
		rawAmount = domain.FormatAmount(weiIn, domain.NATIVE_CURRENCY_DECIMALS)
	}

	machine, err := trades.Intent(coin.ID, side)
	if err != nil {
		return err
	}
	unsubscribe := machine.Subscribe(func(s trade.State) {
		logger.Debug("Trade state changed",
			zap.Int64("coin_id", coin.ID),
			zap.String("side", string(side)),
			zap.String("phase", string(s.Phase)))
	})
	defer unsubscribe()

	quote, err := awaitQuote(ctx, machine, rawAmount)
	if err != nil {
		return err
	}
	if quote.Preview != nil {
		fmt.Fprintf(out, "Expected to receive %s\n", describeQuote(coin, side, quote))
	}

	result, err := machine.Submit(ctx)
	if err != nil {
		if trade.IsRejection(err) {
			return fmt.Errorf("trade not submitted: %w", err)
		}
		// the error notification was already printed
		return err
	}

	link := result.URL
	if link == "" {
		link = result.TxHash
	}
	fmt.Fprintf(out, "Confirmed in block %d: %s\n", result.BlockNumber, link)
	return nil
}

// awaitQuote sets the amount and waits until the intent can be submitted
func awaitQuote(ctx context.Context, machine *trade.Machine, rawAmount string) (trade.State, error) {
	changed := make(chan struct{}, 1)
	unsubscribe := machine.Subscribe(func(trade.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := machine.SetInput(rawAmount); err != nil {
		return trade.State{}, err
	}

	for {
		s := machine.Snapshot()
		switch s.Phase {
		case trade.PhasePreviewReady:
			return s, nil
		case trade.PhaseFailed:
			return s, s.Err
		case trade.PhaseIdle:
			return s, fmt.Errorf("invalid amount: %q", rawAmount)
		}

		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-changed:
		}
	}
}

func describeQuote(coin *domain.Coin, side domain.Side, s trade.State) string {
	if side == domain.SideSell {
		return domain.FormatAmount(s.Preview, domain.NATIVE_CURRENCY_DECIMALS) + " ETH"
	}
	return domain.FormatAmount(s.Preview, coin.Decimals) + " " + coin.Symbol
}

func ensureTerms(ctx context.Context, cache *tradecache.Cache) error {
	if cache.TermsAccepted() {
		return nil
	}
	if !acceptTerms {
		return errors.New("terms of use not accepted, rerun with --accept-terms")
	}
	return cache.SetTermsAccepted(ctx, true)
}

// consoleSink prints notifications for one-shot commands
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) Deliver(ctx context.Context, n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("[%s] %s", n.Kind, n.Title)
	if n.Message != "" && n.Message != n.Title {
		line += ": " + n.Message
	}
	if n.URL != "" {
		line += " " + n.URL
	}
	fmt.Fprintln(s.out, line)
}
