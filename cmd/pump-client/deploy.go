package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
)

var errNotGraduated = errors.New("coin has not graduated")

var deployCmd = &cobra.Command{
	Use:   "deploy <coin-id|address>",
	Short: "Deploy the DEX pool of a graduated coin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cfg, newConsoleSink(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer a.Close()

		coin, err := fetchCoin(ctx, a, args[0])
		if err != nil {
			return err
		}
		ctx = logger.WithFields(ctx, zap.Int64("coin_id", coin.ID))
		client, err := a.openChain(ctx)
		if err != nil {
			return err
		}

		pair, err := deployPool(ctx, client, coin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Coin %d is trading at %s\n", coin.ID, pair.Hex())
		return nil
	},
}

// deployPool moves a graduated coin's liquidity to the DEX and returns the pair address.
// A coin whose pair already exists is left untouched.
func deployPool(ctx context.Context, client ethereum.TradeClient, coin *domain.Coin) (common.Address, error) {
	if !coin.Graduated {
		return common.Address{}, fmt.Errorf("%w: %d", errNotGraduated, coin.ID)
	}

	pair, err := client.ReadPair(ctx, coin.ID)
	if err != nil {
		return common.Address{}, err
	}
	if pair != (common.Address{}) {
		logger.InfoCtx(ctx, "Pool already deployed", zap.String("pair", pair.Hex()))
		return pair, nil
	}

	handle, err := client.SubmitDeployGraduated(ctx, coin.ID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to submit deployGraduated: %w", err)
	}
	logger.InfoCtx(ctx, "Sent deployGraduated tx", zap.String("tx_hash", handle.Hash.Hex()), zap.String("url", handle.URL))

	receipt, err := client.WaitForConfirmation(ctx, handle)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to confirm deployGraduated: %w", err)
	}
	if !receipt.Success {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, handle.Hash.Hex())
	}

	pair, err = client.ReadPair(ctx, coin.ID)
	if err != nil {
		return common.Address{}, err
	}
	if pair == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no pair for coin %d after deployment", coin.ID)
	}
	return pair, nil
}
