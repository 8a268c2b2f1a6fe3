package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/providers/coinapi"
	"github.com/pumprand/pump-client/internal/providers/ethereum"
)

const DEFAULT_COIN_SUPPLY = "21000"

// CoinDraft is the user input for a new coin
type CoinDraft struct {
	Name        string
	Symbol      string
	Supply      string // whole tokens
	Description string
	Twitter     string
	Website     string
	Telegram    string
	ImageName   string
	Image       []byte
}

var draft CoinDraft

var createCmd = &cobra.Command{
	Use:   "create --name NAME --symbol SYMBOL [--image FILE]",
	Short: "Create a coin on chain and register it with the query API",
	Args:  cobra.NoArgs,
	RunE:  createCoin,
}

var createImagePath string

func init() {
	f := createCmd.Flags()
	f.StringVar(&draft.Name, "name", "", "Coin name")
	f.StringVar(&draft.Symbol, "symbol", "", "Coin symbol")
	f.StringVar(&draft.Supply, "supply", DEFAULT_COIN_SUPPLY, "Total supply in whole tokens")
	f.StringVar(&draft.Description, "description", "", "Description")
	f.StringVar(&draft.Twitter, "twitter", "", "Twitter link")
	f.StringVar(&draft.Website, "website", "", "Website link")
	f.StringVar(&draft.Telegram, "telegram", "", "Telegram link")
	f.StringVar(&createImagePath, "image", "", "Path to the coin image")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("symbol")
}

func createCoin(cmd *cobra.Command, args []string) error {
	ctx := logger.WithFields(cmd.Context(), zap.String("symbol", draft.Symbol))

	if createImagePath != "" {
		image, err := os.ReadFile(createImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		draft.Image = image
		draft.ImageName = filepath.Base(createImagePath)
	}

	a, err := newApp(cfg, newConsoleSink(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.openChain(ctx)
	if err != nil {
		return err
	}
	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	if err := ensureTerms(ctx, cache); err != nil {
		return err
	}

	l := &launcher{client: client, api: a.api, pumpAddress: cfg.Ethereum.PumpAddress}
	id, err := l.Launch(ctx, draft)
	if err != nil {
		return err
	}

	if _, err := a.loader.RefreshCoin(ctx, id); err != nil {
		logger.WarnCtx(ctx, "Created coin is not visible yet", zap.Int64("coin_id", id), zap.Error(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created coin %d\n", id)
	return nil
}

// launcher creates a coin on chain, then registers, illustrates and verifies it with the query API
type launcher struct {
	client      ethereum.TradeClient
	api         coinapi.Client
	pumpAddress string
}

// Launch returns the id assigned by the pump contract
func (l *launcher) Launch(ctx context.Context, d CoinDraft) (int64, error) {
	if d.Name == "" || d.Symbol == "" {
		return 0, fmt.Errorf("name and symbol are required")
	}
	supply, ok := domain.ParseAmount(d.Supply, domain.NATIVE_CURRENCY_DECIMALS)
	if !ok {
		return 0, fmt.Errorf("invalid supply: %q", d.Supply)
	}

	handle, err := l.client.SubmitCreateCoin(ctx, d.Name, d.Symbol, supply)
	if err != nil {
		return 0, fmt.Errorf("failed to submit createCoin: %w", err)
	}
	logger.InfoCtx(ctx, "Sent createCoin tx", zap.String("tx_hash", handle.Hash.Hex()), zap.String("url", handle.URL))

	receipt, err := l.client.WaitForConfirmation(ctx, handle)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm createCoin: %w", err)
	}
	if !receipt.Success {
		return 0, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, handle.Hash.Hex())
	}

	id, ok := l.client.ParseCoinCreated(receipt)
	if !ok {
		return 0, fmt.Errorf("no CoinCreated event in receipt of %s", handle.Hash.Hex())
	}

	// The image is optional; a failed upload leaves the coin without one
	var imageURL *string
	if len(d.Image) > 0 {
		url, err := l.api.UploadImage(ctx, id, d.ImageName, d.Image)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to upload coin image", zap.Int64("coin_id", id), zap.Error(err))
		} else {
			imageURL = &url
		}
	}

	err = l.api.CreateCoin(ctx, coinapi.CreateCoinRequest{
		ID:              id,
		Name:            d.Name,
		Symbol:          d.Symbol,
		Supply:          domain.NewBigString(supply),
		Decimals:        domain.NATIVE_CURRENCY_DECIMALS,
		ContractAddress: l.pumpAddress,
		Creator:         handle.From.Hex(),
		Description:     optional(d.Description),
		ImageURL:        imageURL,
		Twitter:         optional(d.Twitter),
		Website:         optional(d.Website),
		Telegram:        optional(d.Telegram),
	})
	if err != nil {
		return id, fmt.Errorf("failed to register coin %d: %w", id, err)
	}

	if err := l.api.VerifyCoin(ctx, id); err != nil {
		return id, fmt.Errorf("failed to verify coin %d: %w", id, err)
	}

	return id, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
