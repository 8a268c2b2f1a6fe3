package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/loader"
	"github.com/pumprand/pump-client/internal/logger"
	"github.com/pumprand/pump-client/internal/tradecache"
)

var (
	coinsIncludeHidden bool
	coinsLimit         int
	coinBalance        bool
)

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "Load every coin from the query API and list them, newest first",
	Args:  cobra.NoArgs,
	RunE:  listCoins,
}

var coinCmd = &cobra.Command{
	Use:   "coin <id|address>",
	Short: "Show one coin with its graduation progress and cached trade state",
	Args:  cobra.ExactArgs(1),
	RunE:  showCoin,
}

func init() {
	coinsCmd.Flags().BoolVar(&coinsIncludeHidden, "all", false, "Include hidden coins")
	coinsCmd.Flags().IntVar(&coinsLimit, "limit", 0, "Only fetch the newest page of this size")
	coinCmd.Flags().BoolVar(&coinBalance, "balance", false, "Read and cache the token balance of the configured account")
}

func listCoins(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if coinsLimit > 0 {
		page, err := a.loader.FetchPage(ctx, loader.PageQuery{Limit: coinsLimit})
		if err != nil {
			return err
		}
		a.store.Merge(page)
	} else if err := a.loader.FetchAll(ctx, cfg.API.PageLimit, cfg.API.PageSleep); err != nil {
		return err
	}

	coins := a.store.SelectVisible()
	if coinsIncludeHidden {
		coins = a.store.SelectAll()
	}

	threshold, _ := new(big.Int).SetString(cfg.Trade.GraduationThresholdWei, 10)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tNAME\tPROGRESS\tSTATUS")
	for _, c := range coins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\n", c.ID, c.Symbol, c.Name, progress(c, threshold), status(c))
	}
	return w.Flush()
}

func showCoin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	coin, err := fetchCoin(ctx, a, args[0])
	if err != nil {
		return err
	}

	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	if coinBalance {
		if err := refreshBalance(ctx, a, cache, coin); err != nil {
			return err
		}
	}

	body, err := a.json.MarshalIndent(coin)
	if err != nil {
		return fmt.Errorf("failed to marshal coin: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, string(body))

	threshold, _ := new(big.Int).SetString(cfg.Trade.GraduationThresholdWei, 10)
	printTradeState(out, coin, cache, threshold)
	return nil
}

// fetchCoin loads one coin by numeric id or contract address into the store
func fetchCoin(ctx context.Context, a *app, ref string) (*domain.Coin, error) {
	if common.IsHexAddress(ref) {
		coin, err := a.api.FetchCoinByAddress(ctx, ref)
		if err != nil {
			return nil, err
		}
		a.store.Merge([]domain.Coin{*coin})
		merged, _ := a.store.SelectByID(coin.ID)
		return merged, nil
	}

	id, err := parseCoinID(ref)
	if err != nil {
		return nil, err
	}
	if _, err := a.loader.RefreshCoin(ctx, id); err != nil {
		return nil, err
	}
	coin, _ := a.store.SelectByID(id)
	return coin, nil
}

// refreshBalance reads the on-chain token balance of a graduated coin into the cache
func refreshBalance(ctx context.Context, a *app, cache *tradecache.Cache, coin *domain.Coin) error {
	if !coin.Graduated {
		return nil
	}

	client, err := a.openChain(ctx)
	if err != nil {
		return err
	}
	owner, err := client.Account()
	if err != nil {
		return err
	}
	if !common.IsHexAddress(coin.ContractAddress) {
		return fmt.Errorf("coin %d has no token address", coin.ID)
	}

	balance, err := client.ReadTokenBalance(ctx, owner, common.HexToAddress(coin.ContractAddress))
	if err != nil {
		return err
	}
	if err := cache.SetBalance(ctx, coin.ID, balance); err != nil {
		logger.WarnCtx(ctx, "Failed to cache token balance", zap.Int64("coin_id", coin.ID), zap.Error(err))
	}
	return nil
}

func printTradeState(w io.Writer, coin *domain.Coin, cache *tradecache.Cache, threshold *big.Int) {
	fmt.Fprintf(w, "status: %s\n", status(coin))
	if !coin.Graduated {
		fmt.Fprintf(w, "progress: %d%%\n", progress(coin, threshold))
	}
	if weiIn := cache.WeiIn(coin.ID); weiIn != nil {
		fmt.Fprintf(w, "paid in: %s ETH\n", domain.FormatAmount(weiIn, domain.NATIVE_CURRENCY_DECIMALS))
	}
	if balance, ok := cache.Balance(coin.ID); ok {
		units, _ := new(big.Int).SetString(balance.BalanceUnits, 10)
		fmt.Fprintf(w, "balance: %s %s\n", domain.FormatAmount(units, coin.Decimals), coin.Symbol)
	}
}

func progress(c *domain.Coin, threshold *big.Int) int64 {
	if c.Graduated {
		return 100
	}
	return domain.ProgressPercent(c.WeiIn.Int(), threshold)
}

func status(c *domain.Coin) string {
	switch {
	case c.DeployedPool != nil && *c.DeployedPool != "":
		return "trading on dex"
	case c.Graduated:
		return "graduated"
	case c.Verified:
		return "bonding"
	default:
		return "unverified"
	}
}

func parseCoinID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 || id > math.MaxUint32 {
		return 0, fmt.Errorf("invalid coin id: %q", raw)
	}
	return id, nil
}
