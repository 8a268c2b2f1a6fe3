package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
)

const DEFAULT_CONFIRMATION_POLL_INTERVAL = 2 * time.Second

// TxHandle identifies a submitted transaction
type TxHandle struct {
	Hash  common.Hash
	From  common.Address
	Nonce uint64
	URL   string // explorer link, empty when no explorer is configured
}

// Receipt is the outcome of a mined transaction.
// A reverted transaction has Success false and is not an error.
type Receipt struct {
	Success     bool
	BlockNumber uint64
	GasUsed     uint64
	Logs        []*types.Log
}

// Config holds the execution layer settings of the trade client
type Config struct {
	ChainID       int64 // 0 asks the node
	PrivateKey    string
	PumpAddress   string
	RouterAddress string
	WETHAddress   string
	ExplorerURL   string
	PollInterval  time.Duration
}

// TradeClient defines the contract calls used by trade flows
//
//go:generate mockgen -source=trade_client.go -destination=../../mocks/trade_client.go -package=mocks -mock_names=TradeClient=MockTradeClient
type TradeClient interface {
	// Account returns the signer address
	Account() (common.Address, error)

	// Router returns the router address, the spender of sell approvals
	Router() (common.Address, error)

	// ReadCumulativeValueIn returns the native value the signer paid into a pre-graduation coin
	ReadCumulativeValueIn(ctx context.Context, coinID int64) (*big.Int, error)

	// ReadNativeBalance returns the native balance of owner
	ReadNativeBalance(ctx context.Context, owner common.Address) (*big.Int, error)

	// ReadTokenBalance returns the ERC20 balance of owner
	ReadTokenBalance(ctx context.Context, owner, token common.Address) (*big.Int, error)

	// ReadAllowance returns the ERC20 allowance granted by owner to spender
	ReadAllowance(ctx context.Context, owner, token, spender common.Address) (*big.Int, error)

	// ReadPair returns the DEX pair of a graduated coin
	ReadPair(ctx context.Context, coinID int64) (common.Address, error)

	// PreviewBuy quotes the tokens received for amountIn native value
	PreviewBuy(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error)

	// PreviewSell quotes the native value received for amountIn tokens
	PreviewSell(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error)

	SubmitApproval(ctx context.Context, token, spender common.Address, amount *big.Int) (*TxHandle, error)
	SubmitBuyPreGraduation(ctx context.Context, coinID int64, valueIn *big.Int) (*TxHandle, error)
	SubmitBuyPostGraduation(ctx context.Context, token common.Address, amountIn, minOut *big.Int, deadline time.Time) (*TxHandle, error)
	SubmitSell(ctx context.Context, token common.Address, amountIn, minOut *big.Int, deadline time.Time) (*TxHandle, error)
	SubmitRefund(ctx context.Context, coinID int64) (*TxHandle, error)
	SubmitCreateCoin(ctx context.Context, name, symbol string, supply *big.Int) (*TxHandle, error)
	SubmitDeployGraduated(ctx context.Context, coinID int64) (*TxHandle, error)

	// WaitForConfirmation blocks until the transaction is mined or ctx is done
	WaitForConfirmation(ctx context.Context, tx *TxHandle) (*Receipt, error)

	// ParseCoinCreated extracts the id of a coin created in the receipt
	ParseCoinCreated(receipt *Receipt) (int64, bool)
}

type tradeClient struct {
	client       adapter.EthClient
	key          *ecdsa.PrivateKey
	from         common.Address
	pump         common.Address
	router       common.Address
	weth         common.Address
	explorerURL  string
	pollInterval time.Duration

	chainMu sync.Mutex
	chainID *big.Int
}

// NewTradeClient creates a trade client. Unset addresses and an unset private key are
// reported as missing dependencies when an operation needs them.
func NewTradeClient(cfg Config, client adapter.EthClient) (TradeClient, error) {
	c := &tradeClient{
		client:       client,
		explorerURL:  strings.TrimRight(cfg.ExplorerURL, "/"),
		pollInterval: cfg.PollInterval,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DEFAULT_CONFIRMATION_POLL_INTERVAL
	}
	if cfg.ChainID > 0 {
		c.chainID = big.NewInt(cfg.ChainID)
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	var err error
	if c.pump, err = parseAddress("pump", cfg.PumpAddress); err != nil {
		return nil, err
	}
	if c.router, err = parseAddress("router", cfg.RouterAddress); err != nil {
		return nil, err
	}
	if c.weth, err = parseAddress("weth", cfg.WETHAddress); err != nil {
		return nil, err
	}

	return c, nil
}

func parseAddress(name, raw string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, raw)
	}
	return common.HexToAddress(raw), nil
}

// DefaultDeadline returns the swap deadline for a trade submitted at now
func DefaultDeadline(now time.Time) time.Time {
	return now.Add(domain.DEFAULT_TRADE_DEADLINE)
}

func (c *tradeClient) Account() (common.Address, error) {
	if c.key == nil {
		return common.Address{}, domain.NewMissingDependencyError("signer")
	}
	return c.from, nil
}

func (c *tradeClient) Router() (common.Address, error) {
	return requireAddress("router", c.router)
}

func requireAddress(name string, addr common.Address) (common.Address, error) {
	if addr == common.HexToAddress(domain.ETHEREUM_ZERO_ADDRESS) {
		return common.Address{}, domain.NewMissingDependencyError(name)
	}
	return addr, nil
}

func (c *tradeClient) ReadCumulativeValueIn(ctx context.Context, coinID int64) (*big.Int, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return nil, err
	}
	id, err := toCoinID(coinID)
	if err != nil {
		return nil, err
	}

	out, err := c.call(ctx, pump, pumpABI, "getWeiIn", id)
	if err != nil {
		return nil, err
	}
	return unpackBigInt(out)
}

func (c *tradeClient) ReadNativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

func (c *tradeClient) ReadTokenBalance(ctx context.Context, owner, token common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, erc20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return unpackBigInt(out)
}

func (c *tradeClient) ReadAllowance(ctx context.Context, owner, token, spender common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, erc20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return unpackBigInt(out)
}

func (c *tradeClient) ReadPair(ctx context.Context, coinID int64) (common.Address, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return common.Address{}, err
	}
	id, err := toCoinID(coinID)
	if err != nil {
		return common.Address{}, err
	}

	out, err := c.call(ctx, pump, pumpABI, "getPair", id)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("unexpected getPair result length %d", len(out))
	}
	pair, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPair result type %T", out[0])
	}
	return pair, nil
}

func (c *tradeClient) PreviewBuy(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error) {
	weth, err := requireAddress("weth", c.weth)
	if err != nil {
		return nil, err
	}
	return c.amountOut(ctx, amountIn, []common.Address{weth, token})
}

func (c *tradeClient) PreviewSell(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error) {
	weth, err := requireAddress("weth", c.weth)
	if err != nil {
		return nil, err
	}
	return c.amountOut(ctx, amountIn, []common.Address{token, weth})
}

func (c *tradeClient) amountOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	router, err := requireAddress("router", c.router)
	if err != nil {
		return nil, err
	}

	out, err := c.call(ctx, router, routerABI, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getAmountsOut result length %d", len(out))
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, fmt.Errorf("unexpected getAmountsOut result %v", out[0])
	}
	return amounts[len(amounts)-1], nil
}

func (c *tradeClient) SubmitApproval(ctx context.Context, token, spender common.Address, amount *big.Int) (*TxHandle, error) {
	return c.send(ctx, token, nil, domain.GAS_LIMIT_APPROVE, nil, erc20ABI, "approve", spender, amount)
}

func (c *tradeClient) SubmitBuyPreGraduation(ctx context.Context, coinID int64, valueIn *big.Int) (*TxHandle, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return nil, err
	}
	id, err := toCoinID(coinID)
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.ensureNativeBalance(ctx, valueIn, domain.GAS_LIMIT_BUY_PRE_GRADUATION)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, pump, valueIn, domain.GAS_LIMIT_BUY_PRE_GRADUATION, gasPrice, pumpABI, "buy", id)
}

func (c *tradeClient) SubmitBuyPostGraduation(ctx context.Context, token common.Address, amountIn, minOut *big.Int, deadline time.Time) (*TxHandle, error) {
	router, err := requireAddress("router", c.router)
	if err != nil {
		return nil, err
	}
	weth, err := requireAddress("weth", c.weth)
	if err != nil {
		return nil, err
	}
	to, err := c.Account()
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.ensureNativeBalance(ctx, amountIn, domain.GAS_LIMIT_SWAP_THRU_WETH)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, router, amountIn, domain.GAS_LIMIT_SWAP_THRU_WETH, gasPrice, routerABI, "swapExactETHForTokens",
		nonNil(minOut), []common.Address{weth, token}, to, big.NewInt(deadline.Unix()))
}

func (c *tradeClient) SubmitSell(ctx context.Context, token common.Address, amountIn, minOut *big.Int, deadline time.Time) (*TxHandle, error) {
	router, err := requireAddress("router", c.router)
	if err != nil {
		return nil, err
	}
	weth, err := requireAddress("weth", c.weth)
	if err != nil {
		return nil, err
	}
	owner, err := c.Account()
	if err != nil {
		return nil, err
	}

	balance, err := c.ReadTokenBalance(ctx, owner, token)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amountIn) < 0 {
		return nil, domain.ErrInsufficientBalance
	}

	return c.send(ctx, router, nil, domain.GAS_LIMIT_SWAP_THRU_WETH, nil, routerABI, "swapExactTokensForETH",
		amountIn, nonNil(minOut), []common.Address{token, weth}, owner, big.NewInt(deadline.Unix()))
}

func (c *tradeClient) SubmitRefund(ctx context.Context, coinID int64) (*TxHandle, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return nil, err
	}
	id, err := toCoinID(coinID)
	if err != nil {
		return nil, err
	}

	weiIn, err := c.ReadCumulativeValueIn(ctx, coinID)
	if err != nil {
		return nil, err
	}
	if weiIn.Sign() <= 0 {
		return nil, domain.ErrInsufficientBalance
	}

	return c.send(ctx, pump, nil, domain.GAS_LIMIT_REFUND_PURCHASE, nil, pumpABI, "refundPurchase", id)
}

func (c *tradeClient) SubmitCreateCoin(ctx context.Context, name, symbol string, supply *big.Int) (*TxHandle, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, pump, nil, domain.GAS_LIMIT_CREATE_COIN, nil, pumpABI, "createCoin", name, symbol, supply)
}

func (c *tradeClient) SubmitDeployGraduated(ctx context.Context, coinID int64) (*TxHandle, error) {
	pump, err := requireAddress("pump", c.pump)
	if err != nil {
		return nil, err
	}
	id, err := toCoinID(coinID)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, pump, nil, domain.GAS_LIMIT_DEPLOY_GRADUATED, nil, pumpABI, "deployGraduated", id)
}

// WaitForConfirmation polls for the receipt at a constant interval.
// There is no client side timeout; only ctx bounds the wait.
func (c *tradeClient) WaitForConfirmation(ctx context.Context, tx *TxHandle) (*Receipt, error) {
	var receipt *types.Receipt

	operation := func() error {
		r, err := c.client.TransactionReceipt(ctx, tx.Hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				logger.WarnCtx(ctx, "Failed to fetch transaction receipt",
					zap.String("tx_hash", tx.Hash.Hex()),
					zap.Error(err))
			}
			return err
		}
		receipt = r
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash.Hex(), err)
	}

	result := &Receipt{
		Success: receipt.Status == types.ReceiptStatusSuccessful,
		GasUsed: receipt.GasUsed,
		Logs:    receipt.Logs,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

func (c *tradeClient) ParseCoinCreated(receipt *Receipt) (int64, bool) {
	if receipt == nil {
		return 0, false
	}
	event := pumpABI.Events["CoinCreated"]

	for _, l := range receipt.Logs {
		if l == nil || len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		if c.pump != (common.Address{}) && l.Address != c.pump {
			continue
		}
		if len(l.Topics) > 1 {
			return new(big.Int).SetBytes(l.Topics[1].Bytes()).Int64(), true
		}
		values, err := event.Inputs.Unpack(l.Data)
		if err != nil || len(values) != 1 {
			continue
		}
		if id, ok := values[0].(uint32); ok {
			return int64(id), true
		}
	}
	return 0, false
}

func (c *tradeClient) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &to, Data: data}
	if c.key != nil {
		msg.From = c.from
	}
	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := contract.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}

// ensureNativeBalance checks that the signer can pay value plus the gas ceiling and returns
// the gas price used for the check
func (c *tradeClient) ensureNativeBalance(ctx context.Context, value *big.Int, gasLimit uint64) (*big.Int, error) {
	owner, err := c.Account()
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	balance, err := c.ReadNativeBalance(ctx, owner)
	if err != nil {
		return nil, err
	}

	required := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	required.Add(required, nonNil(value))
	if balance.Cmp(required) < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	return gasPrice, nil
}

func (c *tradeClient) send(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, contract abi.ABI, method string, args ...interface{}) (*TxHandle, error) {
	from, err := c.Account()
	if err != nil {
		return nil, err
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	chainID, err := c.chain(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := c.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	if gasPrice == nil {
		if gasPrice, err = c.client.SuggestGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    nonNil(value),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", method, err)
	}
	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	handle := &TxHandle{
		Hash:  signed.Hash(),
		From:  from,
		Nonce: nonce,
	}
	if c.explorerURL != "" {
		handle.URL = c.explorerURL + "/tx/" + handle.Hash.Hex()
	}

	logger.InfoCtx(ctx, "Submitted transaction",
		zap.String("method", method),
		zap.String("tx_hash", handle.Hash.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit))

	return handle, nil
}

func (c *tradeClient) chain(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}

	id, err := c.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	c.chainID = id
	return id, nil
}

func toCoinID(id int64) (uint32, error) {
	if id < 0 || id > math.MaxUint32 {
		return 0, fmt.Errorf("invalid coin id: %d", id)
	}
	return uint32(id), nil
}

func unpackBigInt(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected result length %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", out[0])
	}
	return v, nil
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
