package domain

import "time"

const (
	// Gas ceilings per write operation kind
	GAS_LIMIT_CREATE_COIN        uint64 = 2_000_000
	GAS_LIMIT_APPROVE            uint64 = 100_000
	GAS_LIMIT_BUY_PRE_GRADUATION uint64 = 400_000
	GAS_LIMIT_SWAP_THRU_WETH     uint64 = 150_000
	GAS_LIMIT_REFUND_PURCHASE    uint64 = 150_000
	GAS_LIMIT_DEPLOY_GRADUATED   uint64 = 3_000_000

	// Trade defaults
	DEFAULT_TRADE_DEADLINE   = 20 * time.Minute
	DEFAULT_SLIPPAGE_BPS     = 10_000
	MAX_SLIPPAGE_BPS         = 10_000
	DEFAULT_GRADUATION_WEI   = "1000000000000000000"
	NATIVE_CURRENCY_DECIMALS = 18

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)
