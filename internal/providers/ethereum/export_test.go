package ethereum

// Exported aliases for the external ethereum_test package.
var (
	PumpABI   = pumpABI
	RouterABI = routerABI
	ERC20ABI  = erc20ABI
)
