package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const pumpABIJSON = `[
{"inputs":[{"name":"coinId","type":"uint32"}],"name":"getWeiIn","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"coinId","type":"uint32"}],"name":"getPair","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"coinId","type":"uint32"}],"name":"buy","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"coinId","type":"uint32"}],"name":"refundPurchase","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"coinId","type":"uint32"}],"name":"deployGraduated","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"supply","type":"uint256"}],"name":"createCoin","outputs":[{"name":"","type":"uint32"}],"stateMutability":"nonpayable","type":"function"},
{"anonymous":false,"inputs":[{"indexed":false,"name":"coinId","type":"uint32"}],"name":"CoinCreated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":false,"name":"coinId","type":"uint32"}],"name":"CoinGraduated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":false,"name":"coinId","type":"uint32"},{"indexed":false,"name":"lpToken","type":"address"}],"name":"DeployedToDex","type":"event"}
]`

// Uniswap V2 style router
const routerABIJSON = `[
{"inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactETHForTokens","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactTokensForETH","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
]`

const erc20ABIJSON = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	pumpABI   = mustParseABI(pumpABIJSON)
	routerABI = mustParseABI(routerABIJSON)
	erc20ABI  = mustParseABI(erc20ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
