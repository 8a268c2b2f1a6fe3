package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-typed decimal string into base units using the given precision.
// Digits beyond the precision are truncated. It returns false when the input is not a positive
// number, which callers treat as "no valid amount" rather than an error.
func ParseAmount(raw string, decimals uint8) (*big.Int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}

	units := d.Shift(int32(decimals)).Truncate(0)
	if !units.IsPositive() {
		return nil, false
	}

	return units.BigInt(), true
}

// FormatAmount renders base units as a decimal string with the given precision
func FormatAmount(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// ProgressPercent returns value*100/threshold as a whole percentage capped at 100
func ProgressPercent(value, threshold *big.Int) int64 {
	if value == nil || threshold == nil || threshold.Sign() <= 0 {
		return 0
	}

	pct := new(big.Int).Mul(value, big.NewInt(100))
	pct.Quo(pct, threshold)
	if pct.Cmp(big.NewInt(100)) > 0 {
		return 100
	}
	return pct.Int64()
}

// ApplySlippage returns amount reduced by bps basis points, floored at zero
func ApplySlippage(amount *big.Int, bps int) *big.Int {
	if amount == nil || bps >= MAX_SLIPPAGE_BPS {
		return new(big.Int)
	}
	if bps < 0 {
		bps = 0
	}

	out := new(big.Int).Mul(amount, big.NewInt(int64(MAX_SLIPPAGE_BPS-bps)))
	return out.Quo(out, big.NewInt(MAX_SLIPPAGE_BPS))
}
