package domain

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUpdateType(t *testing.T) {
	tests := []struct {
		name     string
		t        UpdateType
		expected bool
	}{
		{name: "coin", t: UpdateTypeCoin, expected: true},
		{name: "verified coin", t: UpdateTypeVerifiedCoin, expected: true},
		{name: "wei in updated", t: UpdateTypeWeiInUpdated, expected: true},
		{name: "graduated coin", t: UpdateTypeGraduatedCoin, expected: true},
		{name: "deployed to dex", t: UpdateTypeDeployedToDex, expected: true},
		{name: "empty", t: UpdateType(""), expected: false},
		{name: "unknown", t: UpdateType("priceUpdated"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidUpdateType(tt.t))
		})
	}
}

func TestCoinUpdate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		expectError bool
		validate    func(*testing.T, *CoinUpdate)
	}{
		{
			name:    "full coin",
			payload: `{"type":"verifiedCoin","data":{"id":7,"name":"Pepe","symbol":"PEPE","supply":"1000000","decimals":18,"contractAddress":"0xabc","creator":"0xdef","graduated":false,"verified":true,"weiIn":"0","deployedPool":null,"description":null,"createdAt":"2024-05-01T10:00:00"}}`,
			validate: func(t *testing.T, u *CoinUpdate) {
				assert.Equal(t, UpdateTypeVerifiedCoin, u.Type)
				require.NotNil(t, u.Coin)
				assert.Nil(t, u.Patch)
				assert.Equal(t, int64(7), u.ID())
				assert.Equal(t, "PEPE", u.Coin.Symbol)
				assert.Equal(t, BigString("1000000"), u.Coin.Supply)
				assert.Equal(t, uint8(18), u.Coin.Decimals)
				assert.True(t, u.Coin.Verified)
			},
		},
		{
			name:    "wei in as string",
			payload: `{"type":"weiInUpdated","data":{"id":4,"weiIn":"500"}}`,
			validate: func(t *testing.T, u *CoinUpdate) {
				require.NotNil(t, u.Patch)
				require.NotNil(t, u.Patch.WeiIn)
				assert.Equal(t, BigString("500"), *u.Patch.WeiIn)
				assert.Nil(t, u.Patch.Graduated)
				assert.Nil(t, u.Patch.DeployedPool)
			},
		},
		{
			name:    "wei in as number with fraction",
			payload: `{"type":"weiInUpdated","data":{"id":4,"weiIn":500.0}}`,
			validate: func(t *testing.T, u *CoinUpdate) {
				require.NotNil(t, u.Patch.WeiIn)
				assert.Equal(t, BigString("500"), *u.Patch.WeiIn)
			},
		},
		{
			name:    "graduated",
			payload: `{"type":"graduatedCoin","data":{"id":3,"graduated":false}}`,
			validate: func(t *testing.T, u *CoinUpdate) {
				require.NotNil(t, u.Patch.Graduated)
				assert.False(t, *u.Patch.Graduated)
			},
		},
		{
			name:        "unknown type",
			payload:     `{"type":"priceUpdated","data":{"id":3}}`,
			expectError: true,
		},
		{
			name:        "missing id",
			payload:     `{"type":"weiInUpdated","data":{"weiIn":"1"}}`,
			expectError: true,
		},
		{
			name:        "missing data",
			payload:     `{"type":"coin"}`,
			expectError: true,
		},
		{
			name:        "not json",
			payload:     `hello`,
			expectError: true,
		},
		{
			name:        "malformed wei in",
			payload:     `{"type":"weiInUpdated","data":{"id":4,"weiIn":"abc"}}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u CoinUpdate
			err := json.Unmarshal([]byte(tt.payload), &u)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidUpdate))
				return
			}
			require.NoError(t, err)
			tt.validate(t, &u)
		})
	}
}

func TestCoinUpdate_MarshalJSON(t *testing.T) {
	wei := BigString("42")
	u := CoinUpdate{Type: UpdateTypeWeiInUpdated, Patch: &CoinPatch{ID: 9, WeiIn: &wei}}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"weiInUpdated","data":{"id":9,"weiIn":"42"}}`, string(data))

	_, err = json.Marshal(CoinUpdate{Type: UpdateTypeCoin})
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		expected string
		ok       bool
	}{
		{name: "whole", raw: "1", decimals: 18, expected: "1000000000000000000", ok: true},
		{name: "fraction", raw: "0.5", decimals: 18, expected: "500000000000000000", ok: true},
		{name: "padded", raw: " 0.6 ", decimals: 18, expected: "600000000000000000", ok: true},
		{name: "six decimals", raw: "12.345678", decimals: 6, expected: "12345678", ok: true},
		{name: "truncates extra precision", raw: "1.23456789", decimals: 2, expected: "123", ok: true},
		{name: "empty", raw: "", decimals: 18},
		{name: "letters", raw: "abc", decimals: 18},
		{name: "zero", raw: "0", decimals: 18},
		{name: "negative", raw: "-1", decimals: 18},
		{name: "below precision", raw: "0.001", decimals: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseAmount(tt.raw, tt.decimals)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				require.NotNil(t, v)
				assert.Equal(t, tt.expected, v.String())
			} else {
				assert.Nil(t, v)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	v, _ := new(big.Int).SetString("480000000000000000", 10)
	assert.Equal(t, "0.48", FormatAmount(v, 18))
	assert.Equal(t, "0", FormatAmount(nil, 18))
}

func TestProgressPercent(t *testing.T) {
	threshold, _ := new(big.Int).SetString(DEFAULT_GRADUATION_WEI, 10)
	half := new(big.Int).Div(threshold, big.NewInt(2))
	double := new(big.Int).Mul(threshold, big.NewInt(2))

	assert.Equal(t, int64(50), ProgressPercent(half, threshold))
	assert.Equal(t, int64(100), ProgressPercent(double, threshold))
	assert.Equal(t, int64(0), ProgressPercent(big.NewInt(500), threshold))
	assert.Equal(t, int64(0), ProgressPercent(half, big.NewInt(0)))
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, "0", ApplySlippage(big.NewInt(1000), DEFAULT_SLIPPAGE_BPS).String())
	assert.Equal(t, "990", ApplySlippage(big.NewInt(1000), 100).String())
	assert.Equal(t, "1000", ApplySlippage(big.NewInt(1000), 0).String())
	assert.Equal(t, "0", ApplySlippage(nil, 100).String())
}

func TestMissingDependencyError(t *testing.T) {
	err := NewMissingDependencyError("signer")
	assert.True(t, errors.Is(err, ErrMissingDependency))

	var mde *MissingDependencyError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "signer", mde.Dependency)
	assert.Equal(t, "missing dependency: signer", err.Error())
}
