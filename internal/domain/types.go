package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// UpdateType represents the tag of a live coin update
type UpdateType string

const (
	UpdateTypeCoin          UpdateType = "coin"
	UpdateTypeVerifiedCoin  UpdateType = "verifiedCoin"
	UpdateTypeWeiInUpdated  UpdateType = "weiInUpdated"
	UpdateTypeGraduatedCoin UpdateType = "graduatedCoin"
	UpdateTypeDeployedToDex UpdateType = "deployedToDex"
)

// IsValidUpdateType checks if an update type is known
func IsValidUpdateType(t UpdateType) bool {
	return t == UpdateTypeCoin ||
		t == UpdateTypeVerifiedCoin ||
		t == UpdateTypeWeiInUpdated ||
		t == UpdateTypeGraduatedCoin ||
		t == UpdateTypeDeployedToDex
}

// IsFull reports whether the update carries a complete coin record
func (t UpdateType) IsFull() bool {
	return t == UpdateTypeCoin || t == UpdateTypeVerifiedCoin
}

// Side represents the direction of a trade intent
type Side string

const (
	SideBuy    Side = "buy"
	SideSell   Side = "sell"
	SideRefund Side = "refund"
)

// IsValidSide checks if a side is valid
func IsValidSide(s Side) bool {
	return s == SideBuy || s == SideSell || s == SideRefund
}

// BigString is an arbitrary precision unsigned integer carried as a decimal string.
// It decodes from either a JSON string or a JSON number.
type BigString string

// UnmarshalJSON accepts both "123" and 123
func (b *BigString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	// Backend decimals may be rendered with a fractional part (e.g. "500.0")
	if i := strings.IndexByte(raw, '.'); i >= 0 && strings.Trim(raw[i+1:], "0") == "" {
		raw = raw[:i]
	}

	if raw == "" {
		*b = ""
		return nil
	}
	if _, ok := new(big.Int).SetString(raw, 10); !ok {
		return fmt.Errorf("invalid integer string: %q", raw)
	}

	*b = BigString(raw)
	return nil
}

// Int returns the value as a big integer, zero when empty or malformed
func (b BigString) Int() *big.Int {
	v, ok := new(big.Int).SetString(string(b), 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// NewBigString formats a big integer
func NewBigString(v *big.Int) BigString {
	if v == nil {
		return "0"
	}
	return BigString(v.String())
}

// Coin represents a tradable coin entity as served by the query API
type Coin struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	Supply          BigString `json:"supply"`
	Decimals        uint8     `json:"decimals"`
	ContractAddress string    `json:"contractAddress"`
	Creator         string    `json:"creator"`
	CreatedAt       string    `json:"createdAt"` // backend timestamp, passed through untouched
	Graduated       bool      `json:"graduated"`
	Verified        bool      `json:"verified"`
	Hidden          bool      `json:"hidden"`
	WeiIn           BigString `json:"weiIn"`
	DeployedPool    *string   `json:"deployedPool"`
	Description     *string   `json:"description"`
	ImageURL        *string   `json:"imageUrl,omitempty"`
	Twitter         *string   `json:"twitter,omitempty"`
	Website         *string   `json:"website,omitempty"`
	Telegram        *string   `json:"telegram,omitempty"`
}

// Key returns the entity store key of the coin
func (c *Coin) Key() string {
	return CoinKey(c.ID)
}

// Clone returns a shallow copy of the coin
func (c *Coin) Clone() *Coin {
	cp := *c
	return &cp
}

// CoinKey formats a coin id as an entity store key
func CoinKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// CoinPatch is a partial coin record; nil fields are unspecified
type CoinPatch struct {
	ID           int64      `json:"id"`
	WeiIn        *BigString `json:"weiIn,omitempty"`
	Graduated    *bool      `json:"graduated,omitempty"`
	DeployedPool *string    `json:"deployedPool,omitempty"`
}

// CoinUpdate is a tagged coin delta received from the live feed.
// Exactly one of Coin and Patch is set, depending on Type.
type CoinUpdate struct {
	Type  UpdateType
	Coin  *Coin
	Patch *CoinPatch
}

// ID returns the id the update refers to
func (u *CoinUpdate) ID() int64 {
	if u.Coin != nil {
		return u.Coin.ID
	}
	if u.Patch != nil {
		return u.Patch.ID
	}
	return 0
}

type wireCoinUpdate struct {
	Type UpdateType      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the {type, data} wire shape
func (u *CoinUpdate) UnmarshalJSON(data []byte) error {
	var w wireCoinUpdate
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if !IsValidUpdateType(w.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidUpdate, w.Type)
	}
	if len(w.Data) == 0 || bytes.Equal(w.Data, []byte("null")) {
		return fmt.Errorf("%w: missing data", ErrInvalidUpdate)
	}

	var ident struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Data, &ident); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if ident.ID == nil {
		return fmt.Errorf("%w: missing id", ErrInvalidUpdate)
	}

	u.Type = w.Type
	u.Coin = nil
	u.Patch = nil

	if w.Type.IsFull() {
		var c Coin
		if err := json.Unmarshal(w.Data, &c); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
		}
		u.Coin = &c
		return nil
	}

	var p CoinPatch
	if err := json.Unmarshal(w.Data, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	u.Patch = &p
	return nil
}

// MarshalJSON encodes the {type, data} wire shape
func (u CoinUpdate) MarshalJSON() ([]byte, error) {
	var data interface{}
	switch {
	case u.Coin != nil:
		data = u.Coin
	case u.Patch != nil:
		data = u.Patch
	default:
		return nil, fmt.Errorf("%w: empty update", ErrInvalidUpdate)
	}
	return json.Marshal(struct {
		Type UpdateType  `json:"type"`
		Data interface{} `json:"data"`
	}{u.Type, data})
}
