// Package currency turns order money into the amounts the processor accepts.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal holds codes whose minor unit has no fractional subdivision.
// COP and CLP are included because Mercado Pago rejects cents for them.
var zeroDecimal = map[string]struct{}{
	"BIF": {}, "CLP": {}, "COP": {}, "DJF": {}, "GNF": {}, "ISK": {},
	"JPY": {}, "KMF": {}, "KRW": {}, "PYG": {}, "RWF": {}, "UGX": {},
	"UYI": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

func IsZeroDecimal(code string) bool {
	_, ok := zeroDecimal[strings.ToUpper(code)]
	return ok
}

// Places returns the number of fractional digits the processor expects for code.
func Places(code string) int32 {
	if IsZeroDecimal(code) {
		return 0
	}
	return 2
}

// Amount is a normalized value ready to be sent to the processor.
type Amount struct {
	Value  decimal.Decimal
	Places int32
}

func NewAmount(v decimal.Decimal, places int32) Amount {
	return Amount{Value: v.Round(places), Places: places}
}

func (a Amount) IsZero() bool     { return a.Value.IsZero() }
func (a Amount) IsNegative() bool { return a.Value.IsNegative() }

func (a Amount) Neg() Amount {
	return Amount{Value: a.Value.Neg(), Places: a.Places}
}

func (a Amount) Mul(qty int) Amount {
	return Amount{Value: a.Value.Mul(decimal.NewFromInt(int64(qty))), Places: a.Places}
}

func (a Amount) String() string {
	return a.Value.StringFixed(a.Places)
}

// MarshalJSON writes a bare JSON number with exactly Places fractional digits,
// so 0 stays "0" for zero-decimal currencies and "0.00" otherwise.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return &ValidationError{Field: "amount", Value: s, Reason: "not a number"}
	}
	a.Value = v
	a.Places = -v.Exponent()
	if a.Places < 0 {
		a.Places = 0
	}
	return nil
}
