package currency

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PolicyPreserve = "preserve"
	PolicyLegacy   = "legacy"
)

type Policy interface {
	Name() string
	Normalize(amount decimal.Decimal, code string) (Amount, error)
}

// PolicyByName resolves the CURRENCY_POLICY setting. Empty means preserve.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyPreserve:
		return PreservePolicy{}, nil
	case PolicyLegacy:
		return LegacyPolicy{}, nil
	default:
		return nil, &ValidationError{Field: "currency policy", Value: name, Reason: "expected preserve or legacy"}
	}
}

// PreservePolicy keeps the sign and rounds half away from zero to the
// currency's minor unit.
type PreservePolicy struct{}

func (PreservePolicy) Name() string { return PolicyPreserve }

func (PreservePolicy) Normalize(amount decimal.Decimal, code string) (Amount, error) {
	if err := validateCode(code); err != nil {
		return Amount{}, err
	}
	places := Places(code)
	v := amount.Round(places)
	if v.IsZero() {
		v = decimal.Zero
	}
	return Amount{Value: v, Places: places}, nil
}

// LegacyPolicy reproduces the older integration: absolute value, whole
// units, and never zero for a non-zero input.
type LegacyPolicy struct{}

func (LegacyPolicy) Name() string { return PolicyLegacy }

func (LegacyPolicy) Normalize(amount decimal.Decimal, code string) (Amount, error) {
	if err := validateCode(code); err != nil {
		return Amount{}, err
	}
	v := amount.Abs().Round(0)
	if !amount.IsZero() && v.IsZero() {
		v = decimal.NewFromInt(1)
	}
	return Amount{Value: v, Places: 0}, nil
}

// NormalizeValue accepts the loosely typed amounts found in snapshots and
// payloads. Anything that is not a finite number is a ValidationError.
func NormalizeValue(p Policy, v any, code string) (Amount, error) {
	d, err := toDecimal(v)
	if err != nil {
		return Amount{}, err
	}
	return p.Normalize(d, code)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, &ValidationError{Field: "amount", Value: v, Reason: "nil"}
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float32:
		return fromFloat(float64(n), v)
	case float64:
		return fromFloat(n, v)
	case json.Number:
		return fromString(n.String(), v)
	case string:
		return fromString(n, v)
	default:
		return decimal.Decimal{}, &ValidationError{Field: "amount", Value: v, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func fromFloat(f float64, raw any) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Value: raw, Reason: "not finite"}
	}
	return decimal.NewFromFloat(f), nil
}

func fromString(s string, raw any) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Value: raw, Reason: "not a number"}
	}
	return d, nil
}

func validateCode(code string) error {
	if len(code) != 3 {
		return &ValidationError{Field: "currency code", Value: code, Reason: "expected ISO-4217 code"}
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return &ValidationError{Field: "currency code", Value: code, Reason: "expected ISO-4217 code"}
		}
	}
	return nil
}
