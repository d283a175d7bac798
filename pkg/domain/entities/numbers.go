package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLooseFloat converts user input to a float. Commas, percent signs and
// surrounding whitespace are ignored. Nil and empty input report false.
func ParseLooseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		return ParseLooseFloat(n.String())
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseLooseInt converts user input to an integer. Values within 1e-9 of a
// whole number are rounded, anything else is truncated.
func ParseLooseInt(v any) (int, bool) {
	f, ok := ParseLooseFloat(v)
	if !ok {
		return 0, false
	}
	if math.Abs(f-math.Round(f)) < 1e-9 {
		return int(math.Round(f)), true
	}
	return int(f), true
}

// ParseLooseDecimal is ParseLooseFloat for monetary values
func ParseLooseDecimal(v any) (decimal.Decimal, bool) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(strings.NewReplacer(",", "", "%", "").Replace(s))
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	f, ok := ParseLooseFloat(v)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// IsBlank reports whether v is nil or renders as whitespace only
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(fmt.Sprint(v)) == ""
}

// Amount is an optional monetary value. It scans from and stores to SQL
// through the embedded decimal.NullDecimal and encodes as a JSON number.
type Amount struct {
	decimal.NullDecimal
}

// NewAmount wraps a decimal as a present amount
func NewAmount(d decimal.Decimal) Amount {
	return Amount{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// NoAmount is the absent amount
func NoAmount() Amount {
	return Amount{}
}

// IsZeroOrAbsent reports whether the amount cannot serve as a divisor
func (a Amount) IsZeroOrAbsent() bool {
	return !a.Valid || a.Decimal.IsZero()
}

func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return a.Decimal.String()
}

// MarshalJSON encodes the amount as a bare number or null
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts null, numbers and numeric strings
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if IsBlank(raw) {
		*a = Amount{}
		return nil
	}
	d, ok := ParseLooseDecimal(raw)
	if !ok {
		return fmt.Errorf("invalid amount %s", string(data))
	}
	*a = NewAmount(d)
	return nil
}

// ClampPercent restricts a percentage to 0..100
func ClampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
