package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ForecastID identifies a forecast entry
type ForecastID int64

// InputType says how a forecast value is expressed
type InputType string

const (
	InputPercent InputType = "percent"
	InputAmount  InputType = "amount"
)

// ParseInputType accepts percent, amount and deduction_percent. The latter
// is stored as percent with the deduction flag forced on.
func ParseInputType(s string) (InputType, bool, error) {
	switch s {
	case "percent":
		return InputPercent, false, nil
	case "amount":
		return InputAmount, false, nil
	case "deduction_percent":
		return InputPercent, true, nil
	default:
		return "", false, fmt.Errorf("invalid forecast input type %q", s)
	}
}

// ForecastEntry is a planned invoice against a project
type ForecastEntry struct {
	ID        ForecastID
	ProjectID ProjectID
	Date      Date
	InputType InputType
	Value     float64
	Completed bool
	Deduction bool
}

func (f *ForecastEntry) sign() float64 {
	if f.Deduction {
		return -1
	}
	return 1
}

// AmountFor returns the monetary value of the entry for a project amount.
// Percent entries against a project without an amount are worth zero.
func (f *ForecastEntry) AmountFor(projectAmount Amount) decimal.Decimal {
	var value decimal.Decimal
	switch f.InputType {
	case InputPercent:
		if !projectAmount.Valid {
			return decimal.Zero
		}
		value = projectAmount.Decimal.Mul(decimal.NewFromFloat(f.Value)).Div(hundred)
	case InputAmount:
		value = decimal.NewFromFloat(f.Value)
	default:
		return decimal.Zero
	}
	if f.Deduction {
		value = value.Neg()
	}
	return value
}

// PercentFor returns the share of the project amount the entry represents
func (f *ForecastEntry) PercentFor(projectAmount Amount) float64 {
	if projectAmount.IsZeroOrAbsent() {
		return 0
	}
	var pct float64
	switch f.InputType {
	case InputPercent:
		pct = f.Value
	case InputAmount:
		amt, _ := projectAmount.Decimal.Float64()
		pct = f.Value / amt * 100
	}
	return pct * f.sign()
}

// ForecastView is a forecast entry joined with its project
type ForecastView struct {
	ForecastEntry
	ProjectNo     string
	ProjectName   string
	ProjectAmount Amount
	ProjectStatus float64
	ProjectPIC    string
}
