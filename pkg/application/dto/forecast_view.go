package dto

import (
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// ForecastEntryView is a forecast entry joined with its project
type ForecastEntryView struct {
	ForecastEntryID     entities.ForecastID `json:"forecast_entry_id"`
	ProjectID           entities.ProjectID  `json:"project_id"`
	ForecastInputType   entities.InputType  `json:"forecast_input_type"`
	ForecastInputValue  float64             `json:"forecast_input_value"`
	IsForecastCompleted bool                `json:"is_forecast_completed"`
	ForecastDate        entities.Date       `json:"forecast_date"`
	IsDeduction         bool                `json:"is_deduction"`
	ProjectNo           string              `json:"project_no"`
	ProjectName         string              `json:"project_name"`
	ProjectAmount       entities.Amount     `json:"project_amount"`
	ProjectStatus       float64             `json:"project_status"`
	ProjectPIC          string              `json:"project_pic"`
	CalculatedAmount    float64             `json:"calculated_amount"`
	CalculatedPercent   float64             `json:"calculated_percent"`
}

// NewForecastEntryView converts a joined forecast row for the API
func NewForecastEntryView(f *entities.ForecastView) ForecastEntryView {
	return ForecastEntryView{
		ForecastEntryID:     f.ID,
		ProjectID:           f.ProjectID,
		ForecastInputType:   f.InputType,
		ForecastInputValue:  f.Value,
		IsForecastCompleted: f.Completed,
		ForecastDate:        f.Date,
		IsDeduction:         f.Deduction,
		ProjectNo:           f.ProjectNo,
		ProjectName:         f.ProjectName,
		ProjectAmount:       f.ProjectAmount,
		ProjectStatus:       f.ProjectStatus,
		ProjectPIC:          f.ProjectPIC,
		CalculatedAmount:    f.AmountFor(f.ProjectAmount).InexactFloat64(),
		CalculatedPercent:   f.PercentFor(f.ProjectAmount),
	}
}

// ForecastToggleResult reports a completion toggle
type ForecastToggleResult struct {
	Message       string            `json:"message"`
	UpdatedEntry  ForecastEntryView `json:"updated_entry"`
	StatusChanged bool              `json:"-"`
}
