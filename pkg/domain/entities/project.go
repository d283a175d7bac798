package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProjectID identifies a project row
type ProjectID int64

var hundred = decimal.NewFromInt(100)

// Project represents a tracked customer project
type Project struct {
	ID              ProjectID
	DS              string
	Year            *int
	ProjectNo       string
	Client          string
	Name            string
	Amount          Amount
	Status          float64
	RemainingAmount Amount
	PODate          Date
	PONo            string
	DateCompleted   Date
	PIC             string
	Address         string
}

// NewProject creates a project with a validated name and a derived
// remaining amount
func NewProject(name string, amount Amount, status float64) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	p := &Project{Name: name, Amount: amount}
	p.SetStatus(status)
	return p, nil
}

// RemainingFor returns amount * (1 - status/100) with status clamped to
// 0..100. An absent amount yields an absent remaining amount.
func RemainingFor(amount Amount, status float64) Amount {
	if !amount.Valid {
		return NoAmount()
	}
	done := decimal.NewFromFloat(ClampPercent(status))
	return NewAmount(amount.Decimal.Mul(hundred.Sub(done)).Div(hundred))
}

// SetStatus clamps and stores the status, then recomputes the remaining amount
func (p *Project) SetStatus(status float64) {
	p.Status = ClampPercent(status)
	p.Recalculate()
}

// SetAmount stores the amount and recomputes the remaining amount
func (p *Project) SetAmount(amount Amount) {
	p.Amount = amount
	p.Recalculate()
}

// Recalculate refreshes RemainingAmount from Amount and Status
func (p *Project) Recalculate() {
	p.RemainingAmount = RemainingFor(p.Amount, p.Status)
}

// IsActive reports whether the project is neither completed nor at 100%
func (p *Project) IsActive() bool {
	return p.DateCompleted.IsZero() && p.Status < 100
}

// RunningWeeks counts the weeks since the PO date. The count stops at the
// completion date when that is earlier than today. Nil when no PO date is set.
func (p *Project) RunningWeeks(today Date) *int {
	if p.PODate.IsZero() {
		return nil
	}
	end := today
	if !p.DateCompleted.IsZero() && p.DateCompleted.Before(today) {
		end = p.DateCompleted
	}
	weeks := 0
	if !p.PODate.After(end) {
		weeks = p.PODate.DaysUntil(end)/7 + 1
	}
	return &weeks
}

// ProjectDetails is the short identification view of a project
type ProjectDetails struct {
	ID          ProjectID `json:"id"`
	ProjectNo   string    `json:"project_no"`
	ProjectName string    `json:"project_name"`
	PONo        string    `json:"po_no"`
}
