// Package testing builds in-memory fixture portfolios for tests.
package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/shopspring/decimal"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/memory"
)

// PortfolioDate is the reference day the portfolio fixture is built around
var PortfolioDate = entities.NewDate(2024, time.June, 15)

// BuildPortfolioTestData builds a small portfolio: two open projects in
// different segments, one completed project, updates, forecasts and a
// two-level task tree on the first project
func BuildPortfolioTestData() *memory.Store {
	ctx := context.Background()
	store := memory.NewStore()

	year := 2024
	projects := []struct {
		no, name, client, ds string
		amount               int64
		status               float64
		po                   entities.Date
		completed            entities.Date
	}{
		{"T-100", "Northern Line Upgrade", "Grid Co", "Transmission", 1000, 20, entities.NewDate(2024, time.June, 1), entities.Date{}},
		{"D-200", "Feeder Refurbishment", "City Power", "Distribution", 500, 0, entities.NewDate(2024, time.March, 10), entities.Date{}},
		{"T-300", "Substation Commissioning", "Grid Co", "Transmission", 800, 100, entities.NewDate(2023, time.November, 2), entities.NewDate(2024, time.February, 20)},
	}

	var created []*entities.Project
	for _, row := range projects {
		p, err := entities.NewProject(row.name, entities.NewAmount(decimal.NewFromInt(row.amount)), row.status)
		if err != nil {
			panic(err)
		}
		p.ProjectNo = row.no
		p.Client = row.client
		p.DS = row.ds
		p.Year = &year
		p.PODate = row.po
		p.DateCompleted = row.completed
		if err := store.Projects().Create(ctx, p); err != nil {
			panic(err)
		}
		created = append(created, p)
	}

	createdAt := PortfolioDate.Time().Add(-48 * time.Hour)
	for i, text := range []string{"Survey complete", "Poles delivered"} {
		u, err := entities.NewProjectUpdate(created[0].ID, text, PortfolioDate.AddDays(7*(i+1)))
		if err != nil {
			panic(err)
		}
		u.CreatedAt = createdAt.Add(time.Duration(i) * time.Hour)
		if err := store.Updates().Create(ctx, u); err != nil {
			panic(err)
		}
	}

	forecasts := []*entities.ForecastEntry{
		{ProjectID: created[0].ID, Date: entities.NewDate(2024, time.July, 31), InputType: entities.InputPercent, Value: 30},
		{ProjectID: created[1].ID, Date: entities.NewDate(2024, time.August, 31), InputType: entities.InputAmount, Value: 200},
	}
	for _, f := range forecasts {
		if err := store.Forecasts().Create(ctx, f); err != nil {
			panic(err)
		}
	}

	parent, err := entities.NewTask(created[0].ID, "Civil works")
	if err != nil {
		panic(err)
	}
	parent.StartDate = entities.NewDate(2024, time.June, 3)
	parent.EndDate = entities.NewDate(2024, time.June, 28)
	parent.PlannedWeight = 60
	if err := store.Tasks().Create(ctx, parent); err != nil {
		panic(err)
	}
	child, err := entities.NewTask(created[0].ID, "Foundations")
	if err != nil {
		panic(err)
	}
	child.StartDate = entities.NewDate(2024, time.June, 3)
	child.EndDate = entities.NewDate(2024, time.June, 12)
	child.ParentID = &parent.ID
	if err := store.Tasks().Create(ctx, child); err != nil {
		panic(err)
	}

	return store
}

// RandomProject returns an unsaved project with generated names
func RandomProject() *entities.Project {
	amount := entities.NewAmount(decimal.NewFromInt(int64(randomdata.Number(100, 10000))))
	p, err := entities.NewProject(randomdata.City()+" "+randomdata.Noun(), amount, float64(randomdata.Number(0, 100)))
	if err != nil {
		panic(err)
	}
	p.ProjectNo = fmt.Sprintf("R-%06d", randomdata.Number(0, 1000000))
	p.Client = randomdata.SillyName()
	return p
}
