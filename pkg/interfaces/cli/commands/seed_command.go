package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/spf13/cobra"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/application/services"
)

var seedSegments = []string{"Transmission", "Distribution", "Substation", "Renewables"}

// SeedConfig holds flags for the seed command
type SeedConfig struct {
	Projects  int
	Updates   int
	Forecasts bool
}

// SeedCommand fills the store with demo projects
type SeedCommand struct {
	config SeedConfig
	svc    *services.Services
	now    func() time.Time
}

// NewSeedCommand creates a seed command
func NewSeedCommand(config SeedConfig, svc *services.Services) *SeedCommand {
	return &SeedCommand{config: config, svc: svc, now: time.Now}
}

// Execute imports random projects through the bulk path and attaches
// updates and forecasts to each of them
func (c *SeedCommand) Execute(ctx context.Context) (*dto.ImportResult, error) {
	if c.config.Projects < 1 {
		return nil, fmt.Errorf("--projects must be positive")
	}

	year := c.now().Year()
	rows := make([]any, c.config.Projects)
	for i := range rows {
		poDate := time.Date(year, time.Month(randomdata.Number(1, 13)), randomdata.Number(1, 29), 0, 0, 0, 0, time.UTC)
		rows[i] = map[string]any{
			"Project #":    fmt.Sprintf("DEMO-%04d", i+1),
			"Project Name": fmt.Sprintf("%s %s %s", randomdata.City(), randomdata.Adjective(), randomdata.Noun()),
			"Client":       randomdata.SillyName() + " Power",
			"Amount":       fmt.Sprintf("%d000", randomdata.Number(50, 5000)),
			"Status (%)":   fmt.Sprint(randomdata.Number(0, 100)),
			"PO Date":      poDate.Format("2006-01-02"),
			"PO No.":       fmt.Sprintf("PO-%d", randomdata.Number(10000, 99999)),
			"PIC":          randomdata.FirstName(randomdata.RandomGender) + " " + randomdata.LastName(),
			"Address":      randomdata.Address(),
			"DS":           randomdata.StringSample(seedSegments...),
			"Year":         year,
		}
	}

	result, err := c.svc.Projects.ImportRows(ctx, rows, services.SourceBulk)
	if err != nil {
		return nil, err
	}

	projects, err := c.svc.Projects.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		for i := 0; i < c.config.Updates; i++ {
			text := fmt.Sprintf("%s %s delivered to site", randomdata.Adjective(), randomdata.Noun())
			due := c.now().AddDate(0, 0, randomdata.Number(1, 60)).Format("2006-01-02")
			if _, err := c.svc.Updates.Add(ctx, p.ID, text, due); err != nil {
				return nil, err
			}
		}
		if c.config.Forecasts && p.Status < 100 {
			_, err := c.svc.Forecasts.Add(ctx, map[string]any{
				"project_id":           float64(p.ID),
				"forecast_input_type":  "percent",
				"forecast_input_value": float64(randomdata.Number(5, 30)),
				"forecast_date":        c.now().AddDate(0, randomdata.Number(0, 6), 0).Format("2006-01-02"),
			})
			if errors.Is(err, services.ErrLimitReached) {
				c.config.Forecasts = false
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func newSeedCommand(a *app) *cobra.Command {
	var config SeedConfig
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo projects, updates and forecasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := NewSeedCommand(config, rt.Services).Execute(cmd.Context())
			if err != nil {
				return err
			}
			printImportResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&config.Projects, "projects", "n", 20, "number of projects to create")
	cmd.Flags().IntVar(&config.Updates, "updates", 2, "updates per project")
	cmd.Flags().BoolVar(&config.Forecasts, "forecasts", true, "add one forecast entry per open project")
	return cmd
}
