package output

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

const (
	plannedColor = "#2196F3"
	actualColor  = "#4CAF50"
	emptyColor   = "#9E9E9E"
)

// GanttChart lays out a project schedule as SVG
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	Start        entities.Date
	End          entities.Date
}

// GanttBar is the pixel geometry of one task row
type GanttBar struct {
	Bar     dto.GanttBar
	Y       int
	Planned *span
	Actual  *span
}

type span struct {
	X     int
	Width int
}

// NewGanttChart sizes a chart for the schedule. One day of padding is added
// on each side of the schedule range.
func NewGanttChart(schedule *dto.GanttChart) *GanttChart {
	gc := &GanttChart{
		Width:        1200,
		MarginLeft:   240,
		MarginTop:    60,
		MarginRight:  60,
		MarginBottom: 60,
		RowHeight:    28,
	}
	if len(schedule.Bars) == 0 {
		gc.Width = 800
		gc.Height = 200
		return gc
	}
	gc.Start = schedule.Start.AddDays(-1)
	gc.End = schedule.End.AddDays(1)
	gc.Height = len(schedule.Bars)*gc.RowHeight + gc.MarginTop + gc.MarginBottom
	return gc
}

// GenerateSVG renders the schedule
func (gc *GanttChart) GenerateSVG(schedule *dto.GanttChart) string {
	if len(schedule.Bars) == 0 {
		return gc.generateEmptyChart(schedule)
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height)
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.task-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.task-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`</style></defs>`)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">%s</text>`,
		gc.Width/2, html.EscapeString(chartTitle(schedule)))

	bars := gc.createBars(schedule.Bars)
	gc.drawTimeAxis(&svg, len(bars))
	for _, bar := range bars {
		gc.drawRow(&svg, bar)
	}
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

// WriteSVG renders the schedule to w
func WriteSVG(w io.Writer, schedule *dto.GanttChart) error {
	_, err := io.WriteString(w, NewGanttChart(schedule).GenerateSVG(schedule))
	return err
}

func chartTitle(schedule *dto.GanttChart) string {
	if schedule.ProjectNo == "" {
		return schedule.ProjectName + " Schedule"
	}
	return fmt.Sprintf("%s (%s) Schedule", schedule.ProjectName, schedule.ProjectNo)
}

func (gc *GanttChart) createBars(rows []dto.GanttBar) []GanttBar {
	bars := make([]GanttBar, 0, len(rows))
	for i, row := range rows {
		bar := GanttBar{Bar: row, Y: gc.MarginTop + i*gc.RowHeight}
		bar.Planned = gc.spanFor(row.Start, row.End)
		actualEnd := row.ActualEnd
		if actualEnd.IsZero() && !row.ActualStart.IsZero() {
			actualEnd = row.ActualStart
		}
		bar.Actual = gc.spanFor(row.ActualStart, actualEnd)
		bars = append(bars, bar)
	}
	return bars
}

// spanFor converts a date range to pixels. A missing end is drawn as a
// single day and a missing start yields no span.
func (gc *GanttChart) spanFor(start, end entities.Date) *span {
	if start.IsZero() {
		if end.IsZero() {
			return nil
		}
		start = end
	}
	if end.IsZero() || end.Before(start) {
		end = start
	}
	x := gc.xFor(start)
	width := gc.xFor(end.AddDays(1)) - x
	if width < 2 {
		width = 2
	}
	return &span{X: x, Width: width}
}

func (gc *GanttChart) xFor(d entities.Date) int {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	totalDays := gc.Start.DaysUntil(gc.End)
	if totalDays <= 0 {
		return gc.MarginLeft
	}
	return gc.MarginLeft + gc.Start.DaysUntil(d)*chartWidth/totalDays
}

func (gc *GanttChart) drawTimeAxis(svg *strings.Builder, rows int) {
	totalDays := gc.Start.DaysUntil(gc.End)
	step, layout := 1, "Jan 2"
	switch {
	case totalDays > 180:
		step, layout = 30, "Jan 2006"
	case totalDays > 30:
		step = 7
	}

	axisY := gc.MarginTop + rows*gc.RowHeight
	for d := gc.Start; !d.After(gc.End); d = d.AddDays(step) {
		x := gc.xFor(d)
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, gc.MarginTop, x, axisY)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
			x, axisY+15, d.Time().Format(layout))
	}
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, axisY, gc.Width-gc.MarginRight, axisY)
}

func (gc *GanttChart) drawRow(svg *strings.Builder, bar GanttBar) {
	label := strings.Repeat("  ", bar.Bar.Depth) + bar.Bar.Name
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="task-label" text-anchor="end" xml:space="preserve">%s</text>`,
		gc.MarginLeft-15, bar.Y+gc.RowHeight/2+4, html.EscapeString(label))
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, bar.Y+gc.RowHeight, gc.Width-gc.MarginRight, bar.Y+gc.RowHeight)

	half := (gc.RowHeight - 6) / 2
	if bar.Planned != nil {
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="task-bar"><title>%s</title></rect>`,
			bar.Planned.X, bar.Y+3, bar.Planned.Width, half, plannedColor, html.EscapeString(tooltip(bar.Bar)))
	}
	if bar.Actual != nil {
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="task-bar"/>`,
			bar.Actual.X, bar.Y+3+half, bar.Actual.Width, half, actualColor)
	}
	if bar.Planned == nil && bar.Actual == nil {
		fmt.Fprintf(svg, `<circle cx="%d" cy="%d" r="3" fill="%s"/>`, gc.MarginLeft+4, bar.Y+gc.RowHeight/2, emptyColor)
	}
}

func tooltip(bar dto.GanttBar) string {
	parts := []string{bar.Name, fmt.Sprintf("Planned: %s to %s", dateLabel(bar.Start), dateLabel(bar.End))}
	if bar.Weight > 0 {
		parts = append(parts, fmt.Sprintf("Weight: %g%%", bar.Weight))
	}
	if bar.AssignedTo != "" {
		parts = append(parts, "Assigned: "+bar.AssignedTo)
	}
	return strings.Join(parts, ", ")
}

func dateLabel(d entities.Date) string {
	if d.IsZero() {
		return "?"
	}
	return d.String()
}

func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 160
	legendY := 10
	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="150" height="40" fill="white" stroke="#ccc" stroke-width="1"/>`, legendX, legendY)
	items := []struct {
		color string
		label string
	}{
		{plannedColor, "Planned"},
		{actualColor, "Actual"},
	}
	for i, item := range items {
		itemY := legendY + 8 + i*14
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, legendX+10, itemY, item.color)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, legendX+30, itemY+8, item.label)
	}
}

func (gc *GanttChart) generateEmptyChart(schedule *dto.GanttChart) string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No tasks for %s</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2, html.EscapeString(schedule.ProjectName))
}
