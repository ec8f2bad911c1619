// Package analytics describes the chart and KPI payload handed to the chart
// renderer after a calculation.
package analytics

import (
	"errors"
	"fmt"

	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// Trace types understood by the renderer.
const (
	TypeScatter = "scatter"
	TypeBar     = "bar"
	TypePie     = "pie"
)

// Scatter modes.
const (
	ModeLines        = "lines"
	ModeLinesMarkers = "lines+markers"
)

// ErrMismatchedSeries is returned when paired series differ in length.
var ErrMismatchedSeries = errors.New("paired series have different lengths")

// ErrNonFiniteValue is returned when a series carries NaN or an infinity.
var ErrNonFiniteValue = errors.New("series contains a non-finite value")

// KPI is a headline figure shown above the charts.
type KPI struct {
	Label  string   `json:"label" yaml:"label"`
	Value  string   `json:"value" yaml:"value"`
	Change *float64 `json:"change,omitempty" yaml:"change,omitempty"`
}

// Axis labels a chart axis.
type Axis struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Layout holds chart-level presentation hints.
type Layout struct {
	XAxis   Axis   `json:"xaxis" yaml:"xaxis"`
	YAxis   Axis   `json:"yaxis" yaml:"yaxis"`
	BarMode string `json:"barmode,omitempty" yaml:"barmode,omitempty"`
}

// Trace is one declarative series. Scatter and bar traces pair X with Y; pie
// traces pair Labels with Values.
type Trace struct {
	Type     string    `json:"type" yaml:"type"`
	Mode     string    `json:"mode,omitempty" yaml:"mode,omitempty"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	X        []string  `json:"x,omitempty" yaml:"x,omitempty"`
	Y        []float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Labels   []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Values   []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Hole     float64   `json:"hole,omitempty" yaml:"hole,omitempty"`
	TextInfo string    `json:"textinfo,omitempty" yaml:"textinfo,omitempty"`
	Color    string    `json:"color,omitempty" yaml:"color,omitempty"`
}

// Chart is a titled group of traces.
type Chart struct {
	Title  string  `json:"title" yaml:"title"`
	Data   []Trace `json:"data" yaml:"data"`
	Layout Layout  `json:"layout" yaml:"layout"`
}

// Payload is everything the renderer needs for one calculation.
type Payload struct {
	Title           string  `json:"title" yaml:"title"`
	Description     string  `json:"description" yaml:"description"`
	KPIs            []KPI   `json:"kpis" yaml:"kpis"`
	MainChart       Chart   `json:"mainChart" yaml:"mainChart"`
	SecondaryCharts []Chart `json:"secondaryCharts" yaml:"secondaryCharts"`
}

// Change returns a pointer suitable for KPI.Change.
func Change(v float64) *float64 {
	return &v
}

// Line builds a scatter trace drawn as a line.
func Line(name string, x []string, y []float64, color string) Trace {
	return Trace{Type: TypeScatter, Mode: ModeLines, Name: name, X: x, Y: y, Color: color}
}

// LineMarkers builds a scatter trace drawn as a line with point markers.
func LineMarkers(name string, x []string, y []float64, color string) Trace {
	return Trace{Type: TypeScatter, Mode: ModeLinesMarkers, Name: name, X: x, Y: y, Color: color}
}

// Bar builds a bar trace.
func Bar(name string, x []string, y []float64, color string) Trace {
	return Trace{Type: TypeBar, Name: name, X: x, Y: y, Color: color}
}

// Pie builds a donut chart trace.
func Pie(labels []string, values []float64) Trace {
	return Trace{Type: TypePie, Labels: labels, Values: values, Hole: 0.4, TextInfo: "label+percent"}
}

// Validate checks that paired series line up and carry only finite values.
func (t Trace) Validate() error {
	if len(t.X) != len(t.Y) {
		return fmt.Errorf("trace %q: x has %d points, y has %d: %w", t.Name, len(t.X), len(t.Y), ErrMismatchedSeries)
	}
	if len(t.Labels) != len(t.Values) {
		return fmt.Errorf("trace %q: %d labels, %d values: %w", t.Name, len(t.Labels), len(t.Values), ErrMismatchedSeries)
	}
	if !mathutil.AllFinite(t.Y...) || !mathutil.AllFinite(t.Values...) {
		return fmt.Errorf("trace %q: %w", t.Name, ErrNonFiniteValue)
	}
	return nil
}

// Validate checks every trace of the chart.
func (c Chart) Validate() error {
	for _, trace := range c.Data {
		if err := trace.Validate(); err != nil {
			return fmt.Errorf("chart %q: %w", c.Title, err)
		}
	}
	return nil
}

// Validate checks the main chart and every secondary chart.
func (p Payload) Validate() error {
	if err := p.MainChart.Validate(); err != nil {
		return err
	}
	for _, chart := range p.SecondaryCharts {
		if err := chart.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Charts returns the main chart followed by the secondary charts.
func (p Payload) Charts() []Chart {
	charts := make([]Chart, 0, len(p.SecondaryCharts)+1)
	charts = append(charts, p.MainChart)
	return append(charts, p.SecondaryCharts...)
}

// YearLabels returns "Year from" .. "Year to" inclusive.
func YearLabels(from, to int) []string {
	if to < from {
		return nil
	}
	labels := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		labels = append(labels, fmt.Sprintf("Year %d", y))
	}
	return labels
}
