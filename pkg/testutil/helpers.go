// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/fincalc/pkg/analytics"
)

// FindKPI finds a KPI by label in a payload.
// Returns a pointer to the KPI if found, nil otherwise.
func FindKPI(payload *analytics.Payload, label string) *analytics.KPI {
	if payload == nil {
		return nil
	}
	for i := range payload.KPIs {
		if payload.KPIs[i].Label == label {
			return &payload.KPIs[i]
		}
	}
	return nil
}

// FindChart finds a chart by title among the main and secondary charts.
func FindChart(payload *analytics.Payload, title string) *analytics.Chart {
	if payload == nil {
		return nil
	}
	if payload.MainChart.Title == title {
		return &payload.MainChart
	}
	for i := range payload.SecondaryCharts {
		if payload.SecondaryCharts[i].Title == title {
			return &payload.SecondaryCharts[i]
		}
	}
	return nil
}

// FindTrace finds a named trace within the chart with the given title.
func FindTrace(payload *analytics.Payload, chartTitle, traceName string) *analytics.Trace {
	chart := FindChart(payload, chartTitle)
	if chart == nil {
		return nil
	}
	for i := range chart.Data {
		if chart.Data[i].Name == traceName {
			return &chart.Data[i]
		}
	}
	return nil
}
