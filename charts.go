// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/base64"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator handles chart generation
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "dark",
	}
}

// GenerateMonthlyUsageChart creates a line chart of each meter's monthly
// consumption for a building
func (cg *ChartGenerator) GenerateMonthlyUsageChart(building BuildingAnalysis) (string, error) {
	var values [][]float64
	var legendLabels []string
	var labels []string

	for _, ma := range allMeterAnalyses(building) {
		if len(ma.Monthly) == 0 {
			continue
		}

		series := make([]float64, 0, len(ma.Monthly))
		for _, point := range ma.Monthly {
			series = append(series, point.Value)
		}
		values = append(values, series)
		legendLabels = append(legendLabels, meterDisplayName(ma))

		// Every meter is bucketed over the same window, so any series
		// provides the axis labels
		if labels == nil {
			for _, point := range ma.Monthly {
				labels = append(labels, point.Month.Format("Jan 06"))
			}
		}
	}

	if len(values) == 0 {
		return "", fmt.Errorf("no monthly consumption data available")
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Monthly Consumption - %s", buildingDisplayName(building))),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc(legendLabels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render usage chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateForecastChart creates a line chart of a meter's monthly history
// continued by its projected periods
func (cg *ChartGenerator) GenerateForecastChart(ma MeterAnalysis) (string, error) {
	if ma.Forecast == nil || len(ma.Monthly) == 0 {
		return "", fmt.Errorf("no forecast available for meter %s", ma.MeterID)
	}

	var series []float64
	var labels []string
	for _, point := range ma.Monthly {
		series = append(series, point.Value)
		labels = append(labels, point.Month.Format("Jan 06"))
	}
	for i, projected := range ma.Forecast.Projection {
		series = append(series, projected)
		labels = append(labels, fmt.Sprintf("+%d", i+1))
	}

	p, err := charts.LineRender(
		[][]float64{series},
		charts.TitleTextOptionFunc(fmt.Sprintf("Forecast - %s (%s)", meterDisplayName(ma), ma.Forecast.Trend)),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{fmt.Sprintf("%s (%s)", LabelFor(ma.Type), UnitFor(ma.Type))}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render forecast chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// meterDisplayName prefers the meter name over its type label
func meterDisplayName(ma MeterAnalysis) string {
	if ma.MeterName != "" {
		return ma.MeterName
	}
	return fmt.Sprintf("%s %s", LabelFor(ma.Type), ma.MeterID)
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
