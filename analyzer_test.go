// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	reference := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	return NewAnalyzer(config, NewLogger(false)).WithReferenceTime(reference)
}

func meterWith(t *testing.T, id string, meterType MeterType, points ...MeterReading) Meter {
	t.Helper()
	return Meter{ID: id, Type: meterType, Readings: points}
}

// testPortfolio builds a two-unit building with PV on the roof:
// unit electricity plus heating meters, and a shared PV self-consumption meter
func testPortfolio(t *testing.T) *PortfolioData {
	t.Helper()
	return &PortfolioData{
		Buildings: []Building{
			{
				ID:        "b1",
				Name:      "Hauptstrasse 1",
				Class:     "neubau",
				TotalArea: 200,
				Meters: []Meter{
					meterWith(t, "m-pv", MeterPVSelfConsumption,
						reading(t, "2025-01-01", 0),
						reading(t, "2025-12-01", 6000),
					),
				},
				Units: []Unit{
					{
						ID: "u1", Area: 100, Persons: 2,
						Meters: []Meter{
							meterWith(t, "m-e1", MeterElectricity,
								reading(t, "2025-01-01", 1000),
								reading(t, "2025-07-01", 2500),
							),
							meterWith(t, "m-h1", MeterHeating,
								reading(t, "2025-01-01", 0),
								reading(t, "2025-12-01", 5000),
							),
						},
					},
					{
						ID: "u2", Area: 100, Persons: 2,
						Meters: []Meter{
							meterWith(t, "m-e2", MeterElectricity,
								reading(t, "2025-01-01", 500),
								reading(t, "2025-07-01", 1490),
							),
							meterWith(t, "m-h2", MeterHeating,
								reading(t, "2025-01-01", 0),
								reading(t, "2025-12-01", 3000),
							),
						},
					},
				},
			},
		},
	}
}

func findMeterAnalysis(t *testing.T, analyses []MeterAnalysis, meterID string) MeterAnalysis {
	t.Helper()
	for _, ma := range analyses {
		if ma.MeterID == meterID {
			return ma
		}
	}
	t.Fatalf("no analysis for meter %s", meterID)
	return MeterAnalysis{}
}

func TestAnalyzeRequiresBuildings(t *testing.T) {
	analyzer := testAnalyzer(t)

	for _, data := range []*PortfolioData{nil, {}} {
		_, err := analyzer.Analyze(data)
		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Errorf("expected a DataError for an empty portfolio, got %T: %v", err, err)
		}
	}
}

func TestAnalyzePortfolio(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(result.Buildings) != 1 {
		t.Fatalf("expected 1 building analysis, got %d", len(result.Buildings))
	}

	building := result.Buildings[0]
	electricity := findMeterAnalysis(t, building.UnitMeters["u1"], "m-e1")

	if electricity.AnnualConsumption == nil {
		t.Fatal("expected an annual consumption for m-e1")
	}
	if *electricity.AnnualConsumption != 3025 {
		t.Errorf("m-e1: expected 3025 kWh, got %.0f", *electricity.AnnualConsumption)
	}
	if electricity.AnnualCost != 968.00 {
		t.Errorf("m-e1: expected 968.00 EUR, got %.2f", electricity.AnnualCost)
	}
	// 3025 against the 2-person medium of 2800
	if electricity.Grade != "D" {
		t.Errorf("m-e1: expected grade D, got %q", electricity.Grade)
	}
	if electricity.CO2Kg <= 0 {
		t.Errorf("m-e1: expected a CO₂ figure, got %.2f", electricity.CO2Kg)
	}
	if len(electricity.Monthly) != 12 {
		t.Errorf("m-e1: expected 12 monthly buckets, got %d", len(electricity.Monthly))
	}
	if electricity.Heatmap == nil {
		t.Error("m-e1: expected a heatmap")
	}

	if building.TotalAnnualCost <= 0 {
		t.Errorf("expected a positive building total cost, got %.2f", building.TotalAnnualCost)
	}
}

func TestAnalyzeFlagsBenchmarkOvershoot(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	// Combined unit electricity of ~5021 kWh exceeds the 2-person high of 3500
	alerts := result.Buildings[0].Alerts
	found := false
	for _, alert := range alerts {
		if alert.Type == "benchmark_overshoot" && alert.MeterType == MeterElectricity {
			found = true
		}
		if alert.Type == "yoy_spike" {
			t.Errorf("no prior-year data, but got a spike alert: %+v", alert)
		}
	}
	if !found {
		t.Errorf("expected an electricity benchmark overshoot, got %+v", alerts)
	}
}

func TestAnalyzeHeatingAllocation(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	building := result.Buildings[0]
	if len(building.HeatingAllocation) != 2 {
		t.Fatalf("expected 2 allocation rows, got %d", len(building.HeatingAllocation))
	}

	// No shared heating meter, so the distributed total is the unit cost sum
	var totalHeatingCost float64
	for _, unit := range []string{"u1", "u2"} {
		for _, ma := range building.UnitMeters[unit] {
			if isHeatingType(ma.Type) {
				totalHeatingCost += ma.AnnualCost
			}
		}
	}

	var allocated float64
	byUnit := make(map[string]float64)
	for _, row := range building.HeatingAllocation {
		allocated += row.CostShare
		byUnit[row.UnitID] = row.CostShare
	}
	if math.Abs(allocated-totalHeatingCost) > 0.02 {
		t.Errorf("allocated %.2f of a %.2f total", allocated, totalHeatingCost)
	}
	// u1 heats more than u2 on equal area, so it pays more
	if byUnit["u1"] <= byUnit["u2"] {
		t.Errorf("expected u1 to pay more, got %.2f vs %.2f", byUnit["u1"], byUnit["u2"])
	}
}

func TestAnalyzeTenantPVAllocation(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	building := result.Buildings[0]
	if len(building.PVAllocation) != 2 {
		t.Fatalf("expected 2 PV allocation rows, got %d", len(building.PVAllocation))
	}

	// PV production exceeds total tenant demand, so every unit is fully covered
	for _, row := range building.PVAllocation {
		if row.GridShare != 0 {
			t.Errorf("%s: expected full PV coverage, grid share %.0f", row.UnitID, row.GridShare)
		}
		if row.Savings <= 0 {
			t.Errorf("%s: expected positive savings, got %.2f", row.UnitID, row.Savings)
		}
	}
}

func TestAnalyzeGeneratesInsights(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	categories := make(map[string]bool)
	for _, insight := range result.Insights {
		categories[insight.Category] = true
	}
	if !categories["pv"] {
		t.Error("expected a PV savings insight")
	}
	if !categories["allocation"] {
		t.Error("expected a heating allocation insight")
	}
}

func TestAnalyzeYearOverYearSpike(t *testing.T) {
	data := &PortfolioData{
		Buildings: []Building{
			{
				ID: "b1", Class: "neubau", TotalArea: 100,
				Units: []Unit{
					{
						ID: "u1", Area: 100, Persons: 2,
						Meters: []Meter{
							meterWith(t, "m-e1", MeterElectricity,
								reading(t, "2024-01-01", 0),
								reading(t, "2024-12-01", 1000),
								reading(t, "2025-01-01", 1000),
								reading(t, "2025-12-01", 3000),
							),
						},
					},
				},
			},
		},
	}

	result, err := testAnalyzer(t).Analyze(data)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	// Consumption roughly doubled year over year
	found := false
	for _, alert := range result.Buildings[0].Alerts {
		if alert.Type == "yoy_spike" && alert.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a critical spike alert, got %+v", result.Buildings[0].Alerts)
	}
}

func TestAnalyzeMeterResetAlert(t *testing.T) {
	data := &PortfolioData{
		Buildings: []Building{
			{
				ID: "b1", TotalArea: 100,
				Units: []Unit{
					{
						ID: "u1", Area: 100,
						Meters: []Meter{
							meterWith(t, "m-e1", MeterElectricity,
								reading(t, "2025-01-01", 5000),
								reading(t, "2025-07-01", 200),
							),
						},
					},
				},
			},
		},
	}

	result, err := testAnalyzer(t).Analyze(data)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	building := result.Buildings[0]
	found := false
	for _, alert := range building.Alerts {
		if alert.Type == "meter_reset" && alert.Severity == SeverityInfo {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a meter reset note, got %+v", building.Alerts)
	}

	// The negative annualized delta stays visible, billing clamps to zero
	ma := findMeterAnalysis(t, building.UnitMeters["u1"], "m-e1")
	if ma.AnnualConsumption == nil || *ma.AnnualConsumption >= 0 {
		t.Error("expected the raw negative annualized value on the analysis")
	}
	if ma.AnnualCost != 0 {
		t.Errorf("a reset meter must not be billed, got %.2f", ma.AnnualCost)
	}
}

func TestAnalyzeMeterPriceOverride(t *testing.T) {
	price := 0.50
	meter := meterWith(t, "m-e1", MeterElectricity,
		reading(t, "2025-01-01", 1000),
		reading(t, "2025-07-01", 2500),
	)
	meter.PricePerUnit = &price

	data := &PortfolioData{
		Buildings: []Building{
			{
				ID: "b1", TotalArea: 100,
				Units: []Unit{{ID: "u1", Area: 100, Meters: []Meter{meter}}},
			},
		},
	}

	result, err := testAnalyzer(t).Analyze(data)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	ma := findMeterAnalysis(t, result.Buildings[0].UnitMeters["u1"], "m-e1")
	if ma.AnnualCost != 1512.50 {
		t.Errorf("expected 1512.50 at the per-meter price, got %.2f", ma.AnnualCost)
	}
}

func TestAnalyzeMemoizesWithCache(t *testing.T) {
	logger := NewLogger(false)
	cache, err := NewCache(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	analyzer := testAnalyzer(t).WithCache(cache)

	first, err := analyzer.Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}
	second, err := analyzer.Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("second analysis failed: %v", err)
	}

	total, _, err := cache.Stats()
	if err != nil {
		t.Fatalf("failed to read cache stats: %v", err)
	}
	if total != 5 {
		t.Errorf("expected 5 memoized meters, got %d entries", total)
	}

	a := findMeterAnalysis(t, first.Buildings[0].UnitMeters["u1"], "m-e1")
	b := findMeterAnalysis(t, second.Buildings[0].UnitMeters["u1"], "m-e1")
	if *a.AnnualConsumption != *b.AnnualConsumption || a.AnnualCost != b.AnnualCost {
		t.Errorf("cached run diverged: %.0f/%.2f vs %.0f/%.2f",
			*a.AnnualConsumption, a.AnnualCost, *b.AnnualConsumption, b.AnnualCost)
	}
}
