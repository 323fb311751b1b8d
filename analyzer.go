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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Analyzer runs the calculation engine over a loaded portfolio
type Analyzer struct {
	config *Config
	logger *Logger
	cache  *Cache
	now    time.Time
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config *Config, logger *Logger) *Analyzer {
	return &Analyzer{
		config: config,
		logger: logger,
		now:    time.Now(),
	}
}

// WithCache enables per-meter memoization of calculation results
func (a *Analyzer) WithCache(cache *Cache) *Analyzer {
	a.cache = cache
	return a
}

// WithReferenceTime pins the analysis reference date. Monthly windows and
// year-over-year comparisons are relative to this date
func (a *Analyzer) WithReferenceTime(now time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze performs the complete analysis over a portfolio
func (a *Analyzer) Analyze(data *PortfolioData) (*AnalysisResult, error) {
	a.logger.Info("Starting analysis")

	if data == nil || len(data.Buildings) == 0 {
		return nil, &DataError{
			DataType: "portfolio",
			Message:  "at least one building is required for analysis",
		}
	}

	result := &AnalysisResult{
		RunID:       uuid.NewString(),
		GeneratedAt: a.now,
	}

	for _, building := range data.Buildings {
		analysis := a.analyzeBuilding(building, data.Benchmarks)
		result.Buildings = append(result.Buildings, analysis)
	}
	a.logger.LogAnalysisStage("buildings")

	result.Insights = a.generateInsights(result)
	a.logger.LogAnalysisStage("insights_generation")

	a.logger.Info("Analysis completed",
		"buildings", len(result.Buildings),
		"insights", len(result.Insights),
	)

	return result, nil
}

// analyzeBuilding runs every engine component for one building
func (a *Analyzer) analyzeBuilding(building Building, benchmarks []Benchmark) BuildingAnalysis {
	logger := a.logger.WithBuilding(building.ID)
	logger.Debug("Analyzing building", "units", len(building.Units), "shared_meters", len(building.Meters))

	analysis := BuildingAnalysis{
		BuildingID:   building.ID,
		BuildingName: building.Name,
		UnitMeters:   make(map[string][]MeterAnalysis),
	}

	for _, meter := range building.Meters {
		ma := a.analyzeMeter(meter, building.Class, "", benchmarks)
		analysis.Meters = append(analysis.Meters, ma)
	}

	for _, unit := range building.Units {
		personsRange := PersonsRangeFor(unit.Persons)
		for _, meter := range unit.Meters {
			ma := a.analyzeMeter(meter, building.Class, personsRange, benchmarks)
			analysis.UnitMeters[unit.ID] = append(analysis.UnitMeters[unit.ID], ma)
		}
	}

	for _, ma := range allMeterAnalyses(analysis) {
		analysis.TotalAnnualCost += ma.AnnualCost
		analysis.TotalCO2Kg += ma.CO2Kg
	}

	analysis.Alerts = a.detectBuildingAlerts(building, benchmarks)
	analysis.HeatingAllocation = a.allocateHeatingCosts(building, analysis)
	analysis.PVAllocation = a.allocateTenantPV(building, analysis)

	return analysis
}

// analyzeMeter runs the per-meter calculations, memoized when a cache is
// attached
func (a *Analyzer) analyzeMeter(meter Meter, buildingClass, personsRange string, benchmarks []Benchmark) MeterAnalysis {
	cacheKey := ReadingSetKey(meter.ID, meter.Readings)
	if a.cache != nil {
		var cached MeterAnalysis
		if found, err := a.cache.Get(cacheKey, &cached); err == nil && found {
			return cached
		}
	}

	normalized := NormalizeReadings(meter.Readings)

	analysis := MeterAnalysis{
		MeterID:      meter.ID,
		MeterName:    meter.Name,
		Type:         meter.Type,
		ReadingCount: len(normalized),
		Window:       ConsumptionWindowFor(meter.Readings),
	}

	analysis.AnnualConsumption = AnnualConsumption(meter.Readings)
	if analysis.AnnualConsumption != nil {
		// Negative annualized deltas indicate a meter reset; billing,
		// grading and emissions work on the zero-clamped figure while the
		// raw value stays visible on the result
		billable := clampZero(*analysis.AnnualConsumption)

		price := a.config.PriceFor(meter.Type)
		if meter.PricePerUnit != nil {
			price = *meter.PricePerUnit
		}
		analysis.AnnualCost = Cost(billable, meter.Type, &price)
		analysis.CO2Kg = roundCurrency(billable * CO2FactorFor(meter.Type))
		analysis.PrimaryEnergyKWh = roundCurrency(billable * PrimaryEnergyFactorFor(meter.Type))

		benchmark := FindBenchmark(benchmarks, meter.Type, buildingClass, personsRange)
		if benchmark != nil {
			analysis.Benchmark = benchmark
			analysis.Grade = Grade(billable, benchmark.Medium)
		}
	}

	analysis.Monthly = MonthlyConsumptionSeries(meter.Readings, a.config.AnalysisMonths, a.now)
	values := make([]float64, 0, len(analysis.Monthly))
	for _, point := range analysis.Monthly {
		values = append(values, point.Value)
	}
	analysis.Forecast = ForecastMonthly(values)
	analysis.Heatmap = HeatmapFromReadings(meter.Readings)

	if a.cache != nil {
		if err := a.cache.Set(cacheKey, analysis, 24*time.Hour); err != nil {
			a.logger.Warn("Failed to memoize meter analysis", "meter_id", meter.ID, "error", err)
		}
	}

	return analysis
}

// detectBuildingAlerts compares this year's annualized consumption per meter
// type against last year's and the benchmark table, and flags meter resets
func (a *Analyzer) detectBuildingAlerts(building Building, benchmarks []Benchmark) []Alert {
	currentYear := a.now.Year()

	current := make(map[MeterType]float64)
	prior := make(map[MeterType]float64)
	benchmarkByType := make(map[MeterType]Benchmark)
	var resets []Alert

	for _, entry := range buildingMeters(building) {
		meter := entry.meter

		if value := annualConsumptionForYear(meter.Readings, currentYear); value != nil {
			current[meter.Type] += clampZero(*value)
		}
		if value := annualConsumptionForYear(meter.Readings, currentYear-1); value != nil {
			prior[meter.Type] += clampZero(*value)
		}

		if _, ok := benchmarkByType[meter.Type]; !ok {
			if benchmark := FindBenchmark(benchmarks, meter.Type, building.Class, entry.personsRange); benchmark != nil {
				benchmarkByType[meter.Type] = *benchmark
			}
		}

		if window := ConsumptionWindowFor(meter.Readings); window != nil && window.RawDelta < 0 {
			resets = append(resets, Alert{
				Severity:  SeverityInfo,
				Type:      "meter_reset",
				MeterType: meter.Type,
				Message:   fmt.Sprintf("Meter %s counter decreased by %.0f; a rollover or replacement is likely", meter.ID, -window.RawDelta),
			})
		}
	}

	alerts := DetectAnomalies(current, prior, benchmarkByType, a.config.AlertSettings())
	for _, alert := range alerts {
		a.logger.LogAnomalyDetected(string(alert.MeterType), alert.Type, alert.ChangePercent)
	}

	// Reset notes rank below every spike or overshoot
	return append(alerts, resets...)
}

// allocateHeatingCosts runs the HeizkostenV split over the building's units.
// The distributed total is the building-level heating meter cost when shared
// meters exist, otherwise the sum of the per-unit heating costs
func (a *Analyzer) allocateHeatingCosts(building Building, analysis BuildingAnalysis) []AllocationResult {
	if len(building.Units) == 0 {
		return nil
	}

	var totalCost float64
	for _, ma := range analysis.Meters {
		if isHeatingType(ma.Type) {
			totalCost += ma.AnnualCost
		}
	}

	units := make([]UnitConsumption, 0, len(building.Units))
	var unitCost float64
	for _, unit := range building.Units {
		var consumption float64
		for _, ma := range analysis.UnitMeters[unit.ID] {
			if !isHeatingType(ma.Type) {
				continue
			}
			if ma.AnnualConsumption != nil {
				consumption += clampZero(*ma.AnnualConsumption)
			}
			unitCost += ma.AnnualCost
		}
		units = append(units, UnitConsumption{
			UnitID:      unit.ID,
			Consumption: consumption,
			Area:        unit.Area,
		})
	}

	if totalCost == 0 {
		totalCost = unitCost
	}
	if totalCost == 0 {
		return nil
	}

	results := AllocateHeizkostenV(units, totalCost, a.config.ConsumptionRatio())
	a.logger.LogAllocation(AllocationHeizkostenV, len(results), totalCost)
	return results
}

// allocateTenantPV distributes building-level PV self-consumption across the
// units' electricity demand under the Mieterstrom scheme
func (a *Analyzer) allocateTenantPV(building Building, analysis BuildingAnalysis) []AllocationResult {
	if len(building.Units) == 0 {
		return nil
	}

	var pvAvailable float64
	for _, ma := range analysis.Meters {
		if ma.Type == MeterPVSelfConsumption && ma.AnnualConsumption != nil {
			pvAvailable += clampZero(*ma.AnnualConsumption)
		}
	}
	if pvAvailable == 0 {
		return nil
	}

	units := make([]UnitConsumption, 0, len(building.Units))
	var totalDemand float64
	for _, unit := range building.Units {
		var consumption float64
		for _, ma := range analysis.UnitMeters[unit.ID] {
			if isTenantElectricityType(ma.Type) && ma.AnnualConsumption != nil {
				consumption += clampZero(*ma.AnnualConsumption)
			}
		}
		totalDemand += consumption
		units = append(units, UnitConsumption{
			UnitID:      unit.ID,
			Consumption: consumption,
			Area:        unit.Area,
		})
	}
	if totalDemand == 0 {
		return nil
	}

	results := AllocateMieterstrom(pvAvailable, units, a.config.TenantPVPrice(), a.config.TenantGridPrice())
	a.logger.LogAllocation(AllocationMieterstrom, len(results), pvAvailable)
	return results
}

// generateInsights creates actionable recommendations from the analysis
func (a *Analyzer) generateInsights(result *AnalysisResult) []Insight {
	var insights []Insight

	for _, building := range result.Buildings {
		criticalCount := 0
		for _, alert := range building.Alerts {
			if alert.Severity == SeverityCritical {
				criticalCount++
			}
		}
		if criticalCount > 0 {
			insights = append(insights, Insight{
				Category:    "usage",
				Priority:    "high",
				Title:       "Critical Consumption Increase",
				Description: fmt.Sprintf("%s has %d meter type(s) more than 40%% above last year's consumption", buildingDisplayName(building), criticalCount),
				Action:      "Check the affected meters for leaks, faulty appliances or changed usage patterns",
			})
		}

		poorGrades := 0
		for _, ma := range allMeterAnalyses(building) {
			if ma.Grade == "F" || ma.Grade == "G" {
				poorGrades++
			}
		}
		if poorGrades > 0 {
			insights = append(insights, Insight{
				Category:    "usage",
				Priority:    "medium",
				Title:       "Poor Efficiency Grades",
				Description: fmt.Sprintf("%d meter(s) in %s grade F or worse against comparable households", poorGrades, buildingDisplayName(building)),
				Action:      "Compare the graded consumption against the benchmark range to find the biggest saving potential",
			})
		}

		var pvSavings float64
		for _, allocation := range building.PVAllocation {
			pvSavings += allocation.Savings
		}
		if pvSavings > 0 {
			insights = append(insights, Insight{
				Category:    "pv",
				Priority:    "low",
				Title:       "Tenant Electricity Savings",
				Description: fmt.Sprintf("On-site PV saves the tenants of %s %.2f EUR per year compared to full grid supply", buildingDisplayName(building), pvSavings),
				Action:      "Include the savings in the annual tenant electricity statement",
			})
		}

		if len(building.HeatingAllocation) > 0 {
			insights = append(insights, Insight{
				Category:    "allocation",
				Priority:    "low",
				Title:       "Heating Cost Allocation Ready",
				Description: fmt.Sprintf("Heating costs for %s are split across %d unit(s) using the %s preset", buildingDisplayName(building), len(building.HeatingAllocation), a.config.AllocationPreset),
				Action:      "Review the allocation table before issuing the annual utility statement",
			})
		}
	}

	return insights
}

// meterContext pairs a meter with the persons range of the unit owning it
type meterContext struct {
	meter        Meter
	personsRange string
}

// buildingMeters flattens building-level and unit-level meters
func buildingMeters(building Building) []meterContext {
	meters := make([]meterContext, 0, len(building.Meters))
	for _, meter := range building.Meters {
		meters = append(meters, meterContext{meter: meter})
	}
	for _, unit := range building.Units {
		personsRange := PersonsRangeFor(unit.Persons)
		for _, meter := range unit.Meters {
			meters = append(meters, meterContext{meter: meter, personsRange: personsRange})
		}
	}
	return meters
}

// allMeterAnalyses flattens shared and per-unit meter analyses
func allMeterAnalyses(analysis BuildingAnalysis) []MeterAnalysis {
	all := make([]MeterAnalysis, 0, len(analysis.Meters))
	all = append(all, analysis.Meters...)
	for _, meters := range analysis.UnitMeters {
		all = append(all, meters...)
	}
	return all
}

// annualConsumptionForYear annualizes only the readings dated within one
// calendar year
func annualConsumptionForYear(readings []MeterReading, year int) *float64 {
	var filtered []MeterReading
	for _, r := range readings {
		if r.Date.Year() == year {
			filtered = append(filtered, r)
		}
	}
	return AnnualConsumption(filtered)
}

// isHeatingType reports whether a meter type takes part in the HeizkostenV
// heating cost split
func isHeatingType(meterType MeterType) bool {
	switch meterType {
	case MeterHeating, MeterDistrictHeating:
		return true
	default:
		return false
	}
}

// isTenantElectricityType reports whether a meter type counts towards a
// unit's electricity demand in the Mieterstrom split
func isTenantElectricityType(meterType MeterType) bool {
	switch meterType {
	case MeterElectricity, MeterElectricityHT, MeterElectricityNT:
		return true
	default:
		return false
	}
}

// buildingDisplayName prefers the building name over its ID
func buildingDisplayName(building BuildingAnalysis) string {
	if building.BuildingName != "" {
		return building.BuildingName
	}
	return building.BuildingID
}
