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
	"time"
)

// MeterType identifies the kind of utility a meter measures
type MeterType string

const (
	MeterElectricity       MeterType = "electricity"
	MeterElectricityHT     MeterType = "electricity_ht"
	MeterElectricityNT     MeterType = "electricity_nt"
	MeterElectricityCommon MeterType = "electricity_common"
	MeterGas               MeterType = "gas"
	MeterWaterCold         MeterType = "water_cold"
	MeterWaterHot          MeterType = "water_hot"
	MeterHeating           MeterType = "heating"
	MeterDistrictHeating   MeterType = "district_heating"
	MeterCooling           MeterType = "cooling"
	MeterPVProduction      MeterType = "pv_production"
	MeterPVFeedIn          MeterType = "pv_feed_in"
	MeterPVSelfConsumption MeterType = "pv_self_consumption"
	MeterHeatPump          MeterType = "heat_pump"
	MeterEVCharging        MeterType = "ev_charging"
	MeterOil               MeterType = "oil"
	MeterPellets           MeterType = "pellets"
	MeterLPG               MeterType = "lpg"
)

// ReadingSource identifies how a reading entered the system
type ReadingSource string

const (
	SourceManual ReadingSource = "manual"
	SourceOCR    ReadingSource = "ocr"
	SourceAPI    ReadingSource = "api"
)

// MeterReading is a single counter reading for one meter
type MeterReading struct {
	MeterID    string        `json:"meter_id"`
	Date       time.Time     `json:"date"`
	Value      float64       `json:"value"` // Monotonic counter value
	Source     ReadingSource `json:"source,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"` // 0..1, set for OCR readings
	CreatedAt  time.Time     `json:"created_at,omitempty"`
}

// Meter represents a physical or virtual utility meter
type Meter struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name,omitempty"`
	Type                MeterType      `json:"type"`
	ReadingIntervalDays int            `json:"reading_interval_days,omitempty"`
	PricePerUnit        *float64       `json:"price_per_unit,omitempty"` // Overrides the default price table
	Readings            []MeterReading `json:"readings,omitempty"`
}

// Unit represents a rental unit within a building
type Unit struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Area    float64 `json:"area"` // m²
	Persons int     `json:"persons,omitempty"`
	Meters  []Meter `json:"meters,omitempty"`
}

// Building represents a property with shared and per-unit meters
type Building struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Class     string  `json:"building_class,omitempty"`
	TotalArea float64 `json:"total_area"`
	Units     []Unit  `json:"units,omitempty"`
	Meters    []Meter `json:"meters,omitempty"` // Building-level shared meters
}

// Benchmark is a reference annual-consumption range used by grading and alerts
type Benchmark struct {
	MeterType     MeterType `json:"meter_type"`
	BuildingClass string    `json:"building_class,omitempty"`
	PersonsRange  string    `json:"persons_range,omitempty"`
	Low           float64   `json:"low"`
	Medium        float64   `json:"medium"`
	High          float64   `json:"high"`
	Unit          string    `json:"unit"`
}

// ConsumptionWindow is the derived span between the first and last reading of
// a series; it exists only during a calculation call and is never stored
type ConsumptionWindow struct {
	FirstReading    MeterReading `json:"first_reading"`
	LastReading     MeterReading `json:"last_reading"`
	DaySpan         int          `json:"day_span"`
	RawDelta        float64      `json:"raw_delta"`
	AnnualizedValue float64      `json:"annualized_value"`
}

// UnitConsumption is a per-unit consumption figure fed into cost allocation
type UnitConsumption struct {
	UnitID      string  `json:"unit_id"`
	Consumption float64 `json:"consumption"`
	Area        float64 `json:"area"` // m², used by area-based splits
}

// AllocationResult is one unit's share of an allocated cost
type AllocationResult struct {
	UnitID           string  `json:"unit_id"`
	ConsumptionShare float64 `json:"consumption_share"` // Fraction of total consumption, 0..1
	CostShare        float64 `json:"cost_share"`        // Currency amount
	Method           string  `json:"method"`
	PVShare          float64 `json:"pv_share,omitempty"`   // kWh covered by on-site PV
	GridShare        float64 `json:"grid_share,omitempty"` // kWh drawn from the grid
	Savings          float64 `json:"savings,omitempty"`    // Currency saved vs. full grid supply
}

// AlertSeverity ranks how urgent an alert is
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Rank returns an ordering weight, higher is more severe
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Alert represents a detected consumption anomaly
type Alert struct {
	Severity      AlertSeverity `json:"severity"`
	Type          string        `json:"type"` // yoy_spike, benchmark_overshoot, meter_reset
	MeterType     MeterType     `json:"meter_type"`
	Message       string        `json:"message"`
	ActualValue   float64       `json:"actual_value,omitempty"`
	ExpectedValue float64       `json:"expected_value,omitempty"`
	ChangePercent float64       `json:"change_percent,omitempty"`
}

// AlertSettings holds the thresholds the anomaly detector applies.
// Passed explicitly so callers control thresholds per invocation
type AlertSettings struct {
	SpikeWarnPercent   float64 `json:"spike_warn_percent"`
	SpikeCritPercent   float64 `json:"spike_crit_percent"`
	BenchmarkOvershoot bool    `json:"benchmark_overshoot"`
}

// Forecast is a linear-trend projection over monthly totals
type Forecast struct {
	Slope              float64   `json:"slope"`
	Intercept          float64   `json:"intercept"`
	Projection         []float64 `json:"projection"` // Six periods ahead, clamped to >= 0
	AnnualizedForecast float64   `json:"annualized_forecast"`
	Trend              string    `json:"trend"` // rising, falling, stable
}

// MonthlyConsumption is one calendar-month bucket of consumption
type MonthlyConsumption struct {
	Month    time.Time `json:"month"` // First day of the month
	Value    float64   `json:"value"`
	Readings int       `json:"readings"` // Readings that fell into the month
}

// HeatmapCell accumulates interpolated daily rates for one weekday/month cell
type HeatmapCell struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// Average returns the mean daily rate for the cell
func (c HeatmapCell) Average() float64 {
	if c.Count == 0 {
		return 0
	}
	return c.Sum / float64(c.Count)
}

// Heatmap is a month × weekday grid of interpolated daily consumption.
// Rows are January..December, columns Sunday..Saturday
type Heatmap [12][7]HeatmapCell

// PortfolioData holds everything loaded for an analysis run
type PortfolioData struct {
	Buildings  []Building  `json:"buildings"`
	Benchmarks []Benchmark `json:"benchmarks,omitempty"` // Extends the built-in table
	LoadedAt   time.Time   `json:"loaded_at"`
}

// MeterAnalysis holds the complete calculation output for one meter
type MeterAnalysis struct {
	MeterID           string               `json:"meter_id"`
	MeterName         string               `json:"meter_name,omitempty"`
	Type              MeterType            `json:"type"`
	ReadingCount      int                  `json:"reading_count"`
	Window            *ConsumptionWindow   `json:"window,omitempty"`
	AnnualConsumption *float64             `json:"annual_consumption,omitempty"` // nil when the baseline is insufficient
	AnnualCost        float64              `json:"annual_cost"`
	Grade             string               `json:"grade,omitempty"`
	Benchmark         *Benchmark           `json:"benchmark,omitempty"`
	Forecast          *Forecast            `json:"forecast,omitempty"`
	Monthly           []MonthlyConsumption `json:"monthly,omitempty"`
	Heatmap           *Heatmap             `json:"heatmap,omitempty"`
	CO2Kg             float64              `json:"co2_kg"`
	PrimaryEnergyKWh  float64              `json:"primary_energy_kwh"`
}

// BuildingAnalysis holds the analysis output for one building
type BuildingAnalysis struct {
	BuildingID        string                     `json:"building_id"`
	BuildingName      string                     `json:"building_name,omitempty"`
	Meters            []MeterAnalysis            `json:"meters,omitempty"` // Building-level shared meters
	UnitMeters        map[string][]MeterAnalysis `json:"unit_meters,omitempty"`
	Alerts            []Alert                    `json:"alerts,omitempty"`
	HeatingAllocation []AllocationResult         `json:"heating_allocation,omitempty"`
	PVAllocation      []AllocationResult         `json:"pv_allocation,omitempty"`
	TotalAnnualCost   float64                    `json:"total_annual_cost"`
	TotalCO2Kg        float64                    `json:"total_co2_kg"`
}

// AnalysisResult holds the complete analysis output for a portfolio
type AnalysisResult struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Buildings   []BuildingAnalysis `json:"buildings,omitempty"`
	Insights    []Insight          `json:"insights,omitempty"`
	// Charts (base64 encoded PNG images), keyed by building ID
	MonthlyUsageCharts map[string]string `json:"monthlyUsageCharts,omitempty"`
	ForecastCharts     map[string]string `json:"forecastCharts,omitempty"`
}

// Insight represents an actionable recommendation
type Insight struct {
	Category    string `json:"category"` // cost, usage, allocation, pv
	Priority    string `json:"priority"` // high, medium, low
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}
