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

const (
	// MinBaselineDays is the shortest reading span accepted for annualization.
	// Shorter spans extrapolate wildly from near-duplicate dates
	MinBaselineDays = 30

	// DaysPerYear is the standardized annualization span
	DaysPerYear = 365

	// ForecastPeriods is how many months ahead the forecast engine projects
	ForecastPeriods = 6

	// DefaultUnitPrice is the fallback price for meter types without an
	// entry in the default price table
	DefaultUnitPrice = 0.30
)

// defaultPrices maps each meter type to its default price per unit (EUR).
// Electricity-like types are EUR/kWh, water is EUR/m³
var defaultPrices = map[MeterType]float64{
	MeterElectricity:       0.32,
	MeterElectricityHT:     0.34,
	MeterElectricityNT:     0.28,
	MeterElectricityCommon: 0.32,
	MeterGas:               0.11,
	MeterWaterCold:         4.20,
	MeterWaterHot:          9.50,
	MeterHeating:           0.12,
	MeterDistrictHeating:   0.13,
	MeterCooling:           0.25,
	MeterPVFeedIn:          0.08,
	MeterPVSelfConsumption: 0.12,
	MeterHeatPump:          0.26,
	MeterEVCharging:        0.35,
	MeterOil:               0.10,
	MeterPellets:           0.07,
	MeterLPG:               0.09,
}

// DefaultPriceFor returns the default unit price for a meter type.
// Unknown types fall back to DefaultUnitPrice
func DefaultPriceFor(meterType MeterType) float64 {
	if price, ok := defaultPrices[meterType]; ok {
		return price
	}
	return DefaultUnitPrice
}

// co2Factors maps meter types to kg CO₂ per consumed unit
var co2Factors = map[MeterType]float64{
	MeterElectricity:       0.380,
	MeterElectricityHT:     0.380,
	MeterElectricityNT:     0.380,
	MeterElectricityCommon: 0.380,
	MeterGas:               0.201,
	MeterHeating:           0.250,
	MeterDistrictHeating:   0.180,
	MeterHeatPump:          0.120,
	MeterEVCharging:        0.380,
	MeterOil:               0.266,
	MeterPellets:           0.023,
	MeterLPG:               0.236,
	MeterPVSelfConsumption: 0.035,
}

// CO2FactorFor returns the emission factor for a meter type, 0 for types
// without a meaningful CO₂ footprint (water, PV production)
func CO2FactorFor(meterType MeterType) float64 {
	return co2Factors[meterType]
}

// primaryEnergyFactors maps meter types to their primary energy factor (PEF)
var primaryEnergyFactors = map[MeterType]float64{
	MeterElectricity:       1.8,
	MeterElectricityHT:     1.8,
	MeterElectricityNT:     1.8,
	MeterElectricityCommon: 1.8,
	MeterGas:               1.1,
	MeterHeating:           1.3,
	MeterDistrictHeating:   1.3,
	MeterHeatPump:          1.8,
	MeterEVCharging:        1.8,
	MeterOil:               1.1,
	MeterPellets:           0.2,
	MeterLPG:               1.1,
	MeterPVSelfConsumption: 0.0,
}

// PrimaryEnergyFactorFor returns the PEF for a meter type, 0 when none applies
func PrimaryEnergyFactorFor(meterType MeterType) float64 {
	return primaryEnergyFactors[meterType]
}

// meterTypeLabels provides display names for reports
var meterTypeLabels = map[MeterType]string{
	MeterElectricity:       "Electricity",
	MeterElectricityHT:     "Electricity (peak)",
	MeterElectricityNT:     "Electricity (off-peak)",
	MeterElectricityCommon: "Electricity (common areas)",
	MeterGas:               "Gas",
	MeterWaterCold:         "Cold water",
	MeterWaterHot:          "Hot water",
	MeterHeating:           "Heating",
	MeterDistrictHeating:   "District heating",
	MeterCooling:           "Cooling",
	MeterPVProduction:      "PV production",
	MeterPVFeedIn:          "PV feed-in",
	MeterPVSelfConsumption: "PV self-consumption",
	MeterHeatPump:          "Heat pump",
	MeterEVCharging:        "EV charging",
	MeterOil:               "Oil",
	MeterPellets:           "Pellets",
	MeterLPG:               "LPG",
}

// LabelFor returns the display label for a meter type, falling back to the
// raw tag for unknown types
func LabelFor(meterType MeterType) string {
	if label, ok := meterTypeLabels[meterType]; ok {
		return label
	}
	return string(meterType)
}

// meterTypeUnits provides measurement units for reports
var meterTypeUnits = map[MeterType]string{
	MeterWaterCold: "m³",
	MeterWaterHot:  "m³",
	MeterOil:       "L",
	MeterLPG:       "L",
	MeterPellets:   "kg",
}

// UnitFor returns the measurement unit for a meter type, kWh by default
func UnitFor(meterType MeterType) string {
	if unit, ok := meterTypeUnits[meterType]; ok {
		return unit
	}
	return "kWh"
}

// Named HeizkostenV presets mapping to the consumption-based share of the split
var allocationPresets = map[string]float64{
	"consumption_only": 1.0,
	"standard_70_30":   0.7,
	"even_split":       0.5,
	"area_only":        0.0,
}

// AllocationRatioFor resolves a named HeizkostenV preset to its
// consumption ratio
func AllocationRatioFor(preset string) (float64, bool) {
	ratio, ok := allocationPresets[preset]
	return ratio, ok
}

// defaultBenchmarks is the built-in reference table of annual consumption
// ranges. Electricity rows are keyed by household size, heat rows by
// building class and expressed per m² of heated area
var defaultBenchmarks = []Benchmark{
	{MeterType: MeterElectricity, PersonsRange: "1", Low: 1300, Medium: 1900, High: 2500, Unit: "kWh"},
	{MeterType: MeterElectricity, PersonsRange: "2", Low: 2000, Medium: 2800, High: 3500, Unit: "kWh"},
	{MeterType: MeterElectricity, PersonsRange: "3-4", Low: 2600, Medium: 3600, High: 4600, Unit: "kWh"},
	{MeterType: MeterElectricity, PersonsRange: "5+", Low: 3500, Medium: 5000, High: 6500, Unit: "kWh"},
	{MeterType: MeterGas, BuildingClass: "altbau", Low: 12000, Medium: 18000, High: 25000, Unit: "kWh"},
	{MeterType: MeterGas, BuildingClass: "neubau", Low: 6000, Medium: 9000, High: 13000, Unit: "kWh"},
	{MeterType: MeterHeating, BuildingClass: "altbau", Low: 12000, Medium: 17000, High: 23000, Unit: "kWh"},
	{MeterType: MeterHeating, BuildingClass: "neubau", Low: 5000, Medium: 8000, High: 12000, Unit: "kWh"},
	{MeterType: MeterHeating, BuildingClass: "passivhaus", Low: 1500, Medium: 2500, High: 4000, Unit: "kWh"},
	{MeterType: MeterDistrictHeating, BuildingClass: "altbau", Low: 11000, Medium: 16000, High: 22000, Unit: "kWh"},
	{MeterType: MeterDistrictHeating, BuildingClass: "neubau", Low: 5000, Medium: 8000, High: 11000, Unit: "kWh"},
	{MeterType: MeterWaterCold, PersonsRange: "1", Low: 30, Medium: 46, High: 60, Unit: "m³"},
	{MeterType: MeterWaterCold, PersonsRange: "2", Low: 55, Medium: 85, High: 110, Unit: "m³"},
	{MeterType: MeterWaterCold, PersonsRange: "3-4", Low: 90, Medium: 140, High: 190, Unit: "m³"},
	{MeterType: MeterWaterHot, PersonsRange: "1", Low: 10, Medium: 16, High: 22, Unit: "m³"},
	{MeterType: MeterWaterHot, PersonsRange: "2", Low: 18, Medium: 28, High: 40, Unit: "m³"},
	{MeterType: MeterHeatPump, BuildingClass: "neubau", Low: 2500, Medium: 4000, High: 6000, Unit: "kWh"},
}

// PersonsRangeFor buckets a household size into the benchmark table's ranges
func PersonsRangeFor(persons int) string {
	switch {
	case persons <= 0:
		return ""
	case persons == 1:
		return "1"
	case persons == 2:
		return "2"
	case persons <= 4:
		return "3-4"
	default:
		return "5+"
	}
}

// FindBenchmark returns the best-matching benchmark row for a meter type.
// Rows from extra (loaded with the portfolio) take precedence over the
// built-in table. Matching prefers exact class/persons matches and falls
// back to the type's generic row when one exists
func FindBenchmark(extra []Benchmark, meterType MeterType, buildingClass, personsRange string) *Benchmark {
	tables := [][]Benchmark{extra, defaultBenchmarks}

	var fallback *Benchmark
	for _, table := range tables {
		for i := range table {
			row := table[i]
			if row.MeterType != meterType {
				continue
			}
			classMatch := row.BuildingClass == "" || row.BuildingClass == buildingClass
			personsMatch := row.PersonsRange == "" || row.PersonsRange == personsRange
			if classMatch && personsMatch {
				if row.BuildingClass == buildingClass && row.PersonsRange == personsRange {
					return &row
				}
				if fallback == nil {
					fallback = &row
				}
			}
		}
		if fallback != nil {
			return fallback
		}
	}
	return nil
}
