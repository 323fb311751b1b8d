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
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from analysis results
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport creates a markdown report from analysis results
func (r *Reporter) GenerateReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.writeHeader(writer, result)
	for _, building := range result.Buildings {
		r.writeBuilding(writer, building)
	}
	r.writeInsights(writer, result)
	r.writeFooter(writer)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "# Utility Consumption & Billing Report\n\n")
	fmt.Fprintf(w, "**Generated:** %s (%s)\n\n",
		result.GeneratedAt.Format("2006-01-02 15:04:05"),
		humanize.Time(result.GeneratedAt),
	)
	fmt.Fprintf(w, "**Run ID:** %s\n\n", result.RunID)
	fmt.Fprintf(w, "**meterbill version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeBuilding writes one building's full analysis
func (r *Reporter) writeBuilding(w io.Writer, building BuildingAnalysis) {
	fmt.Fprintf(w, "## 🏠 %s\n\n", buildingDisplayName(building))
	fmt.Fprintf(w, "> **💰 Total Annual Cost:** %s | **🌍 CO₂:** %s kg/year\n\n",
		FormatCurrency(building.TotalAnnualCost),
		humanize.CommafWithDigits(building.TotalCO2Kg, 0),
	)

	r.writeMeterTable(w, "Shared Meters", building.Meters)
	for unitID, meters := range building.UnitMeters {
		r.writeMeterTable(w, fmt.Sprintf("Unit %s", unitID), meters)
	}

	r.writeForecasts(w, building)
	r.writeAlerts(w, building)
	r.writeAllocations(w, building)
}

// writeMeterTable writes the per-meter consumption table
func (r *Reporter) writeMeterTable(w io.Writer, title string, meters []MeterAnalysis) {
	if len(meters) == 0 {
		return
	}

	fmt.Fprintf(w, "### 📊 %s\n\n", title)
	fmt.Fprintf(w, "| Meter | Type | Annual Consumption | Annual Cost | Grade |\n")
	fmt.Fprintf(w, "|-------|------|--------------------|-------------|-------|\n")
	for _, ma := range meters {
		consumption := "n/a"
		if ma.AnnualConsumption != nil {
			consumption = fmt.Sprintf("%s %s", humanize.CommafWithDigits(*ma.AnnualConsumption, 0), UnitFor(ma.Type))
		}
		grade := ma.Grade
		if grade == "" {
			grade = GradeNotRatable
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			meterDisplayName(ma),
			LabelFor(ma.Type),
			consumption,
			FormatCurrency(ma.AnnualCost),
			grade,
		)
	}
	fmt.Fprintf(w, "\n")
}

// writeForecasts writes the trend section for meters that have one
func (r *Reporter) writeForecasts(w io.Writer, building BuildingAnalysis) {
	var lines []string
	for _, ma := range allMeterAnalyses(building) {
		if ma.Forecast == nil {
			continue
		}
		indicator := "➡️"
		switch ma.Forecast.Trend {
		case TrendRising:
			indicator = "📈"
		case TrendFalling:
			indicator = "📉"
		}
		lines = append(lines, fmt.Sprintf("- %s **%s**: %s trend, projected %s %s/year",
			indicator,
			meterDisplayName(ma),
			ma.Forecast.Trend,
			humanize.CommafWithDigits(ma.Forecast.AnnualizedForecast, 0),
			UnitFor(ma.Type),
		))
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(w, "### 🔮 Forecasts\n\n")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\n", line)
	}
	fmt.Fprintf(w, "\n")
}

// writeAlerts writes the anomaly section
func (r *Reporter) writeAlerts(w io.Writer, building BuildingAnalysis) {
	if len(building.Alerts) == 0 {
		return
	}

	fmt.Fprintf(w, "### 🚨 Alerts\n\n")
	for _, alert := range building.Alerts {
		indicator := "ℹ️"
		switch alert.Severity {
		case SeverityCritical:
			indicator = "🔴"
		case SeverityWarning:
			indicator = "⚠️"
		}
		fmt.Fprintf(w, "- %s %s\n", indicator, alert.Message)
	}
	fmt.Fprintf(w, "\n")
}

// writeAllocations writes the cost allocation tables
func (r *Reporter) writeAllocations(w io.Writer, building BuildingAnalysis) {
	if len(building.HeatingAllocation) > 0 {
		fmt.Fprintf(w, "### 🔥 Heating Cost Allocation\n\n")
		fmt.Fprintf(w, "| Unit | Consumption Share | Cost |\n")
		fmt.Fprintf(w, "|------|-------------------|------|\n")
		for _, allocation := range building.HeatingAllocation {
			fmt.Fprintf(w, "| %s | %s | %s |\n",
				allocation.UnitID,
				FormatPercentage(allocation.ConsumptionShare*100),
				FormatCurrency(allocation.CostShare),
			)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(building.PVAllocation) > 0 {
		fmt.Fprintf(w, "### ☀️ Tenant Electricity (PV) Allocation\n\n")
		fmt.Fprintf(w, "| Unit | PV Share | Grid Share | Cost | Savings |\n")
		fmt.Fprintf(w, "|------|----------|------------|------|--------|\n")
		for _, allocation := range building.PVAllocation {
			fmt.Fprintf(w, "| %s | %s kWh | %s kWh | %s | %s |\n",
				allocation.UnitID,
				humanize.CommafWithDigits(allocation.PVShare, 0),
				humanize.CommafWithDigits(allocation.GridShare, 0),
				FormatCurrency(allocation.CostShare),
				FormatCurrency(allocation.Savings),
			)
		}
		fmt.Fprintf(w, "\n")
	}
}

// writeInsights writes the recommendations section
func (r *Reporter) writeInsights(w io.Writer, result *AnalysisResult) {
	if len(result.Insights) == 0 {
		return
	}

	fmt.Fprintf(w, "## 💡 Recommendations\n\n")
	for _, insight := range result.Insights {
		indicator := "🟢"
		switch insight.Priority {
		case "high":
			indicator = "🔴"
		case "medium":
			indicator = "🟡"
		}
		fmt.Fprintf(w, "### %s %s\n\n", indicator, insight.Title)
		fmt.Fprintf(w, "%s\n\n", insight.Description)
		fmt.Fprintf(w, "**Action:** %s\n\n", insight.Action)
	}
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Monthly charts interpolate between readings; figures are annualized estimates, not metered totals.*\n")
}

// FormatCurrency formats a value as currency
func FormatCurrency(value float64) string {
	return fmt.Sprintf("%.2f EUR", value)
}

// FormatPercentage formats a value as a percentage
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
