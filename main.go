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
	"flag"
	"fmt"
	"os"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	portfolioPath := flag.String("portfolio", "", "Path to portfolio JSON file")
	readingsPath := flag.String("readings", "", "Optional CSV file with additional meter readings")
	outputPath := flag.String("output", "", "Output file for report (default: stdout)")
	withCharts := flag.Bool("charts", false, "Render consumption and forecast charts into the stored result")
	jsonLogs := flag.Bool("json", false, "Log as JSON instead of text")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("meterbill %s\n", GetVersion())
		os.Exit(0)
	}

	// Initialize logger
	newLogger := NewLogger
	if *jsonLogs {
		newLogger = NewJSONLogger
	}
	logger := newLogger(*debug)
	logger.Info("Starting meterbill", "version", GetVersion())

	if *portfolioPath == "" {
		logger.Error("No portfolio file given, use -portfolio")
		os.Exit(1)
	}

	// Load configuration
	logger.Info("Loading configuration", "config_file", *configPath)
	config, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *debug {
		config.Debug = true
		// Recreate logger with debug enabled
		logger = newLogger(true)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Configuration loaded successfully")

	// Initialize storage
	logger.Info("Initializing storage", "path", config.StoragePath)
	storage, err := NewStorage(config.StoragePath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	// Load the portfolio
	logger.Info("Loading portfolio", "portfolio", *portfolioPath)
	collector := NewCollector(config, logger)
	data, err := collector.LoadPortfolio(*portfolioPath, *readingsPath)
	if err != nil {
		logger.Error("Failed to load portfolio", "error", err)
		os.Exit(1)
	}

	// Create analyzer with memoization
	logger.Info("Initializing analyzer")
	analyzer := NewAnalyzer(config, logger).WithCache(storage.Cache())

	// Perform analysis
	logger.Info("Performing analysis")
	result, err := analyzer.Analyze(data)
	if err != nil {
		logger.Error("Failed to perform analysis", "error", err)
		os.Exit(1)
	}

	// Render charts into the result
	if *withCharts {
		logger.Info("Rendering charts")
		renderCharts(result, logger)
	}

	// Save analysis results
	logger.Info("Saving analysis results")
	if err := storage.SaveAnalysisResult(result); err != nil {
		logger.Warn("Failed to save analysis results", "error", err)
	}

	// Generate report
	logger.Info("Generating report")
	reporter := NewReporter(logger)
	if err := reporter.GenerateReport(result, *outputPath); err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("Analysis completed successfully")
}

// renderCharts attaches base64 PNG charts to the result; chart failures are
// logged, never fatal
func renderCharts(result *AnalysisResult, logger *Logger) {
	generator := NewChartGenerator()
	result.MonthlyUsageCharts = make(map[string]string)
	result.ForecastCharts = make(map[string]string)

	for _, building := range result.Buildings {
		usage, err := generator.GenerateMonthlyUsageChart(building)
		if err != nil {
			logger.Warn("Skipping usage chart", "building_id", building.BuildingID, "error", err)
		} else {
			result.MonthlyUsageCharts[building.BuildingID] = usage
		}

		for _, ma := range allMeterAnalyses(building) {
			if ma.Forecast == nil {
				continue
			}
			forecast, err := generator.GenerateForecastChart(ma)
			if err != nil {
				logger.Warn("Skipping forecast chart", "meter_id", ma.MeterID, "error", err)
				continue
			}
			result.ForecastCharts[ma.MeterID] = forecast
		}
	}
}
