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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// csvDateLayout is the reading date format accepted in CSV imports
const csvDateLayout = "2006-01-02"

// Collector assembles the portfolio data an analysis run works on
type Collector struct {
	config *Config
	logger *Logger
}

// NewCollector creates a new data collector
func NewCollector(config *Config, logger *Logger) *Collector {
	return &Collector{
		config: config,
		logger: logger,
	}
}

// LoadPortfolio reads a portfolio document (buildings, units, meters,
// readings and optional benchmark rows) from a JSON file. When readingsPath
// is non-empty, additional meter readings are merged in from CSV
func (c *Collector) LoadPortfolio(portfolioPath, readingsPath string) (*PortfolioData, error) {
	file, err := os.Open(portfolioPath)
	if err != nil {
		return nil, &StorageError{
			Operation: "open_portfolio",
			Path:      portfolioPath,
			Err:       err,
		}
	}
	defer file.Close()

	var data PortfolioData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, &ValidationError{
			Field:   "portfolio",
			Value:   portfolioPath,
			Message: fmt.Sprintf("not a valid portfolio document: %v", err),
		}
	}
	data.LoadedAt = time.Now()

	if readingsPath != "" {
		imported, err := c.loadReadingsCSV(readingsPath)
		if err != nil {
			return nil, err
		}
		merged := c.mergeReadings(&data, imported)
		c.logger.Info("Merged imported readings", "file", readingsPath, "readings", merged)
	}

	buildings, meters, readings := portfolioSize(&data)
	c.logger.LogPortfolioLoaded(buildings, meters, readings)

	return &data, nil
}

// loadReadingsCSV parses rows of meter_id,date,value[,source[,confidence]]
func (c *Collector) loadReadingsCSV(path string) (map[string][]MeterReading, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{
			Operation: "open_readings",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	readings := make(map[string][]MeterReading)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ValidationError{
				Field:   "readings",
				Value:   path,
				Message: fmt.Sprintf("line %d: %v", line+1, err),
			}
		}
		line++

		// Skip a header row
		if line == 1 && record[0] == "meter_id" {
			continue
		}
		if len(record) < 3 {
			return nil, &ValidationError{
				Field:   "readings",
				Value:   path,
				Message: fmt.Sprintf("line %d: expected meter_id,date,value", line),
			}
		}

		date, err := time.Parse(csvDateLayout, record[1])
		if err != nil {
			return nil, &ValidationError{
				Field:   "date",
				Value:   record[1],
				Message: fmt.Sprintf("line %d: expected %s", line, csvDateLayout),
			}
		}
		value, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   "value",
				Value:   record[2],
				Message: fmt.Sprintf("line %d: not a number", line),
			}
		}

		reading := MeterReading{
			MeterID:   record[0],
			Date:      date,
			Value:     value,
			Source:    SourceManual,
			CreatedAt: time.Now(),
		}
		if len(record) > 3 && record[3] != "" {
			reading.Source = ReadingSource(record[3])
		}
		if len(record) > 4 && record[4] != "" {
			confidence, err := strconv.ParseFloat(record[4], 64)
			if err != nil || confidence < 0 || confidence > 1 {
				return nil, &ValidationError{
					Field:   "confidence",
					Value:   record[4],
					Message: fmt.Sprintf("line %d: expected a value between 0 and 1", line),
				}
			}
			reading.Confidence = &confidence
		}

		readings[reading.MeterID] = append(readings[reading.MeterID], reading)
	}

	return readings, nil
}

// mergeReadings appends imported readings to their meters and returns how
// many were attached. Readings for unknown meters are logged and skipped
func (c *Collector) mergeReadings(data *PortfolioData, imported map[string][]MeterReading) int {
	attached := 0
	matched := make(map[string]bool)

	for b := range data.Buildings {
		building := &data.Buildings[b]
		for m := range building.Meters {
			attached += attachReadings(&building.Meters[m], imported, matched)
		}
		for u := range building.Units {
			for m := range building.Units[u].Meters {
				attached += attachReadings(&building.Units[u].Meters[m], imported, matched)
			}
		}
	}

	for meterID, rows := range imported {
		if !matched[meterID] {
			c.logger.Warn("Imported readings for unknown meter", "meter_id", meterID, "readings", len(rows))
		}
	}

	return attached
}

func attachReadings(meter *Meter, imported map[string][]MeterReading, matched map[string]bool) int {
	rows, ok := imported[meter.ID]
	if !ok {
		return 0
	}
	meter.Readings = append(meter.Readings, rows...)
	matched[meter.ID] = true
	return len(rows)
}

// portfolioSize counts buildings, meters and readings for logging
func portfolioSize(data *PortfolioData) (buildings, meters, readings int) {
	buildings = len(data.Buildings)
	for _, building := range data.Buildings {
		meters += len(building.Meters)
		for _, meter := range building.Meters {
			readings += len(meter.Readings)
		}
		for _, unit := range building.Units {
			meters += len(unit.Meters)
			for _, meter := range unit.Meters {
				readings += len(meter.Readings)
			}
		}
	}
	return buildings, meters, readings
}
