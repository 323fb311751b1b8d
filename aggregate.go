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

// MonthlyConsumptionSeries buckets a reading series into the last `months`
// calendar months ending at the month containing `now`, oldest first.
//
// A month's consumption is last-minus-first of the readings falling inside
// it, clamped to zero; months with fewer than two readings contribute zero.
// Charting convention differs from raw annualization on purpose: a monthly
// bar cannot show negative or fractional-baseline consumption.
func MonthlyConsumptionSeries(readings []MeterReading, months int, now time.Time) []MonthlyConsumption {
	if months <= 0 {
		return []MonthlyConsumption{}
	}

	normalized := NormalizeReadings(readings)
	series := make([]MonthlyConsumption, 0, months)

	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var first, last *MeterReading
		count := 0
		for j := range normalized {
			r := &normalized[j]
			if r.Date.Before(monthStart) || !r.Date.Before(monthEnd) {
				continue
			}
			if first == nil {
				first = r
			}
			last = r
			count++
		}

		point := MonthlyConsumption{Month: monthStart, Readings: count}
		if count >= 2 {
			point.Value = clampZero(last.Value - first.Value)
		}
		series = append(series, point)
	}

	return series
}

// HeatmapFromReadings accumulates a month × weekday grid of approximate
// daily consumption. Each consecutive reading pair contributes its average
// daily rate to the cell of the pair's later reading.
//
// The daily rate assumes linear depletion between readings. That is an
// interpolation, not ground truth from the meter; cells hold sums and counts
// so consumers can average them.
func HeatmapFromReadings(readings []MeterReading) *Heatmap {
	normalized := NormalizeReadings(readings)

	var grid Heatmap
	for i := 1; i < len(normalized); i++ {
		previous := normalized[i-1]
		current := normalized[i]

		days := daysBetween(previous.Date, current.Date)
		if days <= 0 {
			continue
		}

		dailyRate := clampZero(current.Value-previous.Value) / float64(days)
		month := int(current.Date.Month()) - 1
		weekday := int(current.Date.Weekday())

		grid[month][weekday].Sum += dailyRate
		grid[month][weekday].Count++
	}

	return &grid
}
