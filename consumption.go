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
	"math"
	"time"
)

// ConsumptionWindowFor derives the consumption window spanning a reading
// series: first and last reading after normalization, the day span between
// them, the raw counter delta and the 365-day annualized rate. Returns nil
// when fewer than two distinct-date readings exist.
//
// The annualized value is only computed for spans of at least
// MinBaselineDays; shorter windows carry a zero annualized value.
func ConsumptionWindowFor(readings []MeterReading) *ConsumptionWindow {
	normalized := NormalizeReadings(readings)
	if len(normalized) < 2 {
		return nil
	}

	first := normalized[0]
	last := normalized[len(normalized)-1]
	daySpan := daysBetween(first.Date, last.Date)
	rawDelta := last.Value - first.Value

	window := &ConsumptionWindow{
		FirstReading: first,
		LastReading:  last,
		DaySpan:      daySpan,
		RawDelta:     rawDelta,
	}
	if daySpan >= MinBaselineDays {
		window.AnnualizedValue = rawDelta / float64(daySpan) * DaysPerYear
	}
	return window
}

// AnnualConsumption converts a reading series into an annualized consumption
// figure rounded to whole units. Returns nil when the series has fewer than
// two distinct-date readings or spans less than MinBaselineDays.
//
// A negative counter delta (meter rollover or replacement) is passed through
// unchanged; callers decide whether to clamp it to zero.
func AnnualConsumption(readings []MeterReading) *float64 {
	window := ConsumptionWindowFor(readings)
	if window == nil || window.DaySpan < MinBaselineDays {
		return nil
	}

	value := math.Round(window.AnnualizedValue)
	return &value
}

// Cost prices a consumption figure for a meter type. An explicit price takes
// precedence over the default per-type price table. The result is rounded to
// two decimals; zero consumption yields zero cost.
func Cost(consumption float64, meterType MeterType, price *float64) float64 {
	unitPrice := DefaultPriceFor(meterType)
	if price != nil {
		unitPrice = *price
	}
	return roundCurrency(consumption * unitPrice)
}

// daysBetween returns the whole calendar days from a to b. Both timestamps
// are reduced to their calendar date first, so time of day, zone offsets and
// DST transitions cannot shave a day off the span
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// roundCurrency rounds a monetary amount to two decimals
func roundCurrency(value float64) float64 {
	return math.Round(value*100) / 100
}
