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

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"

	// trendSlopeThreshold is applied to the raw per-period slope. The
	// threshold is intentionally not normalized to the series magnitude;
	// a known limitation, kept for predictable labelling
	trendSlopeThreshold = 0.5
)

// ForecastMonthly fits an ordinary least-squares line through a series of
// monthly totals (one value per calendar month, index 0..n-1) and projects
// it forward. Requires at least three points; returns nil otherwise.
//
// Projection values and the annualized forecast are clamped to zero since a
// falling trend extrapolates below zero eventually.
func ForecastMonthly(values []float64) *Forecast {
	n := len(values)
	if n < 3 {
		return nil
	}

	var sumX, sumY float64
	for i, y := range values {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var numerator, denominator float64
	for i, y := range values {
		dx := float64(i) - meanX
		numerator += dx * (y - meanY)
		denominator += dx * dx
	}

	slope := 0.0
	if denominator != 0 {
		slope = numerator / denominator
	}
	intercept := meanY - slope*meanX

	projection := make([]float64, 0, ForecastPeriods)
	for i := 0; i < ForecastPeriods; i++ {
		x := float64(n + i)
		projection = append(projection, clampZero(intercept+slope*x))
	}

	annualized := clampZero(12 * (intercept + slope*float64(n+ForecastPeriods-1)))

	return &Forecast{
		Slope:              slope,
		Intercept:          intercept,
		Projection:         projection,
		AnnualizedForecast: annualized,
		Trend:              trendLabel(slope),
	}
}

// trendLabel classifies a per-period slope
func trendLabel(slope float64) string {
	switch {
	case slope > trendSlopeThreshold:
		return TrendRising
	case slope < -trendSlopeThreshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// clampZero floors a value at zero
func clampZero(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}
