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
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestForecastLinearSeries(t *testing.T) {
	forecast := ForecastMonthly([]float64{100, 110, 120, 130, 140, 150})
	if forecast == nil {
		t.Fatal("expected a forecast for six points")
	}

	if !almostEqual(forecast.Slope, 10) {
		t.Errorf("expected slope 10, got %.4f", forecast.Slope)
	}
	if !almostEqual(forecast.Intercept, 100) {
		t.Errorf("expected intercept 100, got %.4f", forecast.Intercept)
	}
	if forecast.Trend != TrendRising {
		t.Errorf("expected a rising trend, got %q", forecast.Trend)
	}
	if len(forecast.Projection) != ForecastPeriods {
		t.Fatalf("expected %d projected periods, got %d", ForecastPeriods, len(forecast.Projection))
	}
	if !almostEqual(forecast.Projection[0], 160) {
		t.Errorf("expected the next period at 160, got %.4f", forecast.Projection[0])
	}
	if !almostEqual(forecast.Projection[5], 210) {
		t.Errorf("expected the sixth period at 210, got %.4f", forecast.Projection[5])
	}
	if !almostEqual(forecast.AnnualizedForecast, 2520) {
		t.Errorf("expected annualized forecast 2520, got %.4f", forecast.AnnualizedForecast)
	}
}

func TestForecastRequiresThreePoints(t *testing.T) {
	for _, values := range [][]float64{nil, {100}, {100, 110}} {
		if got := ForecastMonthly(values); got != nil {
			t.Errorf("expected nil for %d points, got %+v", len(values), got)
		}
	}
}

func TestForecastFlatSeries(t *testing.T) {
	forecast := ForecastMonthly([]float64{200, 200, 200, 200})
	if forecast == nil {
		t.Fatal("expected a forecast")
	}

	if !almostEqual(forecast.Slope, 0) {
		t.Errorf("expected a zero slope, got %.4f", forecast.Slope)
	}
	if forecast.Trend != TrendStable {
		t.Errorf("expected a stable trend, got %q", forecast.Trend)
	}
	for i, v := range forecast.Projection {
		if !almostEqual(v, 200) {
			t.Errorf("projection[%d] = %.4f, want 200", i, v)
		}
	}
	if !almostEqual(forecast.AnnualizedForecast, 2400) {
		t.Errorf("expected annualized forecast 2400, got %.4f", forecast.AnnualizedForecast)
	}
}

func TestForecastFallingSeriesClampsAtZero(t *testing.T) {
	forecast := ForecastMonthly([]float64{100, 50, 0})
	if forecast == nil {
		t.Fatal("expected a forecast")
	}

	if forecast.Trend != TrendFalling {
		t.Errorf("expected a falling trend, got %q", forecast.Trend)
	}
	for i, v := range forecast.Projection {
		if v != 0 {
			t.Errorf("projection[%d] = %.4f, want clamped 0", i, v)
		}
	}
	if forecast.AnnualizedForecast != 0 {
		t.Errorf("expected annualized forecast clamped to 0, got %.4f", forecast.AnnualizedForecast)
	}
}

func TestForecastSmallSlopeIsStable(t *testing.T) {
	forecast := ForecastMonthly([]float64{100, 100.3, 100.6, 100.9})
	if forecast == nil {
		t.Fatal("expected a forecast")
	}
	if forecast.Trend != TrendStable {
		t.Errorf("a slope below the threshold should read stable, got %q", forecast.Trend)
	}
}
