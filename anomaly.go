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
	"sort"
)

// DefaultAlertSettings returns the stock anomaly thresholds: warn above a
// 20% year-over-year increase, escalate above 40%, and flag benchmark
// overshoots
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		SpikeWarnPercent:   20,
		SpikeCritPercent:   40,
		BenchmarkOvershoot: true,
	}
}

// DetectAnomalies runs two independent checks over annualized per-type
// consumption figures and returns the findings ordered most severe first.
//
// Year-over-year spike: compares current against prior per meter type. A
// meter type with no positive prior baseline cannot alert. Benchmark
// overshoot: flags types whose consumption exceeds the matching benchmark's
// high bound.
//
// The function is idempotent given the same inputs and linear in the number
// of meter types; truncating for display is the caller's concern.
func DetectAnomalies(current, prior map[MeterType]float64, benchmarks map[MeterType]Benchmark, settings AlertSettings) []Alert {
	alerts := make([]Alert, 0, len(current))

	for _, meterType := range sortedMeterTypes(current) {
		consumption := current[meterType]

		if priorValue, ok := prior[meterType]; ok && priorValue > 0 {
			changePercent := (consumption - priorValue) / priorValue * 100
			if changePercent > settings.SpikeWarnPercent {
				severity := SeverityWarning
				if changePercent > settings.SpikeCritPercent {
					severity = SeverityCritical
				}
				alerts = append(alerts, Alert{
					Severity:      severity,
					Type:          "yoy_spike",
					MeterType:     meterType,
					Message:       fmt.Sprintf("%s consumption up %.0f%% on the prior year", LabelFor(meterType), changePercent),
					ActualValue:   consumption,
					ExpectedValue: priorValue,
					ChangePercent: changePercent,
				})
			}
		}

		if settings.BenchmarkOvershoot {
			if benchmark, ok := benchmarks[meterType]; ok && consumption > benchmark.High {
				alerts = append(alerts, Alert{
					Severity:      SeverityWarning,
					Type:          "benchmark_overshoot",
					MeterType:     meterType,
					Message:       fmt.Sprintf("%s consumption of %.0f %s exceeds the comparable high benchmark of %.0f %s", LabelFor(meterType), consumption, benchmark.Unit, benchmark.High, benchmark.Unit),
					ActualValue:   consumption,
					ExpectedValue: benchmark.High,
				})
			}
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity.Rank() != alerts[j].Severity.Rank() {
			return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
		}
		return alerts[i].ChangePercent > alerts[j].ChangePercent
	})

	return alerts
}

// sortedMeterTypes returns map keys in a stable order so detection output
// is deterministic
func sortedMeterTypes(values map[MeterType]float64) []MeterType {
	types := make([]MeterType, 0, len(values))
	for t := range values {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
