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

// GradeNotRatable is returned when no benchmark is available to grade against
const GradeNotRatable = "–"

// gradeLadder maps consumption/benchmark ratio boundaries to letter grades.
// Ratios above the last boundary grade as G
var gradeLadder = []struct {
	maxRatio float64
	grade    string
}{
	{0.50, "A+"},
	{0.70, "A"},
	{0.85, "B"},
	{1.00, "C"},
	{1.15, "D"},
	{1.30, "E"},
	{1.50, "F"},
}

// Grade maps an actual annual consumption against the medium benchmark value
// to an efficiency letter grade. A zero or negative benchmark cannot be
// graded against and yields GradeNotRatable instead of dividing by zero.
func Grade(actual, benchmarkMedium float64) string {
	if benchmarkMedium <= 0 {
		return GradeNotRatable
	}

	ratio := actual / benchmarkMedium
	for _, step := range gradeLadder {
		if ratio <= step.maxRatio {
			return step.grade
		}
	}
	return "G"
}
