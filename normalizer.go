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
	"sort"
	"time"
)

// NormalizeReadings sorts a meter's raw reading list ascending by date and
// de-duplicates same-date readings. The input slice is never mutated.
//
// Rules applied:
//   - readings with a negative counter value are dropped
//   - ordering is a stable sort by date, so same-date readings keep their
//     insertion order before de-duplication
//   - of several readings on the same calendar date, the latest-created one
//     wins (a correction replaces the original); without created timestamps
//     the last-inserted reading wins
//
// Negative deltas between consecutive points are NOT filtered here. They are
// a signal for downstream reset/rollover detection, not an error.
func NormalizeReadings(readings []MeterReading) []MeterReading {
	if len(readings) == 0 {
		return []MeterReading{}
	}

	sorted := make([]MeterReading, 0, len(readings))
	for _, r := range readings {
		if r.Value < 0 {
			continue
		}
		sorted = append(sorted, r)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	result := make([]MeterReading, 0, len(sorted))
	for _, r := range sorted {
		if len(result) > 0 && sameDay(result[len(result)-1].Date, r.Date) {
			// Later creation replaces the kept reading; equal or missing
			// timestamps defer to insertion order
			if !r.CreatedAt.Before(result[len(result)-1].CreatedAt) {
				result[len(result)-1] = r
			}
			continue
		}
		result = append(result, r)
	}

	return result
}

// sameDay reports whether two timestamps fall on the same calendar date
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
