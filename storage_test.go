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
	"testing"
	"time"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), NewLogger(false))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSaveAndLoadAnalysisResult(t *testing.T) {
	storage := testStorage(t)

	result := &AnalysisResult{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		Buildings: []BuildingAnalysis{
			{BuildingID: "b1", TotalAnnualCost: 1234.56},
		},
	}

	if err := storage.SaveAnalysisResult(result); err != nil {
		t.Fatalf("failed to save analysis: %v", err)
	}

	loaded, err := storage.LoadLatestAnalysis()
	if err != nil {
		t.Fatalf("failed to load analysis: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a stored analysis")
	}
	if loaded.RunID != "run-1" {
		t.Errorf("expected run-1, got %q", loaded.RunID)
	}
	if len(loaded.Buildings) != 1 || loaded.Buildings[0].TotalAnnualCost != 1234.56 {
		t.Errorf("building analysis did not round-trip: %+v", loaded.Buildings)
	}
}

func TestLoadLatestPicksNewestRun(t *testing.T) {
	storage := testStorage(t)

	older := &AnalysisResult{
		RunID:       "run-old",
		GeneratedAt: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := &AnalysisResult{
		RunID:       "run-new",
		GeneratedAt: time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC),
	}

	if err := storage.SaveAnalysisResult(older); err != nil {
		t.Fatalf("failed to save older run: %v", err)
	}
	if err := storage.SaveAnalysisResult(newer); err != nil {
		t.Fatalf("failed to save newer run: %v", err)
	}

	loaded, err := storage.LoadLatestAnalysis()
	if err != nil {
		t.Fatalf("failed to load analysis: %v", err)
	}
	if loaded.RunID != "run-new" {
		t.Errorf("expected the newest run, got %q", loaded.RunID)
	}
}

func TestLoadLatestWithoutRuns(t *testing.T) {
	storage := testStorage(t)

	loaded, err := storage.LoadLatestAnalysis()
	if err != nil {
		t.Fatalf("an empty store must not error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected no analysis, got %+v", loaded)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	storage := testStorage(t)

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	if err := storage.SaveCache("k1", payload{Name: "x", Value: 42}, time.Hour); err != nil {
		t.Fatalf("failed to save cache entry: %v", err)
	}

	var got payload
	found, err := storage.LoadCache("k1", &got)
	if err != nil {
		t.Fatalf("failed to load cache entry: %v", err)
	}
	if !found {
		t.Fatal("expected a cache hit")
	}
	if got.Name != "x" || got.Value != 42 {
		t.Errorf("cache entry did not round-trip: %+v", got)
	}
}

func TestCacheMissAfterExpiry(t *testing.T) {
	storage := testStorage(t)

	if err := storage.SaveCache("k1", "payload", -time.Minute); err != nil {
		t.Fatalf("failed to save cache entry: %v", err)
	}

	var got string
	found, err := storage.LoadCache("k1", &got)
	if err != nil {
		t.Fatalf("failed to query cache: %v", err)
	}
	if found {
		t.Error("an expired entry must miss")
	}
}

func TestClearCache(t *testing.T) {
	storage := testStorage(t)

	if err := storage.SaveCache("k1", 1, time.Hour); err != nil {
		t.Fatalf("failed to save cache entry: %v", err)
	}
	if err := storage.ClearCache(); err != nil {
		t.Fatalf("failed to clear cache: %v", err)
	}

	total, _, err := storage.CacheStats()
	if err != nil {
		t.Fatalf("failed to read cache stats: %v", err)
	}
	if total != 0 {
		t.Errorf("expected an empty cache, got %d entries", total)
	}
}

func TestReadingSetKeyChangesWithReadings(t *testing.T) {
	base := []MeterReading{
		reading(t, "2025-01-01", 1000),
		reading(t, "2025-07-01", 2500),
	}
	corrected := []MeterReading{
		reading(t, "2025-01-01", 1000),
		reading(t, "2025-07-01", 2501),
	}

	if ReadingSetKey("m1", base) != ReadingSetKey("m1", base) {
		t.Error("the key must be stable for an unchanged reading set")
	}
	if ReadingSetKey("m1", base) == ReadingSetKey("m1", corrected) {
		t.Error("a corrected value must change the key")
	}
	if ReadingSetKey("m1", base) == ReadingSetKey("m2", base) {
		t.Error("different meters must not share a key")
	}
}
