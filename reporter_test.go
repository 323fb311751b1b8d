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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateReport(t *testing.T) {
	result, err := testAnalyzer(t).Analyze(testPortfolio(t))
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "report.md")
	reporter := NewReporter(NewLogger(false))
	if err := reporter.GenerateReport(result, outputPath); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"Hauptstrasse 1",
		result.RunID,
		"Heating Cost Allocation",
		"Tenant Electricity",
		"Electricity",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report is missing %q", want)
		}
	}
}

func TestGenerateReportBadPath(t *testing.T) {
	result := &AnalysisResult{RunID: "run-1"}
	reporter := NewReporter(NewLogger(false))
	if err := reporter.GenerateReport(result, "/nonexistent/dir/report.md"); err == nil {
		t.Error("expected an error for an unwritable path")
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(1234.5); got != "1234.50 EUR" {
		t.Errorf("unexpected currency format: %q", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	if got := FormatPercentage(12.345); !strings.HasPrefix(got, "12.3") {
		t.Errorf("unexpected percentage format: %q", got)
	}
}
