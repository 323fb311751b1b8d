// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Analysis settings
	AnalysisMonths   int     `yaml:"analysis_months"`
	SpikeWarnPercent float64 `yaml:"spike_warn_percent"`
	SpikeCritPercent float64 `yaml:"spike_crit_percent"`
	BenchmarkAlerts  bool    `yaml:"benchmark_alerts"`

	// Cost allocation
	AllocationPreset string  `yaml:"allocation_preset"` // consumption_only, standard_70_30, even_split, area_only
	PVPrice          float64 `yaml:"pv_price"`          // EUR/kWh for tenant PV supply, 0 uses the default table
	GridPrice        float64 `yaml:"grid_price"`        // EUR/kWh for grid supply, 0 uses the default table

	// Per-type price overrides for the default price table
	Prices map[MeterType]float64 `yaml:"prices"`

	// Storage
	StoragePath string `yaml:"storage_path"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Set defaults
	config := &Config{
		AnalysisMonths:   12,
		SpikeWarnPercent: 20.0,
		SpikeCritPercent: 40.0,
		BenchmarkAlerts:  true,
		AllocationPreset: "standard_70_30",
		StoragePath:      getDefaultStoragePath(),
		Debug:            false,
	}

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultStoragePath returns the default storage path
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meterbill"
	}
	return filepath.Join(home, ".config", "meterbill")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("METERBILL_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("METERBILL_ALLOCATION_PRESET"); val != "" {
		c.AllocationPreset = val
	}
	if val := os.Getenv("METERBILL_ANALYSIS_MONTHS"); val != "" {
		if months, err := strconv.Atoi(val); err == nil {
			c.AnalysisMonths = months
		}
	}
	if val := os.Getenv("METERBILL_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.AnalysisMonths < 1 || c.AnalysisMonths > 60 {
		errors = append(errors, "analysis_months must be between 1 and 60")
	}

	if c.SpikeWarnPercent < 0 || c.SpikeWarnPercent > 100 {
		errors = append(errors, "spike_warn_percent must be between 0 and 100")
	}
	if c.SpikeCritPercent < 0 || c.SpikeCritPercent > 100 {
		errors = append(errors, "spike_crit_percent must be between 0 and 100")
	}
	if c.SpikeCritPercent < c.SpikeWarnPercent {
		errors = append(errors, "spike_crit_percent must not be below spike_warn_percent")
	}

	if _, ok := AllocationRatioFor(c.AllocationPreset); !ok {
		errors = append(errors, fmt.Sprintf("allocation_preset %q is not a known preset", c.AllocationPreset))
	}

	if c.PVPrice < 0 || c.GridPrice < 0 {
		errors = append(errors, "pv_price and grid_price must not be negative")
	}
	for meterType, price := range c.Prices {
		if price < 0 {
			errors = append(errors, fmt.Sprintf("price for %s must not be negative", meterType))
		}
	}

	// Set default storage path if empty
	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// AlertSettings builds the anomaly-detector settings from the configuration
func (c *Config) AlertSettings() AlertSettings {
	return AlertSettings{
		SpikeWarnPercent:   c.SpikeWarnPercent,
		SpikeCritPercent:   c.SpikeCritPercent,
		BenchmarkOvershoot: c.BenchmarkAlerts,
	}
}

// ConsumptionRatio resolves the configured HeizkostenV preset
func (c *Config) ConsumptionRatio() float64 {
	if ratio, ok := AllocationRatioFor(c.AllocationPreset); ok {
		return ratio
	}
	ratio, _ := AllocationRatioFor("standard_70_30")
	return ratio
}

// PriceFor returns the configured price for a meter type, falling back to
// the default price table
func (c *Config) PriceFor(meterType MeterType) float64 {
	if price, ok := c.Prices[meterType]; ok {
		return price
	}
	return DefaultPriceFor(meterType)
}

// TenantPVPrice returns the price at which PV self-consumption is billed
// to tenants
func (c *Config) TenantPVPrice() float64 {
	if c.PVPrice > 0 {
		return c.PVPrice
	}
	return c.PriceFor(MeterPVSelfConsumption)
}

// TenantGridPrice returns the grid electricity price applied to residual
// tenant demand
func (c *Config) TenantGridPrice() float64 {
	if c.GridPrice > 0 {
		return c.GridPrice
	}
	return c.PriceFor(MeterElectricity)
}
