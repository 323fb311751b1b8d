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
)

const (
	AllocationHeizkostenV = "heizkostenv"
	AllocationMieterstrom = "mieterstrom"
)

// AllocateHeizkostenV splits a total heating or water cost across units
// following the German heating-cost ordinance: a configurable share is
// apportioned by measured consumption, the remainder by unit area.
//
// consumptionRatio is the consumption-based share of the split; the named
// presets are 1.0, 0.7, 0.5 and 0.0 (see AllocationRatioFor). A zero total
// consumption or zero total area degrades that part of the split to zero for
// every unit rather than failing the allocation.
//
// Invariant: the unit costs sum to totalCost within one cent per unit of
// cumulative rounding error.
func AllocateHeizkostenV(units []UnitConsumption, totalCost, consumptionRatio float64) []AllocationResult {
	areaRatio := 1 - consumptionRatio

	var totalConsumption, totalArea float64
	for _, unit := range units {
		totalConsumption += unit.Consumption
		totalArea += unit.Area
	}

	results := make([]AllocationResult, 0, len(units))
	for _, unit := range units {
		var consumptionShare, consumptionCost, areaCost float64

		if totalConsumption > 0 {
			consumptionShare = unit.Consumption / totalConsumption
			consumptionCost = consumptionShare * totalCost * consumptionRatio
		}
		if totalArea > 0 {
			areaCost = unit.Area / totalArea * totalCost * areaRatio
		}

		results = append(results, AllocationResult{
			UnitID:           unit.UnitID,
			ConsumptionShare: consumptionShare,
			CostShare:        roundCurrency(consumptionCost + areaCost),
			Method:           AllocationHeizkostenV,
		})
	}

	return results
}

// AllocateMieterstrom distributes building-level PV self-consumption energy
// across units proportionally to each unit's share of total electricity
// demand. Proportional shares are floored to whole units and capped at the
// unit's own consumption, so the distributed sum may fall short of
// pvAvailable by rounding slack; it never exceeds it. The residual demand is
// grid supply.
//
// Cost per unit prices the PV share at pvPrice and the grid share at
// gridPrice; savings is what the PV share would have cost extra at the grid
// rate. Units without consumption receive a zero share rather than failing
// the allocation.
func AllocateMieterstrom(pvAvailable float64, units []UnitConsumption, pvPrice, gridPrice float64) []AllocationResult {
	var totalConsumption float64
	for _, unit := range units {
		totalConsumption += unit.Consumption
	}

	results := make([]AllocationResult, 0, len(units))
	for _, unit := range units {
		var consumptionShare, pvShare float64

		if totalConsumption > 0 && unit.Consumption > 0 {
			consumptionShare = unit.Consumption / totalConsumption
			// Flooring keeps the sum of shares within pvAvailable for any
			// share vector; rounding half-up can overdistribute. Dividing
			// last keeps exact proportions exact before the floor
			pvShare = math.Min(unit.Consumption, math.Floor(pvAvailable*unit.Consumption/totalConsumption))
			if pvShare < 0 {
				pvShare = 0
			}
		}
		gridShare := unit.Consumption - pvShare

		results = append(results, AllocationResult{
			UnitID:           unit.UnitID,
			ConsumptionShare: consumptionShare,
			CostShare:        roundCurrency(pvShare*pvPrice + gridShare*gridPrice),
			Method:           AllocationMieterstrom,
			PVShare:          pvShare,
			GridShare:        gridShare,
			Savings:          roundCurrency(pvShare * (gridPrice - pvPrice)),
		})
	}

	return results
}
