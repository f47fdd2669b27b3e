// Package market models the exogenous product market: a price and a demand
// level, either held constant (batch scenarios) or shocked once per turn
// (interactive game).
package market

import (
	"math"

	"github.com/talgya/timberline/internal/entropy"
)

// Quote is the market state the simulation trades against.
type Quote struct {
	Price  float64 `json:"price"`
	Demand float64 `json:"demand"`
}

// Shock describes the per-turn perturbation of a game-mode market.
type Shock struct {
	PriceSpread float64 // Symmetric uniform price delta per turn
	PriceFloor  float64 // Price never drops below this
	BaseDemand  float64 // Demand re-centers here every turn
	DemandFrac  float64 // Symmetric uniform fraction applied to BaseDemand
	DemandFloor float64 // Demand never resampled below this
}

// Perturb applies one turn of market movement. Price random-walks within the
// configured spread and is floored; demand does not walk, it resets around
// the base value so one bad turn cannot starve the rest of the game.
func (q *Quote) Perturb(src entropy.Source, s Shock) {
	q.Price += entropy.Uniform(src, s.PriceSpread)
	if q.Price < s.PriceFloor {
		q.Price = s.PriceFloor
	}

	demand := math.Round(s.BaseDemand * (1 + entropy.Uniform(src, s.DemandFrac)))
	if demand < s.DemandFloor {
		demand = s.DemandFloor
	}
	q.Demand = demand
}

// Consume burns demand already satisfied this turn. Within a single turn
// demand is a cap to sell against, not a rate.
func (q *Quote) Consume(sold float64) {
	q.Demand -= sold
	if q.Demand < 0 {
		q.Demand = 0
	}
}

// Fill returns how many units actually sell: bounded by finished inventory,
// remaining demand, and the requested amount.
func Fill(finished, demand, requested float64) float64 {
	sold := requested
	if sold > finished {
		sold = finished
	}
	if sold > demand {
		sold = demand
	}
	if sold < 0 {
		sold = 0
	}
	return sold
}

// BatchSales is the constant-market rule: everything sells up to demand.
func BatchSales(finished, demand float64) float64 {
	return Fill(finished, demand, finished)
}
