// Package sim is the batch transition engine: a fixed per-period pipeline
// (grow, harvest, produce, sell, account) run over a fixed horizon with a
// constant market and unconstrained capital. Deterministic: the same
// scenario always yields the same series.
package sim

import (
	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/forest"
	"github.com/talgya/timberline/internal/market"
)

// State carries the quantities that persist between periods.
type State struct {
	ForestStock       float64
	TimberInventory   float64
	FinishedInventory float64
	CumulativeProfit  float64
	Period            int
}

// NewState seeds a run: full forest, empty inventories, no profit yet.
func NewState(cfg config.Scenario) State {
	return State{ForestStock: cfg.InitialForestStock}
}

// Step advances one period. Pure: the input state is not mutated. The order
// of operations is the model: growth before harvest, production before
// sales, holding costs on end-of-period levels.
func Step(s State, cfg config.Scenario) (State, PeriodRecord) {
	next := s
	next.Period = s.Period + 1

	// Regrowth compounds on the pre-harvest stock.
	next.ForestStock = forest.Grow(next.ForestStock, cfg.RegenRate())

	// Harvest against the target, bounded only by standing stock. Batch
	// scenarios carry no per-period cap distinct from the target.
	harvested, remaining := forest.Harvest(next.ForestStock, cfg.HarvestTarget, forest.NoCap)
	next.ForestStock = remaining
	next.TimberInventory += harvested

	// Mill timber into product, bounded by capacity and by feedstock.
	produced := cfg.ProductionCapacity
	if fromTimber := next.TimberInventory / cfg.TimberPerProduct; fromTimber < produced {
		produced = fromTimber
	}
	next.TimberInventory -= produced * cfg.TimberPerProduct
	if next.TimberInventory < 0 {
		// Float residue when production consumes the whole inventory.
		next.TimberInventory = 0
	}
	next.FinishedInventory += produced

	// Constant demand; sell whatever the market will take.
	sold := market.BatchSales(next.FinishedInventory, cfg.DemandPerPeriod)
	next.FinishedInventory -= sold

	// Ledger: revenue against the four cost components. Holding costs are
	// charged on what is still on hand at period end.
	revenue := sold * cfg.SellingPrice
	harvestCost := harvested * cfg.HarvestCostPerTon
	productionCost := produced * cfg.ProductionCostPerUnit
	holdingTimber := next.TimberInventory * cfg.HoldingCostTimber
	holdingFinished := next.FinishedInventory * cfg.HoldingCostProduct
	totalCost := harvestCost + productionCost + holdingTimber + holdingFinished

	profit := revenue - totalCost
	next.CumulativeProfit += profit

	rec := PeriodRecord{
		Period:              next.Period,
		ForestStock:         next.ForestStock,
		Harvested:           harvested,
		TimberInventory:     next.TimberInventory,
		Produced:            produced,
		FinishedInventory:   next.FinishedInventory,
		Demand:              cfg.DemandPerPeriod,
		Sales:               sold,
		Revenue:             revenue,
		HarvestCost:         harvestCost,
		ProductionCost:      productionCost,
		HoldingTimberCost:   holdingTimber,
		HoldingFinishedCost: holdingFinished,
		TotalCost:           totalCost,
		PeriodProfit:        profit,
		CumulativeProfit:    next.CumulativeProfit,
	}
	return next, rec
}

// Run executes a full scenario and returns the period series.
func Run(cfg config.Scenario) []PeriodRecord {
	state := NewState(cfg)
	records := make([]PeriodRecord, 0, cfg.Periods)
	for i := 0; i < cfg.Periods; i++ {
		var rec PeriodRecord
		state, rec = Step(state, cfg)
		records = append(records, rec)
	}
	return records
}
