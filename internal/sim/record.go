package sim

// PeriodRecord is an immutable snapshot of one period's flows and balances.
// One row per period, appended in period order; this is the primary artifact
// for "what happened" in a batch run. Tagged for JSON output, CSV export,
// and sqlite storage.
type PeriodRecord struct {
	Period              int     `json:"period" csv:"period" db:"period"`
	ForestStock         float64 `json:"forest_stock" csv:"forest_stock" db:"forest_stock"`
	Harvested           float64 `json:"harvested" csv:"harvested" db:"harvested"`
	TimberInventory     float64 `json:"timber_inventory" csv:"timber_inventory" db:"timber_inventory"`
	Produced            float64 `json:"produced" csv:"produced" db:"produced"`
	FinishedInventory   float64 `json:"finished_inventory" csv:"finished_inventory" db:"finished_inventory"`
	Demand              float64 `json:"demand" csv:"demand" db:"demand"`
	Sales               float64 `json:"sales" csv:"sales" db:"sales"`
	Revenue             float64 `json:"revenue" csv:"revenue" db:"revenue"`
	HarvestCost         float64 `json:"harvest_cost" csv:"harvest_cost" db:"harvest_cost"`
	ProductionCost      float64 `json:"production_cost" csv:"production_cost" db:"production_cost"`
	HoldingTimberCost   float64 `json:"holding_timber_cost" csv:"holding_timber_cost" db:"holding_timber_cost"`
	HoldingFinishedCost float64 `json:"holding_finished_cost" csv:"holding_finished_cost" db:"holding_finished_cost"`
	TotalCost           float64 `json:"total_cost" csv:"total_cost" db:"total_cost"`
	PeriodProfit        float64 `json:"period_profit" csv:"period_profit" db:"period_profit"`
	CumulativeProfit    float64 `json:"cumulative_profit" csv:"cumulative_profit" db:"cumulative_profit"`
}
