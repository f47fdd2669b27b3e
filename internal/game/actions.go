package game

import (
	"errors"

	"github.com/talgya/timberline/internal/forest"
	"github.com/talgya/timberline/internal/market"
)

// Refusal sentinels. Stock shortages are never refused, only clamped down
// (possibly to zero), so the hard refusals are a session that has ended and
// an action the player cannot pay for.
var (
	// ErrInsufficientFunds means the clamped action's full cost exceeds the
	// current balance. The action is refused whole; nothing is partially
	// funded.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSessionOver means the session is terminal and accepts only restart.
	ErrSessionOver = errors.New("session is over")
)

// Outcome reports what an action actually did after clamping.
type Outcome struct {
	Action    string  `json:"action"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
	Cost      float64 `json:"cost"`
	Revenue   float64 `json:"revenue"`
}

// Harvest fells timber into the roadside raw inventory, bounded by standing
// stock and the per-turn harvest cap.
func (g *Game) Harvest(amount float64) (Outcome, error) {
	out := Outcome{Action: "harvest", Requested: amount}
	if err := g.gate(out.Action); err != nil {
		return out, err
	}

	actual, remaining := forest.Harvest(g.st.ForestStock, amount, g.cfg.HarvestCap)
	cost := actual * g.cfg.HarvestCostPerTon
	if cost > g.st.Money {
		g.log("harvest of %.0f t refused: costs %.0f, only %.0f on hand", actual, cost, g.st.Money)
		return out, ErrInsufficientFunds
	}

	g.st.ForestStock = remaining
	g.st.RawInventory += actual
	g.st.Money -= cost
	out.Applied = actual
	out.Cost = cost
	g.log("harvested %.0f t for %.0f", actual, cost)
	return out, nil
}

// Transport hauls raw timber from the forest road to the mill yard, bounded
// by what is at the road and the per-turn haul capacity.
func (g *Game) Transport(amount float64) (Outcome, error) {
	out := Outcome{Action: "transport", Requested: amount}
	if err := g.gate(out.Action); err != nil {
		return out, err
	}

	actual := clamp(amount, g.st.RawInventory, g.cfg.TransportCapacity)
	cost := actual * g.cfg.TransportCostPerTon
	if cost > g.st.Money {
		g.log("transport of %.0f t refused: costs %.0f, only %.0f on hand", actual, cost, g.st.Money)
		return out, ErrInsufficientFunds
	}

	g.st.RawInventory -= actual
	g.st.MillInventory += actual
	g.st.Money -= cost
	out.Applied = actual
	out.Cost = cost
	g.log("hauled %.0f t to the mill for %.0f", actual, cost)
	return out, nil
}

// Process converts mill-yard timber into finished product at the configured
// yield ratio, bounded by mill capacity and available feedstock. The amount
// is in product units.
func (g *Game) Process(amount float64) (Outcome, error) {
	out := Outcome{Action: "process", Requested: amount}
	if err := g.gate(out.Action); err != nil {
		return out, err
	}

	actual := clamp(amount, g.st.MillInventory/g.cfg.TimberPerProduct, g.cfg.MillCapacity)
	cost := actual * g.cfg.ProcessCostPerUnit
	if cost > g.st.Money {
		g.log("milling of %.0f units refused: costs %.0f, only %.0f on hand", actual, cost, g.st.Money)
		return out, ErrInsufficientFunds
	}

	g.st.MillInventory -= actual * g.cfg.TimberPerProduct
	if g.st.MillInventory < 0 {
		// Float residue when milling consumes the whole yard.
		g.st.MillInventory = 0
	}
	g.st.FinishedInventory += actual
	g.st.Money -= cost
	out.Applied = actual
	out.Cost = cost
	g.log("milled %.0f units for %.0f", actual, cost)
	return out, nil
}

// Sell moves finished product into the market at the current price, bounded
// by inventory and by the demand remaining this turn. Selling earns money
// and so is never funding-gated.
func (g *Game) Sell(amount float64) (Outcome, error) {
	out := Outcome{Action: "sell", Requested: amount}
	if err := g.gate(out.Action); err != nil {
		return out, err
	}

	sold := market.Fill(g.st.FinishedInventory, g.st.Market.Demand, amount)
	revenue := sold * g.st.Market.Price

	g.st.FinishedInventory -= sold
	g.st.Money += revenue
	g.st.Market.Consume(sold)
	out.Applied = sold
	out.Revenue = revenue
	g.log("sold %.0f units at %.0f for %.0f", sold, g.st.Market.Price, revenue)
	return out, nil
}

// gate rejects actions on a finished session. The rejection is a no-op on
// state but still leaves a log entry, so repeated clicks read back sanely.
func (g *Game) gate(action string) error {
	if !g.st.Terminal {
		return nil
	}
	g.log("%s ignored: session is over (%s)", action, g.st.Reason)
	return ErrSessionOver
}

// clamp bounds a request by availability and capacity, flooring at zero.
func clamp(requested, available, capacity float64) float64 {
	actual := requested
	if actual > available {
		actual = available
	}
	if actual > capacity {
		actual = capacity
	}
	if actual < 0 {
		actual = 0
	}
	return actual
}
