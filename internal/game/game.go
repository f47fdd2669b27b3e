// Package game is the interactive variant of the supply chain: the operator
// issues harvest, transport, process, and sell actions against one session,
// then advances the turn. Every action is atomic and funded-or-refused;
// the market moves between turns; the session ends on depletion, on hitting
// the money target, or at the horizon.
package game

import (
	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/entropy"
	"github.com/talgya/timberline/internal/market"
)

// TerminalReason explains why a session stopped accepting actions.
type TerminalReason string

const (
	ReasonNone           TerminalReason = "none"
	ReasonDepleted       TerminalReason = "depleted"
	ReasonTargetReached  TerminalReason = "target_reached"
	ReasonHorizonReached TerminalReason = "horizon_reached"
)

// State is the complete session state. It is owned by the hosting layer:
// the game mutates it in place per action, the host decides where it lives
// and when it is persisted or reset.
type State struct {
	ForestStock       float64        `json:"forest_stock"`
	RawInventory      float64        `json:"raw_inventory"`      // Harvested timber at the forest road
	MillInventory     float64        `json:"mill_inventory"`     // Timber delivered to the mill, unconverted
	FinishedInventory float64        `json:"finished_inventory"` // Product units ready to sell
	Money             float64        `json:"money"`
	Market            market.Quote   `json:"market"`
	Turn              int            `json:"turn"`
	Terminal          bool           `json:"terminal"`
	Reason            TerminalReason `json:"terminal_reason"`
	Log               []Entry        `json:"log"`
}

// Game binds a session state to its parameters and random source.
type Game struct {
	cfg config.Game
	src entropy.Source
	st  State
}

// New starts a fresh session.
func New(cfg config.Game, src entropy.Source) *Game {
	g := &Game{cfg: cfg, src: src}
	g.st = initialState(cfg)
	return g
}

// Resume rebuilds a session around previously saved state, e.g. after a
// daemon restart.
func Resume(cfg config.Game, src entropy.Source, st State) *Game {
	return &Game{cfg: cfg, src: src, st: st}
}

// Restart throws the session away and starts over. This is the only action
// accepted in a terminal state.
func (g *Game) Restart() {
	g.st = initialState(g.cfg)
	g.log("session restarted")
}

// State returns a snapshot copy. The log slice is copied so callers cannot
// reach back into the live session.
func (g *Game) State() State {
	st := g.st
	st.Log = append([]Entry(nil), g.st.Log...)
	return st
}

// Target returns the money balance that wins the game.
func (g *Game) Target() float64 {
	return g.cfg.InitialMoney * g.cfg.TargetMultiple
}

func initialState(cfg config.Game) State {
	return State{
		ForestStock: cfg.InitialForestStock,
		Money:       cfg.InitialMoney,
		Market: market.Quote{
			Price:  cfg.BasePrice,
			Demand: cfg.BaseDemand,
		},
		Turn:   1,
		Reason: ReasonNone,
	}
}

func (g *Game) shock() market.Shock {
	return market.Shock{
		PriceSpread: g.cfg.PriceSpread,
		PriceFloor:  g.cfg.PriceFloor,
		BaseDemand:  g.cfg.BaseDemand,
		DemandFrac:  g.cfg.DemandFrac,
		DemandFloor: g.cfg.DemandFloor,
	}
}
