package game

import "github.com/talgya/timberline/internal/forest"

// AdvanceTurn closes out the current turn: the forest regrows, the market
// moves, and the session is checked for an ending. Player actions within a
// turn happen before this, in whatever order the player chose.
func (g *Game) AdvanceTurn() error {
	if g.st.Terminal {
		g.log("advance ignored: session is over (%s)", g.st.Reason)
		return ErrSessionOver
	}

	g.st.ForestStock = forest.Grow(g.st.ForestStock, g.cfg.RegenRate())
	g.st.Market.Perturb(g.src, g.shock())
	g.st.Turn++

	g.checkTerminal()
	if g.st.Terminal {
		g.log("session over: %s", g.st.Reason)
	} else {
		g.log("turn %d begins: price %.0f, demand %.0f", g.st.Turn, g.st.Market.Price, g.st.Market.Demand)
	}
	return nil
}

// checkTerminal evaluates ending conditions in a fixed order. Depletion is
// checked before the money target, so depletion wins when both hold on the
// same turn.
func (g *Game) checkTerminal() {
	switch {
	case g.st.Money <= 0 && g.st.RawInventory <= 0 && g.st.MillInventory <= 0 && g.st.FinishedInventory <= 0:
		g.st.Terminal = true
		g.st.Reason = ReasonDepleted
	case g.st.Money >= g.Target():
		g.st.Terminal = true
		g.st.Reason = ReasonTargetReached
	case g.st.Turn > g.cfg.Horizon:
		g.st.Terminal = true
		g.st.Reason = ReasonHorizonReached
	}
}
