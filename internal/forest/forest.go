// Package forest models the standing timber stock: compounding regrowth at
// the start of each period, depletion by harvest, never negative.
package forest

// NoCap disables the per-period harvest limit. Batch scenarios harvest
// against their target bounded only by standing stock.
const NoCap = -1

// Grow applies one period of compounding regrowth to the current stock.
// Growth compounds on whatever survived the previous harvest.
func Grow(stock, rate float64) float64 {
	grown := stock * (1 + rate)
	if grown < 0 {
		return 0
	}
	return grown
}

// Harvest removes timber from the stock. The amount actually taken is
// clamped to what was requested, what is standing, and the per-period limit;
// over-asking is truncated silently, never an error. Returns the amount
// taken and the remaining stock.
func Harvest(stock, requested, limit float64) (actual, remaining float64) {
	actual = requested
	if actual > stock {
		actual = stock
	}
	if limit >= 0 && actual > limit {
		actual = limit
	}
	if actual < 0 {
		actual = 0
	}
	return actual, stock - actual
}
