package risk

import "math"

// Quantity converts an entry/stop pair and account state into a whole-share
// position size. The risk budget is a fixed fraction of leveraged deployable
// capital; the per-share risk is the distance to the stop. A zero-distance
// stop returns zero shares: the candidate is rejected, not treated as an
// error.
func Quantity(entryPrice, stopPrice, equity, riskPerTrade, leverage, capitalUtilization float64, maxShares int) int {
	perShareRisk := math.Abs(entryPrice - stopPrice)
	if perShareRisk == 0 {
		return 0
	}

	effectiveCapital := equity * capitalUtilization
	leveragedCapital := effectiveCapital * leverage
	riskAmount := leveragedCapital * riskPerTrade

	quantity := int(math.Floor(riskAmount / perShareRisk))
	if quantity < 0 {
		quantity = 0
	}
	if maxShares > 0 && quantity > maxShares {
		quantity = maxShares
	}
	return quantity
}
