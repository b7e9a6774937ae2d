package scanner

import (
	"github.com/openrange-trading/openrange/src/indicators"
	"github.com/openrange-trading/openrange/src/models"
)

// Sub-score weights. They sum to 1 so the composite score stays in [0, 1].
const (
	weightOBV        = 0.3
	weightVWAP       = 0.2
	weightVolume     = 0.2
	weightMomentum   = 0.2
	weightVolatility = 0.1
)

// Evaluate scores one symbol's cutoff snapshot. The direction rules run
// first; a HOLD never reaches scoring.
func Evaluate(symbol string, snap *indicators.Snapshot, params models.ParameterSet) Evaluation {
	dir := direction(snap, params)
	if !dir.Tradeable() {
		return Evaluation{Symbol: symbol, Skip: SkipNoDirection}
	}

	s := score(snap, params, dir)
	if s <= params.MinScore {
		return Evaluation{Symbol: symbol, Skip: SkipBelowMinScore}
	}

	setup := models.SetupTypeORBBreakout
	if dir == models.DirectionShort {
		setup = models.SetupTypeORBBreakdown
	}
	return Evaluation{
		Symbol: symbol,
		Candidate: &Candidate{
			Symbol:    symbol,
			Direction: dir,
			Score:     s,
			SetupType: setup,
			Snapshot:  snap,
		},
	}
}

// direction applies the breakout rules: LONG needs the close above both VWAP
// and the opening-range high with OBV momentum confirming; SHORT is the
// mirror below; anything else is a HOLD.
func direction(snap *indicators.Snapshot, params models.ParameterSet) models.Direction {
	switch {
	case snap.LastClose > snap.VWAP &&
		snap.LastClose > snap.ORBHigh &&
		snap.OBVSlope > params.OBVSlopeThreshold:
		return models.DirectionLong
	case snap.LastClose < snap.VWAP &&
		snap.LastClose < snap.ORBLow &&
		snap.OBVSlope < -params.OBVSlopeThreshold:
		return models.DirectionShort
	default:
		return models.DirectionHold
	}
}

// score blends five normalized components with fixed weights. Directional
// components are flipped by the direction sign so shorts score
// symmetrically.
func score(snap *indicators.Snapshot, params models.ParameterSet, dir models.Direction) float64 {
	sign := dir.Sign()

	// OBV slope clipped to [-1, 1] then rescaled to [0, 1]
	signedSlope := snap.OBVSlope * sign
	if signedSlope > 1 {
		signedSlope = 1
	} else if signedSlope < -1 {
		signedSlope = -1
	}
	obvScore := (signedSlope + 1) / 2

	var vwapScore float64
	if params.VWAPBandPct > 0 {
		vwapScore = clamp01(snap.VWAPDeviation * sign / params.VWAPBandPct)
	}

	var volumeScore float64
	if params.VolumeRatioThreshold > 0 {
		volumeScore = clamp01(snap.VolumeRatio / (2 * params.VolumeRatioThreshold))
	}

	momentumScore := momentum(snap, sign)

	volatilityScore := 0.5 * clamp01(snap.ADX/40)
	if params.ATRPctThreshold > 0 {
		volatilityScore += 0.5 * clamp01(snap.ATRPct/(2*params.ATRPctThreshold))
	}

	return weightOBV*obvScore +
		weightVWAP*vwapScore +
		weightVolume*volumeScore +
		weightMomentum*momentumScore +
		weightVolatility*volatilityScore
}

// momentum positions the close inside the opening range: 0 at the range
// midpoint, saturating once price clears the breakout edge.
func momentum(snap *indicators.Snapshot, sign float64) float64 {
	rng := snap.ORBHigh - snap.ORBLow
	if rng <= 0 {
		return 0
	}
	mid := (snap.ORBHigh + snap.ORBLow) / 2
	return clamp01(sign * (snap.LastClose - mid) / (rng / 2))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
