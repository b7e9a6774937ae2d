package models

// SetupType labels the pattern that produced a candidate.
type SetupType string

const (
	SetupTypeORBBreakout  SetupType = "orb_breakout"
	SetupTypeORBBreakdown SetupType = "orb_breakdown"
)
