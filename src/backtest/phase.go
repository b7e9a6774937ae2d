package backtest

// Phase names one stage of the single-day state machine. The sequence is
// fixed: pre-market filter, candidate scan, entry, then management at each
// checkpoint until the forced close.
type Phase string

const (
	PhasePreMarketFilter    Phase = "pre_market_filter"
	PhaseCandidateScan      Phase = "candidate_scan"
	PhasePositionEntry      Phase = "position_entry"
	PhasePositionManagement Phase = "position_management"
	PhaseForcedClose        Phase = "forced_close"
	PhaseDone               Phase = "done"
)
