package models

// ExitReason records which rule closed a position.
type ExitReason string

const (
	ExitReasonStopLoss     ExitReason = "stop_loss"
	ExitReasonProfitTarget ExitReason = "profit_target"
	ExitReasonTrailingStop ExitReason = "trailing_stop"
	ExitReasonEndOfDay     ExitReason = "end_of_day"
)

// IsStop reports whether the exit came from protective logic rather than the
// profit target or the session close.
func (r ExitReason) IsStop() bool {
	return r == ExitReasonStopLoss || r == ExitReasonTrailingStop
}
