package scanner

import (
	"sort"

	"github.com/openrange-trading/openrange/src/indicators"
	"github.com/openrange-trading/openrange/src/models"
)

// Candidate is a scored entry opportunity for one symbol at the decision
// cutoff. Immutable once built.
type Candidate struct {
	Symbol    string
	Direction models.Direction
	Score     float64
	SetupType models.SetupType
	Snapshot  *indicators.Snapshot
}

// Rank orders candidates descending by score; equal scores fall back to
// ascending symbol so selection is deterministic.
func Rank(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// SkipReason classifies why a symbol produced no Candidate.
type SkipReason string

const (
	SkipInsufficientData SkipReason = "insufficient_data"
	SkipNoDirection      SkipReason = "no_direction"
	SkipBelowMinScore    SkipReason = "below_min_score"
	SkipDataError        SkipReason = "data_error"
)

// Evaluation is the outcome of scoring one symbol: either a Candidate or the
// reason it was skipped. Skips feed run diagnostics instead of disappearing.
type Evaluation struct {
	Symbol    string
	Candidate *Candidate
	Skip      SkipReason
}

func (e Evaluation) Skipped() bool {
	return e.Candidate == nil
}
