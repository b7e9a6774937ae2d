package optimizer

import (
	"fmt"
	"time"

	"github.com/openrange-trading/openrange/src/marketdata"
)

var (
	ErrInvalidWindowConfig = fmt.Errorf("invalid window configuration")
	ErrNoWindows           = fmt.Errorf("window configuration produces no windows")
)

// Window is one train-then-validate span of the walk-forward roll. Bounds
// are half open: training covers [TrainingStart, TrainingEnd) and
// validation [ValidationStart, ValidationEnd), with validation starting
// exactly where training ends, so the two never share a day.
type Window struct {
	Index           int       `json:"index"`
	TrainingStart   time.Time `json:"training_start"`
	TrainingEnd     time.Time `json:"training_end"`
	ValidationStart time.Time `json:"validation_start"`
	ValidationEnd   time.Time `json:"validation_end"`
}

// TrainingRange is the inclusive day span the training backtest runs over.
func (w Window) TrainingRange() (time.Time, time.Time) {
	return w.TrainingStart, w.TrainingEnd.AddDate(0, 0, -1)
}

// ValidationRange is the inclusive day span the validation backtest runs
// over.
func (w Window) ValidationRange() (time.Time, time.Time) {
	return w.ValidationStart, w.ValidationEnd.AddDate(0, 0, -1)
}

func (w Window) String() string {
	return fmt.Sprintf("window %d: train %s..%s validate %s..%s",
		w.Index,
		marketdata.DateKey(w.TrainingStart), marketdata.DateKey(w.TrainingEnd),
		marketdata.DateKey(w.ValidationStart), marketdata.DateKey(w.ValidationEnd))
}

// GenerateWindows rolls train/validate windows across [start, end]: window
// i trains for trainYears from start + i*stepYears and validates over the
// following validationYears. Generation stops once a validation span would
// run past end. Producing no windows at all is a configuration error.
func GenerateWindows(start, end time.Time, trainYears, validationYears, stepYears int) ([]Window, error) {
	if trainYears <= 0 || validationYears <= 0 || stepYears <= 0 {
		return nil, fmt.Errorf("GenerateWindows: train=%dy validate=%dy step=%dy: %w",
			trainYears, validationYears, stepYears, ErrInvalidWindowConfig)
	}

	var out []Window
	for i := 0; ; i++ {
		trainStart := start.AddDate(i*stepYears, 0, 0)
		trainEnd := trainStart.AddDate(trainYears, 0, 0)
		validationEnd := trainEnd.AddDate(validationYears, 0, 0)
		if validationEnd.After(end) {
			break
		}

		out = append(out, Window{
			Index:           i,
			TrainingStart:   trainStart,
			TrainingEnd:     trainEnd,
			ValidationStart: trainEnd,
			ValidationEnd:   validationEnd,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("GenerateWindows: %s..%s with train=%dy validate=%dy step=%dy: %w",
			marketdata.DateKey(start), marketdata.DateKey(end), trainYears, validationYears, stepYears, ErrNoWindows)
	}
	return out, nil
}
