package optimizer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/openrange-trading/openrange/src/models"
)

// Report is the complete artifact of one walk-forward run: every window's
// outcome, the cross-window stability ranking, the recommended parameter
// set, and that set's performance over the full range.
type Report struct {
	RunID           uuid.UUID                 `json:"run_id"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Start           time.Time                 `json:"start"`
	End             time.Time                 `json:"end"`
	Config          WalkForwardConfig         `json:"config"`
	Windows         []WindowResult            `json:"windows"`
	Stability       []ParameterStability      `json:"stability"`
	Recommended     models.ParameterSet       `json:"recommended"`
	FinalValidation models.PerformanceSummary `json:"final_validation"`
}

// WriteJSON persists the report, indented for reading straight off disk.
func (r *Report) WriteJSON(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("Report.WriteJSON: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("Report.WriteJSON: %w", err)
	}
	return nil
}
