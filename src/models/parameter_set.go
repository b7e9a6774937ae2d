package models

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ParameterSet is the full collection of tunable strategy knobs the
// optimizer searches over. Sets are compared by value: two sets with equal
// fields are the same point in the search space.
type ParameterSet struct {
	MinScore             float64 `yaml:"min_score" json:"min_score"`
	OBVSlopeThreshold    float64 `yaml:"obv_slope_threshold" json:"obv_slope_threshold"`
	VWAPBandPct          float64 `yaml:"vwap_band_pct" json:"vwap_band_pct"`
	RiskPerTrade         float64 `yaml:"risk_per_trade" json:"risk_per_trade"`
	Leverage             float64 `yaml:"leverage" json:"leverage"`
	MaxPositions         int     `yaml:"max_positions" json:"max_positions"`
	ATRPctThreshold      float64 `yaml:"atr_pct_threshold" json:"atr_pct_threshold"`
	VolumeRatioThreshold float64 `yaml:"volume_ratio_threshold" json:"volume_ratio_threshold"`
}

// DefaultParameterSet is a mid-grid starting point for ad-hoc runs.
func DefaultParameterSet() ParameterSet {
	return ParameterSet{
		MinScore:             0.6,
		OBVSlopeThreshold:    0.5,
		VWAPBandPct:          0.01,
		RiskPerTrade:         0.01,
		Leverage:             2,
		MaxPositions:         3,
		ATRPctThreshold:      0.005,
		VolumeRatioThreshold: 1.5,
	}
}

// LoadParameterSet reads and validates a parameter file in YAML form.
func LoadParameterSet(path string) (*ParameterSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadParameterSet: %w", err)
	}

	var p ParameterSet
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("LoadParameterSet: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("LoadParameterSet: %s: %w", path, err)
	}
	return &p, nil
}

// Validate rejects values no simulation should run with. Violations are
// configuration errors: fatal, surfaced before any backtest work begins.
func (p ParameterSet) Validate() error {
	if p.MinScore < 0 || p.MinScore > 1 {
		return fmt.Errorf("ParameterSet.Validate: min_score %.3f outside [0, 1]: %w", p.MinScore, ErrInvalidParameterSet)
	}
	if p.OBVSlopeThreshold <= 0 {
		return fmt.Errorf("ParameterSet.Validate: obv_slope_threshold %.3f must be positive: %w", p.OBVSlopeThreshold, ErrInvalidParameterSet)
	}
	if p.VWAPBandPct <= 0 {
		return fmt.Errorf("ParameterSet.Validate: vwap_band_pct %.4f must be positive: %w", p.VWAPBandPct, ErrInvalidParameterSet)
	}
	if p.RiskPerTrade <= 0 || p.RiskPerTrade > 0.5 {
		return fmt.Errorf("ParameterSet.Validate: risk_per_trade %.4f outside (0, 0.5]: %w", p.RiskPerTrade, ErrInvalidParameterSet)
	}
	if p.Leverage <= 0 || p.Leverage > 10 {
		return fmt.Errorf("ParameterSet.Validate: leverage %.2f outside (0, 10]: %w", p.Leverage, ErrInvalidParameterSet)
	}
	if p.MaxPositions < 0 || p.MaxPositions > 100 {
		return fmt.Errorf("ParameterSet.Validate: max_positions %d outside [0, 100]: %w", p.MaxPositions, ErrInvalidParameterSet)
	}
	if p.ATRPctThreshold <= 0 {
		return fmt.Errorf("ParameterSet.Validate: atr_pct_threshold %.4f must be positive: %w", p.ATRPctThreshold, ErrInvalidParameterSet)
	}
	if p.VolumeRatioThreshold <= 0 {
		return fmt.Errorf("ParameterSet.Validate: volume_ratio_threshold %.2f must be positive: %w", p.VolumeRatioThreshold, ErrInvalidParameterSet)
	}
	return nil
}

func (p ParameterSet) Equal(other ParameterSet) bool {
	return p == other
}

func (p ParameterSet) String() string {
	return fmt.Sprintf("score>%.2f obv>%.2f band=%.3f risk=%.3f lev=%.1f pos=%d atr>%.3f vol>%.2f",
		p.MinScore, p.OBVSlopeThreshold, p.VWAPBandPct, p.RiskPerTrade, p.Leverage, p.MaxPositions, p.ATRPctThreshold, p.VolumeRatioThreshold)
}

// ParameterNames lists the tunable dimensions in canonical order. Stability
// aggregation and grid decoding both rely on this order.
func ParameterNames() []string {
	return []string{
		"min_score",
		"obv_slope_threshold",
		"vwap_band_pct",
		"risk_per_trade",
		"leverage",
		"max_positions",
		"atr_pct_threshold",
		"volume_ratio_threshold",
	}
}

// Value returns one dimension as a float64; max_positions is widened.
func (p ParameterSet) Value(name string) (float64, error) {
	switch name {
	case "min_score":
		return p.MinScore, nil
	case "obv_slope_threshold":
		return p.OBVSlopeThreshold, nil
	case "vwap_band_pct":
		return p.VWAPBandPct, nil
	case "risk_per_trade":
		return p.RiskPerTrade, nil
	case "leverage":
		return p.Leverage, nil
	case "max_positions":
		return float64(p.MaxPositions), nil
	case "atr_pct_threshold":
		return p.ATRPctThreshold, nil
	case "volume_ratio_threshold":
		return p.VolumeRatioThreshold, nil
	default:
		return 0, fmt.Errorf("ParameterSet.Value: %q: %w", name, ErrUnknownParameter)
	}
}

// SetValue assigns one dimension from a float64.
func (p *ParameterSet) SetValue(name string, v float64) error {
	switch name {
	case "min_score":
		p.MinScore = v
	case "obv_slope_threshold":
		p.OBVSlopeThreshold = v
	case "vwap_band_pct":
		p.VWAPBandPct = v
	case "risk_per_trade":
		p.RiskPerTrade = v
	case "leverage":
		p.Leverage = v
	case "max_positions":
		p.MaxPositions = int(math.Round(v))
	case "atr_pct_threshold":
		p.ATRPctThreshold = v
	case "volume_ratio_threshold":
		p.VolumeRatioThreshold = v
	default:
		return fmt.Errorf("ParameterSet.SetValue: %q: %w", name, ErrUnknownParameter)
	}
	return nil
}
