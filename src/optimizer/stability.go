package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/models"
)

// ParameterStability measures how much one dimension's winning value moved
// across windows. A low coefficient of variation means the optimizer kept
// landing on the same value, which is the robustness signal the final
// recommendation leans on.
type ParameterStability struct {
	Name   string    `json:"name"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	CV     float64   `json:"cv"`
	Values []float64 `json:"values"`
}

// ComputeStability aggregates the winning value of every dimension across
// windows, ranked by ascending CV. A dimension that never moved has CV
// exactly 0; a zero-mean dimension that did move is ranked last.
func ComputeStability(winners []models.ParameterSet) []ParameterStability {
	var out []ParameterStability
	if len(winners) == 0 {
		return out
	}

	for _, name := range models.ParameterNames() {
		values := make([]float64, len(winners))
		for i, w := range winners {
			v, _ := w.Value(name)
			values[i] = v
		}

		mean, _ := stats.Mean(values)
		sd, _ := stats.StandardDeviation(values)

		st := ParameterStability{Name: name, Mean: mean, StdDev: sd, Values: values}
		switch {
		case sd == 0:
			st.CV = 0
		case mean == 0:
			st.CV = math.Inf(1)
		default:
			st.CV = sd / math.Abs(mean)
		}
		out = append(out, st)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CV < out[j].CV })
	return out
}

// RecommendParameters builds the final set from the winners: per searched
// dimension, the most frequent winning value; the smallest wins a frequency
// tie, and when no value repeats the median is snapped onto the nearest
// declared grid point. Unsearched dimensions keep their defaults.
func RecommendParameters(winners []models.ParameterSet, grid *Grid) (models.ParameterSet, error) {
	if len(winners) == 0 {
		return models.ParameterSet{}, fmt.Errorf("RecommendParameters: no winning sets to aggregate")
	}

	rec := models.DefaultParameterSet()
	for _, axis := range grid.Axes() {
		values := make([]float64, len(winners))
		for i, w := range winners {
			v, err := w.Value(axis.Name)
			if err != nil {
				return models.ParameterSet{}, fmt.Errorf("RecommendParameters: %w", err)
			}
			values[i] = v
		}

		choice, ok := modeValue(values)
		if !ok {
			median, err := stats.Median(values)
			if err != nil {
				return models.ParameterSet{}, fmt.Errorf("RecommendParameters: %s: %w", axis.Name, err)
			}
			choice = snapToAxis(median, axis)
		}

		if err := rec.SetValue(axis.Name, choice); err != nil {
			return models.ParameterSet{}, fmt.Errorf("RecommendParameters: %w", err)
		}
	}
	return rec, nil
}

// modeValue returns the most frequent value, smallest first on frequency
// ties. Grid values are categorical, so frequency beats averaging. The
// second return is false when every value is unique.
func modeValue(values []float64) (float64, bool) {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}

	found := false
	var best float64
	var bestCount int
	for v, n := range counts {
		if n < 2 {
			continue
		}
		if !found || n > bestCount || (n == bestCount && v < best) {
			found = true
			best = v
			bestCount = n
		}
	}
	return best, found
}

// snapToAxis moves a value onto the nearest declared grid point.
func snapToAxis(v float64, axis Axis) float64 {
	best := axis.Values[0]
	for _, candidate := range axis.Values[1:] {
		if math.Abs(candidate-v) < math.Abs(best-v) {
			best = candidate
		}
	}
	return best
}
