package optimizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openrange-trading/openrange/src/models"
)

// Axis is one tunable dimension and its declared domain. Searched values
// never leave the declared list.
type Axis struct {
	Name   string    `yaml:"name" json:"name"`
	Values []float64 `yaml:"values" json:"values"`
}

func (a Axis) contains(v float64) bool {
	for _, value := range a.Values {
		if value == v {
			return true
		}
	}
	return false
}

// Grid is the finite search space: the cartesian product of every axis's
// declared values. Points are decoded from an index on demand, so iterating
// the grid is lazy and restartable and never materializes the product.
// Dimensions without an axis keep their default value.
type Grid struct {
	axes []Axis
}

// NewGrid validates the axes eagerly: unknown names and values no
// simulation should run with are configuration errors, surfaced before any
// backtest work.
func NewGrid(axes []Axis) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("NewGrid: no axes: %w", models.ErrInvalidParameterSet)
	}

	probe := models.DefaultParameterSet()
	for _, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("NewGrid: axis %s: no values: %w", axis.Name, models.ErrInvalidParameterSet)
		}
		for _, v := range axis.Values {
			p := probe
			if err := p.SetValue(axis.Name, v); err != nil {
				return nil, fmt.Errorf("NewGrid: %w", err)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("NewGrid: axis %s value %v: %w", axis.Name, v, err)
			}
		}
	}

	return &Grid{axes: axes}, nil
}

// DefaultGrid covers the production search domain, 1944 points.
func DefaultGrid() *Grid {
	g, err := NewGrid([]Axis{
		{Name: "min_score", Values: []float64{0.5, 0.6, 0.7}},
		{Name: "obv_slope_threshold", Values: []float64{0.3, 0.5, 0.8}},
		{Name: "vwap_band_pct", Values: []float64{0.005, 0.01, 0.02}},
		{Name: "risk_per_trade", Values: []float64{0.005, 0.01, 0.02}},
		{Name: "leverage", Values: []float64{1, 2}},
		{Name: "max_positions", Values: []float64{2, 3, 5}},
		{Name: "atr_pct_threshold", Values: []float64{0.005, 0.01}},
		{Name: "volume_ratio_threshold", Values: []float64{1.2, 1.5}},
	})
	if err != nil {
		panic(err)
	}
	return g
}

// LoadGrid reads a search domain from a YAML file of axes.
func LoadGrid(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadGrid: %w", err)
	}

	var f struct {
		Axes []Axis `yaml:"axes"`
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("LoadGrid: parse %s: %w", path, err)
	}
	return NewGrid(f.Axes)
}

func (g *Grid) Axes() []Axis {
	return g.axes
}

// Size is the number of points in the product space.
func (g *Grid) Size() int {
	size := 1
	for _, axis := range g.axes {
		size *= len(axis.Values)
	}
	return size
}

// At decodes one grid point. The last axis varies fastest; dimensions
// without an axis keep their defaults.
func (g *Grid) At(index int) (models.ParameterSet, error) {
	if index < 0 || index >= g.Size() {
		return models.ParameterSet{}, fmt.Errorf("Grid.At: index %d outside [0, %d)", index, g.Size())
	}

	p := models.DefaultParameterSet()
	rem := index
	for i := len(g.axes) - 1; i >= 0; i-- {
		axis := g.axes[i]
		v := axis.Values[rem%len(axis.Values)]
		rem /= len(axis.Values)
		if err := p.SetValue(axis.Name, v); err != nil {
			return models.ParameterSet{}, fmt.Errorf("Grid.At: %w", err)
		}
	}
	return p, nil
}

// Contains checks that every searched dimension of p sits on a declared
// grid value.
func (g *Grid) Contains(p models.ParameterSet) error {
	for _, axis := range g.axes {
		v, err := p.Value(axis.Name)
		if err != nil {
			return fmt.Errorf("Grid.Contains: %w", err)
		}
		if !axis.contains(v) {
			return fmt.Errorf("Grid.Contains: %s=%v: %w", axis.Name, v, models.ErrParameterOutOfDomain)
		}
	}
	return nil
}

// Sample returns up to maxEvals indices spread evenly across the grid, in
// ascending order. The same grid and budget always pick the same points. A
// non-positive budget means the whole grid.
func (g *Grid) Sample(maxEvals int) []int {
	size := g.Size()
	if maxEvals <= 0 || maxEvals >= size {
		out := make([]int, size)
		for i := range out {
			out[i] = i
		}
		return out
	}

	out := make([]int, maxEvals)
	for i := range out {
		out[i] = i * size / maxEvals
	}
	return out
}

// Iterator walks the grid in index order. Reset rewinds it to the start.
func (g *Grid) Iterator() *GridIterator {
	return &GridIterator{grid: g}
}

type GridIterator struct {
	grid *Grid
	next int
}

func (it *GridIterator) Next() (models.ParameterSet, bool) {
	if it.next >= it.grid.Size() {
		return models.ParameterSet{}, false
	}

	p, err := it.grid.At(it.next)
	if err != nil {
		return models.ParameterSet{}, false
	}
	it.next++
	return p, true
}

func (it *GridIterator) Reset() {
	it.next = 0
}
