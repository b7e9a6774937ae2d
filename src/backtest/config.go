package backtest

import "github.com/openrange-trading/openrange/src/scanner"

const (
	DefaultInitialCapital     = 100_000.0
	DefaultCapitalUtilization = 0.9
	DefaultMaxShares          = 10_000
	DefaultNumWorkers         = 8
	DefaultProfitTargetR      = 2.0
	DefaultTrailTriggerR      = 1.0
	DefaultTrailATRMultiple   = 1.5
)

// Config carries the run-level knobs that sit outside the tunable
// ParameterSet. It is copied by value into every worker, so a running
// engine never observes a config change.
type Config struct {
	// InitialCapital is the equity every simulated day starts from. Sizing
	// is day-local: parallel day batches all size against this constant,
	// and the portfolio value series is reconstructed after the merge.
	InitialCapital     float64
	CapitalUtilization float64
	MaxShares          int
	NumWorkers         int

	// DayStride simulates every Nth trading day when > 1. The optimizer
	// uses it to cut training cost; reports and validation leave it at 1.
	DayStride int

	ProfitTargetR    float64 // profit target distance, in initial-risk multiples
	TrailTriggerR    float64 // unrealized gain, in R, that arms the trailing stop
	TrailATRMultiple float64 // trailing stop distance, in ATR multiples

	Gates scanner.GateConfig
}

func DefaultConfig() Config {
	return Config{
		InitialCapital:     DefaultInitialCapital,
		CapitalUtilization: DefaultCapitalUtilization,
		MaxShares:          DefaultMaxShares,
		NumWorkers:         DefaultNumWorkers,
		DayStride:          1,
		ProfitTargetR:      DefaultProfitTargetR,
		TrailTriggerR:      DefaultTrailTriggerR,
		TrailATRMultiple:   DefaultTrailATRMultiple,
		Gates:              scanner.DefaultGateConfig(),
	}
}

// withDefaults fills unset fields so a zero Config behaves like
// DefaultConfig. Explicit values are kept as given.
func (c Config) withDefaults() Config {
	if c.InitialCapital <= 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.CapitalUtilization <= 0 || c.CapitalUtilization > 1 {
		c.CapitalUtilization = DefaultCapitalUtilization
	}
	if c.MaxShares < 0 {
		c.MaxShares = DefaultMaxShares
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = DefaultNumWorkers
	}
	if c.DayStride <= 0 {
		c.DayStride = 1
	}
	if c.ProfitTargetR <= 0 {
		c.ProfitTargetR = DefaultProfitTargetR
	}
	if c.TrailTriggerR <= 0 {
		c.TrailTriggerR = DefaultTrailTriggerR
	}
	if c.TrailATRMultiple <= 0 {
		c.TrailATRMultiple = DefaultTrailATRMultiple
	}
	if c.Gates == (scanner.GateConfig{}) {
		c.Gates = scanner.DefaultGateConfig()
	}
	return c
}
