package risk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantity(t *testing.T) {
	t.Run("size is floor of risk budget over per-share risk", func(t *testing.T) {
		// 100k equity, 90% utilization, 2x leverage, 1% risk => 1,800 risk budget.
		// Stop 0.7 below entry => floor(1800 / 0.7) = 2571.
		qty := Quantity(100.0, 99.3, 100_000.0, 0.01, 2.0, 0.9, 0)
		assert.Equal(t, 2571, qty)
	})

	t.Run("zero distance stop yields zero shares", func(t *testing.T) {
		for _, price := range []float64{0.0, 1.0, 50.0, 100.0, 2500.0} {
			t.Run(fmt.Sprintf("price %.2f", price), func(t *testing.T) {
				assert.Zero(t, Quantity(price, price, 100_000.0, 0.01, 2.0, 0.9, 0))
			})
		}
	})

	t.Run("short entries size the same as longs", func(t *testing.T) {
		long := Quantity(100.0, 99.0, 100_000.0, 0.01, 2.0, 0.9, 0)
		short := Quantity(99.0, 100.0, 100_000.0, 0.01, 2.0, 0.9, 0)
		assert.Equal(t, long, short)
		assert.Equal(t, 1800, long)
	})

	t.Run("max shares caps the computed size", func(t *testing.T) {
		uncapped := Quantity(100.0, 99.9, 100_000.0, 0.01, 2.0, 0.9, 0)
		assert.Equal(t, 18000, uncapped)

		capped := Quantity(100.0, 99.9, 100_000.0, 0.01, 2.0, 0.9, 5000)
		assert.Equal(t, 5000, capped)
	})

	t.Run("cap of zero means uncapped", func(t *testing.T) {
		qty := Quantity(10.0, 9.0, 100_000.0, 0.01, 1.0, 1.0, 0)
		assert.Equal(t, 1000, qty)
	})

	t.Run("fractional result rounds down", func(t *testing.T) {
		// 1000 * 1.0 * 1.0 * 0.01 = 10 budget, per-share risk 3 => 3.33 -> 3.
		qty := Quantity(10.0, 7.0, 1000.0, 0.01, 1.0, 1.0, 0)
		assert.Equal(t, 3, qty)
	})

	t.Run("zero equity yields zero shares", func(t *testing.T) {
		assert.Zero(t, Quantity(100.0, 99.0, 0.0, 0.01, 2.0, 0.9, 0))
	})
}
