package models

import "fmt"

// Direction is the side of a candidate or trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionHold  Direction = "hold"
)

func (d Direction) Validate() error {
	switch d {
	case DirectionLong, DirectionShort, DirectionHold:
		return nil
	default:
		return fmt.Errorf("Direction.Validate: unknown direction: %s", d)
	}
}

// Sign maps the direction onto the P&L axis: +1 for long, -1 for short.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// Tradeable reports whether the direction opens a position. HOLD does not.
func (d Direction) Tradeable() bool {
	return d == DirectionLong || d == DirectionShort
}

func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLong:
		return DirectionShort
	case DirectionShort:
		return DirectionLong
	default:
		return DirectionHold
	}
}
