// Package uictl holds small control interfaces a UI reads and drives without
// knowing what sits behind them.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Knob is a simple on/off toggle control.
type Knob interface {
	Read() bool
	On()
	Off()
	Toggle()
}

// Dial is a control that can read some value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial with a maximum cap value.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// StaticDial is a CappedDial over fixed values.
type StaticDial[N Number] struct {
	Value, Max N
}

func (d StaticDial[N]) Read() N { return d.Value }

func (d StaticDial[N]) Cap() (num, max N) { return d.Value, d.Max }

// Fraction reports how far a dial is towards its cap, clamped to [0, 1].
func Fraction[N Number](d CappedDial[N]) float64 {
	num, limit := d.Cap()
	if limit <= 0 {
		return 0
	}

	f := float64(num) / float64(limit)

	return min(max(f, 0), 1)
}
