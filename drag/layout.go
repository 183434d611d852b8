package drag

import "math"

// Layout is the inset box, as fractions of the viewport, that places
// content centred at a position. The box shrinks against the nearer edges.
type Layout struct {
	Left, Right, Top, Bottom float64
}

// LayoutFor returns the insets for pos.
func LayoutFor(pos Position) Layout {
	return Layout{
		Left:   math.Max(0, 1-(1-pos.X)*2),
		Right:  math.Max(0, 1-pos.X*2),
		Top:    math.Max(0, 1-(1-pos.Y)*2),
		Bottom: math.Max(0, 1-pos.Y*2),
	}
}
