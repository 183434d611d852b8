// Package drag positions freely placed content from single-pointer drag
// gestures in normalized viewport coordinates.
package drag

import "math"

// MinMargin keeps positions this far from every edge.
const MinMargin = 0.05

// Clamp constrains v to [MinMargin, 1-MinMargin]. NaN maps to 0.5, the
// center.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(math.Min(v, 1-MinMargin), MinMargin)
}

// Position is a point in normalized viewport coordinates.
type Position struct {
	X, Y float64
}

// Center is the starting position.
var Center = Position{X: 0.5, Y: 0.5}

// State records the gesture in progress.
type State struct {
	Origin             Position
	PointerX, PointerY float64
	PointerID          int
}

// Positioner tracks one position and at most one active drag. It is not
// safe for concurrent use.
type Positioner struct {
	pos   Position
	state *State
}

// New returns a Positioner at Center.
func New() *Positioner {
	return &Positioner{pos: Center}
}

// Position returns the current position.
func (p *Positioner) Position() Position { return p.pos }

// SetPosition moves the content, clamped, without a gesture.
func (p *Positioner) SetPosition(pos Position) {
	p.pos = Position{X: Clamp(pos.X), Y: Clamp(pos.Y)}
}

// Active returns the gesture in progress, if any.
func (p *Positioner) Active() (State, bool) {
	if p.state == nil {
		return State{}, false
	}
	return *p.state, true
}

// Down captures pointer id at client coordinates (x, y). It reports false
// and changes nothing while another drag is active.
func (p *Positioner) Down(id int, x, y float64) bool {
	if p.state != nil {
		return false
	}
	p.state = &State{Origin: p.pos, PointerX: x, PointerY: y, PointerID: id}
	return true
}

// Move updates the position for the captured pointer. Other pointers and
// empty viewports are ignored. It reports whether the pointer was the
// captured one.
func (p *Positioner) Move(id int, x, y, viewportWidth, viewportHeight float64) bool {
	s := p.state
	if s == nil || s.PointerID != id {
		return false
	}
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return true
	}
	dx := (x - s.PointerX) / viewportWidth
	dy := (y - s.PointerY) / viewportHeight
	p.pos = Position{X: Clamp(s.Origin.X + dx), Y: Clamp(s.Origin.Y + dy)}
	return true
}

// Up ends the drag if id is the captured pointer.
func (p *Positioner) Up(id int) bool {
	if p.state == nil || p.state.PointerID != id {
		return false
	}
	p.state = nil
	return true
}

// Cancel is Up for an interrupted gesture.
func (p *Positioner) Cancel(id int) bool { return p.Up(id) }
