package drag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.05, Clamp(-3))
	assert.Equal(t, 0.05, Clamp(0))
	assert.Equal(t, 0.95, Clamp(1))
	assert.Equal(t, 0.95, Clamp(7))
	assert.Equal(t, 0.3, Clamp(0.3))
	assert.Equal(t, 0.5, Clamp(math.NaN()))
}

func TestDragMoves(t *testing.T) {
	p := New()
	assert.Equal(t, Center, p.Position())

	require.True(t, p.Down(1, 100, 100))
	require.True(t, p.Move(1, 150, 80, 1000, 400))
	assert.InDelta(t, 0.55, p.Position().X, 1e-9)
	assert.InDelta(t, 0.45, p.Position().Y, 1e-9)

	// Deltas are measured from the origin, not the previous move.
	require.True(t, p.Move(1, 200, 100, 1000, 400))
	assert.InDelta(t, 0.6, p.Position().X, 1e-9)
	assert.InDelta(t, 0.5, p.Position().Y, 1e-9)

	require.True(t, p.Up(1))
	_, active := p.Active()
	assert.False(t, active)
	assert.False(t, p.Move(1, 0, 0, 1000, 400))
	assert.InDelta(t, 0.6, p.Position().X, 1e-9)
}

func TestDragClamps(t *testing.T) {
	p := New()
	require.True(t, p.Down(1, 0, 0))
	p.Move(1, 10000, -10000, 100, 100)
	assert.Equal(t, Position{X: 0.95, Y: 0.05}, p.Position())
}

func TestSinglePointer(t *testing.T) {
	p := New()
	require.True(t, p.Down(1, 10, 10))
	assert.False(t, p.Down(2, 50, 50), "second pointer is ignored")
	s, ok := p.Active()
	require.True(t, ok)
	assert.Equal(t, 1, s.PointerID)
	assert.Equal(t, Center, s.Origin)

	assert.False(t, p.Move(2, 90, 90, 100, 100))
	assert.Equal(t, Center, p.Position())
	assert.False(t, p.Up(2))
	_, ok = p.Active()
	assert.True(t, ok)

	assert.True(t, p.Cancel(1))
	assert.True(t, p.Down(2, 50, 50))
}

func TestNewDragStartsFromCurrent(t *testing.T) {
	p := New()
	p.SetPosition(Position{X: 0.2, Y: 2})
	assert.Equal(t, Position{X: 0.2, Y: 0.95}, p.Position())
	require.True(t, p.Down(4, 0, 0))
	p.Move(4, 10, 0, 100, 100)
	assert.InDelta(t, 0.3, p.Position().X, 1e-9)
}

func TestEmptyViewport(t *testing.T) {
	p := New()
	require.True(t, p.Down(1, 0, 0))
	assert.True(t, p.Move(1, 5, 5, 0, 0))
	assert.Equal(t, Center, p.Position())
}

func TestLayout(t *testing.T) {
	assert.Equal(t, Layout{}, LayoutFor(Center))

	l := LayoutFor(Position{X: 0.75, Y: 0.25})
	assert.InDelta(t, 0.5, l.Left, 1e-9)
	assert.Zero(t, l.Right)
	assert.Zero(t, l.Top)
	assert.InDelta(t, 0.5, l.Bottom, 1e-9)

	l = LayoutFor(Position{X: 0.05, Y: 0.95})
	assert.Zero(t, l.Left)
	assert.InDelta(t, 0.9, l.Right, 1e-9)
	assert.InDelta(t, 0.9, l.Top, 1e-9)
	assert.Zero(t, l.Bottom)
}
