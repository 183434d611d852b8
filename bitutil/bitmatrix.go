package bitutil

import (
	"math/bits"
	"strings"
)

// BitMatrix is a 2D grid of bits. x is the column, y the row, and the
// origin is the top-left corner.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix returns a square matrix of cleared bits.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize returns a width x height matrix of cleared bits.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitutil: matrix dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// Width returns the number of columns.
func (m *BitMatrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *BitMatrix) Height() int { return m.height }

// Get reports whether (x, y) is set.
func (m *BitMatrix) Get(x, y int) bool {
	return m.data[y*m.rowSize+x/32]&(1<<uint(x&31)) != 0
}

// Set sets (x, y).
func (m *BitMatrix) Set(x, y int) {
	m.data[y*m.rowSize+x/32] |= 1 << uint(x&31)
}

// Flip toggles (x, y).
func (m *BitMatrix) Flip(x, y int) {
	m.data[y*m.rowSize+x/32] ^= 1 << uint(x&31)
}

// SetRegion sets every bit in the rectangle.
func (m *BitMatrix) SetRegion(left, top, width, height int) {
	if left < 0 || top < 0 || width < 1 || height < 1 ||
		left+width > m.width || top+height > m.height {
		panic("bitutil: region must fit inside the matrix")
	}
	for y := top; y < top+height; y++ {
		for x := left; x < left+width; x++ {
			m.Set(x, y)
		}
	}
}

// TopLeftOnBit returns the first set bit scanning rows top to bottom, or
// ok false if the matrix is empty.
func (m *BitMatrix) TopLeftOnBit() (x, y int, ok bool) {
	for i, w := range m.data {
		if w != 0 {
			return (i%m.rowSize)*32 + bits.TrailingZeros32(w), i / m.rowSize, true
		}
	}
	return 0, 0, false
}

// BottomRightOnBit returns the last set bit scanning rows bottom to top,
// or ok false if the matrix is empty.
func (m *BitMatrix) BottomRightOnBit() (x, y int, ok bool) {
	for i := len(m.data) - 1; i >= 0; i-- {
		if w := m.data[i]; w != 0 {
			return (i%m.rowSize)*32 + 31 - bits.LeadingZeros32(w), i / m.rowSize, true
		}
	}
	return 0, 0, false
}

// String renders set bits as "X " and cleared bits as "  ".
func (m *BitMatrix) String() string {
	var sb strings.Builder
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString("X ")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
