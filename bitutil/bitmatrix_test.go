package bitutil

import "testing"

func TestBitMatrixGetSetFlip(t *testing.T) {
	m := NewBitMatrixWithSize(40, 3)
	m.Set(33, 1)
	m.Set(0, 2)
	if !m.Get(33, 1) || !m.Get(0, 2) {
		t.Fatal("bits should be set")
	}
	if m.Get(32, 1) || m.Get(33, 0) {
		t.Fatal("neighbouring bits should be clear")
	}
	m.Flip(33, 1)
	if m.Get(33, 1) {
		t.Error("flip should clear bit")
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	m := NewBitMatrix(10)
	m.SetRegion(2, 3, 4, 2)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := x >= 2 && x < 6 && y >= 3 && y < 5
			if m.Get(x, y) != want {
				t.Errorf("(%d,%d) = %v, want %v", x, y, m.Get(x, y), want)
			}
		}
	}
}

func TestBitMatrixCornerBits(t *testing.T) {
	m := NewBitMatrixWithSize(70, 70)
	if _, _, ok := m.TopLeftOnBit(); ok {
		t.Fatal("empty matrix has no top-left bit")
	}
	m.Set(10, 5)
	m.Set(40, 5)
	m.Set(65, 60)
	m.Set(3, 60)

	x, y, ok := m.TopLeftOnBit()
	if !ok || x != 10 || y != 5 {
		t.Errorf("TopLeftOnBit = (%d,%d,%v), want (10,5)", x, y, ok)
	}
	x, y, ok = m.BottomRightOnBit()
	if !ok || x != 65 || y != 60 {
		t.Errorf("BottomRightOnBit = (%d,%d,%v), want (65,60)", x, y, ok)
	}
}
