package transform

import (
	"fmt"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
)

// SampleGrid reads a dimension x dimension module grid from img. p maps
// module coordinates to pixels; each module is read at its centre.
func SampleGrid(img *bitutil.BitMatrix, dimension int, p *Perspective) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: grid dimension %d", qrstudio.ErrNotFound, dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	row := make([]float64, 2*dimension)
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			row[2*x] = float64(x) + 0.5
			row[2*x+1] = float64(y) + 0.5
		}
		p.ApplyAll(row)
		if err := nudge(img, row); err != nil {
			return nil, err
		}
		for x := 0; x < dimension; x++ {
			px, py := int(row[2*x]), int(row[2*x+1])
			if px < 0 || px >= img.Width() || py < 0 || py >= img.Height() {
				return nil, fmt.Errorf("%w: sample (%d,%d) outside image", qrstudio.ErrNotFound, px, py)
			}
			if img.Get(px, py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// nudge pulls points lying one pixel outside img back onto its edge,
// working inward from both ends of the row while points need it. Points
// further out fail the row.
func nudge(img *bitutil.BitMatrix, xy []float64) error {
	w, h := img.Width(), img.Height()
	fix := func(i int) (bool, error) {
		x, y := int(xy[i]), int(xy[i+1])
		if x < -1 || x > w || y < -1 || y > h {
			return false, fmt.Errorf("%w: sample (%d,%d) outside image", qrstudio.ErrNotFound, x, y)
		}
		moved := false
		switch x {
		case -1:
			xy[i], moved = 0, true
		case w:
			xy[i], moved = float64(w-1), true
		}
		switch y {
		case -1:
			xy[i+1], moved = 0, true
		case h:
			xy[i+1], moved = float64(h-1), true
		}
		return moved, nil
	}
	for i, more := 0, true; i+1 < len(xy) && more; i += 2 {
		var err error
		if more, err = fix(i); err != nil {
			return err
		}
	}
	for i, more := len(xy)-2, true; i >= 0 && more; i -= 2 {
		var err error
		if more, err = fix(i); err != nil {
			return err
		}
	}
	return nil
}
