// Package detector locates QR symbols in thresholded pictures from their
// finder patterns and samples their module grid through a perspective
// transform, so rotated and skewed codes in camera frames can be read.
package detector

import (
	"fmt"
	"math"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/qrcode/decoder"
	"github.com/ericlevine/qrstudio/transform"
)

// Result is a located symbol.
type Result struct {
	// Bits is the sampled module grid.
	Bits *bitutil.BitMatrix
	// Corners are the outer symbol corners in picture pixels, in module
	// grid order: top-left, top-right, bottom-right, bottom-left.
	Corners [4]qrstudio.Point
	Finders Finders
	// Alignment is the bottom-right alignment pattern, nil for version 1
	// or when it was not found.
	Alignment *AlignmentPattern
}

// Detector finds a symbol in a thresholded picture.
type Detector struct {
	img *bitutil.BitMatrix
}

// New returns a Detector over img, where set bits are dark.
func New(img *bitutil.BitMatrix) *Detector {
	return &Detector{img: img}
}

// Detect locates one symbol.
func (d *Detector) Detect() (*Result, error) {
	f, err := findFinders(d.img)
	if err != nil {
		return nil, err
	}
	return d.sample(f)
}

func (d *Detector) sample(f *Finders) (*Result, error) {
	tl, tr, bl := f.TopLeft, f.TopRight, f.BottomLeft
	module := (d.moduleSizeOneWay(tl, tr) + d.moduleSizeOneWay(tl, bl)) / 2
	if module < 1 || math.IsNaN(module) {
		return nil, fmt.Errorf("%w: module size %.2f", qrstudio.ErrNotFound, module)
	}
	dim, err := dimension(tl, tr, bl, module)
	if err != nil {
		return nil, err
	}
	version, err := decoder.VersionForDimension(dim)
	if err != nil {
		return nil, err
	}

	var align *AlignmentPattern
	if len(version.Alignment) > 0 {
		brX := tr.X - tl.X + bl.X
		brY := tr.Y - tl.Y + bl.Y
		// The alignment centre is three modules nearer the top-left than
		// a fourth finder centre would be.
		k := 1 - 3/float64(dim-7)
		estX := int(tl.X + k*(brX-tl.X))
		estY := int(tl.Y + k*(brY-tl.Y))
		for allowance := 4; allowance <= 16; allowance <<= 1 {
			if align = d.findAlignment(module, estX, estY, float64(allowance)); align != nil {
				break
			}
		}
	}

	xform := gridTransform(tl, tr, bl, align, dim)
	bits, err := transform.SampleGrid(d.img, dim, xform)
	if err != nil {
		return nil, err
	}
	n := float64(dim)
	res := &Result{
		Bits: bits,
		Corners: [4]qrstudio.Point{
			xform.Apply(qrstudio.Point{X: 0, Y: 0}),
			xform.Apply(qrstudio.Point{X: n, Y: 0}),
			xform.Apply(qrstudio.Point{X: n, Y: n}),
			xform.Apply(qrstudio.Point{X: 0, Y: n}),
		},
		Finders:   *f,
		Alignment: align,
	}
	return res, nil
}

// dimension rounds the finder centre spacing to a valid symbol side.
func dimension(tl, tr, bl *FinderPattern, module float64) (int, error) {
	across := int(math.Round(distance(tl, tr) / module))
	down := int(math.Round(distance(tl, bl) / module))
	dim := (across+down)/2 + 7
	switch dim & 3 {
	case 0:
		dim++
	case 2:
		dim--
	case 3:
		return 0, fmt.Errorf("%w: %d modules between finders", qrstudio.ErrNotFound, dim)
	}
	return dim, nil
}

// gridTransform maps module coordinates to pixels. Finder centres sit 3.5
// modules in from their corners; the fourth point is the alignment
// pattern when known, else the parallelogram completion.
func gridTransform(tl, tr, bl *FinderPattern, align *AlignmentPattern, dim int) *transform.Perspective {
	far := float64(dim) - 3.5
	br := qrstudio.Point{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
	brModule := qrstudio.Point{X: far, Y: far}
	if align != nil {
		br = qrstudio.Point{X: align.X, Y: align.Y}
		brModule = qrstudio.Point{X: far - 3, Y: far - 3}
	}
	return transform.QuadToQuad(
		[4]qrstudio.Point{{X: 3.5, Y: 3.5}, {X: far, Y: 3.5}, brModule, {X: 3.5, Y: far}},
		[4]qrstudio.Point{{X: tl.X, Y: tl.Y}, {X: tr.X, Y: tr.Y}, br, {X: bl.X, Y: bl.Y}},
	)
}

// moduleSizeOneWay measures the finder at p along the line to other, in
// both directions from each end.
func (d *Detector) moduleSizeOneWay(p, other *FinderPattern) float64 {
	a := d.runBothWays(int(p.X), int(p.Y), int(other.X), int(other.Y))
	b := d.runBothWays(int(other.X), int(other.Y), int(p.X), int(p.Y))
	switch {
	case math.IsNaN(a):
		return b / 7
	case math.IsNaN(b):
		return a / 7
	}
	return (a + b) / 14
}

// runBothWays measures the dark-light-dark run from (fromX, fromY) toward
// (toX, toY) and away from it, clipping the far end to the picture. The
// sum spans one finder pattern, seven modules.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	w, h := d.img.Width(), d.img.Height()
	size := d.run(fromX, fromY, toX, toY)

	scale := 1.0
	otherX := fromX - (toX - fromX)
	if otherX < 0 {
		scale = float64(fromX) / float64(fromX-otherX)
		otherX = 0
	} else if otherX >= w {
		scale = float64(w-1-fromX) / float64(otherX-fromX)
		otherX = w - 1
	}
	otherY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherY < 0 {
		scale = float64(fromY) / float64(fromY-otherY)
		otherY = 0
	} else if otherY >= h {
		scale = float64(h-1-fromY) / float64(otherY-fromY)
		otherY = h - 1
	}
	otherX = int(float64(fromX) + float64(otherX-fromX)*scale)

	size += d.run(fromX, fromY, otherX, otherY)
	// The centre pixel was counted twice.
	return size - 1
}

// run walks a Bresenham line from a finder centre outward and returns the
// distance to the first light pixel after the outer dark ring, or NaN if
// the line ends first.
func (d *Detector) run(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}
	dx, dy := abs(toX-fromX), abs(toY-fromY)
	errAcc := -dx / 2
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	// 0: in the centre, 1: in the light ring, 2: in the outer dark ring.
	state := 0
	for x, y := fromX, fromY; x != toX+xstep; x += xstep {
		px, py := x, y
		if steep {
			px, py = y, x
		}
		if px < 0 || px >= d.img.Width() || py < 0 || py >= d.img.Height() {
			break
		}
		if (state == 1) == d.img.Get(px, py) {
			if state == 2 {
				return math.Hypot(float64(x-fromX), float64(y-fromY))
			}
			state++
		}
		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}
	if state == 2 {
		return math.Hypot(float64(toX+xstep-fromX), float64(toY-fromY))
	}
	return math.NaN()
}
