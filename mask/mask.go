// Package mask holds the eight QR data mask predicates and the small
// preview glyphs drawn for them.
//
// A predicate is evaluated at row i, column j. The module is toggled when
// the predicate returns 0.
package mask

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"golang.org/x/image/vector"

	"github.com/ericlevine/qrstudio/internal/pathdata"
)

// PreviewSize is the side of the sample grid used for preview glyphs.
const PreviewSize = 6

// Predicate is one of the QR masking formulas.
type Predicate func(i, j int) int

// Predicates lists the formulas by mask pattern reference.
var Predicates = [8]Predicate{
	func(i, j int) int { return (i + j) % 2 },
	func(i, j int) int { return i % 2 },
	func(i, j int) int { return j % 3 },
	func(i, j int) int { return (i + j) % 3 },
	func(i, j int) int { return (i/2 + j/3) % 2 },
	func(i, j int) int { return (i*j)%2 + (i*j)%3 },
	func(i, j int) int { return ((i*j)%2 + (i*j)%3) % 2 },
	func(i, j int) int { return ((i+j)%2 + (i*j)%3) % 2 },
}

// Toggles reports whether pattern flips the module at row i, column j.
// It panics if pattern is outside [0, 7].
func Toggles(pattern, i, j int) bool {
	return Predicates[pattern](i, j) == 0
}

// Glyph is the vector preview of one mask over a Size x Size grid. Path
// holds one move and one horizontal line per filled run.
type Glyph struct {
	Mask int
	Size int
	Path string
}

// Generate traces the cells of a size x size grid where pred is 0.
func Generate(mask int, pred Predicate, size int) Glyph {
	b := pathdata.Builder{Compact: true}
	for i := 0; i < size; i++ {
		for _, r := range pathdata.Runs(size, func(j int) bool { return pred(i, j) == 0 }) {
			b.MoveTo(float64(r.Start), float64(i))
			b.HLineTo(float64(r.End))
		}
	}
	return Glyph{Mask: mask, Size: size, Path: b.String()}
}

var glyphs = sync.OnceValue(func() [8]Glyph {
	var g [8]Glyph
	for i, p := range Predicates {
		g[i] = Generate(i, p, PreviewSize)
	}
	return g
})

// Glyphs returns the preview glyph of every mask at PreviewSize. The
// glyphs are computed once.
func Glyphs() [8]Glyph { return glyphs() }

// For returns the cached glyph for mask.
func For(mask int) (Glyph, bool) {
	if mask < 0 || mask >= len(Predicates) {
		return Glyph{}, false
	}
	return glyphs()[mask], true
}

// SVG renders the glyph as a standalone document. Each run is stroked
// along the middle of its row, so the view box is shifted half a cell up.
func (g Glyph) SVG() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 -0.5 %d %d" shape-rendering="crispEdges">`, g.Size, g.Size)
	if g.Path != "" {
		fmt.Fprintf(&sb, `<path stroke="currentColor" d="%s"/>`, g.Path)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// Rasterize draws the glyph into an alpha mask with cell pixels per grid
// cell. Every run covers the full height of its row.
func Rasterize(g Glyph, cell int) (*image.Alpha, error) {
	if cell < 1 {
		return nil, fmt.Errorf("mask: cell size %d", cell)
	}
	side := g.Size * cell
	dst := image.NewAlpha(image.Rect(0, 0, side, side))
	if side == 0 || g.Path == "" {
		return dst, nil
	}
	subs, err := pathdata.Parse(g.Path)
	if err != nil {
		return nil, err
	}
	z := vector.NewRasterizer(side, side)
	c := float32(cell)
	for _, sp := range subs {
		for _, s := range sp.Segments {
			if s.Y0 != s.Y1 {
				return nil, fmt.Errorf("mask: non-horizontal segment in glyph %d", g.Mask)
			}
			x0, x1 := float32(s.X0)*c, float32(s.X1)*c
			y0, y1 := float32(s.Y0)*c, float32(s.Y0+1)*c
			if x1 < x0 {
				x0, x1 = x1, x0
			}
			z.MoveTo(x0, y0)
			z.LineTo(x1, y0)
			z.LineTo(x1, y1)
			z.LineTo(x0, y1)
			z.ClosePath()
		}
	}
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst, nil
}
