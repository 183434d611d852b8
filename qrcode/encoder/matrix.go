package encoder

import (
	"math"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/mask"
	"github.com/ericlevine/qrstudio/qrcode/decoder"
)

const empty int8 = -1

// grid is a square module matrix under construction: 1 dark, 0 light,
// empty not yet placed.
type grid struct {
	size  int
	cells []int8
}

func newGrid(size int) *grid {
	return &grid{size: size, cells: make([]int8, size*size)}
}

func (g *grid) get(x, y int) int8 { return g.cells[y*g.size+x] }

func (g *grid) set(x, y int, v int8) { g.cells[y*g.size+x] = v }

func (g *grid) setBool(x, y int, dark bool) {
	if dark {
		g.set(x, y, 1)
	} else {
		g.set(x, y, 0)
	}
}

func (g *grid) clear() {
	for i := range g.cells {
		g.cells[i] = empty
	}
}

func chooseMask(bits *bitutil.BitArray, level qrstudio.ECLevel, v *decoder.Version, g *grid) int {
	best, bestPenalty := 0, math.MaxInt
	for m := 0; m < qrstudio.NumMaskPatterns; m++ {
		build(bits, level, v, m, g)
		if p := penalty(g); p < bestPenalty {
			best, bestPenalty = m, p
		}
	}
	return best
}

func build(bits *bitutil.BitArray, level qrstudio.ECLevel, v *decoder.Version, m int, g *grid) {
	g.clear()
	embedFunctionPatterns(v, g)
	embedFormat(level, m, g)
	embedVersion(v, g)
	embedData(bits, m, g)
}

func embedFunctionPatterns(v *decoder.Version, g *grid) {
	n := g.size
	for _, c := range [3][2]int{{0, 0}, {n - 7, 0}, {0, n - 7}} {
		embedFinder(c[0], c[1], g)
	}
	// Separators.
	for i := 0; i < 8; i++ {
		g.set(i, 7, 0)
		g.set(n-8+i, 7, 0)
		g.set(i, n-8, 0)
		g.set(7, i, 0)
		g.set(n-8, i, 0)
		g.set(7, n-8+i, 0)
	}
	for _, cy := range v.Alignment {
		for _, cx := range v.Alignment {
			if g.get(cx, cy) != empty {
				continue
			}
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					ring := max(abs(dx), abs(dy))
					g.setBool(cx+dx, cy+dy, ring != 1)
				}
			}
		}
	}
	for i := 8; i < n-8; i++ {
		if g.get(i, 6) == empty {
			g.setBool(i, 6, i%2 == 0)
		}
		if g.get(6, i) == empty {
			g.setBool(6, i, i%2 == 0)
		}
	}
	g.set(8, n-8, 1)
}

// embedFinder draws a 7x7 finder pattern with its top-left at (x0, y0).
func embedFinder(x0, y0 int, g *grid) {
	for dy := 0; dy < 7; dy++ {
		for dx := 0; dx < 7; dx++ {
			ring := max(abs(dx-3), abs(dy-3))
			g.setBool(x0+dx, y0+dy, ring != 2)
		}
	}
}

// formatCoords lists where format bits 0..14 go around the top-left finder.
var formatCoords = [15][2]int{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
	{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

func embedFormat(level qrstudio.ECLevel, m int, g *grid) {
	word := decoder.FormatBits(level, m)
	n := g.size
	for i, c := range formatCoords {
		dark := word>>i&1 == 1
		g.setBool(c[0], c[1], dark)
		if i < 8 {
			g.setBool(n-1-i, 8, dark)
		} else {
			g.setBool(8, n-7+(i-8), dark)
		}
	}
}

func embedVersion(v *decoder.Version, g *grid) {
	if v.Number < 7 {
		return
	}
	word := decoder.VersionBits(v.Number)
	n := g.size
	for i := 0; i < 18; i++ {
		dark := word>>i&1 == 1
		a, b := i/3, i%3
		g.setBool(a, n-11+b, dark)
		g.setBool(n-11+b, a, dark)
	}
}

// embedData places bits along the two-column zigzag from the bottom-right
// corner, masking as it goes. Remainder modules take zero bits.
func embedData(bits *bitutil.BitArray, m int, g *grid) {
	n := g.size
	idx := 0
	up := true
	for x := n - 1; x > 0; x -= 2 {
		if x == 6 {
			x--
		}
		for count := 0; count < n; count++ {
			y := count
			if up {
				y = n - 1 - count
			}
			for col := 0; col < 2; col++ {
				xx := x - col
				if g.get(xx, y) != empty {
					continue
				}
				dark := false
				if idx < bits.Size() {
					dark = bits.Get(idx)
					idx++
				}
				if mask.Toggles(m, y, xx) {
					dark = !dark
				}
				g.setBool(xx, y, dark)
			}
		}
		up = !up
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
