package detector

import (
	"fmt"
	"math"
	"slices"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
)

// maxModules bounds the symbol width, version 20 with quiet zone, used to
// pick the initial row step.
const maxModules = 97

// FinderPattern is a confirmed finder pattern centre.
type FinderPattern struct {
	X, Y       float64
	ModuleSize float64
	// Count is the number of scan lines that confirmed the centre.
	Count int
}

func (p *FinderPattern) near(moduleSize, x, y float64) bool {
	if math.Abs(y-p.Y) > moduleSize || math.Abs(x-p.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - p.ModuleSize)
	return diff <= 1 || diff <= p.ModuleSize
}

func (p *FinderPattern) merge(x, y, moduleSize float64) {
	n := float64(p.Count)
	p.X = (n*p.X + x) / (n + 1)
	p.Y = (n*p.Y + y) / (n + 1)
	p.ModuleSize = (n*p.ModuleSize + moduleSize) / (n + 1)
	p.Count++
}

// Finders are the three finder patterns of one symbol.
type Finders struct {
	TopLeft, TopRight, BottomLeft *FinderPattern
}

type finder struct {
	img     *bitutil.BitMatrix
	centres []*FinderPattern
}

// findFinders scans rows for the 1:1:3:1:1 dark-light run signature,
// confirms each hit on the column and row through its centre, and picks
// the three centres that best form a right isosceles triangle.
func findFinders(img *bitutil.BitMatrix) (*Finders, error) {
	f := &finder{img: img}
	w, h := img.Width(), img.Height()
	step := max(3, 3*h/(4*maxModules))

	var runs [5]int
	for y := step - 1; y < h; y += step {
		runs = [5]int{}
		state := 0
		for x := 0; x < w; x++ {
			if img.Get(x, y) {
				if state&1 == 1 {
					state++
				}
				runs[state]++
				continue
			}
			if state&1 == 1 {
				runs[state]++
				continue
			}
			if state != 4 {
				state++
				runs[state]++
				continue
			}
			if finderRatio(runs) && f.confirm(runs, x, y) {
				runs = [5]int{}
				state = 0
				continue
			}
			runs = [5]int{runs[2], runs[3], runs[4], 1, 0}
			state = 3
		}
		if finderRatio(runs) {
			f.confirm(runs, w, y)
		}
	}
	best, err := f.best()
	if err != nil {
		return nil, err
	}
	return order(best), nil
}

// finderRatio reports whether runs look like 1:1:3:1:1.
func finderRatio(runs [5]int) bool {
	total := 0
	for _, r := range runs {
		if r == 0 {
			return false
		}
		total += r
	}
	if total < 7 {
		return false
	}
	module := float64(total) / 7
	tol := module / 2
	return math.Abs(module-float64(runs[0])) < tol &&
		math.Abs(module-float64(runs[1])) < tol &&
		math.Abs(3*module-float64(runs[2])) < 3*tol &&
		math.Abs(module-float64(runs[3])) < tol &&
		math.Abs(module-float64(runs[4])) < tol
}

// centreFromEnd returns the middle of the central run of runs ending
// just before end.
func centreFromEnd(runs []int, end int) float64 {
	n := len(runs)
	tail := 0
	for _, r := range runs[n/2+1:] {
		tail += r
	}
	return float64(end-tail) - float64(runs[n/2])/2
}

// confirm cross-checks a row hit ending at column end and records the
// centre. It reports whether the hit was confirmed.
func (f *finder) confirm(runs [5]int, end, y int) bool {
	total := runs[0] + runs[1] + runs[2] + runs[3] + runs[4]
	cx := centreFromEnd(runs[:], end)
	cy := f.crossCheck(int(cx), y, runs[2], total, true)
	if math.IsNaN(cy) {
		return false
	}
	cx = f.crossCheck(int(cx), int(cy), runs[2], total, false)
	if math.IsNaN(cx) {
		return false
	}
	module := float64(total) / 7
	for _, c := range f.centres {
		if c.near(module, cx, cy) {
			c.merge(cx, cy, module)
			return true
		}
	}
	f.centres = append(f.centres, &FinderPattern{X: cx, Y: cy, ModuleSize: module, Count: 1})
	return true
}

// crossCheck measures the finder signature through (x, y), along the
// column when vertical is set and along the row otherwise, and returns
// the centre coordinate on that axis, or NaN.
func (f *finder) crossCheck(x, y, maxCount, originalTotal int, vertical bool) float64 {
	get, pos, limit := f.img.Get, y, f.img.Height()
	if !vertical {
		pos, limit = x, f.img.Width()
	}
	dark := func(p int) bool {
		if vertical {
			return get(x, p)
		}
		return get(p, y)
	}

	var runs [5]int
	i := pos
	for i >= 0 && dark(i) {
		runs[2]++
		i--
	}
	if i < 0 {
		return math.NaN()
	}
	for i >= 0 && !dark(i) && runs[1] <= maxCount {
		runs[1]++
		i--
	}
	if i < 0 || runs[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && dark(i) && runs[0] <= maxCount {
		runs[0]++
		i--
	}
	if runs[0] > maxCount {
		return math.NaN()
	}

	i = pos + 1
	for i < limit && dark(i) {
		runs[2]++
		i++
	}
	if i == limit {
		return math.NaN()
	}
	for i < limit && !dark(i) && runs[3] < maxCount {
		runs[3]++
		i++
	}
	if i == limit || runs[3] >= maxCount {
		return math.NaN()
	}
	for i < limit && dark(i) && runs[4] < maxCount {
		runs[4]++
		i++
	}
	if runs[4] >= maxCount {
		return math.NaN()
	}

	total := runs[0] + runs[1] + runs[2] + runs[3] + runs[4]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !finderRatio(runs) {
		return math.NaN()
	}
	return centreFromEnd(runs[:], i)
}

// best picks the three centres of similar module size whose triangle is
// closest to right isosceles. Centres seen on several scan lines are
// preferred when there are enough of them.
func (f *finder) best() ([]*FinderPattern, error) {
	centres := f.centres
	var confirmed []*FinderPattern
	for _, c := range centres {
		if c.Count >= 2 {
			confirmed = append(confirmed, c)
		}
	}
	if len(confirmed) >= 3 {
		centres = confirmed
	}
	if len(centres) < 3 {
		return nil, fmt.Errorf("%w: %d finder patterns", qrstudio.ErrNotFound, len(centres))
	}
	centres = slices.Clone(centres)
	slices.SortFunc(centres, func(a, b *FinderPattern) int {
		switch {
		case a.ModuleSize < b.ModuleSize:
			return -1
		case a.ModuleSize > b.ModuleSize:
			return 1
		}
		return 0
	})

	var best []*FinderPattern
	distortion := math.MaxFloat64
	for i := 0; i < len(centres)-2; i++ {
		a := centres[i]
		for j := i + 1; j < len(centres)-1; j++ {
			b := centres[j]
			ab := squaredDistance(a, b)
			for k := j + 1; k < len(centres); k++ {
				c := centres[k]
				if c.ModuleSize > a.ModuleSize*1.4 {
					continue
				}
				sides := []float64{ab, squaredDistance(b, c), squaredDistance(a, c)}
				slices.Sort(sides)
				// Legs equal and the hypotenuse squared twice a leg squared.
				d := math.Abs(sides[2]-2*sides[1]) + math.Abs(sides[2]-2*sides[0])
				if d < distortion {
					distortion = d
					best = []*FinderPattern{a, b, c}
				}
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no finder pattern triple", qrstudio.ErrNotFound)
	}
	return best, nil
}

// order labels three centres. The top-left one faces the longest side;
// the cross product then tells top-right from bottom-left.
func order(p []*FinderPattern) *Finders {
	d01 := distance(p[0], p[1])
	d12 := distance(p[1], p[2])
	d02 := distance(p[0], p[2])

	var a, tl, c *FinderPattern
	switch {
	case d12 >= d01 && d12 >= d02:
		tl, a, c = p[0], p[1], p[2]
	case d02 >= d12 && d02 >= d01:
		tl, a, c = p[1], p[0], p[2]
	default:
		tl, a, c = p[2], p[0], p[1]
	}
	if (c.X-tl.X)*(a.Y-tl.Y)-(c.Y-tl.Y)*(a.X-tl.X) < 0 {
		a, c = c, a
	}
	return &Finders{TopLeft: tl, TopRight: c, BottomLeft: a}
}

func squaredDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func distance(a, b *FinderPattern) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
