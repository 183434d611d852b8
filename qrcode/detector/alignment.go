package detector

import "math"

// AlignmentPattern is the centre of an alignment pattern.
type AlignmentPattern struct {
	X, Y       float64
	ModuleSize float64
}

func (p *AlignmentPattern) near(moduleSize, x, y float64) bool {
	if math.Abs(y-p.Y) > moduleSize || math.Abs(x-p.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - p.ModuleSize)
	return diff <= 1 || diff <= p.ModuleSize
}

// findAlignment searches a square of allowance modules around the
// estimated centre. It returns nil when nothing is found.
func (d *Detector) findAlignment(module float64, estX, estY int, allowance float64) *AlignmentPattern {
	reach := int(allowance * module)
	left := max(0, estX-reach)
	right := min(d.img.Width()-1, estX+reach)
	top := max(0, estY-reach)
	bottom := min(d.img.Height()-1, estY+reach)
	if float64(right-left) < module*3 || float64(bottom-top) < module*3 {
		return nil
	}
	a := &aligner{img: d, module: module}
	return a.find(left, top, right-left, bottom-top)
}

type aligner struct {
	img     *Detector
	module  float64
	centres []*AlignmentPattern
}

// find scans rows from the middle of the area outward for the light-dark-
// light 1:1:1 signature across the centre module. A centre seen twice
// wins; otherwise the first candidate is returned.
func (a *aligner) find(left, top, width, height int) *AlignmentPattern {
	img := a.img.img
	end := left + width
	middle := top + height/2
	for n := 0; n < height; n++ {
		y := middle + (n+1)/2
		if n&1 == 1 {
			y = middle - (n+1)/2
		}

		var runs [3]int
		x := left
		for x < end && !img.Get(x, y) {
			x++
		}
		state := 0
		for ; x < end; x++ {
			if img.Get(x, y) {
				switch state {
				case 1:
					runs[1]++
				case 2:
					if a.ratio(runs) {
						if p := a.confirm(runs, x, y); p != nil {
							return p
						}
					}
					runs = [3]int{runs[2], 1, 0}
					state = 1
				default:
					state++
					runs[state]++
				}
				continue
			}
			if state == 1 {
				state++
			}
			runs[state]++
		}
		if a.ratio(runs) {
			if p := a.confirm(runs, end, y); p != nil {
				return p
			}
		}
	}
	if len(a.centres) > 0 {
		return a.centres[0]
	}
	return nil
}

func (a *aligner) ratio(runs [3]int) bool {
	tol := a.module / 2
	for _, r := range runs {
		if math.Abs(a.module-float64(r)) >= tol {
			return false
		}
	}
	return true
}

// confirm cross-checks the column through a row hit. It returns the
// pattern once a centre has been seen twice.
func (a *aligner) confirm(runs [3]int, end, y int) *AlignmentPattern {
	total := runs[0] + runs[1] + runs[2]
	cx := centreFromEnd(runs[:], end)
	cy := a.crossCheckVertical(int(cx), y, 2*runs[1], total)
	if math.IsNaN(cy) {
		return nil
	}
	module := float64(total) / 3
	for _, c := range a.centres {
		if c.near(module, cx, cy) {
			return &AlignmentPattern{X: (c.X + cx) / 2, Y: (c.Y + cy) / 2, ModuleSize: (c.ModuleSize + module) / 2}
		}
	}
	a.centres = append(a.centres, &AlignmentPattern{X: cx, Y: cy, ModuleSize: module})
	return nil
}

func (a *aligner) crossCheckVertical(x, startY, maxCount, originalTotal int) float64 {
	img := a.img.img
	limit := img.Height()
	var runs [3]int

	y := startY
	for y >= 0 && img.Get(x, y) && runs[1] <= maxCount {
		runs[1]++
		y--
	}
	if y < 0 || runs[1] > maxCount {
		return math.NaN()
	}
	for y >= 0 && !img.Get(x, y) && runs[0] <= maxCount {
		runs[0]++
		y--
	}
	if runs[0] > maxCount {
		return math.NaN()
	}

	y = startY + 1
	for y < limit && img.Get(x, y) && runs[1] <= maxCount {
		runs[1]++
		y++
	}
	if y == limit || runs[1] > maxCount {
		return math.NaN()
	}
	for y < limit && !img.Get(x, y) && runs[2] <= maxCount {
		runs[2]++
		y++
	}
	if runs[2] > maxCount {
		return math.NaN()
	}

	total := runs[0] + runs[1] + runs[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !a.ratio(runs) {
		return math.NaN()
	}
	return centreFromEnd(runs[:], y)
}
