package encoder

// penalty scores a masked symbol with the four ISO 18004 rules. Lower is
// better.
func penalty(g *grid) int {
	return penaltyRuns(g) + penaltyBlocks(g) + penaltyFinders(g) + penaltyBalance(g)
}

// penaltyRuns adds 3 for each line run of five same-colour modules and
// one more per extra module.
func penaltyRuns(g *grid) int {
	p := 0
	for _, horizontal := range [2]bool{true, false} {
		for i := 0; i < g.size; i++ {
			run := 0
			prev := int8(-2)
			for j := 0; j < g.size; j++ {
				v := g.get(j, i)
				if !horizontal {
					v = g.get(i, j)
				}
				if v == prev {
					run++
					continue
				}
				if run >= 5 {
					p += run - 2
				}
				run, prev = 1, v
			}
			if run >= 5 {
				p += run - 2
			}
		}
	}
	return p
}

// penaltyBlocks adds 3 for every 2x2 block of one colour.
func penaltyBlocks(g *grid) int {
	p := 0
	for y := 0; y < g.size-1; y++ {
		for x := 0; x < g.size-1; x++ {
			v := g.get(x, y)
			if v == g.get(x+1, y) && v == g.get(x, y+1) && v == g.get(x+1, y+1) {
				p += 3
			}
		}
	}
	return p
}

var finderLike = [7]int8{1, 0, 1, 1, 1, 0, 1}

// penaltyFinders adds 40 for each 1:1:3:1:1 pattern with four light
// modules on either side.
func penaltyFinders(g *grid) int {
	at := func(x, y int, horizontal bool) int8 {
		if !horizontal {
			x, y = y, x
		}
		return g.get(x, y)
	}
	light := func(i, from, to int, horizontal bool) bool {
		if from < 0 || to > g.size {
			return false
		}
		for j := from; j < to; j++ {
			if at(j, i, horizontal) != 0 {
				return false
			}
		}
		return true
	}
	p := 0
	for _, horizontal := range [2]bool{true, false} {
		for i := 0; i < g.size; i++ {
			for j := 0; j+7 <= g.size; j++ {
				match := true
				for k, want := range finderLike {
					if at(j+k, i, horizontal) != want {
						match = false
						break
					}
				}
				if match && (light(i, j-4, j, horizontal) || light(i, j+7, j+11, horizontal)) {
					p += 40
				}
			}
		}
	}
	return p
}

// penaltyBalance adds 10 for every 5% the dark ratio strays from half.
func penaltyBalance(g *grid) int {
	dark := 0
	for _, c := range g.cells {
		if c == 1 {
			dark++
		}
	}
	total := len(g.cells)
	return abs(dark*2-total) * 10 / total * 10
}
