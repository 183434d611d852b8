package binarizer

import (
	"image"

	"github.com/ericlevine/qrstudio/bitutil"
)

const (
	blockPower = 3
	blockSize  = 1 << blockPower
	// Pictures narrower or shorter than this use the global threshold.
	minHybridSide = blockSize * 5
	// Blocks whose luminance spread is at most this are treated as flat.
	minDynamicRange = 24
)

// Hybrid thresholds each 8x8 block against the average black point of the
// 5x5 blocks around it. It copes with shadows and gradients in camera
// frames. Small pictures fall back to Global.
func Hybrid(gray *image.Gray) (*bitutil.BitMatrix, error) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < minHybridSide || h < minHybridSide {
		return Global(gray)
	}
	lum := func(x, y int) int {
		return int(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	subW := (w + blockSize - 1) >> blockPower
	subH := (h + blockSize - 1) >> blockPower
	black := blackPoints(lum, subW, subH, w, h)

	m := bitutil.NewBitMatrixWithSize(w, h)
	for by := 0; by < subH; by++ {
		y0 := min(by<<blockPower, h-blockSize)
		cy := clampBlock(by, subH-3)
		for bx := 0; bx < subW; bx++ {
			x0 := min(bx<<blockPower, w-blockSize)
			cx := clampBlock(bx, subW-3)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				row := black[cy+dy]
				for dx := -2; dx <= 2; dx++ {
					sum += row[cx+dx]
				}
			}
			threshold := sum / 25
			for y := y0; y < y0+blockSize; y++ {
				for x := x0; x < x0+blockSize; x++ {
					if lum(x, y) <= threshold {
						m.Set(x, y)
					}
				}
			}
		}
	}
	return m, nil
}

// clampBlock keeps the 5x5 neighbourhood centred on i inside the grid.
func clampBlock(i, hi int) int {
	if i < 2 {
		return 2
	}
	return min(i, hi)
}

// blackPoints estimates a black point per block: the mean for blocks with
// contrast, otherwise half the minimum, raised to the neighbours' level
// when the flat block is darker than they are.
func blackPoints(lum func(x, y int) int, subW, subH, w, h int) [][]int {
	out := make([][]int, subH)
	for by := range out {
		out[by] = make([]int, subW)
		y0 := min(by<<blockPower, h-blockSize)
		for bx := range out[by] {
			x0 := min(bx<<blockPower, w-blockSize)
			sum, lo, hi := 0, 0xFF, 0
			for y := y0; y < y0+blockSize; y++ {
				for x := x0; x < x0+blockSize; x++ {
					v := lum(x, y)
					sum += v
					lo = min(lo, v)
					hi = max(hi, v)
				}
			}
			avg := sum >> (2 * blockPower)
			if hi-lo <= minDynamicRange {
				avg = lo / 2
				if by > 0 && bx > 0 {
					neighbours := (out[by-1][bx] + 2*out[by][bx-1] + out[by-1][bx-1]) / 4
					if lo < neighbours {
						avg = neighbours
					}
				}
			}
			out[by][bx] = avg
		}
	}
	return out
}
