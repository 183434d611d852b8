package binarizer

import (
	"fmt"
	"image"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// Global thresholds the whole picture at one black point picked from a
// luminance histogram of its central band. It suits rendered or scanned
// codes with even lighting.
func Global(gray *image.Gray) (*bitutil.BitMatrix, error) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", qrstudio.ErrNotFound)
	}
	var buckets [luminanceBuckets]int
	for i := 1; i < 5; i++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+h*i/5):]
		for x := w / 5; x < w*4/5; x++ {
			buckets[row[x]>>luminanceShift]++
		}
	}
	black, err := estimateBlackPoint(buckets[:])
	if err != nil {
		return nil, err
	}
	m := bitutil.NewBitMatrixWithSize(w, h)
	for y := 0; y < h; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			if int(row[x]) < black {
				m.Set(x, y)
			}
		}
	}
	return m, nil
}

// estimateBlackPoint finds the two tallest well separated peaks and
// returns the deepest valley between them, weighted toward the light peak.
func estimateBlackPoint(buckets []int) (int, error) {
	n := len(buckets)
	first, tallest := 0, 0
	for x, c := range buckets {
		if c > tallest {
			first, tallest = x, c
		}
	}
	second, secondScore := 0, 0
	for x, c := range buckets {
		d := x - first
		if score := c * d * d; score > secondScore {
			second, secondScore = x, score
		}
	}
	if secondScore == 0 {
		return 0, fmt.Errorf("%w: single luminance peak", qrstudio.ErrNotFound)
	}
	if first > second {
		first, second = second, first
	}
	if second-first <= n/16 {
		return 0, fmt.Errorf("%w: no contrast", qrstudio.ErrNotFound)
	}
	valley, valleyScore := second-1, -1
	for x := second - 1; x > first; x-- {
		d := x - first
		if score := d * d * (second - x) * (tallest - buckets[x]); score > valleyScore {
			valley, valleyScore = x, score
		}
	}
	return valley << luminanceShift, nil
}
