// Package qrcode encodes text into QR symbols and scans them back out of
// pictures.
package qrcode

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/binarizer"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/qrcode/decoder"
	"github.com/ericlevine/qrstudio/qrcode/detector"
)

// Scanner decodes QR codes in photos, camera frames and screenshots. It
// locates the symbol from its finder patterns, so codes may be rotated,
// skewed or surrounded by other content. Pictures holding nothing but an
// unrotated symbol are read directly when detection fails.
type Scanner struct {
	dec *decoder.Decoder
}

var _ qrstudio.Scanner = (*Scanner)(nil)

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{dec: decoder.New()}
}

// ScanImage locates and decodes the symbol in img. Corners are the outer
// symbol corners, clockwise from its top-left module, in img pixels
// relative to its bounds.
func (s *Scanner) ScanImage(img image.Image) (*qrstudio.ScanResult, error) {
	res, _, err := s.Scan(img)
	return res, err
}

// Scan is like ScanImage but also returns the decoded symbol metadata.
func (s *Scanner) Scan(img image.Image) (*qrstudio.ScanResult, *decoder.Result, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil, fmt.Errorf("%w: empty image", qrstudio.ErrNotFound)
	}
	matrix, err := binarizer.Hybrid(binarizer.Luminance(img))
	if err != nil {
		return nil, nil, err
	}

	var corners [4]qrstudio.Point
	dr, detectErr := s.detect(matrix, &corners)
	if detectErr != nil {
		var pureErr error
		dr, pureErr = s.pure(matrix, &corners)
		if pureErr != nil {
			// Report how far detection got unless the direct read did better.
			if errors.Is(pureErr, qrstudio.ErrNotFound) {
				return nil, nil, detectErr
			}
			return nil, nil, pureErr
		}
	}
	for i := range corners {
		corners[i] = qrstudio.Point{X: roundPixel(corners[i].X), Y: roundPixel(corners[i].Y)}
	}
	res := &qrstudio.ScanResult{
		Text:        dr.Text,
		Corners:     corners,
		FrameWidth:  float64(b.Dx()),
		FrameHeight: float64(b.Dy()),
	}
	qrstudio.Logger().Debug("qrcode: scanned",
		"version", dr.Version, "level", dr.Level, "corrected", dr.ErrorsCorrected,
		"detected", detectErr == nil)
	return res, dr, nil
}

func (s *Scanner) detect(matrix *bitutil.BitMatrix, corners *[4]qrstudio.Point) (*decoder.Result, error) {
	det, err := detector.New(matrix).Detect()
	if err != nil {
		return nil, err
	}
	dr, err := s.dec.Decode(det.Bits)
	if err != nil {
		return nil, err
	}
	*corners = det.Corners
	return dr, nil
}

func (s *Scanner) pure(matrix *bitutil.BitMatrix, corners *[4]qrstudio.Point) (*decoder.Result, error) {
	sample, err := extractPure(matrix)
	if err != nil {
		return nil, err
	}
	dr, err := s.dec.Decode(sample.bits)
	if err != nil {
		return nil, err
	}
	left, top := float64(sample.left), float64(sample.top)
	right, bottom := float64(sample.right+1), float64(sample.bottom+1)
	*corners = [4]qrstudio.Point{{X: left, Y: top}, {X: right, Y: top}, {X: right, Y: bottom}, {X: left, Y: bottom}}
	return dr, nil
}

// roundPixel drops transform noise below a thousandth of a pixel.
func roundPixel(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// pureSample is a sampled symbol and the pixel box it was read from. The
// box edges are inclusive.
type pureSample struct {
	bits                     *bitutil.BitMatrix
	left, top, right, bottom int
}

// extractPure samples a symbol from an image that holds only the
// unrotated, unskewed code with some light border.
func extractPure(img *bitutil.BitMatrix) (*pureSample, error) {
	left, top, ok := img.TopLeftOnBit()
	if !ok {
		return nil, qrstudio.ErrNotFound
	}
	right, bottom, ok := img.BottomRightOnBit()
	if !ok {
		return nil, qrstudio.ErrNotFound
	}

	moduleSize, err := moduleSize(img, left, top)
	if err != nil {
		return nil, err
	}
	if left >= right || top >= bottom {
		return nil, qrstudio.ErrNotFound
	}

	// The bottom-right module may be light; trust the height.
	if bottom-top != right-left {
		right = left + (bottom - top)
		if right >= img.Width() {
			return nil, qrstudio.ErrNotFound
		}
	}

	dim := int(math.Round(float64(right-left+1) / moduleSize))
	if dim <= 0 || dim != int(math.Round(float64(bottom-top+1)/moduleSize)) {
		return nil, qrstudio.ErrNotFound
	}

	nudge := int(moduleSize / 2)
	x0, y0 := left+nudge, top+nudge
	if over := x0 + int(float64(dim-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, qrstudio.ErrNotFound
		}
		x0 -= over
	}
	if over := y0 + int(float64(dim-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, qrstudio.ErrNotFound
		}
		y0 -= over
	}

	bits := bitutil.NewBitMatrix(dim)
	for y := 0; y < dim; y++ {
		py := y0 + int(float64(y)*moduleSize)
		for x := 0; x < dim; x++ {
			if img.Get(x0+int(float64(x)*moduleSize), py) {
				bits.Set(x, y)
			}
		}
	}
	return &pureSample{bits: bits, left: left, top: top, right: right, bottom: bottom}, nil
}

// moduleSize walks the top-left finder diagonal. Five colour changes span
// its seven modules.
func moduleSize(img *bitutil.BitMatrix, left, top int) (float64, error) {
	x, y := left, top
	inBlack := true
	transitions := 0
	for x < img.Width() && y < img.Height() {
		if inBlack != img.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == img.Width() || y == img.Height() {
		return 0, qrstudio.ErrNotFound
	}
	return float64(x-left) / 7, nil
}
