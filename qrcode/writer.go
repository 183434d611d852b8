package qrcode

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/composite"
	"github.com/ericlevine/qrstudio/internal/pathdata"
	"github.com/ericlevine/qrstudio/qrcode/encoder"
)

// Encoder builds QR symbols and renders them for export. The zero value is
// ready to use and safe for concurrent use.
type Encoder struct{}

var _ qrstudio.Encoder = Encoder{}

// NewEncoder returns an Encoder.
func NewEncoder() Encoder {
	return Encoder{}
}

// Encode builds the module matrix for text. Failures are classified.
func (Encoder) Encode(text string, opts qrstudio.EncodeOptions) qrstudio.EncodeResult {
	sym, err := symbol(text, opts)
	if err != nil {
		return qrstudio.Failed(err)
	}
	return qrstudio.Encoded(sym.Matrix(), sym.Mask)
}

func symbol(text string, opts qrstudio.EncodeOptions) (*encoder.Symbol, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return encoder.Encode(text, opts.ECLevel, opts.Mask)
}

// RenderRaster renders text PixelScale pixels per module. Light modules
// and the margin are white when opts.Opaque is set, transparent otherwise.
func (Encoder) RenderRaster(text string, opts qrstudio.EncodeOptions) (image.Image, error) {
	sym, err := symbol(text, opts)
	if err != nil {
		return nil, err
	}
	base := composite.Composite(sym.Matrix(), opts.QuietZone())
	if opts.Opaque {
		for i := 0; i < len(base.Pix); i += 4 {
			if base.Pix[i+3] == 0 {
				base.Pix[i], base.Pix[i+1], base.Pix[i+2], base.Pix[i+3] = 0xFF, 0xFF, 0xFF, 0xFF
			}
		}
	}
	if opts.PixelScale == 1 {
		return base, nil
	}
	side := base.Bounds().Dx() * opts.PixelScale
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// RenderVector renders text as an SVG document. The viewBox is measured in
// modules and the document size in pixels.
func (Encoder) RenderVector(text string, opts qrstudio.EncodeOptions) (string, error) {
	sym, err := symbol(text, opts)
	if err != nil {
		return "", err
	}
	q := opts.QuietZone()
	n := sym.Size()
	side := n + 2*q
	px := strconv.Itoa(side * opts.PixelScale)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 %d %d" width="%s" height="%s" shape-rendering="crispEdges">`,
		side, side, px, px)
	if opts.Opaque {
		fmt.Fprintf(&sb, `<path fill="%s" d="M0 0H%dV%dH0z"/>`, hex(color.White), side, side)
	}

	b := pathdata.Builder{Compact: true}
	for y := 0; y < n; y++ {
		for _, r := range pathdata.Runs(n, func(x int) bool { return sym.Dark(x, y) }) {
			b.MoveTo(float64(r.Start+q), float64(y+q)+0.5)
			b.HLineTo(float64(r.End + q))
		}
	}
	fmt.Fprintf(&sb, `<path stroke="%s" d="%s"/></svg>`, hex(color.Black), b.String())
	return sb.String(), nil
}

func hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
