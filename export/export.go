// Package export produces downloadable PNG and SVG artifacts for the
// current text and options.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/ericlevine/qrstudio"
)

// Suggested file names for downloads.
const (
	PNGFilename = "qr-code.png"
	SVGFilename = "qr-code.svg"
)

// Media types of the artifacts.
const (
	PNGType = "image/png"
	SVGType = "image/svg+xml"
)

// Blob is an export artifact with its suggested file name.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Pipeline renders artifacts with a fresh encode for every call. It never
// reuses a preview matrix.
type Pipeline struct {
	enc qrstudio.Encoder
}

// New returns a Pipeline over enc.
func New(enc qrstudio.Encoder) *Pipeline {
	return &Pipeline{enc: enc}
}

// Raster renders text as a PNG. Invalid options are reported as
// qrstudio.ErrInvalidOptions; any failure to produce the image wraps
// qrstudio.ErrExport.
func (p *Pipeline) Raster(ctx context.Context, text string, opts qrstudio.EncodeOptions) (*Blob, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := p.enc.RenderRaster(text, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qrstudio.ErrExport, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: png: %w", qrstudio.ErrExport, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Blob{Data: buf.Bytes(), ContentType: PNGType, Filename: PNGFilename}, nil
}

// Vector renders text as an SVG document. Errors are reported as for
// Raster.
func (p *Pipeline) Vector(ctx context.Context, text string, opts qrstudio.EncodeOptions) (*Blob, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	svg, err := p.enc.RenderVector(text, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qrstudio.ErrExport, err)
	}
	if svg == "" {
		return nil, fmt.Errorf("%w: empty document", qrstudio.ErrExport)
	}
	return &Blob{Data: []byte(svg), ContentType: SVGType, Filename: SVGFilename}, nil
}

// Format selects an artifact kind.
type Format int

const (
	FormatPNG Format = iota
	FormatSVG
)

// ParseFormat accepts "png" and "svg".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", "PNG":
		return FormatPNG, nil
	case "svg", "SVG":
		return FormatSVG, nil
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// Render dispatches to Raster or Vector.
func (p *Pipeline) Render(ctx context.Context, f Format, text string, opts qrstudio.EncodeOptions) (*Blob, error) {
	if f == FormatSVG {
		return p.Vector(ctx, text, opts)
	}
	return p.Raster(ctx, text, opts)
}
