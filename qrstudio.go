// Package qrstudio renders QR codes from text and interprets QR codes found in
// still images or video frames.
//
// The root package holds the shared data model. Sub-packages implement the
// engine on top of it: mask preview glyphs, live preview compositing, PNG and
// SVG export, encode option state, scan overlay geometry and drag positioning.
// The qrcode package provides the Encoder and Scanner used by all of them.
package qrstudio

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// QuietZone is the standard margin, in modules, around a rendered symbol.
const QuietZone = 4

// NumMaskPatterns is the number of standard QR data masks.
const NumMaskPatterns = 8

// ECLevel is one of the four QR error correction levels.
type ECLevel int

const (
	ECLevelL ECLevel = iota // ~7% correction
	ECLevelM                // ~15% correction
	ECLevelQ                // ~25% correction
	ECLevelH                // ~30% correction
)

// ECLevels lists the levels from lowest to highest redundancy.
var ECLevels = []ECLevel{ECLevelL, ECLevelM, ECLevelQ, ECLevelH}

// String returns the level letter.
func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	}
	return "?"
}

// Name returns the descriptive name shown next to the letter.
func (l ECLevel) Name() string {
	switch l {
	case ECLevelL:
		return "Low"
	case ECLevelM:
		return "Medium"
	case ECLevelQ:
		return "Quartile"
	case ECLevelH:
		return "High"
	}
	return "Unknown"
}

// Percent returns the approximate share of codewords that can be restored.
func (l ECLevel) Percent() int {
	switch l {
	case ECLevelL:
		return 7
	case ECLevelM:
		return 15
	case ECLevelQ:
		return 25
	case ECLevelH:
		return 30
	}
	return 0
}

// Valid reports whether l is one of the four defined levels.
func (l ECLevel) Valid() bool {
	return l >= ECLevelL && l <= ECLevelH
}

// ParseECLevel parses a level letter or name, ignoring case.
func ParseECLevel(s string) (ECLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return ECLevelL, nil
	case "m", "medium":
		return ECLevelM, nil
	case "q", "quartile":
		return ECLevelQ, nil
	case "h", "high":
		return ECLevelH, nil
	}
	return 0, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidOptions, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l ECLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: error correction level %d", ErrInvalidOptions, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *ECLevel) UnmarshalText(text []byte) error {
	v, err := ParseECLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MaskPattern selects a data mask. The zero value lets the encoder choose.
type MaskPattern struct {
	index    int
	explicit bool
}

// AutoMask lets the encoder pick the mask with the lowest penalty.
var AutoMask = MaskPattern{}

// Mask selects mask index explicitly. Indices outside 0-7 fail validation.
func Mask(index int) MaskPattern {
	return MaskPattern{index: index, explicit: true}
}

// Index returns the explicit mask index. ok is false in automatic mode.
func (m MaskPattern) Index() (index int, ok bool) {
	return m.index, m.explicit
}

// Auto reports whether the encoder chooses the mask.
func (m MaskPattern) Auto() bool { return !m.explicit }

// String returns "auto" or the mask index.
func (m MaskPattern) String() string {
	if !m.explicit {
		return "auto"
	}
	return strconv.Itoa(m.index)
}

// ParseMask parses "auto", "" or an index 0-7.
func ParseMask(s string) (MaskPattern, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return AutoMask, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= NumMaskPatterns {
		return AutoMask, fmt.Errorf("%w: mask %q", ErrInvalidOptions, s)
	}
	return Mask(i), nil
}

// MarshalText implements encoding.TextMarshaler.
func (m MaskPattern) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MaskPattern) UnmarshalText(text []byte) error {
	v, err := ParseMask(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// EncodeOptions configures encoding and export. It is a comparable value
// type so two option sets can be checked for equality with ==.
type EncodeOptions struct {
	// ECLevel is the error correction level.
	ECLevel ECLevel

	// Mask selects the data mask, automatic by default.
	Mask MaskPattern

	// PixelScale is the number of export pixels per module.
	PixelScale int

	// Opaque renders light modules solid white on export instead of
	// transparent.
	Opaque bool

	// Margin includes the standard quiet zone on export.
	Margin bool
}

// DefaultEncodeOptions returns the options a fresh generator starts with.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		ECLevel:    ECLevelM,
		Mask:       AutoMask,
		PixelScale: 10,
		Opaque:     true,
		Margin:     true,
	}
}

// Validate checks field ranges.
func (o EncodeOptions) Validate() error {
	if !o.ECLevel.Valid() {
		return fmt.Errorf("%w: error correction level %d", ErrInvalidOptions, int(o.ECLevel))
	}
	if i, ok := o.Mask.Index(); ok && (i < 0 || i >= NumMaskPatterns) {
		return fmt.Errorf("%w: mask %d out of range", ErrInvalidOptions, i)
	}
	if o.PixelScale < 1 {
		return fmt.Errorf("%w: pixel scale %d", ErrInvalidOptions, o.PixelScale)
	}
	return nil
}

// QuietZone returns the export margin in modules.
func (o EncodeOptions) QuietZone() int {
	if o.Margin {
		return QuietZone
	}
	return 0
}

// ModuleMatrix is an immutable square grid of dark and light modules.
type ModuleMatrix struct {
	size    int
	modules []bool
}

// NewModuleMatrix creates a matrix from row-major module values. The slice
// is copied.
func NewModuleMatrix(size int, modules []bool) (*ModuleMatrix, error) {
	if size < 21 || size%2 == 0 {
		return nil, fmt.Errorf("%w: side %d", ErrInvalidMatrix, size)
	}
	if len(modules) != size*size {
		return nil, fmt.Errorf("%w: %d modules for side %d", ErrInvalidMatrix, len(modules), size)
	}
	m := &ModuleMatrix{size: size, modules: make([]bool, len(modules))}
	copy(m.modules, modules)
	return m, nil
}

// Size returns the side length in modules.
func (m *ModuleMatrix) Size() int { return m.size }

// Dark reports whether the module at column x, row y is dark.
func (m *ModuleMatrix) Dark(x, y int) bool {
	return m.modules[y*m.size+x]
}

// Equal reports whether both matrices hold the same modules.
func (m *ModuleMatrix) Equal(other *ModuleMatrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.size != other.size {
		return false
	}
	for i, v := range m.modules {
		if other.modules[i] != v {
			return false
		}
	}
	return true
}

// String returns a visual representation of the matrix.
func (m *ModuleMatrix) String() string {
	var sb strings.Builder
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			if m.Dark(x, y) {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EncodeResult is either a matrix with the mask actually used, or a
// classified failure. Exactly one of the two holds.
type EncodeResult struct {
	Matrix  *ModuleMatrix
	Mask    int
	Failure Failure
	Err     error
}

// Encoded builds a successful result.
func Encoded(m *ModuleMatrix, mask int) EncodeResult {
	return EncodeResult{Matrix: m, Mask: mask}
}

// Failed builds a failed result, classifying err.
func Failed(err error) EncodeResult {
	f := Classify(err)
	if f == FailureNone {
		f = FailureUnknown
	}
	return EncodeResult{Mask: -1, Failure: f, Err: err}
}

// OK reports whether the encode succeeded.
func (r EncodeResult) OK() bool {
	return r.Failure == FailureNone && r.Matrix != nil
}

// Point is a coordinate in frame pixels.
type Point struct {
	X, Y float64
}

// Region is an axis aligned rectangle in frame pixels.
type Region struct {
	X, Y, Width, Height float64
}

// ScanResult is a decoded symbol located in a frame.
type ScanResult struct {
	// Text is the decoded payload.
	Text string

	// Corners are the four corners of the symbol as reported by the scanner,
	// in unmirrored frame coordinates.
	Corners [4]Point

	// FrameWidth and FrameHeight are the dimensions of the scanned frame.
	FrameWidth, FrameHeight float64

	// Mirrored reports whether the frame was presented horizontally flipped.
	Mirrored bool
}

// Encoder materializes QR codes. Implementations must classify failures
// with ErrEmpty and ErrTooBig.
type Encoder interface {
	// Encode builds the module matrix for text.
	Encode(text string, opts EncodeOptions) EncodeResult

	// RenderRaster renders text as an image honoring PixelScale, Opaque and
	// Margin.
	RenderRaster(text string, opts EncodeOptions) (image.Image, error)

	// RenderVector renders text as SVG markup honoring the same options.
	RenderVector(text string, opts EncodeOptions) (string, error)
}

// Scanner decodes a QR code from a single picture.
type Scanner interface {
	// ScanImage returns ErrNotFound when no symbol is detected.
	ScanImage(img image.Image) (*ScanResult, error)
}
