// Package composite paints module matrices into pixel buffers for the live
// preview, one pixel per module.
package composite

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ericlevine/qrstudio"
)

var (
	// Dark is the colour of dark modules.
	Dark = color.NRGBA{A: 0xFF}
	// Light is the colour of light modules and the quiet zone.
	Light = color.NRGBA{}
)

// Composite paints m with quietZone transparent modules on every side. The
// result is (m.Size() + 2*quietZone) pixels square. A negative quiet zone
// is treated as zero.
func Composite(m *qrstudio.ModuleMatrix, quietZone int) *image.NRGBA {
	q := max(quietZone, 0)
	side := m.Size() + 2*q
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	// NewNRGBA is zeroed, which is already Light.
	for y := 0; y < m.Size(); y++ {
		row := img.Pix[(y+q)*img.Stride:]
		for x := 0; x < m.Size(); x++ {
			if m.Dark(x, y) {
				i := (x + q) * 4
				row[i+3] = Dark.A
			}
		}
	}
	return img
}

// Surface is a drawable target owned by one preview.
type Surface interface {
	// Resize sets the surface dimensions, discarding its content.
	Resize(width, height int)
	// Put replaces the surface content with img, drawn at the origin.
	Put(img image.Image)
}

// Compositor repaints a Surface from encode results.
type Compositor struct {
	Surface   Surface
	QuietZone int
}

// New returns a Compositor with the standard quiet zone.
func New(s Surface) *Compositor {
	return &Compositor{Surface: s, QuietZone: qrstudio.QuietZone}
}

// Apply repaints the surface from res. A failed result collapses the
// surface to zero size so no stale symbol stays visible.
func (c *Compositor) Apply(res qrstudio.EncodeResult) {
	if !res.OK() {
		c.Surface.Resize(0, 0)
		return
	}
	img := Composite(res.Matrix, c.QuietZone)
	b := img.Bounds()
	c.Surface.Resize(b.Dx(), b.Dy())
	c.Surface.Put(img)
}

// ImageSurface is an in-memory Surface.
type ImageSurface struct {
	img *image.NRGBA
}

// Resize implements Surface.
func (s *ImageSurface) Resize(width, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// Put implements Surface.
func (s *ImageSurface) Put(img image.Image) {
	if s.img == nil {
		b := img.Bounds()
		s.Resize(b.Dx(), b.Dy())
	}
	draw.Draw(s.img, s.img.Bounds(), img, img.Bounds().Min, draw.Src)
}

// Image returns the current content. It is empty before the first Resize.
func (s *ImageSurface) Image() *image.NRGBA {
	if s.img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	return s.img
}

// Size returns the surface dimensions.
func (s *ImageSurface) Size() (width, height int) {
	b := s.Image().Bounds()
	return b.Dx(), b.Dy()
}
