// Package binarizer converts pictures to luminance and thresholds them
// into dark and light modules.
package binarizer

import (
	"image"
	"image/color"
)

// Luminance converts img to 8-bit greyscale with the integer weights
// (306 R + 601 G + 117 B) / 1024. Fully transparent pixels become white so
// that light modules rendered transparent read as light.
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = luma(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func luma(c color.Color) uint8 {
	r, g, bl, a := c.RGBA()
	if a == 0 {
		return 0xFF
	}
	if a < 0xFFFF {
		// Composite over white.
		r += 0xFFFF - a
		g += 0xFFFF - a
		bl += 0xFFFF - a
	}
	return uint8((306*(r>>8) + 601*(g>>8) + 117*(bl>>8) + 0x200) >> 10)
}
