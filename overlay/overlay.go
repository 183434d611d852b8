// Package overlay computes the outline drawn over a detected code, in the
// coordinates the viewer actually sees.
package overlay

import (
	"fmt"
	"strings"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/internal/pathdata"
)

// Corners returns the corners of res as displayed. A mirrored frame flips
// each x about the frame width.
func Corners(res *qrstudio.ScanResult, mirrored bool) [4]qrstudio.Point {
	pts := res.Corners
	if mirrored {
		for i := range pts {
			pts[i].X = res.FrameWidth - pts[i].X
		}
	}
	return pts
}

// Outline returns the closed path through the displayed corners in their
// reported order. It reports false when there is no result.
func Outline(res *qrstudio.ScanResult, mirrored bool) (string, bool) {
	if res == nil {
		return "", false
	}
	var b pathdata.Builder
	outline(&b, Corners(res, mirrored))
	return b.String(), true
}

func outline(b *pathdata.Builder, pts [4]qrstudio.Point) {
	for i, p := range pts {
		if i == 0 {
			b.MoveTo(p.X, p.Y)
		} else {
			b.LineTo(p.X, p.Y)
		}
	}
	b.Close()
}

// Shade returns the dimming path: the full frame with the outline cut out
// under the even-odd fill rule. It reports false when there is no result.
func Shade(res *qrstudio.ScanResult, mirrored bool) (string, bool) {
	if res == nil {
		return "", false
	}
	var b pathdata.Builder
	b.MoveTo(0, 0)
	b.HLineTo(res.FrameWidth)
	b.VLineTo(res.FrameHeight)
	b.HLineTo(0)
	b.Close()
	outline(&b, Corners(res, mirrored))
	return b.String(), true
}

// Media is the kind of picture being scanned.
type Media int

const (
	MediaImage Media = iota
	MediaVideo
)

// Overlay is everything drawn on top of the scanned picture.
type Overlay struct {
	Width, Height float64
	// Outline and Shade are empty when nothing was detected. Shade is only
	// set for still images.
	Outline, Shade string
	// Region is the live scan region, only set for video.
	Region *qrstudio.Region
}

// Compute builds the overlay for a frame of the given size. res may be
// nil.
func Compute(width, height float64, res *qrstudio.ScanResult, media Media, mirrored bool, region *qrstudio.Region) Overlay {
	ov := Overlay{Width: width, Height: height}
	if media == MediaVideo {
		ov.Region = region
	}
	if res == nil {
		return ov
	}
	ov.Outline, _ = Outline(res, mirrored)
	if media == MediaImage {
		ov.Shade, _ = Shade(res, mirrored)
	}
	return ov
}

// Document renders ov as a standalone SVG sized to the frame.
func Document(ov Overlay) string {
	w, h := pathdata.Number(ov.Width), pathdata.Number(ov.Height)
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 %s %s" width="%s" height="%s">`, w, h, w, h)
	if r := ov.Region; r != nil {
		fmt.Fprintf(&sb, `<rect class="scan-region" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#FFFFFF" stroke-dasharray="4"/>`,
			pathdata.Number(r.X), pathdata.Number(r.Y), pathdata.Number(r.Width), pathdata.Number(r.Height))
	}
	if ov.Shade != "" {
		fmt.Fprintf(&sb, `<path class="shadow" fill="#000000" fill-opacity="0.5" fill-rule="evenodd" d="%s"/>`, ov.Shade)
	}
	if ov.Outline != "" {
		fmt.Fprintf(&sb, `<path class="shadow-outline" fill="none" stroke="#FFFF00" stroke-width="2" stroke-linejoin="round" d="%s"/>`, ov.Outline)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
