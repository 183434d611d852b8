package qrcode

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"regexp"
	"strings"
	"testing"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/internal/pathdata"
)

func opts(level qrstudio.ECLevel, scale int, opaque, margin bool) qrstudio.EncodeOptions {
	o := qrstudio.DefaultEncodeOptions()
	o.ECLevel = level
	o.PixelScale = scale
	o.Opaque = opaque
	o.Margin = margin
	return o
}

func TestRoundTripNumeric(t *testing.T) {
	testRoundTrip(t, "1234567890", opts(qrstudio.ECLevelM, 4, true, true))
}

func TestRoundTripAlphanumeric(t *testing.T) {
	testRoundTrip(t, "HELLO WORLD", opts(qrstudio.ECLevelL, 3, true, true))
}

func TestRoundTripByte(t *testing.T) {
	testRoundTrip(t, "Hello, World! This is a test.", opts(qrstudio.ECLevelQ, 5, true, true))
}

func TestRoundTripUTF8(t *testing.T) {
	testRoundTrip(t, "héllo wörld ✓ 日本", opts(qrstudio.ECLevelM, 4, true, true))
}

func TestRoundTripTransparentNoMargin(t *testing.T) {
	testRoundTrip(t, "https://example.com/a?b=c", opts(qrstudio.ECLevelH, 6, false, false))
}

func TestRoundTripAllECLevels(t *testing.T) {
	for _, level := range qrstudio.ECLevels {
		t.Run(level.String(), func(t *testing.T) {
			testRoundTrip(t, "Testing all EC levels", opts(level, 4, true, true))
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder()
	o := qrstudio.DefaultEncodeOptions()
	a := enc.Encode("hello", o)
	b := enc.Encode("hello", o)
	if !a.OK() || !b.OK() {
		t.Fatalf("encode failed: %v %v", a.Err, b.Err)
	}
	if a.Mask < 0 || a.Mask > 7 {
		t.Fatalf("mask %d out of range", a.Mask)
	}
	if a.Mask != b.Mask || !a.Matrix.Equal(b.Matrix) {
		t.Fatal("encoding is not deterministic")
	}
}

func TestEncodeExplicitMask(t *testing.T) {
	enc := NewEncoder()
	o := qrstudio.DefaultEncodeOptions()
	for i := 0; i < qrstudio.NumMaskPatterns; i++ {
		o.Mask = qrstudio.Mask(i)
		res := enc.Encode("mask test", o)
		if !res.OK() {
			t.Fatalf("mask %d: %v", i, res.Err)
		}
		if res.Mask != i {
			t.Errorf("mask %d: result reports %d", i, res.Mask)
		}
	}
}

func TestEncodeFailures(t *testing.T) {
	enc := NewEncoder()
	o := qrstudio.DefaultEncodeOptions()

	res := enc.Encode("", o)
	if res.OK() || res.Failure != qrstudio.FailureEmpty || res.Mask != -1 {
		t.Fatalf("empty text: got %+v", res)
	}

	o.ECLevel = qrstudio.ECLevelH
	res = enc.Encode(strings.Repeat("a", 4000), o)
	if res.Failure != qrstudio.FailureTooBig {
		t.Fatalf("oversized text: got failure %q", res.Failure)
	}

	o = qrstudio.DefaultEncodeOptions()
	o.PixelScale = 0
	res = enc.Encode("x", o)
	if res.Failure != qrstudio.FailureUnknown || !errors.Is(res.Err, qrstudio.ErrInvalidOptions) {
		t.Fatalf("invalid options: got %+v", res)
	}
}

func TestRenderRasterSize(t *testing.T) {
	enc := NewEncoder()
	tests := []struct {
		scale  int
		margin bool
		want   int
	}{
		{1, true, 29},
		{1, false, 21},
		{10, true, 290},
		{3, false, 63},
	}
	for _, tt := range tests {
		img, err := enc.RenderRaster("hello", opts(qrstudio.ECLevelM, tt.scale, true, tt.margin))
		if err != nil {
			t.Fatalf("RenderRaster: %v", err)
		}
		if b := img.Bounds(); b.Dx() != tt.want || b.Dy() != tt.want {
			t.Errorf("scale %d margin %v: got %v, want %dx%d", tt.scale, tt.margin, b, tt.want, tt.want)
		}
	}
}

func TestRenderRasterBackground(t *testing.T) {
	enc := NewEncoder()
	img, err := enc.RenderRaster("hello", opts(qrstudio.ECLevelM, 10, true, true))
	if err != nil {
		t.Fatal(err)
	}
	if c := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); c != (color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("opaque margin = %v, want white", c)
	}
	if c := color.NRGBAModel.Convert(img.At(40, 40)).(color.NRGBA); c != (color.NRGBA{A: 0xFF}) {
		t.Errorf("finder corner = %v, want black", c)
	}

	img, err = enc.RenderRaster("hello", opts(qrstudio.ECLevelM, 10, false, true))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("transparent margin alpha = %d", a)
	}
	// Inside the finder's light ring.
	if _, _, _, a := img.At(55, 55).RGBA(); a != 0 {
		t.Errorf("transparent light module alpha = %d", a)
	}
}

func TestRenderRasterFailure(t *testing.T) {
	_, err := NewEncoder().RenderRaster("", qrstudio.DefaultEncodeOptions())
	if !errors.Is(err, qrstudio.ErrEmpty) {
		t.Fatalf("got %v, want ErrEmpty", err)
	}
}

func TestRenderVector(t *testing.T) {
	enc := NewEncoder()
	o := opts(qrstudio.ECLevelM, 10, true, true)
	svg, err := enc.RenderVector("hello", o)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`viewBox="0 0 29 29"`,
		`width="290"`,
		`height="290"`,
		`shape-rendering="crispEdges"`,
		`<path fill="#FFFFFF" d="M0 0H29V29H0z"/>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}

	o.Opaque = false
	svg, err = enc.RenderVector("hello", o)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(svg, "fill=") {
		t.Error("transparent svg has a background")
	}
}

// TestRenderVectorModules rebuilds the matrix from the stroked runs.
func TestRenderVectorModules(t *testing.T) {
	enc := NewEncoder()
	o := opts(qrstudio.ECLevelQ, 1, false, true)
	res := enc.Encode("vector modules", o)
	if !res.OK() {
		t.Fatal(res.Err)
	}
	svg, err := enc.RenderVector("vector modules", o)
	if err != nil {
		t.Fatal(err)
	}
	m := regexp.MustCompile(`stroke="#000000" d="([^"]*)"`).FindStringSubmatch(svg)
	if m == nil {
		t.Fatal("no stroked path")
	}
	subpaths, err := pathdata.Parse(m[1])
	if err != nil {
		t.Fatal(err)
	}
	n := res.Matrix.Size()
	got := make([]bool, n*n)
	for _, sp := range subpaths {
		for _, s := range sp.Segments {
			y := int(s.Y0-0.5) - qrstudio.QuietZone
			for x := int(s.X0); x < int(s.X1); x++ {
				got[y*n+x-qrstudio.QuietZone] = true
			}
		}
	}
	rebuilt, err := qrstudio.NewModuleMatrix(n, got)
	if err != nil {
		t.Fatal(err)
	}
	if !rebuilt.Equal(res.Matrix) {
		t.Fatalf("stroked runs differ from matrix:\n%v\nwant\n%v", rebuilt, res.Matrix)
	}
}

func TestScanCorners(t *testing.T) {
	img, err := NewEncoder().RenderRaster("hello", qrstudio.DefaultEncodeOptions())
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewScanner().ScanImage(img)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]qrstudio.Point{{X: 40, Y: 40}, {X: 250, Y: 40}, {X: 250, Y: 250}, {X: 40, Y: 250}}
	if res.Corners != want {
		t.Errorf("corners = %v, want %v", res.Corners, want)
	}
	if res.FrameWidth != 290 || res.FrameHeight != 290 {
		t.Errorf("frame = %vx%v", res.FrameWidth, res.FrameHeight)
	}
	if res.Mirrored {
		t.Error("still image reported mirrored")
	}
}

func TestScanOffsetBounds(t *testing.T) {
	img, err := NewEncoder().RenderRaster("offset", opts(qrstudio.ECLevelL, 4, true, true))
	if err != nil {
		t.Fatal(err)
	}
	sub := img.(*image.NRGBA).SubImage(image.Rect(2, 2, img.Bounds().Dx(), img.Bounds().Dy()))
	res, err := NewScanner().ScanImage(sub)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "offset" {
		t.Errorf("got %q", res.Text)
	}
	if res.Corners[0] != (qrstudio.Point{X: 14, Y: 14}) {
		t.Errorf("top-left = %v, want relative to bounds", res.Corners[0])
	}
}

func TestScanBlank(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	_, err := NewScanner().ScanImage(img)
	if !errors.Is(err, qrstudio.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	_, err = NewScanner().ScanImage(image.NewNRGBA(image.Rectangle{}))
	if !errors.Is(err, qrstudio.ErrNotFound) {
		t.Fatalf("empty image: got %v, want ErrNotFound", err)
	}
}

func TestScanMetadata(t *testing.T) {
	o := opts(qrstudio.ECLevelQ, 4, true, true)
	o.Mask = qrstudio.Mask(5)
	img, err := NewEncoder().RenderRaster("metadata", o)
	if err != nil {
		t.Fatal(err)
	}
	_, dr, err := NewScanner().Scan(img)
	if err != nil {
		t.Fatal(err)
	}
	if dr.Level != qrstudio.ECLevelQ || dr.Mask != 5 {
		t.Errorf("level %v mask %d, want Q 5", dr.Level, dr.Mask)
	}
}

// frame places a rendered symbol rotated by degrees at the centre of a
// grey 400x300 picture, resampling bilinearly like a camera would.
func frame(t *testing.T, text string, scale int, degrees float64) (*image.NRGBA, image.Image) {
	t.Helper()
	sym, err := NewEncoder().RenderRaster(text, opts(qrstudio.ECLevelM, scale, true, true))
	if err != nil {
		t.Fatal(err)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{0x80, 0x80, 0x80, 0xFF}), image.Point{}, draw.Src)
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	c := float64(sym.Bounds().Dx()) / 2
	s2d := f64.Aff3{
		cos, -sin, 200 - cos*c + sin*c,
		sin, cos, 150 - sin*c - cos*c,
	}
	xdraw.BiLinear.Transform(dst, s2d, sym, sym.Bounds(), xdraw.Over, nil)
	return dst, sym
}

func TestScanFrameWithOtherContent(t *testing.T) {
	img, _ := frame(t, "hello", 6, 0)
	draw.Draw(img, image.Rect(20, 20, 30, 30), image.NewUniform(color.Black), image.Point{}, draw.Src)
	res, err := NewScanner().ScanImage(img)
	if err != nil {
		t.Fatalf("ScanImage: %v", err)
	}
	if res.Text != "hello" {
		t.Errorf("got %q", res.Text)
	}
	// 29 modules of 6 pixels centred at (200, 150), quiet zone 4 modules.
	want := qrstudio.Point{X: 200 - 87 + 24, Y: 150 - 87 + 24}
	if math.Hypot(res.Corners[0].X-want.X, res.Corners[0].Y-want.Y) > 1 {
		t.Errorf("top-left = %v, want near %v", res.Corners[0], want)
	}
	if res.FrameWidth != 400 || res.FrameHeight != 300 {
		t.Errorf("frame = %vx%v", res.FrameWidth, res.FrameHeight)
	}
}

func TestScanRotatedFrame(t *testing.T) {
	for _, degrees := range []float64{10, -10, 25} {
		img, _ := frame(t, "hello", 6, degrees)
		res, err := NewScanner().ScanImage(img)
		if err != nil {
			t.Fatalf("%v degrees: %v", degrees, err)
		}
		if res.Text != "hello" {
			t.Errorf("%v degrees: got %q", degrees, res.Text)
		}
		// The outline is a rotated square: equal sides, not axis aligned.
		c := res.Corners
		top := math.Hypot(c[1].X-c[0].X, c[1].Y-c[0].Y)
		left := math.Hypot(c[3].X-c[0].X, c[3].Y-c[0].Y)
		if math.Abs(top-21*6) > 6 || math.Abs(left-21*6) > 6 {
			t.Errorf("%v degrees: sides %v and %v, want about %v", degrees, top, left, 21*6)
		}
		angle := math.Atan2(c[1].Y-c[0].Y, c[1].X-c[0].X) * 180 / math.Pi
		if math.Abs(angle-degrees) > 3 {
			t.Errorf("%v degrees: top edge at %v degrees", degrees, angle)
		}
	}
}

func testRoundTrip(t *testing.T, content string, o qrstudio.EncodeOptions) {
	t.Helper()
	img, err := NewEncoder().RenderRaster(content, o)
	if err != nil {
		t.Fatalf("RenderRaster(%q): %v", content, err)
	}
	res, err := NewScanner().ScanImage(img)
	if err != nil {
		t.Fatalf("ScanImage(%q): %v", content, err)
	}
	if res.Text != content {
		t.Errorf("round trip: got %q, want %q", res.Text, content)
	}
}
