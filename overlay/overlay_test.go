package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/internal/pathdata"
)

func square() *qrstudio.ScanResult {
	return &qrstudio.ScanResult{
		Text:        "x",
		Corners:     [4]qrstudio.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		FrameWidth:  100,
		FrameHeight: 80,
	}
}

func TestCornersMirrored(t *testing.T) {
	res := square()
	got := Corners(res, true)
	want := [4]qrstudio.Point{{X: 100, Y: 0}, {X: 90, Y: 0}, {X: 90, Y: 10}, {X: 100, Y: 10}}
	assert.Equal(t, want, got)
	assert.Equal(t, res.Corners, Corners(res, false))
	// The result itself is untouched.
	assert.Equal(t, 10.0, res.Corners[1].X)
}

func TestOutline(t *testing.T) {
	d, ok := Outline(square(), true)
	require.True(t, ok)
	assert.Equal(t, "M 100 0 L 90 0 L 90 10 L 100 10 z", d)

	subpaths, err := pathdata.Parse(d)
	require.NoError(t, err)
	require.Len(t, subpaths, 1)
	assert.True(t, subpaths[0].Closed)
	assert.Len(t, subpaths[0].Segments, 4)
}

func TestOutlineFractional(t *testing.T) {
	res := &qrstudio.ScanResult{
		Corners:    [4]qrstudio.Point{{X: 1.5, Y: 2.25}, {X: 20, Y: 2}, {X: 20, Y: 21}, {X: 1, Y: 21}},
		FrameWidth: 64,
	}
	d, ok := Outline(res, true)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(d, "M 62.5 2.25 L 44 2"), d)
}

func TestNoResult(t *testing.T) {
	_, ok := Outline(nil, false)
	assert.False(t, ok)
	_, ok = Shade(nil, true)
	assert.False(t, ok)

	ov := Compute(100, 80, nil, MediaImage, false, nil)
	assert.Empty(t, ov.Outline)
	assert.Empty(t, ov.Shade)
	assert.NotContains(t, Document(ov), "<path")
}

func TestShade(t *testing.T) {
	d, ok := Shade(square(), false)
	require.True(t, ok)
	assert.Equal(t, "M 0 0 H 100 V 80 H 0 z M 0 0 L 10 0 L 10 10 L 0 10 z", d)

	subpaths, err := pathdata.Parse(d)
	require.NoError(t, err)
	require.Len(t, subpaths, 2)
	assert.Equal(t, pathdata.Segment{X0: 100, Y0: 0, X1: 100, Y1: 80}, subpaths[0].Segments[1])
}

func TestComputeMedia(t *testing.T) {
	region := &qrstudio.Region{X: 10, Y: 10, Width: 60, Height: 60}

	img := Compute(100, 80, square(), MediaImage, false, region)
	assert.NotEmpty(t, img.Outline)
	assert.NotEmpty(t, img.Shade)
	assert.Nil(t, img.Region, "still images have no scan region")

	vid := Compute(100, 80, square(), MediaVideo, true, region)
	assert.Equal(t, "M 100 0 L 90 0 L 90 10 L 100 10 z", vid.Outline)
	assert.Empty(t, vid.Shade, "live video is not dimmed")
	assert.Equal(t, region, vid.Region)
}

func TestDocument(t *testing.T) {
	doc := Document(Compute(100, 80, square(), MediaImage, false, nil))
	assert.True(t, strings.HasPrefix(doc, `<svg xmlns="http://www.w3.org/2000/svg"`))
	assert.Contains(t, doc, `viewBox="0 0 100 80"`)
	assert.Contains(t, doc, `fill-rule="evenodd"`)
	assert.Contains(t, doc, `d="M 0 0 L 10 0 L 10 10 L 0 10 z"`)
	assert.True(t, strings.HasSuffix(doc, "</svg>"))

	doc = Document(Compute(100, 80, nil, MediaVideo, false, &qrstudio.Region{X: 5, Y: 6, Width: 7.5, Height: 8}))
	assert.Contains(t, doc, `<rect class="scan-region" x="5" y="6" width="7.5" height="8"`)
}
