package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrstudio/internal/config"
	"github.com/ericlevine/qrstudio/qrcode"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config.DefaultConfig())
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func post(t *testing.T, ts *httptest.Server, path, contentType string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, contentType, bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQRPNG(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/qr.png?text=hello&scale=4&download=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-code.png"`, resp.Header.Get("Content-Disposition"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 29*4, img.Bounds().Dx())
	res, err := qrcode.NewScanner().ScanImage(img)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
}

func TestQRSVG(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/qr.svg?text=hello&margin=false&opaque=false")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), `viewBox="0 0 21 21"`)
}

func TestQRErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		path   string
		status int
	}{
		{"/qr.png?text=", http.StatusBadRequest},
		{"/qr.png?text=" + strings.Repeat("x", 3000) + "&ecl=H", http.StatusRequestEntityTooLarge},
		{"/qr.svg?text=x&ecl=Z", http.StatusBadRequest},
		{"/qr.svg?text=x&mask=8", http.StatusBadRequest},
		{"/qr.svg?text=x&scale=0", http.StatusBadRequest},
		{"/qr.svg?text=x&opaque=maybe", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := get(t, ts, tt.path)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path[:min(len(tt.path), 40)])
	}
}

func TestEncode(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/encode?text=hello")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[encodeResponse](t, resp)
	assert.Equal(t, 21, body.Size)
	require.NotNil(t, body.InUse)
	assert.Equal(t, body.Mask, *body.InUse)

	resp = get(t, ts, "/encode?text=hello&mask=4")
	body = decode[encodeResponse](t, resp)
	assert.Equal(t, 4, body.Mask)
	assert.Nil(t, body.InUse)

	resp = get(t, ts, "/encode?text=")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode[encodeResponse](t, resp)
	assert.Equal(t, "empty", body.Failure)
	assert.Empty(t, body.Message)

	resp = get(t, ts, "/encode?ecl=H&text="+strings.Repeat("x", 3000))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	body = decode[encodeResponse](t, resp)
	assert.Equal(t, "too-big", body.Failure)
	assert.Equal(t, "QR codes can't hold that much data!", body.Message)
}

func TestConfigDefaults(t *testing.T) {
	s, ts := newTestServer(t)
	cfg := config.DefaultConfig()
	cfg.Export.PixelScale = 2
	cfg.Export.Margin = false
	s.SetConfig(cfg)
	resp := get(t, ts, "/qr.png?text=hello")
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 42, img.Bounds().Dx())
}

func TestMasks(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/masks")
	masks := decode[[]maskResponse](t, resp)
	require.Len(t, masks, 8)
	assert.Equal(t, "M0 0H6M0 2H6M0 4H6", masks[1].Path)

	resp = get(t, ts, "/masks/3.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	resp = get(t, ts, "/masks/8.svg")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScan(t *testing.T) {
	_, ts := newTestServer(t)
	qr := get(t, ts, "/qr.png?text="+url.QueryEscape("example.com/docs"))
	var img bytes.Buffer
	img.ReadFrom(qr.Body)

	resp := post(t, ts, "/scan", "image/png", img.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[scanResponse](t, resp)
	assert.Equal(t, "result", body.State)
	assert.Equal(t, "example.com/docs", body.Text)
	assert.Equal(t, "http://example.com/docs", body.Link)
	require.Len(t, body.Corners, 4)
	assert.Equal(t, 40.0, body.Corners[0].X)
	assert.True(t, strings.HasPrefix(body.Shade, "M 0 0 H "))
	assert.Contains(t, body.Overlay, `fill-rule="evenodd"`)
}

func TestScanNoResult(t *testing.T) {
	_, ts := newTestServer(t)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, blankLike(290)))

	resp := post(t, ts, "/scan", "image/png", buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[scanResponse](t, resp)
	assert.Equal(t, "no-result", body.State)
	assert.Equal(t, "No QR code found.", body.Status)
	assert.Empty(t, body.Outline)

	resp = post(t, ts, "/scan", "image/png", []byte("garbage"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanTooManyPixels(t *testing.T) {
	s, ts := newTestServer(t)
	cfg := config.DefaultConfig()
	cfg.Scan.MaxPixels = 1_000_000
	s.SetConfig(cfg)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 5000, 5000))))
	require.Less(t, int64(buf.Len()), cfg.Server.MaxUploadBytes)

	resp := post(t, ts, "/scan", "image/png", buf.Bytes())
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Contains(t, body.Error, "5000x5000")

	buf.Reset()
	require.NoError(t, png.Encode(&buf, blankLike(1000)))
	resp = post(t, ts, "/scan", "image/png", buf.Bytes())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPairing(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts, "/pair", "application/json", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[pairResponse](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 0.5, created.Position.X)

	pointer := func(ev PointerEvent) pairResponse {
		b, _ := json.Marshal(ev)
		resp := post(t, ts, "/pair/"+created.ID+"/pointer", "application/json", b)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decode[pairResponse](t, resp)
	}
	r := pointer(PointerEvent{Type: "down", PointerID: 1, X: 100, Y: 100})
	assert.True(t, *r.Handled)
	assert.True(t, r.Dragging)

	r = pointer(PointerEvent{Type: "down", PointerID: 2, X: 0, Y: 0})
	assert.False(t, *r.Handled)

	r = pointer(PointerEvent{Type: "move", PointerID: 1, X: 600, Y: 100, ViewportWidth: 1000, ViewportHeight: 500})
	assert.True(t, *r.Handled)
	assert.Equal(t, 0.95, r.Position.X)
	assert.InDelta(t, 0.9, r.Layout.Left, 1e-9)

	r = pointer(PointerEvent{Type: "up", PointerID: 1})
	assert.False(t, r.Dragging)

	resp = get(t, ts, "/pair/"+created.ID)
	got := decode[pairResponse](t, resp)
	assert.Equal(t, 0.95, got.Position.X)

	resp = get(t, ts, "/pair/"+created.ID+"/qr.png?scale=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	res, err := qrcode.NewScanner().ScanImage(img)
	require.NoError(t, err)
	assert.Equal(t, created.ID, res.Text)
}

func TestPairErrors(t *testing.T) {
	_, ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/pair/not-a-uuid").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/pair/7d444840-9dc0-11d1-b245-5ffdce74fad2").StatusCode)

	created := decode[pairResponse](t, post(t, ts, "/pair", "application/json", nil))
	resp := post(t, ts, "/pair/"+created.ID+"/pointer", "application/json", []byte(`{"type":"wiggle"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = post(t, ts, "/pair/"+created.ID+"/pointer", "application/json", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPairExpiry(t *testing.T) {
	var clock atomic.Int64
	clock.Store(1000)
	s := New(config.DefaultConfig())
	s.now = func() time.Time { return time.Unix(clock.Load(), 0) }
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	created := decode[pairResponse](t, post(t, ts, "/pair", "application/json", nil))
	clock.Add(30 * 60)
	assert.Equal(t, http.StatusOK, get(t, ts, "/pair/"+created.ID).StatusCode)
	clock.Add(61 * 60)
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/pair/"+created.ID).StatusCode)
}
