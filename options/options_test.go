package options

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/composite"
	"github.com/ericlevine/qrstudio/qrcode"
)

// countingEncoder wraps the real encoder and counts Encode calls.
type countingEncoder struct {
	qrcode.Encoder
	mu    sync.Mutex
	calls int
	err   error
}

func (e *countingEncoder) Encode(text string, opts qrstudio.EncodeOptions) qrstudio.EncodeResult {
	e.mu.Lock()
	e.calls++
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return qrstudio.Failed(err)
	}
	return e.Encoder.Encode(text, opts)
}

type recorder struct {
	results []qrstudio.EncodeResult
}

func (r *recorder) Apply(res qrstudio.EncodeResult) { r.results = append(r.results, res) }

func TestDefaults(t *testing.T) {
	c := New(&countingEncoder{}, nil)
	assert.Equal(t, qrstudio.DefaultEncodeOptions(), c.Options())
	assert.Empty(t, c.Text())
	assert.False(t, c.Valid())
}

func TestResultCachedUntilChange(t *testing.T) {
	enc := &countingEncoder{}
	c := New(enc, nil)
	c.SetText("hello")

	first := c.Result()
	require.True(t, first.OK())
	again := c.Result()
	assert.Equal(t, 1, enc.calls)
	assert.True(t, first.Matrix.Equal(again.Matrix))

	c.SetText("hello")
	assert.True(t, c.Valid(), "setting the same text keeps the result")

	require.NoError(t, c.SetECLevel(qrstudio.ECLevelH))
	assert.False(t, c.Valid())
	c.Result()
	assert.Equal(t, 2, enc.calls)
}

func TestEveryOptionInvalidates(t *testing.T) {
	c := New(&countingEncoder{}, nil)
	c.SetText("x")
	changes := map[string]func(){
		"level":  func() { require.NoError(t, c.SetECLevel(qrstudio.ECLevelQ)) },
		"mask":   func() { require.NoError(t, c.SetMask(qrstudio.Mask(3))) },
		"scale":  func() { require.NoError(t, c.SetPixelScale(4)) },
		"opaque": func() { c.SetOpaque(false) },
		"margin": func() { c.SetMargin(false) },
		"text":   func() { c.SetText("y") },
	}
	for name, change := range changes {
		c.Result()
		require.True(t, c.Valid(), name)
		change()
		assert.False(t, c.Valid(), "%s change must invalidate", name)
	}
}

func TestSetterValidation(t *testing.T) {
	c := New(&countingEncoder{}, nil)
	assert.ErrorIs(t, c.SetECLevel(qrstudio.ECLevel(9)), qrstudio.ErrInvalidOptions)
	assert.ErrorIs(t, c.SetMask(qrstudio.Mask(8)), qrstudio.ErrInvalidOptions)
	assert.ErrorIs(t, c.SetPixelScale(0), qrstudio.ErrInvalidOptions)
	assert.ErrorIs(t, c.ParsePixelScale("ten"), qrstudio.ErrInvalidOptions)
	require.NoError(t, c.ParsePixelScale(" 12 "))
	assert.Equal(t, 12, c.Options().PixelScale)

	bad := qrstudio.DefaultEncodeOptions()
	bad.PixelScale = -1
	assert.ErrorIs(t, c.SetOptions(bad), qrstudio.ErrInvalidOptions)
	assert.Equal(t, 12, c.Options().PixelScale)
}

func TestActualMaskUsed(t *testing.T) {
	c := New(&countingEncoder{}, nil)
	c.SetText("hello")
	res := c.Result()
	mask, ok := c.ActualMaskUsed(res)
	require.True(t, ok)
	assert.Equal(t, res.Mask, mask)
	assert.GreaterOrEqual(t, mask, 0)
	assert.Less(t, mask, 8)

	require.NoError(t, c.SetMask(qrstudio.Mask(2)))
	_, ok = c.ActualMaskUsed(c.Result())
	assert.False(t, ok, "undefined for an explicit mask")
	// Even for a result computed while the mask was automatic.
	_, ok = c.ActualMaskUsed(res)
	assert.False(t, ok)

	require.NoError(t, c.SetMask(qrstudio.AutoMask))
	c.SetText("")
	_, ok = c.ActualMaskUsed(c.Result())
	assert.False(t, ok, "undefined for a failed encode")
}

func TestStaleCommitDropped(t *testing.T) {
	r := &recorder{}
	c := New(&countingEncoder{}, r)
	c.SetText("first")
	old := c.Request()
	oldRes := c.Compute(old)

	c.SetText("second")
	assert.False(t, c.Commit(old, oldRes))
	assert.Empty(t, r.results)
	assert.False(t, c.Valid())

	cur := c.Request()
	assert.Greater(t, cur.ID, old.ID)
	assert.True(t, c.Commit(cur, c.Compute(cur)))
	require.Len(t, r.results, 1)
	assert.True(t, r.results[0].OK())
}

func TestStaleAfterRevert(t *testing.T) {
	c := New(&countingEncoder{}, nil)
	c.SetText("a")
	req := c.Request()
	c.SetText("b")
	c.SetText("a")
	// Same inputs, but a newer request exists.
	assert.False(t, c.Commit(req, c.Compute(req)))
}

func TestRefresh(t *testing.T) {
	s := &composite.ImageSurface{}
	c := New(&countingEncoder{}, composite.New(s))
	c.SetText("refresh")
	applied := <-c.Refresh(context.Background())
	assert.True(t, applied)
	w, h := s.Size()
	assert.Equal(t, 29, w)
	assert.Equal(t, 29, h)

	c.SetText("")
	assert.True(t, <-c.Refresh(context.Background()))
	w, h = s.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestRefreshCanceled(t *testing.T) {
	r := &recorder{}
	c := New(&countingEncoder{}, r)
	c.SetText("cancel")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, <-c.Refresh(ctx))
	assert.Empty(t, r.results)
}

func TestUnknownFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	qrstudio.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer qrstudio.SetLogger(nil)

	enc := &countingEncoder{err: errors.New("canvas exploded")}
	c := New(enc, nil)
	c.SetText("x")
	res := c.Result()
	assert.Equal(t, qrstudio.FailureUnknown, res.Failure)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "canvas exploded")

	// Not retried.
	c.Result()
	assert.Equal(t, 1, enc.calls)
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(qrstudio.Failed(qrstudio.ErrEmpty)))
	assert.Equal(t, "QR codes can't hold that much data!", Message(qrstudio.Failed(qrstudio.ErrTooBig)))
	assert.Equal(t, "An error occurred.", Message(qrstudio.Failed(errors.New("x"))))
}
