// Package options owns the generator's current text and encode options and
// keeps the live preview in step with them.
package options

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ericlevine/qrstudio"
)

// Applier receives results that are still current, typically a
// composite.Compositor.
type Applier interface {
	Apply(res qrstudio.EncodeResult)
}

// Request identifies one encode of a text and option set. Requests are
// numbered in issue order.
type Request struct {
	ID      uint64
	Text    string
	Options qrstudio.EncodeOptions
}

// Controller holds the current encode inputs and the result computed for
// them. Any change invalidates the result. It is safe for concurrent use.
type Controller struct {
	enc     qrstudio.Encoder
	applier Applier

	mu     sync.Mutex
	text   string
	opts   qrstudio.EncodeOptions
	seq    uint64
	result *qrstudio.EncodeResult
}

// New returns a Controller with the default options and no text. applier
// may be nil.
func New(enc qrstudio.Encoder, applier Applier) *Controller {
	return &Controller{
		enc:     enc,
		applier: applier,
		opts:    qrstudio.DefaultEncodeOptions(),
	}
}

// Text returns the current text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Options returns a copy of the current options.
func (c *Controller) Options() qrstudio.EncodeOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SetText replaces the text to encode.
func (c *Controller) SetText(text string) {
	c.update(func(_ string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		return text, o
	})
}

// SetECLevel selects the error correction level.
func (c *Controller) SetECLevel(level qrstudio.ECLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%w: error correction level %d", qrstudio.ErrInvalidOptions, int(level))
	}
	c.update(func(t string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		o.ECLevel = level
		return t, o
	})
	return nil
}

// SetMask selects an explicit mask or qrstudio.AutoMask.
func (c *Controller) SetMask(mask qrstudio.MaskPattern) error {
	if i, ok := mask.Index(); ok && (i < 0 || i >= qrstudio.NumMaskPatterns) {
		return fmt.Errorf("%w: mask %d out of range", qrstudio.ErrInvalidOptions, i)
	}
	c.update(func(t string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		o.Mask = mask
		return t, o
	})
	return nil
}

// SetPixelScale sets the export pixels per module.
func (c *Controller) SetPixelScale(scale int) error {
	if scale < 1 {
		return fmt.Errorf("%w: pixel scale %d", qrstudio.ErrInvalidOptions, scale)
	}
	c.update(func(t string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		o.PixelScale = scale
		return t, o
	})
	return nil
}

// ParsePixelScale sets the pixel scale from user input such as "10".
func (c *Controller) ParsePixelScale(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: pixel scale %q", qrstudio.ErrInvalidOptions, s)
	}
	return c.SetPixelScale(n)
}

// SetOpaque toggles the white export background.
func (c *Controller) SetOpaque(opaque bool) {
	c.update(func(t string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		o.Opaque = opaque
		return t, o
	})
}

// SetMargin toggles the export quiet zone.
func (c *Controller) SetMargin(margin bool) {
	c.update(func(t string, o qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		o.Margin = margin
		return t, o
	})
}

// SetOptions replaces every option at once.
func (c *Controller) SetOptions(opts qrstudio.EncodeOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	c.update(func(t string, _ qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions) {
		return t, opts
	})
	return nil
}

// update applies fn under the lock and invalidates the result when the
// inputs changed.
func (c *Controller) update(fn func(string, qrstudio.EncodeOptions) (string, qrstudio.EncodeOptions)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, opts := fn(c.text, c.opts)
	if text == c.text && opts == c.opts {
		return
	}
	c.text, c.opts = text, opts
	c.seq++
	c.result = nil
}

// Valid reports whether a result is cached for the current inputs.
func (c *Controller) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result != nil
}

// Result returns the result for the current inputs, encoding synchronously
// when the cached one was invalidated.
func (c *Controller) Result() qrstudio.EncodeResult {
	c.mu.Lock()
	if c.result != nil {
		res := *c.result
		c.mu.Unlock()
		return res
	}
	c.mu.Unlock()

	req := c.Request()
	res := c.Compute(req)
	c.Commit(req, res)
	return res
}

// Request snapshots the current inputs.
func (c *Controller) Request() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Request{ID: c.seq, Text: c.text, Options: c.opts}
}

// Compute encodes req. It does not touch controller state.
func (c *Controller) Compute(req Request) qrstudio.EncodeResult {
	res := c.enc.Encode(req.Text, req.Options)
	if res.Failure == qrstudio.FailureUnknown {
		qrstudio.Logger().Error("options: unknown encode failure", "err", res.Err, "request", req.ID)
	}
	return res
}

// Commit stores res and hands it to the applier if req is still the latest
// request for the current inputs. It reports whether res was applied.
func (c *Controller) Commit(req Request, res qrstudio.EncodeResult) bool {
	c.mu.Lock()
	if req.ID != c.seq || req.Text != c.text || req.Options != c.opts {
		latest := c.seq
		c.mu.Unlock()
		qrstudio.Logger().Debug("options: dropped stale result", "request", req.ID, "latest", latest)
		return false
	}
	c.result = &res
	c.mu.Unlock()
	if c.applier != nil {
		c.applier.Apply(res)
	}
	return true
}

// Refresh encodes the current inputs in the background. The returned
// channel yields whether the result was applied and is then closed. A
// canceled ctx drops the result.
func (c *Controller) Refresh(ctx context.Context) <-chan bool {
	req := c.Request()
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		res := c.Compute(req)
		if ctx.Err() != nil {
			done <- false
			return
		}
		done <- c.Commit(req, res)
	}()
	return done
}

// ActualMaskUsed reports the mask the encoder picked for res. It is only
// defined while the mask is automatic and res succeeded.
func (c *Controller) ActualMaskUsed(res qrstudio.EncodeResult) (int, bool) {
	c.mu.Lock()
	auto := c.opts.Mask.Auto()
	c.mu.Unlock()
	if !auto || !res.OK() {
		return 0, false
	}
	return res.Mask, true
}

// Message returns the inline message shown in place of the preview.
// Successful and empty results show nothing.
func Message(res qrstudio.EncodeResult) string {
	switch res.Failure {
	case qrstudio.FailureTooBig:
		return "QR codes can't hold that much data!"
	case qrstudio.FailureUnknown:
		return "An error occurred."
	default:
		return ""
	}
}
