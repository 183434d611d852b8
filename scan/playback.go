package scan

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/ericlevine/qrstudio"
)

// Playback is a FrameSource that replays still frames, for recorded input
// and tests. Every camera shows the same frames; CameraUser is mirrored.
type Playback struct {
	// Frames are returned in order, looping.
	Frames []image.Image
	// Interval paces Next. Zero returns frames immediately.
	Interval time.Duration
	// Fail, if set, is returned by Start.
	Fail error

	mu       sync.Mutex
	camera   string
	started  bool
	next     int
	mirrored bool
}

var _ FrameSource = (*Playback)(nil)

// Start implements FrameSource.
func (p *Playback) Start(ctx context.Context, camera string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Fail != nil {
		return p.Fail
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	p.selectLocked(camera)
	return nil
}

// SetCamera implements FrameSource.
func (p *Playback) SetCamera(ctx context.Context, camera string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selectLocked(camera)
	return nil
}

func (p *Playback) selectLocked(camera string) {
	p.camera = camera
	p.mirrored = camera == CameraUser
}

// Camera returns the selected camera.
func (p *Playback) Camera() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camera
}

// Stop implements FrameSource.
func (p *Playback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
}

// Next implements FrameSource. It blocks until ctx is done when there are
// no frames.
func (p *Playback) Next(ctx context.Context) (image.Image, error) {
	p.mu.Lock()
	n := len(p.Frames)
	p.mu.Unlock()
	if n == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.Interval > 0 {
		t := time.NewTimer(p.Interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.Frames[p.next%n]
	p.next++
	return f, nil
}

// Size implements FrameSource using the first frame.
func (p *Playback) Size() (width, height int) {
	if len(p.Frames) == 0 {
		return 0, 0
	}
	b := p.Frames[0].Bounds()
	return b.Dx(), b.Dy()
}

// Mirrored implements FrameSource.
func (p *Playback) Mirrored() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mirrored
}

// Region implements FrameSource. It is the centred square covering two
// thirds of the shorter side.
func (p *Playback) Region() qrstudio.Region {
	w, h := p.Size()
	side := float64(min(w, h)) * 2 / 3
	return qrstudio.Region{
		X:      (float64(w) - side) / 2,
		Y:      (float64(h) - side) / 2,
		Width:  side,
		Height: side,
	}
}
