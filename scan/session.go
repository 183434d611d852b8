// Package scan drives the scanner view: one-shot still images and a
// continuous camera session, with the state the view renders.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/overlay"
)

// Kind is the phase of the scanner view.
type Kind int

const (
	AwaitingImage Kind = iota
	Scanning
	NoResult
	Found
)

func (k Kind) String() string {
	switch k {
	case AwaitingImage:
		return "awaiting-image"
	case Scanning:
		return "scanning"
	case NoResult:
		return "no-result"
	case Found:
		return "result"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is what the view renders. Width and Height are the frame size;
// Result is only set for Found.
type State struct {
	Kind          Kind
	Width, Height float64
	Result        *qrstudio.ScanResult
}

// Status returns the status line for s, empty when none is shown.
func (s State) Status() string {
	switch s.Kind {
	case Scanning:
		return "Loading..."
	case NoResult:
		return "No QR code found."
	case Found:
		return s.Result.Text
	}
	return ""
}

// Camera preferences understood by every FrameSource besides device IDs.
const (
	CameraUser        = "user"
	CameraEnvironment = "environment"
)

// Config is per-session scanner configuration.
type Config struct {
	// PreferredCamera is CameraUser, CameraEnvironment or a device ID.
	PreferredCamera string
	// OnChange, if set, receives every new state while the session is
	// locked. It must not call back into the Session.
	OnChange func(State)
}

// FrameSource is a live camera. Next may run concurrently with SetCamera.
type FrameSource interface {
	// Start opens camera, a preference or device ID.
	Start(ctx context.Context, camera string) error
	// SetCamera switches a started source to another camera.
	SetCamera(ctx context.Context, camera string) error
	// Stop releases the camera.
	Stop()
	// Next blocks for the next frame.
	Next(ctx context.Context) (image.Image, error)
	// Size returns the frame dimensions.
	Size() (width, height int)
	// Mirrored reports whether frames are displayed flipped.
	Mirrored() bool
	// Region is the part of the frame being scanned.
	Region() qrstudio.Region
}

// Session is the scanner view's state machine. It is safe for concurrent
// use.
type Session struct {
	scanner qrstudio.Scanner
	src     FrameSource

	// life serializes camera start, switch and stop. It is taken before mu.
	life sync.Mutex

	mu     sync.Mutex
	cfg    Config
	state  State
	media  *overlay.Media
	region qrstudio.Region
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a session awaiting an image. src may be nil when no camera
// exists.
func New(scanner qrstudio.Scanner, src FrameSource, cfg Config) *Session {
	if cfg.PreferredCamera == "" {
		cfg.PreferredCamera = CameraEnvironment
	}
	return &Session{scanner: scanner, src: src, cfg: cfg}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PreferredCamera returns the camera the session starts with.
func (s *Session) PreferredCamera() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.PreferredCamera
}

// setLocked must be called with mu held.
func (s *Session) setLocked(st State) {
	s.state = st
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(st)
	}
}

// ScanImage stops any camera and decodes img once.
func (s *Session) ScanImage(ctx context.Context, img image.Image) State {
	s.Stop()
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	s.mu.Lock()
	media := overlay.MediaImage
	s.media = &media
	s.setLocked(State{Kind: Scanning, Width: w, Height: h})
	s.mu.Unlock()

	res, err := s.scan(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		qrstudio.Logger().Debug("scan: no result", "err", err)
		s.setLocked(State{Kind: NoResult, Width: w, Height: h})
	} else {
		s.setLocked(State{Kind: Found, Width: w, Height: h, Result: res})
	}
	return s.state
}

func (s *Session) scan(ctx context.Context, img image.Image) (*qrstudio.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.scanner.ScanImage(img)
}

// StartCamera opens the preferred camera and scans its frames until Stop.
// A camera failure returns the view to AwaitingImage.
func (s *Session) StartCamera(ctx context.Context) error {
	if s.src == nil {
		return fmt.Errorf("%w: no camera", qrstudio.ErrCamera)
	}
	s.life.Lock()
	defer s.life.Unlock()
	s.stop()
	camera := s.PreferredCamera()
	if err := s.src.Start(ctx, camera); err != nil {
		qrstudio.Logger().Warn("scan: camera start failed", "camera", camera, "err", err)
		s.mu.Lock()
		s.setLocked(State{Kind: AwaitingImage})
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", qrstudio.ErrCamera, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.scanningLocked()
	s.mu.Unlock()

	go s.run(loopCtx, done)
	return nil
}

// scanningLocked must be called with mu held.
func (s *Session) scanningLocked() {
	w, h := s.src.Size()
	media := overlay.MediaVideo
	s.media = &media
	s.region = s.src.Region()
	s.setLocked(State{Kind: Scanning, Width: float64(w), Height: float64(h)})
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		frame, err := s.src.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				qrstudio.Logger().Warn("scan: frame source failed", "err", err)
			}
			return
		}
		res, err := s.scanner.ScanImage(frame)
		if errors.Is(err, qrstudio.ErrNotFound) {
			continue
		} else if err != nil {
			qrstudio.Logger().Debug("scan: frame not decoded", "err", err)
			continue
		}
		res.Mirrored = s.src.Mirrored()

		s.mu.Lock()
		if ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.setLocked(State{Kind: Found, Width: s.state.Width, Height: s.state.Height, Result: res})
		s.mu.Unlock()
	}
}

// Live reports whether the camera is running.
func (s *Session) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// SetCamera records camera as preferred and switches to it if live.
func (s *Session) SetCamera(ctx context.Context, camera string) error {
	s.life.Lock()
	defer s.life.Unlock()
	s.mu.Lock()
	s.cfg.PreferredCamera = camera
	live := s.cancel != nil
	s.mu.Unlock()
	if !live {
		return nil
	}
	if err := s.src.SetCamera(ctx, camera); err != nil {
		qrstudio.Logger().Warn("scan: camera switch failed", "camera", camera, "err", err)
		return fmt.Errorf("%w: %w", qrstudio.ErrCamera, err)
	}
	s.mu.Lock()
	s.scanningLocked()
	s.mu.Unlock()
	return nil
}

// Stop ends the camera session. A view still scanning returns to
// AwaitingImage; a result stays visible.
func (s *Session) Stop() {
	s.life.Lock()
	defer s.life.Unlock()
	s.stop()
}

// stop must be called with life held.
func (s *Session) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	wasVideo := s.media != nil && *s.media == overlay.MediaVideo
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.src.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if wasVideo {
		s.media = nil
	}
	if s.state.Kind == Scanning {
		s.setLocked(State{Kind: AwaitingImage})
	}
}

// Overlay returns what to draw over the frame. Nothing is drawn before
// the first picture or once a camera has been stopped.
func (s *Session) Overlay() overlay.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.media == nil {
		return overlay.Overlay{}
	}
	media := *s.media
	var region *qrstudio.Region
	if media == overlay.MediaVideo {
		r := s.region
		region = &r
	}
	res := s.state.Result
	mirrored := res != nil && res.Mirrored
	return overlay.Compute(s.state.Width, s.state.Height, res, media, mirrored, region)
}
