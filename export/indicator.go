package export

import (
	"context"
	"sync"
	"time"
)

// DefaultFeedback is how long the copied indicator stays on.
const DefaultFeedback = 500 * time.Millisecond

// Indicator tracks transient "copied" feedback. Each trigger cancels the
// pending reset and starts a new one, so timers never stack.
type Indicator struct {
	// Duration defaults to DefaultFeedback.
	Duration time.Duration
	// OnChange, if set, is called with every new state while the indicator
	// is locked. It must not call back into the Indicator.
	OnChange func(on bool)

	mu    sync.Mutex
	on    bool
	gen   uint64
	timer *time.Timer
}

// On reports whether the indicator is showing.
func (ind *Indicator) On() bool {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.on
}

// Trigger clears the indicator, runs action, and on success shows the
// indicator until the duration elapses. A failed action leaves it off.
func (ind *Indicator) Trigger(ctx context.Context, action func(context.Context) error) error {
	ind.mu.Lock()
	ind.gen++
	gen := ind.gen
	if ind.timer != nil {
		ind.timer.Stop()
		ind.timer = nil
	}
	ind.set(false)
	ind.mu.Unlock()

	if err := action(ctx); err != nil {
		return err
	}

	ind.mu.Lock()
	defer ind.mu.Unlock()
	if gen != ind.gen {
		// A newer trigger owns the indicator.
		return nil
	}
	ind.set(true)
	d := ind.Duration
	if d <= 0 {
		d = DefaultFeedback
	}
	ind.timer = time.AfterFunc(d, func() {
		ind.mu.Lock()
		defer ind.mu.Unlock()
		if gen != ind.gen {
			return
		}
		ind.timer = nil
		ind.set(false)
	})
	return nil
}

// set must be called with mu held.
func (ind *Indicator) set(on bool) {
	if ind.on == on {
		return
	}
	ind.on = on
	if ind.OnChange != nil {
		ind.OnChange(on)
	}
}
