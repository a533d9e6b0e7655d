package preview

import (
	"sync"
	"time"
)

// Clock reports the current playback position in seconds. The engine drives
// playback off whichever clock is installed: its own monotonic clock by
// default, or an external one (typically the audio element's current time)
// which replaces internal delta accumulation entirely. Both cases go through
// the same code path.
type Clock func() float64

// internalClock is the default time source: a monotonic wall-clock timer
// that can be paused and repositioned.
type internalClock struct {
	mu       sync.Mutex
	epoch    time.Time // wall time corresponding to position 0
	position float64   // frozen position while stopped
	running  bool
}

func newInternalClock() *internalClock {
	return &internalClock{}
}

func (c *internalClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.position
	}
	return time.Since(c.epoch).Seconds()
}

func (c *internalClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.epoch = time.Now().Add(-time.Duration(c.position * float64(time.Second)))
	c.running = true
}

func (c *internalClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.position = time.Since(c.epoch).Seconds()
	c.running = false
}

func (c *internalClock) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = t
	if c.running {
		c.epoch = time.Now().Add(-time.Duration(t * float64(time.Second)))
	}
}
