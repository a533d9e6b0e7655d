package preview

import (
	"image"
	"sync"
	"time"

	"github.com/bobarin/reelcut/internal/models"
)

// Cache keys for the fixed text-scene backdrops. The dark backdrop backs
// white text, the light one backs black text.
const (
	TextBGDarkKey  = "bg:dark"
	TextBGLightKey = "bg:light"
)

// DefaultFrameRate drives the internal playback ticker.
const DefaultFrameRate = 30

// Engine renders the scene active at a playback time onto an RGBA surface
// and drives the playback clock. Two states: Stopped (no tick scheduled)
// and Playing (frame loop running). Seek is valid in either state.
type Engine struct {
	mu sync.Mutex

	width, height int
	fps           int

	scenes   []models.Scene
	starts   []float64 // cumulative scene start times
	total    float64   // sum of durations
	override float64   // optional floor on total duration (trimmed audio)

	cache *ImageCache
	fonts *FontSet

	clock    *internalClock
	external Clock

	playing bool
	stop    chan struct{}

	frameCB func(frame *image.RGBA, t float64)
	timeCB  func(t float64)
	endCB   func()

	// Last rendered text block, in canvas pixels, for drag hit-testing.
	lastTextBounds image.Rectangle
	lastTextScene  int
}

type EngineOption func(*Engine)

func WithFrameRate(fps int) EngineOption {
	return func(e *Engine) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

func WithAssets(cache *ImageCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

func WithFonts(fonts *FontSet) EngineOption {
	return func(e *Engine) { e.fonts = fonts }
}

// WithFrameCallback receives every rendered frame with its playback time.
func WithFrameCallback(cb func(frame *image.RGBA, t float64)) EngineOption {
	return func(e *Engine) { e.frameCB = cb }
}

// WithTimeCallback fires on every playback tick.
func WithTimeCallback(cb func(t float64)) EngineOption {
	return func(e *Engine) { e.timeCB = cb }
}

// WithEndCallback fires when playback reaches the end of the timeline.
func WithEndCallback(cb func()) EngineOption {
	return func(e *Engine) { e.endCB = cb }
}

func NewEngine(width, height int, opts ...EngineOption) *Engine {
	e := &Engine{
		width:  width,
		height: height,
		fps:    DefaultFrameRate,
		clock:  newInternalClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewImageCache("")
	}
	if e.fonts == nil {
		e.fonts = NewFontSet("")
	}
	return e
}

// SetScenes replaces the timeline. Safe while playing: the next frame picks
// up the new sequence.
func (e *Engine) SetScenes(scenes []models.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes = models.CloneScenes(scenes)
	e.starts = make([]float64, len(e.scenes))
	elapsed := 0.0
	for i := range e.scenes {
		e.starts[i] = elapsed
		elapsed += e.scenes[i].Duration
	}
	e.total = elapsed
}

// SetDurationOverride sets a floor on the total duration, typically the
// trimmed audio length. Zero removes it.
func (e *Engine) SetDurationOverride(seconds float64) {
	e.mu.Lock()
	e.override = seconds
	e.mu.Unlock()
}

// TotalDuration is max(sum of scene durations, override).
func (e *Engine) TotalDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalLocked()
}

func (e *Engine) totalLocked() float64 {
	if e.override > e.total {
		return e.override
	}
	return e.total
}

// SceneAt returns a copy of the scene whose interval contains t, with the
// local progress in [0,1). Past the last scene it returns nil — the caller
// decides whether to stop or loop.
func (e *Engine) SceneAt(t float64) (*models.Scene, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sceneAtLocked(t)
}

func (e *Engine) sceneAtLocked(t float64) (*models.Scene, float64) {
	for i := range e.scenes {
		if t >= e.starts[i] && t < e.starts[i]+e.scenes[i].Duration {
			s := e.scenes[i].Clone()
			return &s, (t - e.starts[i]) / e.scenes[i].Duration
		}
	}
	return nil, 0
}

// SetClock installs an external time source (the audio element's position),
// which fully replaces internal delta accumulation until cleared.
func (e *Engine) SetClock(c Clock) {
	e.mu.Lock()
	e.external = c
	e.mu.Unlock()
}

// ClearClock removes the external time source. The internal clock resumes
// from the last externally reported position so playback stays continuous.
func (e *Engine) ClearClock() {
	e.mu.Lock()
	if e.external != nil {
		e.clock.Seek(e.external())
		e.external = nil
	}
	e.mu.Unlock()
}

// CurrentTime reports the playback position from whichever clock is active.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	ext := e.external
	e.mu.Unlock()
	if ext != nil {
		return ext()
	}
	return e.clock.Now()
}

// IsPlaying reports the state machine position.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Play transitions Stopped→Playing and schedules the frame loop. No-op when
// already playing.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = true
	e.stop = make(chan struct{})
	stop := e.stop
	if e.external == nil {
		e.clock.Start()
	}
	e.mu.Unlock()

	go e.run(stop)
}

// Pause transitions Playing→Stopped and cancels the pending frame.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	close(e.stop)
	e.clock.Stop()
	e.mu.Unlock()
}

// Seek clamps t to [0, TotalDuration] and repositions the internal clock.
// While stopped it renders the sought frame immediately.
func (e *Engine) Seek(t float64) {
	e.mu.Lock()
	total := e.totalLocked()
	if t < 0 {
		t = 0
	}
	if t > total {
		t = total
	}
	e.clock.Seek(t)
	playing := e.playing
	e.mu.Unlock()

	if !playing {
		e.RenderFrame(t)
	}
}

// run is the frame loop: tick, read the clock, render, repeat. Reaching the
// end of the timeline stops playback and fires the end callback.
func (e *Engine) run(stop chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(e.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t := e.CurrentTime()

			e.RenderFrame(t)
			if cb := e.timeCB; cb != nil {
				cb(t)
			}

			if t >= e.TotalDuration() {
				e.mu.Lock()
				if e.playing {
					e.playing = false
					close(e.stop)
					e.clock.Stop()
				}
				e.mu.Unlock()
				if cb := e.endCB; cb != nil {
					cb()
				}
				return
			}
		}
	}
}

// Destroy stops playback, releases the external clock hook, and clears the
// image cache. Must run before a project switch so two clocks never race.
func (e *Engine) Destroy() {
	e.Pause()
	e.mu.Lock()
	e.external = nil
	cache := e.cache
	e.mu.Unlock()
	if cache != nil {
		cache.Destroy()
	}
}
