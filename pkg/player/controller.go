// Package player implements the playback-state machines behind the two
// player modes: the single-video sidebar player (Controller) and the
// vertically scrolling feed player (FeedController).
//
// Both controllers follow a single-threaded cooperative model: every method
// must be called from the UI thread, and all media events arrive there via
// [platform.Dispatch]. The controllers treat the native binding as the
// source of truth for paused state; their own flags are an optimistic cache
// reconciled on every binding event.
package player

import (
	"time"

	"github.com/go-drift/vidplay/pkg/config"
	"github.com/go-drift/vidplay/pkg/platform"
	"github.com/go-drift/vidplay/pkg/playlist"
)

// State is the observable single-player playback state. Values are plain
// data; Snapshot returns a copy that stays valid after the controller is
// disposed.
type State struct {
	// Index is the current playlist position, always in [0, N).
	Index int
	// Playing is the play intent, reconciled against the binding's real
	// paused state as async play outcomes arrive.
	Playing  bool
	Position time.Duration
	// Duration is 0 while the media's metadata has not arrived yet.
	Duration time.Duration
	Volume   float64
	Muted    bool
	// ControlsVisible reports whether the transport overlay is shown.
	ControlsVisible bool
}

// Progress returns Position/Duration in [0,1], or 0 while the duration is
// unknown.
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration)
}

// Controller drives the single-video player over one media binding that is
// re-bound (source swapped and reloaded) on every index change.
//
// Controller is NOT thread-safe. All methods must be called from the UI
// thread; binding events already arrive there.
type Controller struct {
	list    *playlist.Playlist
	cfg     config.PlayerConfig
	binding *platform.VideoBinding

	state     State
	hideTimer Timer

	disposers []func()
	disposed  bool

	// OnChange, if set, is called with a state copy after every
	// transition. Set it before issuing commands.
	OnChange func(State)
}

// NewController creates a controller over the playlist, binds the first item
// and leaves it paused with controls visible.
func NewController(list *playlist.Playlist, cfg config.PlayerConfig) *Controller {
	c := &Controller{
		list: list,
		cfg:  cfg,
		state: State{
			Volume:          1.0,
			ControlsVisible: true,
		},
	}

	b := platform.NewVideoBinding()
	b.OnPosition = c.onPosition
	b.OnMetadata = c.onMetadata
	b.OnEnded = c.onEnded
	b.OnPausedChanged = c.onPausedChanged
	b.OnPlayDenied = c.onPlayDenied
	c.binding = b
	c.OnDispose(b.Dispose)
	c.OnDispose(c.stopHideTimer)

	b.Load(list.At(0).Source)
	return c
}

// Snapshot returns a copy of the current state. The copy does not change
// when the controller does, including after Dispose.
func (c *Controller) Snapshot() State {
	return c.state
}

// Binding returns the controller's media binding, for attaching the video
// surface.
func (c *Controller) Binding() *platform.VideoBinding {
	return c.binding
}

// TogglePlay flips playback based on the binding's real paused state, not
// the cached flag. Playing is set optimistically on play; the outcome
// arrives later through the binding's events.
func (c *Controller) TogglePlay() {
	if c.disposed || c.binding == nil {
		return
	}
	if c.binding.Paused() {
		c.binding.Play()
		c.setState(func() { c.state.Playing = true })
	} else {
		c.binding.Pause()
		c.setState(func() { c.state.Playing = false })
	}
}

// GoTo navigates to item k. Any integer is accepted; the index is
// normalized with a proper modulo, so negative values wrap backwards.
// Navigation always carries play intent: the new source is loaded and
// playback requested, with denial tolerated silently.
func (c *Controller) GoTo(k int) {
	if c.disposed {
		return
	}
	n := c.list.Len()
	idx := ((k % n) + n) % n

	c.setState(func() {
		c.state.Index = idx
		c.state.Playing = true
		c.state.Position = 0
		c.state.Duration = 0
	})

	c.binding.Load(c.list.At(idx).Source)
	c.binding.Play()
}

// Next and Prev are GoTo relative to the current index.
func (c *Controller) Next() { c.GoTo(c.state.Index + 1) }
func (c *Controller) Prev() { c.GoTo(c.state.Index - 1) }

// Seek sets the position to ratio of the media's duration. The caller
// guarantees ratio is in [0,1] (the router derives it from clicks inside
// the progress track). While the duration is unknown the seek is a no-op.
func (c *Controller) Seek(ratio float64) {
	if c.disposed || c.binding == nil {
		return
	}
	dur := c.binding.Duration()
	if dur <= 0 {
		return
	}
	pos := time.Duration(ratio * float64(dur))
	c.binding.SeekTo(pos)
	c.setState(func() { c.state.Position = pos })
}

// AdjustVolume changes the volume by delta, clamped to [0,1].
func (c *Controller) AdjustVolume(delta float64) {
	if c.disposed || c.binding == nil {
		return
	}
	v := c.state.Volume + delta
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	c.binding.SetVolume(v)
	c.setState(func() { c.state.Volume = v })
}

// SetMuted applies the mute flag to the binding and the state.
func (c *Controller) SetMuted(muted bool) {
	if c.disposed || c.binding == nil {
		return
	}
	c.binding.SetMuted(muted)
	c.setState(func() { c.state.Muted = muted })
}

// ToggleMute flips the mute flag.
func (c *Controller) ToggleMute() { c.SetMuted(!c.state.Muted) }

// Fullscreen asks the native surface to enter fullscreen. Best-effort:
// failure is not surfaced or retried.
func (c *Controller) Fullscreen() {
	if c.disposed || c.binding == nil {
		return
	}
	c.binding.RequestFullscreen()
}

// PointerMoved shows the transport controls and re-arms the inactivity
// timer. The previous timer is always cancelled first, so repeated movement
// extends the window instead of stacking timers. On expiry the controls
// hide only while playing; a paused player keeps them visible indefinitely.
func (c *Controller) PointerMoved() {
	if c.disposed {
		return
	}
	if !c.state.ControlsVisible {
		c.setState(func() { c.state.ControlsVisible = true })
	}
	c.stopHideTimer()
	c.hideTimer = clock.AfterFunc(c.cfg.ControlsHide.Std(), c.hideControls)
}

func (c *Controller) hideControls() {
	if c.disposed {
		return
	}
	c.hideTimer = nil
	if c.state.Playing {
		c.setState(func() { c.state.ControlsVisible = false })
	}
}

func (c *Controller) stopHideTimer() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

// Dispose tears the controller down: the hide timer is cancelled and the
// binding released, in reverse registration order. Late events arriving
// after Dispose mutate nothing. Dispose is idempotent.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for i := len(c.disposers) - 1; i >= 0; i-- {
		c.disposers[i]()
	}
	c.disposers = nil
}

// OnDispose registers cleanup to run when the controller is disposed, in
// reverse registration order. If the controller is already disposed the
// cleanup runs immediately. The router uses this to guarantee its key
// subscription is released on teardown.
func (c *Controller) OnDispose(fn func()) {
	if fn == nil {
		return
	}
	if c.disposed {
		fn()
		return
	}
	c.disposers = append(c.disposers, fn)
}

// setState runs fn and notifies OnChange. No-op after disposal, which is
// what shields discarded state from late async events.
func (c *Controller) setState(fn func()) {
	if c.disposed {
		return
	}
	fn()
	if c.OnChange != nil {
		c.OnChange(c.state)
	}
}

func (c *Controller) onPosition(position, duration time.Duration) {
	c.setState(func() {
		c.state.Position = position
		if duration > 0 {
			c.state.Duration = duration
		}
	})
}

func (c *Controller) onMetadata(duration time.Duration) {
	c.setState(func() { c.state.Duration = duration })
}

// onEnded auto-advances. GoTo wraps, so the last item loops back to the
// first.
func (c *Controller) onEnded() {
	if c.disposed {
		return
	}
	c.GoTo(c.state.Index + 1)
}

// onPausedChanged reconciles the optimistic Playing flag with the real
// paused state, including pauses triggered outside the player (OS media
// keys, audio focus loss).
func (c *Controller) onPausedChanged(paused bool) {
	c.setState(func() { c.state.Playing = !paused })
}

// onPlayDenied reverts an optimistic play to Paused. Autoplay denial is
// routine; nothing is surfaced to the user.
func (c *Controller) onPlayDenied() {
	c.setState(func() { c.state.Playing = false })
}
