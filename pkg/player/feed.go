package player

import (
	"github.com/go-drift/vidplay/pkg/config"
	"github.com/go-drift/vidplay/pkg/platform"
	"github.com/go-drift/vidplay/pkg/playlist"
)

// FeedState is the observable feed-player state. Playing holds one slot per
// playlist item, all initialized to false at mount.
type FeedState struct {
	// Index is the active item as decided by the visibility gate.
	Index int
	// Playing is the per-slot play flag, indexed 0..N-1.
	Playing []bool
	// Muted is the single cross-cutting mute flag shared by every binding.
	Muted bool
	// FlashIndex is the item currently showing the transient paused icon,
	// or -1 for none.
	FlashIndex int
}

// FeedController drives the vertically scrolling feed player. Each item has
// its own media binding, mounted when the item enters the view tree and
// kept for the rest of the session. Play and pause authority over a slot
// belongs to the visibility gate; the user's toggle only acts on top of it.
//
// FeedController is NOT thread-safe. All methods must be called from the UI
// thread; binding and visibility events already arrive there.
type FeedController struct {
	list *playlist.Playlist
	cfg  config.PlayerConfig

	bindings     []*platform.VideoBinding
	observations []*platform.VisibilityObservation

	state      FeedState
	flashTimer Timer
	disposers  []func()
	disposed   bool

	// OnChange, if set, is called with a state copy after every
	// transition.
	OnChange func(FeedState)

	// OnScrollRequest is invoked when the feed should move to an item,
	// after clamping. The scroll container owns the motion; the active
	// index only changes once the visibility gate sees the item arrive.
	OnScrollRequest func(index int)
}

// NewFeedController creates a feed controller over the playlist. Bindings
// are not created here; Mount attaches one per item as the presentation
// layer brings items into the view tree.
func NewFeedController(list *playlist.Playlist, cfg config.PlayerConfig) *FeedController {
	return &FeedController{
		list:     list,
		cfg:      cfg,
		bindings: make([]*platform.VideoBinding, list.Len()),
		state: FeedState{
			Playing:    make([]bool, list.Len()),
			FlashIndex: -1,
		},
	}
}

// Mount creates the binding for item i and starts watching the item's view
// for viewport intersection at the configured threshold. Mounting the same
// index twice is a no-op. The binding inherits the current global mute flag
// so a mid-session mount cannot diverge from it.
func (f *FeedController) Mount(i int, viewID int64) {
	if f.disposed || i < 0 || i >= f.list.Len() || f.bindings[i] != nil {
		return
	}

	b := platform.NewVideoBinding()
	b.OnEnded = func() { f.onEnded(i) }
	b.OnPausedChanged = func(paused bool) { f.onPausedChanged(i, paused) }
	b.OnPlayDenied = func() { f.onPlayDenied(i) }
	f.bindings[i] = b

	b.Load(f.list.At(i).Source)
	b.SetMuted(f.state.Muted)

	obs := platform.ObserveVisibility(viewID, f.cfg.VisibilityThreshold, func(intersecting bool) {
		if intersecting {
			f.activate(i)
		} else {
			f.deactivate(i)
		}
	})
	f.observations = append(f.observations, obs)
}

// Snapshot returns a copy of the current state, with its own Playing slice.
// The copy does not change when the controller does, including after
// Dispose.
func (f *FeedController) Snapshot() FeedState {
	s := f.state
	s.Playing = make([]bool, len(f.state.Playing))
	copy(s.Playing, f.state.Playing)
	return s
}

// Binding returns the media binding for item i, or nil while unmounted.
func (f *FeedController) Binding(i int) *platform.VideoBinding {
	if i < 0 || i >= len(f.bindings) {
		return nil
	}
	return f.bindings[i]
}

// ScrollToIndex requests a scroll to item k, clamped to [0, N-1]. There is
// no wraparound at the ends; the feed behaves like a bounded deck. The
// active index is not changed here, it follows from the visibility gate
// once the target item crosses the threshold.
func (f *FeedController) ScrollToIndex(k int) {
	if f.disposed {
		return
	}
	n := f.list.Len()
	if k < 0 {
		k = 0
	} else if k > n-1 {
		k = n - 1
	}
	if f.OnScrollRequest != nil {
		f.OnScrollRequest(k)
	}
}

// TogglePlay flips playback of item i based on its binding's real paused
// state. Pausing flashes the paused icon for the configured delay; the
// flash is cleared early if the item resumes, so the icon always follows
// the real playing condition rather than stale timer state. Unmounted
// bindings are a no-op.
func (f *FeedController) TogglePlay(i int) {
	if f.disposed || i < 0 || i >= len(f.bindings) {
		return
	}
	b := f.bindings[i]
	if b == nil {
		return
	}

	if b.Paused() {
		b.Play()
		f.setState(func() {
			f.state.Playing[i] = true
			f.clearFlash()
		})
	} else {
		b.Pause()
		f.setState(func() {
			f.state.Playing[i] = false
			f.state.FlashIndex = i
		})
		f.armFlashTimer()
	}
}

// SetMuted applies the mute flag to every mounted binding in one
// synchronous pass, then updates the state flag. No binding is left
// observable in a different mute state than the global flag.
func (f *FeedController) SetMuted(muted bool) {
	if f.disposed {
		return
	}
	for _, b := range f.bindings {
		if b != nil {
			b.SetMuted(muted)
		}
	}
	f.setState(func() { f.state.Muted = muted })
}

// ToggleMute flips the global mute flag.
func (f *FeedController) ToggleMute() { f.SetMuted(!f.state.Muted) }

// activate is the visibility gate's enter transition: the item becomes the
// active index, restarts from the beginning and plays optimistically. When
// several items cross the threshold in one burst, handlers run in emission
// order and the last activation wins.
func (f *FeedController) activate(i int) {
	if f.disposed || i < 0 || i >= len(f.bindings) {
		return
	}
	b := f.bindings[i]
	if b == nil {
		return
	}
	b.SeekTo(0)
	b.Play()
	f.setState(func() {
		f.state.Index = i
		f.state.Playing[i] = true
	})
}

// deactivate is the gate's exit transition: the item pauses as it leaves
// the viewport.
func (f *FeedController) deactivate(i int) {
	if f.disposed || i < 0 || i >= len(f.bindings) {
		return
	}
	if b := f.bindings[i]; b != nil {
		b.Pause()
	}
	f.setState(func() { f.state.Playing[i] = false })
}

// onEnded auto-advances when the active item finishes. ScrollToIndex
// clamps, so the last item stays put instead of wrapping.
func (f *FeedController) onEnded(i int) {
	if f.disposed || i != f.state.Index {
		return
	}
	f.setState(func() { f.state.Playing[i] = false })
	f.ScrollToIndex(i + 1)
}

func (f *FeedController) onPausedChanged(i int, paused bool) {
	f.setState(func() {
		f.state.Playing[i] = !paused
		if !paused && f.state.FlashIndex == i {
			f.clearFlash()
		}
	})
}

func (f *FeedController) onPlayDenied(i int) {
	f.setState(func() { f.state.Playing[i] = false })
}

// armFlashTimer (re)schedules the paused-icon auto-hide. The previous timer
// is always cancelled first; flashes never stack.
func (f *FeedController) armFlashTimer() {
	if f.flashTimer != nil {
		f.flashTimer.Stop()
	}
	f.flashTimer = clock.AfterFunc(f.cfg.PausedFlash.Std(), func() {
		if f.disposed {
			return
		}
		f.flashTimer = nil
		f.setState(func() { f.state.FlashIndex = -1 })
	})
}

// clearFlash hides the paused icon and cancels its timer. Callers wrap it
// in setState.
func (f *FeedController) clearFlash() {
	f.state.FlashIndex = -1
	if f.flashTimer != nil {
		f.flashTimer.Stop()
		f.flashTimer = nil
	}
}

// Dispose tears the feed down: visibility observations are cancelled, the
// flash timer stopped and every mounted binding released. Late events
// arriving after Dispose mutate nothing. Dispose is idempotent.
func (f *FeedController) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true

	for _, obs := range f.observations {
		obs.Cancel()
	}
	f.observations = nil

	if f.flashTimer != nil {
		f.flashTimer.Stop()
		f.flashTimer = nil
	}

	for i, b := range f.bindings {
		if b != nil {
			b.Dispose()
			f.bindings[i] = nil
		}
	}

	for i := len(f.disposers) - 1; i >= 0; i-- {
		f.disposers[i]()
	}
	f.disposers = nil
}

// OnDispose registers cleanup to run when the feed is disposed, in reverse
// registration order. If the feed is already disposed the cleanup runs
// immediately.
func (f *FeedController) OnDispose(fn func()) {
	if fn == nil {
		return
	}
	if f.disposed {
		fn()
		return
	}
	f.disposers = append(f.disposers, fn)
}

func (f *FeedController) setState(fn func()) {
	if f.disposed {
		return
	}
	fn()
	if f.OnChange != nil {
		f.OnChange(f.Snapshot())
	}
}
