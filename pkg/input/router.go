// Package input normalizes user gestures into player commands: pointer
// clicks on transport controls and the progress track, window-scoped
// keyboard shortcuts, and pointer movement over the video area.
package input

import (
	"github.com/go-drift/vidplay/pkg/platform"
	"github.com/go-drift/vidplay/pkg/player"
)

// Rect is an element bounding box in window coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Router maps raw input to controller commands. Key semantics differ by
// mode: the single player uses Left/Right for prev/next and Up/Down for
// volume; the feed uses Up/Down or J/K for scroll navigation. Exactly one
// of the two controllers is set.
//
// Router is NOT thread-safe; like the controllers it lives on the UI
// thread.
type Router struct {
	single *player.Controller
	feed   *player.FeedController

	volumeStep float64
	keys       *platform.Subscription
	scoped     bool
}

// NewSingleRouter creates a router for the single-video player.
// volumeStep is the volume delta per Up/Down press.
func NewSingleRouter(c *player.Controller, volumeStep float64) *Router {
	return &Router{single: c, volumeStep: volumeStep}
}

// NewFeedRouter creates a router for the feed player.
func NewFeedRouter(f *player.FeedController) *Router {
	return &Router{feed: f}
}

// Attach acquires the window-scoped key subscription. The scope lasts until
// Detach; attaching twice first releases the old subscription so exactly
// one is ever active. The first Attach also hooks Detach into the
// controller's dispose, so the subscription cannot outlive the player.
func (r *Router) Attach() {
	r.Detach()
	r.keys = platform.ListenKeys(func(key string) { r.HandleKey(key) })

	if !r.scoped {
		r.scoped = true
		if r.single != nil {
			r.single.OnDispose(r.Detach)
		} else if r.feed != nil {
			r.feed.OnDispose(r.Detach)
		}
	}
}

// Detach releases the key subscription. Must run on player teardown so
// stale handlers cannot act after unmount. Safe to call when not attached.
func (r *Router) Detach() {
	if r.keys != nil {
		r.keys.Cancel()
		r.keys = nil
	}
}

// HandleKey routes one key press. Returns true when the key was handled,
// which the embedder uses to suppress default behavior (Space must not
// scroll the page).
func (r *Router) HandleKey(key string) bool {
	if r.single != nil {
		return r.handleSingleKey(key)
	}
	if r.feed != nil {
		return r.handleFeedKey(key)
	}
	return false
}

func (r *Router) handleSingleKey(key string) bool {
	c := r.single
	switch key {
	case platform.KeySpace:
		c.TogglePlay()
	case platform.KeyArrowLeft:
		c.Prev()
	case platform.KeyArrowRight:
		c.Next()
	case platform.KeyArrowUp:
		c.AdjustVolume(r.volumeStep)
	case platform.KeyArrowDown:
		c.AdjustVolume(-r.volumeStep)
	case platform.KeyM:
		c.ToggleMute()
	case platform.KeyF:
		c.Fullscreen()
	default:
		return false
	}
	return true
}

func (r *Router) handleFeedKey(key string) bool {
	f := r.feed
	idx := f.Snapshot().Index
	switch key {
	case platform.KeySpace:
		f.TogglePlay(idx)
	case platform.KeyArrowUp, platform.KeyK:
		f.ScrollToIndex(idx - 1)
	case platform.KeyArrowDown, platform.KeyJ:
		f.ScrollToIndex(idx + 1)
	case platform.KeyM:
		f.ToggleMute()
	default:
		return false
	}
	return true
}

// TransportTap is a click on the play/pause button.
func (r *Router) TransportTap() {
	if r.single != nil {
		r.single.TogglePlay()
	} else if r.feed != nil {
		r.feed.TogglePlay(r.feed.Snapshot().Index)
	}
}

// PrevTap and NextTap are clicks on the prev/next buttons.
func (r *Router) PrevTap() {
	if r.single != nil {
		r.single.Prev()
	} else if r.feed != nil {
		r.feed.ScrollToIndex(r.feed.Snapshot().Index - 1)
	}
}

func (r *Router) NextTap() {
	if r.single != nil {
		r.single.Next()
	} else if r.feed != nil {
		r.feed.ScrollToIndex(r.feed.Snapshot().Index + 1)
	}
}

// ProgressClick is a pointer click at (x, y) with the progress track's
// bounding box. Clicks outside the track are rejected before any ratio is
// derived, so the seek ratio is in [0,1] by construction. Returns true when
// a seek was issued. Single-player only; the feed has no progress track.
func (r *Router) ProgressClick(x, y float64, track Rect) bool {
	if r.single == nil || track.Width <= 0 {
		return false
	}
	if !track.Contains(x, y) {
		return false
	}
	r.single.Seek((x - track.X) / track.Width)
	return true
}

// PointerMoved is pointer movement over the video area; it keeps the
// transport controls visible. Single-player only.
func (r *Router) PointerMoved() {
	if r.single != nil {
		r.single.PointerMoved()
	}
}
