package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/vidplay/pkg/errors"
)

var (
	videoService     *videoServiceState
	videoServiceOnce sync.Once

	videoRegistry   = map[int64]*VideoBinding{}
	videoRegistryMu sync.RWMutex

	videoNextID atomic.Int64
)

// VideoBinding wraps a single native video surface and its transport
// operations. Multiple bindings may exist concurrently, each managing its own
// native player instance; all bindings share one service channel, with events
// routed back by player ID.
//
// Set callback fields (OnPosition, OnMetadata, OnEnded, OnPausedChanged,
// OnPlayDenied) before calling [VideoBinding.Load] or any other playback
// method to ensure no events are missed. Callbacks are delivered on the UI
// thread via [Dispatch].
//
// Play is asynchronous on the native side: a successful start is observed
// through OnPausedChanged(false), and an autoplay-policy refusal through
// OnPlayDenied. Callers that set state optimistically should reconcile on
// whichever arrives.
//
// All methods are safe for concurrent use. Call [VideoBinding.Dispose] to
// release the native player when the binding is no longer needed.
type VideoBinding struct {
	svc *videoServiceState
	mu  sync.RWMutex

	// guarded by mu
	id       int64
	paused   bool
	position time.Duration
	duration time.Duration
	volume   float64
	muted    bool

	// OnPosition is called when the playback position updates. The native
	// platform fires this roughly every 250ms while media is loaded.
	OnPosition func(position, duration time.Duration)

	// OnMetadata is called once the media's duration becomes known.
	OnMetadata func(duration time.Duration)

	// OnEnded is called when playback reaches the end of the media.
	OnEnded func()

	// OnPausedChanged is called when the real paused state changes, including
	// pauses triggered outside this binding (OS media keys, audio focus loss).
	OnPausedChanged func(paused bool)

	// OnPlayDenied is called when a play request is refused by the platform's
	// autoplay policy. Routine and non-fatal.
	OnPlayDenied func()
}

// NewVideoBinding creates a new video binding.
// Each binding manages its own native player instance.
func NewVideoBinding() *VideoBinding {
	svc := ensureVideoService()
	id := videoNextID.Add(1)

	b := &VideoBinding{
		id:     id,
		svc:    svc,
		paused: true,
		volume: 1.0,
	}

	videoRegistryMu.Lock()
	videoRegistry[id] = b
	videoRegistryMu.Unlock()

	return b
}

// ID returns the binding's player ID, or 0 after disposal.
func (b *VideoBinding) ID() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.id
}

// Paused returns the real paused state as last reported by native.
// A freshly created binding is paused.
func (b *VideoBinding) Paused() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.paused
}

// Position returns the current playback position.
func (b *VideoBinding) Position() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

// Duration returns the total media duration, or 0 while unknown.
func (b *VideoBinding) Duration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.duration
}

// Volume returns the last volume set through this binding.
func (b *VideoBinding) Volume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.volume
}

// Muted returns the last mute flag set through this binding.
func (b *VideoBinding) Muted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.muted
}

type videoServiceState struct {
	channel *MethodChannel
	events  *EventChannel
	errors  *EventChannel
}

func ensureVideoService() *videoServiceState {
	videoServiceOnce.Do(func() {
		svc := &videoServiceState{
			channel: NewMethodChannel("vidplay/video"),
			events:  NewEventChannel("vidplay/video/events"),
			errors:  NewEventChannel("vidplay/video/errors"),
		}

		// Shared event listener: routes events to the correct binding.
		svc.events.Listen(EventHandler{
			OnEvent: func(data any) {
				m, ok := data.(map[string]any)
				if !ok {
					return
				}
				playerID, _ := toInt64(m["playerId"])
				videoRegistryMu.RLock()
				b := videoRegistry[playerID]
				videoRegistryMu.RUnlock()
				if b == nil {
					return
				}
				b.handleEvent(parseString(m["event"]), m)
			},
			OnError: func(err error) {
				errors.Report(&errors.PlayerError{
					Op:      "VideoBinding.eventStream",
					Kind:    errors.KindPlatform,
					Channel: "vidplay/video/events",
					Err:     err,
				})
			},
		})

		// Shared error listener: playback errors are reported but never fatal.
		svc.errors.Listen(EventHandler{
			OnEvent: func(data any) {
				m, ok := data.(map[string]any)
				if !ok {
					return
				}
				playerID, _ := toInt64(m["playerId"])
				videoRegistryMu.RLock()
				b := videoRegistry[playerID]
				videoRegistryMu.RUnlock()
				if b == nil {
					return
				}

				code := parseString(m["code"])
				if code == ErrCodePlayDenied {
					b.handleEvent("playDenied", m)
					return
				}
				errors.Report(&errors.PlayerError{
					Op:      "VideoBinding.playback",
					Kind:    errors.KindPlayback,
					Channel: "vidplay/video/errors",
					Err:     NewChannelError(code, parseString(m["message"])),
				})
			},
			OnError: func(err error) {
				errors.Report(&errors.PlayerError{
					Op:      "VideoBinding.errorStream",
					Kind:    errors.KindPlatform,
					Channel: "vidplay/video/errors",
					Err:     err,
				})
			},
		})

		videoService = svc
	})
	return videoService
}

// handleEvent updates cached state and fires the matching callback on the
// UI thread.
func (b *VideoBinding) handleEvent(event string, m map[string]any) {
	switch event {
	case "position":
		positionMs, _ := toInt64(m["positionMs"])
		durationMs, _ := toInt64(m["durationMs"])
		pos := time.Duration(positionMs) * time.Millisecond
		dur := time.Duration(durationMs) * time.Millisecond

		b.mu.Lock()
		b.position = pos
		if dur > 0 {
			b.duration = dur
		}
		cb := b.OnPosition
		b.mu.Unlock()

		if cb != nil {
			Dispatch(func() { cb(pos, dur) })
		}

	case "metadata":
		durationMs, _ := toInt64(m["durationMs"])
		dur := time.Duration(durationMs) * time.Millisecond

		b.mu.Lock()
		b.duration = dur
		cb := b.OnMetadata
		b.mu.Unlock()

		if cb != nil {
			Dispatch(func() { cb(dur) })
		}

	case "ended":
		b.mu.Lock()
		b.paused = true
		cb := b.OnEnded
		b.mu.Unlock()

		if cb != nil {
			Dispatch(func() { cb() })
		}

	case "pausedChanged":
		paused := parseBool(m["paused"])

		b.mu.Lock()
		changed := paused != b.paused
		b.paused = paused
		cb := b.OnPausedChanged
		b.mu.Unlock()

		if changed && cb != nil {
			Dispatch(func() { cb(paused) })
		}

	case "playDenied":
		b.mu.Lock()
		b.paused = true
		cb := b.OnPlayDenied
		b.mu.Unlock()

		if cb != nil {
			Dispatch(func() { cb() })
		}
	}
}

// Load loads a new media URL, replacing the current media item. The native
// player prepares the new source immediately; position and duration reset
// until fresh metadata arrives.
func (b *VideoBinding) Load(url string) error {
	b.mu.Lock()
	id := b.id
	b.position = 0
	b.duration = 0
	b.paused = true
	b.mu.Unlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("load", map[string]any{
		"playerId": id,
		"url":      url,
	})
	return err
}

// Play requests playback to start or resume. The outcome is asynchronous:
// see OnPausedChanged and OnPlayDenied.
func (b *VideoBinding) Play() error {
	b.mu.RLock()
	id := b.id
	b.mu.RUnlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("play", map[string]any{
		"playerId": id,
	})
	return err
}

// Pause pauses playback.
func (b *VideoBinding) Pause() error {
	b.mu.RLock()
	id := b.id
	b.mu.RUnlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("pause", map[string]any{
		"playerId": id,
	})
	return err
}

// SeekTo seeks to the given position.
func (b *VideoBinding) SeekTo(position time.Duration) error {
	b.mu.RLock()
	id := b.id
	b.mu.RUnlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("seekTo", map[string]any{
		"playerId":   id,
		"positionMs": position.Milliseconds(),
	})
	return err
}

// SetVolume sets the playback volume (0.0 to 1.0). Values outside this range
// are clamped by the native player.
func (b *VideoBinding) SetVolume(volume float64) error {
	b.mu.Lock()
	id := b.id
	if id != 0 {
		b.volume = volume
	}
	b.mu.Unlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("setVolume", map[string]any{
		"playerId": id,
		"volume":   volume,
	})
	return err
}

// SetMuted sets whether audio output is muted.
func (b *VideoBinding) SetMuted(muted bool) error {
	b.mu.Lock()
	id := b.id
	if id != 0 {
		b.muted = muted
	}
	b.mu.Unlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("setMuted", map[string]any{
		"playerId": id,
		"muted":    muted,
	})
	return err
}

// RequestFullscreen asks the native surface to enter fullscreen.
// Best-effort: a refusal is not surfaced or retried.
func (b *VideoBinding) RequestFullscreen() error {
	b.mu.RLock()
	id := b.id
	b.mu.RUnlock()
	if id == 0 {
		return ErrDisposed
	}
	_, err := b.svc.channel.Invoke("requestFullscreen", map[string]any{
		"playerId": id,
	})
	return err
}

// Dispose releases the native player. After disposal the binding must not be
// reused and late events for its ID are dropped. Dispose is idempotent.
func (b *VideoBinding) Dispose() {
	b.mu.Lock()
	id := b.id
	b.id = 0
	b.mu.Unlock()
	if id == 0 {
		return
	}

	videoRegistryMu.Lock()
	delete(videoRegistry, id)
	videoRegistryMu.Unlock()

	b.svc.channel.Invoke("dispose", map[string]any{
		"playerId": id,
	})
}
