package player

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/vidplay/pkg/config"
	"github.com/go-drift/vidplay/pkg/platform"
	"github.com/go-drift/vidplay/pkg/playlist"
)

// manualClock lets tests fire the controls-hide and paused-flash timers
// deterministically.
type manualClock struct {
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	when    time.Time
	fn      func()
	fired   bool
	stopped bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{when: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and fires due timers in scheduling order.
func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.when.After(c.now) {
			t.fired = true
			t.fn()
		}
	}
}

// recordingBridge is a NativeBridge that records every invoked method.
type recordingBridge struct {
	mu    sync.Mutex
	calls []string
}

func (b *recordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, method)
	b.mu.Unlock()
	return platform.DefaultCodec.Encode(nil)
}

func (b *recordingBridge) StartEventStream(string) error { return nil }
func (b *recordingBridge) StopEventStream(string) error  { return nil }

func (b *recordingBridge) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.calls {
		if m == method {
			n++
		}
	}
	return n
}

func setupTest(t *testing.T) (*manualClock, *recordingBridge) {
	t.Helper()
	platform.SetupTestBridge(t.Cleanup)
	bridge := &recordingBridge{}
	platform.SetNativeBridge(bridge)

	clk := newManualClock()
	prev := SetClock(clk)
	t.Cleanup(func() { SetClock(prev) })
	return clk, bridge
}

func testPlaylist(t *testing.T, n int) *playlist.Playlist {
	t.Helper()
	items := make([]playlist.Item, n)
	for i := range items {
		items[i] = playlist.Item{
			Title:  fmt.Sprintf("clip %d", i),
			Source: fmt.Sprintf("https://example.com/%d.mp4", i),
		}
	}
	list, err := playlist.New(items)
	if err != nil {
		t.Fatalf("playlist.New: %v", err)
	}
	return list
}

func testConfig() config.PlayerConfig {
	return config.PlayerConfig{
		ControlsHide:        config.Duration(2500 * time.Millisecond),
		PausedFlash:         config.Duration(800 * time.Millisecond),
		VisibilityThreshold: 0.6,
		VolumeStep:          0.05,
	}
}

// sendVideoEvent simulates a native player event for one binding.
func sendVideoEvent(t *testing.T, playerID int64, event string, extra map[string]any) {
	t.Helper()
	payload := map[string]any{"playerId": playerID, "event": event}
	for k, v := range extra {
		payload[k] = v
	}
	data, err := platform.DefaultCodec.Encode(payload)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	if err := platform.HandleEvent("vidplay/video/events", data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

// sendPlayDenied simulates the platform refusing a play request.
func sendPlayDenied(t *testing.T, playerID int64) {
	t.Helper()
	data, err := platform.DefaultCodec.Encode(map[string]any{
		"playerId": playerID,
		"code":     platform.ErrCodePlayDenied,
		"message":  "autoplay blocked",
	})
	if err != nil {
		t.Fatalf("encode error event: %v", err)
	}
	if err := platform.HandleEvent("vidplay/video/errors", data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}
