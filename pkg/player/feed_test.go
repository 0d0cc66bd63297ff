package player

import (
	"testing"
	"time"

	"github.com/go-drift/vidplay/pkg/platform"
)

// newTestFeed mounts all n items with view IDs 100+i.
func newTestFeed(t *testing.T, n int) *FeedController {
	t.Helper()
	f := NewFeedController(testPlaylist(t, n), testConfig())
	for i := 0; i < n; i++ {
		f.Mount(i, int64(100+i))
	}
	t.Cleanup(f.Dispose)
	return f
}

// sendIntersection simulates the view for item i crossing the visibility
// threshold.
func sendIntersection(t *testing.T, i int, intersecting bool) {
	t.Helper()
	data, err := platform.DefaultCodec.Encode(map[string]any{
		"viewId":       int64(100 + i),
		"intersecting": intersecting,
	})
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	if err := platform.HandleEvent("vidplay/visibility/events", data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestScrollToIndexClamps(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 5)

	var requests []int
	f.OnScrollRequest = func(i int) { requests = append(requests, i) }

	for _, tc := range []struct {
		k    int
		want int
	}{
		{-3, 0},
		{0, 0},
		{2, 2},
		{4, 4},
		{99, 4},
	} {
		f.ScrollToIndex(tc.k)
		if got := requests[len(requests)-1]; got != tc.want {
			t.Errorf("ScrollToIndex(%d): requested %d, want %d", tc.k, got, tc.want)
		}
	}

	if f.Snapshot().Index != 0 {
		t.Error("ScrollToIndex must not change the active index directly")
	}
}

func TestVisibilityGateActivatesAndDeactivates(t *testing.T) {
	_, bridge := setupTest(t)
	f := newTestFeed(t, 3)

	sendIntersection(t, 1, true)

	s := f.Snapshot()
	if s.Index != 1 {
		t.Errorf("index after activation: got %d, want 1", s.Index)
	}
	if !s.Playing[1] {
		t.Error("activated item should be marked playing")
	}
	if bridge.count("seekTo") != 1 {
		t.Error("activation should restart the item from the beginning")
	}
	if bridge.count("play") != 1 {
		t.Error("activation should issue play")
	}

	sendIntersection(t, 1, false)

	s = f.Snapshot()
	if s.Playing[1] {
		t.Error("deactivated item should be marked paused")
	}
	if bridge.count("pause") != 1 {
		t.Error("deactivation should issue pause")
	}
}

func TestVisibilityGateLastActivationWins(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 5)

	// A fast scroll delivers several transitions in one batch.
	sendIntersection(t, 1, true)
	sendIntersection(t, 1, false)
	sendIntersection(t, 2, true)
	sendIntersection(t, 2, false)
	sendIntersection(t, 3, true)

	s := f.Snapshot()
	if s.Index != 3 {
		t.Errorf("index: got %d, want 3 (last activation wins)", s.Index)
	}
	for i, playing := range s.Playing {
		if want := i == 3; playing != want {
			t.Errorf("playing[%d]: got %v, want %v", i, playing, want)
		}
	}
}

func TestMuteAppliesToAllBindingsSynchronously(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 3)

	f.ToggleMute()

	if !f.Snapshot().Muted {
		t.Fatal("global mute flag should be set")
	}
	for i := 0; i < 3; i++ {
		if !f.Binding(i).Muted() {
			t.Errorf("binding %d diverged from the global mute flag", i)
		}
	}

	f.ToggleMute()
	for i := 0; i < 3; i++ {
		if f.Binding(i).Muted() {
			t.Errorf("binding %d still muted after unmute", i)
		}
	}
}

func TestMountInheritsGlobalMute(t *testing.T) {
	setupTest(t)
	f := NewFeedController(testPlaylist(t, 3), testConfig())
	t.Cleanup(f.Dispose)

	f.Mount(0, 100)
	f.SetMuted(true)
	f.Mount(1, 101)

	if !f.Binding(1).Muted() {
		t.Error("a binding mounted mid-session must inherit the mute flag")
	}
}

func TestTogglePlayPausedFlash(t *testing.T) {
	clk, _ := setupTest(t)
	f := newTestFeed(t, 3)

	sendIntersection(t, 0, true)
	sendVideoEvent(t, f.Binding(0).ID(), "pausedChanged", map[string]any{"paused": false})

	f.TogglePlay(0)

	s := f.Snapshot()
	if s.Playing[0] {
		t.Error("toggle from playing should pause")
	}
	if s.FlashIndex != 0 {
		t.Errorf("FlashIndex: got %d, want 0", s.FlashIndex)
	}

	clk.Advance(800 * time.Millisecond)
	if f.Snapshot().FlashIndex != -1 {
		t.Error("paused flash should clear after the delay")
	}
}

func TestPausedFlashClearsOnResume(t *testing.T) {
	clk, _ := setupTest(t)
	f := newTestFeed(t, 3)

	sendIntersection(t, 0, true)
	sendVideoEvent(t, f.Binding(0).ID(), "pausedChanged", map[string]any{"paused": false})

	f.TogglePlay(0) // pause, flash armed
	sendVideoEvent(t, f.Binding(0).ID(), "pausedChanged", map[string]any{"paused": true})
	f.TogglePlay(0) // resume before the flash timer fires

	if f.Snapshot().FlashIndex != -1 {
		t.Error("resume must clear the flash immediately, not wait for the timer")
	}
	if !f.Snapshot().Playing[0] {
		t.Error("item should be playing again")
	}

	// The stale timer must not reappear or fire into anything.
	clk.Advance(time.Second)
	if f.Snapshot().FlashIndex != -1 {
		t.Errorf("FlashIndex after stale timer window: got %d", f.Snapshot().FlashIndex)
	}
}

func TestEndedAdvancesAndClampsAtLast(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 3)

	var requests []int
	f.OnScrollRequest = func(i int) { requests = append(requests, i) }

	sendIntersection(t, 1, true)
	sendVideoEvent(t, f.Binding(1).ID(), "ended", nil)

	if len(requests) != 1 || requests[0] != 2 {
		t.Fatalf("scroll requests after ended at 1: got %v, want [2]", requests)
	}

	sendIntersection(t, 1, false)
	sendIntersection(t, 2, true)
	sendVideoEvent(t, f.Binding(2).ID(), "ended", nil)

	if got := requests[len(requests)-1]; got != 2 {
		t.Errorf("ended at the last item should clamp: requested %d, want 2", got)
	}
}

func TestEndedOfInactiveItemIgnored(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 3)

	requests := 0
	f.OnScrollRequest = func(int) { requests++ }

	sendIntersection(t, 0, true)
	// A background item that was paused mid-buffer drains its pipeline.
	sendVideoEvent(t, f.Binding(2).ID(), "ended", nil)

	if requests != 0 {
		t.Error("ended on an inactive item must not navigate")
	}
}

func TestPlayDeniedClearsSlot(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 3)

	sendIntersection(t, 0, true)
	if !f.Snapshot().Playing[0] {
		t.Fatal("activation should mark the slot playing")
	}

	sendPlayDenied(t, f.Binding(0).ID())

	if f.Snapshot().Playing[0] {
		t.Error("denied play must clear the slot flag")
	}
}

func TestUnmountedBindingIsSkipped(t *testing.T) {
	setupTest(t)
	f := NewFeedController(testPlaylist(t, 3), testConfig())
	t.Cleanup(f.Dispose)

	f.Mount(0, 100)
	before := f.Snapshot()

	f.TogglePlay(1) // never mounted
	f.TogglePlay(99)
	f.TogglePlay(-1)

	after := f.Snapshot()
	if after.Index != before.Index || after.FlashIndex != before.FlashIndex {
		t.Error("toggling an unmounted slot must be a no-op")
	}
	for i := range after.Playing {
		if after.Playing[i] != before.Playing[i] {
			t.Errorf("playing[%d] changed", i)
		}
	}
}

func TestMountTwiceIsNoOp(t *testing.T) {
	_, bridge := setupTest(t)
	f := NewFeedController(testPlaylist(t, 3), testConfig())
	t.Cleanup(f.Dispose)

	f.Mount(0, 100)
	loads := bridge.count("load")
	f.Mount(0, 100)

	if bridge.count("load") != loads {
		t.Error("second mount of the same index must not reload")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	setupTest(t)
	f := newTestFeed(t, 3)

	s := f.Snapshot()
	s.Playing[0] = true

	if f.Snapshot().Playing[0] {
		t.Error("mutating a snapshot must not affect the controller")
	}
}

func TestFeedDisposeDropsLateEvents(t *testing.T) {
	clk, _ := setupTest(t)
	f := NewFeedController(testPlaylist(t, 3), testConfig())
	for i := 0; i < 3; i++ {
		f.Mount(i, int64(100+i))
	}

	sendIntersection(t, 1, true)
	sendVideoEvent(t, f.Binding(1).ID(), "pausedChanged", map[string]any{"paused": false})
	f.TogglePlay(1) // arm the flash timer
	id := f.Binding(1).ID()

	before := f.Snapshot()
	f.Dispose()
	f.Dispose() // idempotent

	changed := false
	f.OnChange = func(FeedState) { changed = true }

	sendIntersection(t, 0, true)
	sendIntersection(t, 1, false)
	sendVideoEvent(t, id, "ended", nil)
	clk.Advance(time.Second)

	if changed {
		t.Error("OnChange fired after Dispose")
	}
	after := f.Snapshot()
	if after.Index != before.Index || after.Muted != before.Muted || after.FlashIndex != before.FlashIndex {
		t.Errorf("state mutated after Dispose: got %+v, want %+v", after, before)
	}
	for i := range before.Playing {
		if after.Playing[i] != before.Playing[i] {
			t.Errorf("playing[%d] mutated after Dispose", i)
		}
	}
}
