package player

import (
	"time"

	"github.com/go-drift/vidplay/pkg/platform"
)

// Clock provides time and timer scheduling for the player controllers.
// The default implementation uses system timers and delivers callbacks on
// the UI thread. Tests can inject a fake clock via SetClock to fire the
// controls-hide and paused-flash timers deterministically.
type Clock interface {
	Now() time.Time

	// AfterFunc schedules fn to run once after d. The returned timer can
	// be stopped before it fires.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a handle to a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired or was
	// already stopped.
	Stop() bool
}

// realClock uses system time. Callbacks are rescheduled onto the UI thread
// so timer expiry obeys the same single-threaded model as platform events.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, func() {
		platform.Dispatch(fn)
	})}
}

type realTimer struct{ t *time.Timer }

func (t realTimer) Stop() bool { return t.t.Stop() }

// clock is the package-level time source, replaceable for testing.
var clock Clock = realClock{}

// SetClock replaces the player clock. Returns the previous clock so callers
// can restore it during cleanup.
func SetClock(c Clock) Clock {
	prev := clock
	clock = c
	return prev
}
