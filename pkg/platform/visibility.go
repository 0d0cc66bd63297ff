package platform

import (
	"sync"

	"github.com/go-drift/vidplay/pkg/errors"
)

var (
	visibilityService     *visibilityServiceState
	visibilityServiceOnce sync.Once

	visibilityWatchers = map[int64]func(bool){}
	visibilityMu       sync.RWMutex
)

type visibilityServiceState struct {
	channel *MethodChannel
	events  *EventChannel
}

func ensureVisibilityService() *visibilityServiceState {
	visibilityServiceOnce.Do(func() {
		svc := &visibilityServiceState{
			channel: NewMethodChannel("vidplay/visibility"),
			events:  NewEventChannel("vidplay/visibility/events"),
		}

		svc.events.Listen(EventHandler{
			OnEvent: func(data any) {
				m, ok := data.(map[string]any)
				if !ok {
					return
				}
				viewID, _ := toInt64(m["viewId"])
				intersecting := parseBool(m["intersecting"])

				visibilityMu.RLock()
				fn := visibilityWatchers[viewID]
				visibilityMu.RUnlock()
				if fn == nil {
					return
				}
				Dispatch(func() { fn(intersecting) })
			},
			OnError: func(err error) {
				errors.Report(&errors.PlayerError{
					Op:      "platform.visibilityStream",
					Kind:    errors.KindPlatform,
					Channel: "vidplay/visibility/events",
					Err:     err,
				})
			},
		})

		visibilityService = svc
	})
	return visibilityService
}

// VisibilityObservation is an active viewport-intersection watch on one view.
type VisibilityObservation struct {
	viewID int64
	svc    *visibilityServiceState
	once   sync.Once
}

// ObserveVisibility watches the view with the given ID for viewport
// intersection. Native emits an event whenever the view's visible-area ratio
// crosses the threshold, in either direction. The callback runs on the UI
// thread. Cancel the observation on teardown.
func ObserveVisibility(viewID int64, threshold float64, fn func(intersecting bool)) *VisibilityObservation {
	svc := ensureVisibilityService()

	visibilityMu.Lock()
	visibilityWatchers[viewID] = fn
	visibilityMu.Unlock()

	svc.channel.Invoke("observe", map[string]any{
		"viewId":    viewID,
		"threshold": threshold,
	})

	return &VisibilityObservation{viewID: viewID, svc: svc}
}

// Cancel stops the observation. Further intersection events for the view are
// dropped. Cancel is idempotent.
func (o *VisibilityObservation) Cancel() {
	o.once.Do(func() {
		visibilityMu.Lock()
		delete(visibilityWatchers, o.viewID)
		visibilityMu.Unlock()

		o.svc.channel.Invoke("unobserve", map[string]any{
			"viewId": o.viewID,
		})
	})
}
