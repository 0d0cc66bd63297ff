package platform

import "sync"

var (
	keyboardChannel *EventChannel
	keyboardOnce    sync.Once
)

// Well-known key names delivered on the keyboard channel. Values follow the
// native key-code naming so events pass through without translation.
const (
	KeySpace      = "Space"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyJ          = "KeyJ"
	KeyK          = "KeyK"
	KeyM          = "KeyM"
	KeyF          = "KeyF"
)

func ensureKeyboardChannel() *EventChannel {
	keyboardOnce.Do(func() {
		keyboardChannel = NewEventChannel("vidplay/keyboard/events")
	})
	return keyboardChannel
}

// ListenKeys subscribes to window-scoped key events. The callback receives
// the key name and runs on the UI thread. Exactly one subscription should be
// held per mounted player; cancel it on teardown so stale handlers cannot
// act after unmount.
func ListenKeys(fn func(key string)) *Subscription {
	return ensureKeyboardChannel().Listen(EventHandler{
		OnEvent: func(data any) {
			m, ok := data.(map[string]any)
			if !ok {
				return
			}
			key := parseString(m["key"])
			if key == "" {
				return
			}
			Dispatch(func() { fn(key) })
		},
	})
}
