// Command vidplay-sim runs the player core headlessly against a scripted
// native bridge. It loads the optional vidplay.yaml and a playlist, then
// replays a short session in either mode, logging every state transition.
// Useful for eyeballing the state machine without a device.
//
// Usage:
//
//	vidplay-sim [-playlist playlist.yaml] [-config .] [-feed]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-drift/vidplay/pkg/config"
	"github.com/go-drift/vidplay/pkg/input"
	"github.com/go-drift/vidplay/pkg/platform"
	"github.com/go-drift/vidplay/pkg/player"
	"github.com/go-drift/vidplay/pkg/playlist"
)

func main() {
	playlistPath := flag.String("playlist", "", "playlist YAML file (built-in demo list when empty)")
	configDir := flag.String("config", ".", "directory containing vidplay.yaml")
	feed := flag.Bool("feed", false, "simulate the feed player instead of the single player")
	flag.Parse()

	cfg, err := config.LoadOptional(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vidplay-sim:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	list, err := loadPlaylist(*playlistPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vidplay-sim:", err)
		os.Exit(1)
	}
	logger.Info("playlist loaded", "items", list.Len())

	// The sim is single-threaded: callbacks run inline, exactly like a UI
	// thread draining its queue.
	platform.RegisterDispatch(func(cb func()) { cb() })
	platform.SetNativeBridge(&simBridge{log: logger})

	if *feed {
		runFeed(logger, list, cfg.Player)
	} else {
		runSingle(logger, list, cfg.Player)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func loadPlaylist(path string) (*playlist.Playlist, error) {
	if path != "" {
		return playlist.LoadFile(path)
	}
	return playlist.New([]playlist.Item{
		{Title: "Big Buck Bunny", Source: "https://example.com/bbb.mp4"},
		{Title: "Elephants Dream", Source: "https://example.com/ed.mp4"},
		{Title: "Sintel", Source: "https://example.com/sintel.mp4"},
	})
}

// simBridge acknowledges every native call. Media events are not produced
// here; the script emits them explicitly so the run is deterministic.
type simBridge struct {
	log *slog.Logger
}

func (b *simBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	b.log.Debug("native call", "channel", channel, "method", method)
	return platform.DefaultCodec.Encode(nil)
}

func (b *simBridge) StartEventStream(channel string) error {
	b.log.Debug("event stream started", "channel", channel)
	return nil
}

func (b *simBridge) StopEventStream(channel string) error {
	b.log.Debug("event stream stopped", "channel", channel)
	return nil
}

// emit injects a native event the way the real bridge would.
func emit(log *slog.Logger, channel string, payload map[string]any) {
	data, err := platform.DefaultCodec.Encode(payload)
	if err != nil {
		log.Error("encode event", "err", err)
		return
	}
	if err := platform.HandleEvent(channel, data); err != nil {
		log.Error("handle event", "err", err)
	}
}

func videoEvent(log *slog.Logger, playerID int64, event string, extra map[string]any) {
	payload := map[string]any{"playerId": playerID, "event": event}
	for k, v := range extra {
		payload[k] = v
	}
	emit(log, "vidplay/video/events", payload)
}

func runSingle(log *slog.Logger, list *playlist.Playlist, cfg config.PlayerConfig) {
	c := player.NewController(list, cfg)
	defer c.Dispose()

	c.OnChange = func(s player.State) {
		log.Info("state",
			"index", s.Index,
			"playing", s.Playing,
			"position", s.Position,
			"progress", fmt.Sprintf("%.0f%%", s.Progress()*100),
			"muted", s.Muted,
			"controls", s.ControlsVisible,
		)
	}

	r := input.NewSingleRouter(c, cfg.VolumeStep)
	r.Attach()
	defer r.Detach()

	id := c.Binding().ID()

	log.Info("-- user presses space, native confirms")
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeySpace})
	videoEvent(log, id, "pausedChanged", map[string]any{"paused": false})
	videoEvent(log, id, "metadata", map[string]any{"durationMs": 120000})

	log.Info("-- playback progresses")
	for ms := int64(250); ms <= 1000; ms += 250 {
		videoEvent(log, id, "position", map[string]any{"positionMs": ms, "durationMs": 120000})
	}

	log.Info("-- user scrubs to 25%")
	r.ProgressClick(150, 55, input.Rect{X: 100, Y: 50, Width: 200, Height: 10})

	log.Info("-- user presses right arrow, autoplay is denied this time")
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeyArrowRight})
	emit(log, "vidplay/video/errors", map[string]any{
		"playerId": id,
		"code":     platform.ErrCodePlayDenied,
		"message":  "no user gesture",
	})

	log.Info("-- user toggles mute, then the last item ends and wraps")
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeyM})
	c.GoTo(list.Len() - 1)
	videoEvent(log, id, "pausedChanged", map[string]any{"paused": false})
	videoEvent(log, id, "ended", nil)

	log.Info("done", "final", fmt.Sprintf("%+v", c.Snapshot()))
}

func runFeed(log *slog.Logger, list *playlist.Playlist, cfg config.PlayerConfig) {
	f := player.NewFeedController(list, cfg)
	defer f.Dispose()

	f.OnChange = func(s player.FeedState) {
		log.Info("state",
			"index", s.Index,
			"playing", fmt.Sprintf("%v", s.Playing),
			"muted", s.Muted,
			"flash", s.FlashIndex,
		)
	}

	// The sim stands in for the scroll container: a requested scroll makes
	// the target visible and the previous item leave the viewport.
	current := 0
	f.OnScrollRequest = func(i int) {
		log.Info("scroll requested", "to", i)
		if i == current {
			return
		}
		emit(log, "vidplay/visibility/events", map[string]any{
			"viewId": int64(100 + current), "intersecting": false,
		})
		emit(log, "vidplay/visibility/events", map[string]any{
			"viewId": int64(100 + i), "intersecting": true,
		})
		current = i
	}

	r := input.NewFeedRouter(f)
	r.Attach()
	defer r.Detach()

	for i := 0; i < list.Len(); i++ {
		f.Mount(i, int64(100+i))
	}

	log.Info("-- first item scrolls into view")
	emit(log, "vidplay/visibility/events", map[string]any{"viewId": int64(100), "intersecting": true})
	videoEvent(log, f.Binding(0).ID(), "pausedChanged", map[string]any{"paused": false})

	log.Info("-- user pauses, the paused icon flashes")
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeySpace})
	time.Sleep(cfg.PausedFlash.Std() + 100*time.Millisecond)

	log.Info("-- user mutes everything and scrolls down with J")
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeyM})
	emit(log, "vidplay/keyboard/events", map[string]any{"key": platform.KeyJ})
	videoEvent(log, f.Binding(1).ID(), "pausedChanged", map[string]any{"paused": false})

	log.Info("-- the active item ends, the feed advances until the last")
	for f.Snapshot().Index < list.Len()-1 {
		videoEvent(log, f.Binding(f.Snapshot().Index).ID(), "ended", nil)
	}
	videoEvent(log, f.Binding(f.Snapshot().Index).ID(), "ended", nil) // clamped

	log.Info("done", "final", fmt.Sprintf("%+v", f.Snapshot()))
}
