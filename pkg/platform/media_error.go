package platform

// Canonical media error codes emitted by native video surfaces. Native
// implementations (ExoPlayer on Android, AVPlayer on iOS) map their
// platform-specific errors to these codes so that Go callbacks receive
// consistent values across platforms.
const (
	// ErrCodeSourceError indicates the media source could not be loaded.
	// Covers network failures, invalid URLs, unsupported formats, and
	// container parsing errors.
	ErrCodeSourceError = "source_error"

	// ErrCodePlayDenied indicates the native player refused to start
	// playback, typically because the platform's autoplay policy requires
	// a user gesture. Routine and non-fatal.
	ErrCodePlayDenied = "play_denied"

	// ErrCodePlaybackFailed indicates a general playback failure that
	// does not fit a more specific category.
	ErrCodePlaybackFailed = "playback_failed"
)
