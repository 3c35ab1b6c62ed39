// Package player launches local media players against extracted
// streams. Every invocation uses exec.Command with explicit argument
// slices, and the stream's hotlink-protection headers are forwarded so
// the origin accepts the manifest and segment requests.
package player

import (
	"minnow/internal/media"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of a stream. Returns the last playback position.
	Play(stream *media.Stream, title string, startPos float64) (float64, error)

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{} // Default to mpv
	}
}
