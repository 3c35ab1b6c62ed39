package player

import (
	"fmt"
	"os"
	"os/exec"

	"minnow/internal/media"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Play launches VLC. VLC doesn't have IPC position tracking like mpv,
// so we return 0 for position.
func (v *VLC) Play(stream *media.Stream, title string, startPos float64) (float64, error) {
	args := []string{
		stream.File,
		"--meta-title", title,
		"--play-and-exit",
	}

	// VLC only exposes referer and user-agent; the remaining headers
	// cannot be forwarded, which the vixsrc origin tolerates.
	if ref := stream.Headers["Referer"]; ref != "" {
		args = append(args, "--http-referrer", ref)
	}
	if ua := stream.Headers["User-Agent"]; ua != "" {
		args = append(args, "--http-user-agent", ua)
	}

	if startPos > 0 {
		args = append(args, fmt.Sprintf("--start-time=%.0f", startPos))
	}

	cmd := exec.Command("vlc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			_ = exitErr // VLC exits non-zero on user close
			return 0, nil
		}
		return 0, fmt.Errorf("running vlc: %w", err)
	}

	return 0, nil
}
