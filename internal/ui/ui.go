// Package ui wraps fzf for interactive pickers. Items reach fzf only
// through stdin as plain text, never through --preview or any other
// shell-evaluated option.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user aborts a picker (Ctrl-C/Esc).
var ErrCancelled = errors.New("selection cancelled")

// Select shows items in fzf and returns the index of the chosen one.
// Each line is prefixed with its index in a hidden tab-separated field
// so the choice maps back to the slice regardless of display text.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	var input strings.Builder
	for i, item := range items {
		fmt.Fprintf(&input, "%d\t%s\n", i, item)
	}

	out, err := runFzf(input.String(),
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..",
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)
	if err != nil {
		return -1, err
	}

	field, _, _ := strings.Cut(out, "\t")
	idx, err := strconv.Atoi(field)
	if err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}
	if idx < 0 || idx >= len(items) {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}

	return idx, nil
}

// Input collects a free-text line via fzf's --print-query.
func Input(prompt string) (string, error) {
	out, err := runFzf("",
		"--prompt", prompt+" > ",
		"--height", "10%",
		"--reverse",
		"--print-query",
		"--no-info",
	)
	// fzf exits 1 under --print-query when the query matches nothing,
	// which is the normal case here.
	if err != nil && !errors.Is(err, ErrCancelled) {
		err = nil
	}
	if err != nil {
		return "", err
	}

	query := strings.TrimSpace(strings.Split(out, "\n")[0])
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}

	return query, nil
}

// runFzf executes fzf with the given stdin and arguments and returns
// the first line of its output.
func runFzf(stdin string, args ...string) (string, error) {
	path, err := exec.LookPath("fzf")
	if err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return "", ErrCancelled
		}
		return stdout.String(), fmt.Errorf("fzf: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
