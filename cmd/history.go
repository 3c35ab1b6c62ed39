package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"minnow/internal/history"
	"minnow/internal/media"
	"minnow/internal/player"
	"minnow/internal/ui"
)

var flagClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Resume playback from watch history",
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Remove an entry instead of resuming it")
}

func historyRun(cmd *cobra.Command, args []string) error {
	entries, err := history.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	prompt := "Resume"
	if flagClear {
		prompt = "Remove"
	}

	idx, err := ui.Select(prompt, history.FormatForDisplay(entries))
	if err != nil {
		return err
	}
	entry := entries[idx]

	if flagClear {
		if err := history.Remove(entry.ID, entry.Season, entry.Episode); err != nil {
			return fmt.Errorf("removing entry: %w", err)
		}
		fmt.Printf("Removed %s from history.\n", entry.Title)
		return nil
	}

	req := media.StreamRequest{
		ContentID: entry.ID,
		Type:      entry.Type,
		Season:    entry.Season,
		Episode:   entry.Episode,
	}

	stream, err := resolveStream(req)
	if err != nil {
		return err
	}

	title := entry.Title
	if entry.Type == media.TV {
		title = fmt.Sprintf("%s S%02dE%02d", entry.Title, entry.Season, entry.Episode)
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	lastPos, err := p.Play(stream, title, entry.Position)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	entry.Position = lastPos
	if err := history.Save(entry); err != nil {
		log.WithError(err).Debug("saving history failed")
	}

	return nil
}
