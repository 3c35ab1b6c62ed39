package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"minnow/internal/extract"
	"minnow/internal/history"
	"minnow/internal/media"
	"minnow/internal/player"
	"minnow/internal/tmdb"
	"minnow/internal/ui"
)

var flagContinue bool

var watchCmd = &cobra.Command{
	Use:   "watch [query]",
	Short: "Search, extract and play a stream locally",
	Args:  cobra.ArbitraryArgs,
	RunE:  watchRun,
}

func init() {
	watchCmd.Flags().BoolVarP(&flagContinue, "continue", "c", false, "Auto-resume from history")
}

func watchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	if query == "" {
		var err error
		query, err = ui.Input("Search")
		if err != nil {
			return fmt.Errorf("no search query provided")
		}
	}

	meta := tmdb.NewClient(cfg.TMDBAPIKey)

	results, err := meta.SearchMulti(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no results found for %q", query)
	}

	items := make([]string, len(results))
	for i, r := range results {
		items[i] = fmt.Sprintf("[%s] %s", r.Type(), r.DisplayTitle())
	}

	idx, err := ui.Select("Select", items)
	if err != nil {
		return err
	}

	selected := results[idx]
	log.WithField("title", selected.DisplayTitle()).Debug("selected")

	req := media.StreamRequest{ContentID: strconv.Itoa(selected.ID), Type: selected.Type()}
	title := selected.DisplayTitle()

	if req.Type == media.TV {
		req.Season, req.Episode, err = pickEpisode()
		if err != nil {
			return err
		}
		if ep, err := meta.Episode(req.ContentID, req.Season, req.Episode); err == nil && ep.Name != "" {
			title = fmt.Sprintf("%s S%02dE%02d: %s", selected.DisplayTitle(), req.Season, req.Episode, ep.Name)
		} else {
			title = fmt.Sprintf("%s S%02dE%02d", selected.DisplayTitle(), req.Season, req.Episode)
		}
	}

	stream, err := resolveStream(req)
	if err != nil {
		return err
	}
	log.WithField("url", stream.File).Debug("resolved stream")

	var startPos float64
	if flagContinue && cfg.History {
		entries, _ := history.Load()
		if e := history.Find(entries, req.ContentID, req.Season, req.Episode); e != nil {
			startPos = e.Position
			log.WithField("position", startPos).Debug("resuming from history")
		}
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	lastPos, err := p.Play(stream, title, startPos)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	if cfg.History {
		entry := media.HistoryEntry{
			ID:       req.ContentID,
			Title:    selected.DisplayTitle(),
			Type:     req.Type,
			Season:   req.Season,
			Episode:  req.Episode,
			Position: lastPos,
		}
		if err := history.Save(entry); err != nil {
			log.WithError(err).Debug("saving history failed")
		}
	}

	return nil
}

// pickEpisode asks for season and episode numbers.
func pickEpisode() (int, int, error) {
	seasonStr, err := ui.Input("Season")
	if err != nil {
		return 0, 0, err
	}
	season, err := strconv.Atoi(strings.TrimSpace(seasonStr))
	if err != nil || season <= 0 {
		return 0, 0, fmt.Errorf("invalid season %q", seasonStr)
	}

	episodeStr, err := ui.Input("Episode")
	if err != nil {
		return 0, 0, err
	}
	episode, err := strconv.Atoi(strings.TrimSpace(episodeStr))
	if err != nil || episode <= 0 {
		return 0, 0, fmt.Errorf("invalid episode %q", episodeStr)
	}

	return season, episode, nil
}

// resolveStream runs the orchestrator and lets the user pick when more
// than one stream comes back.
func resolveStream(req media.StreamRequest) (*media.Stream, error) {
	orch := extract.NewOrchestrator(newRegistry())
	agg, err := orch.Run(context.Background(), req, extract.SelectorAll)
	if err != nil {
		return nil, err
	}

	var streams []media.Stream
	var items []string
	for _, res := range agg.Results {
		if res.Err != "" {
			log.WithField("source", res.Source).Debugf("extraction failed: %s", res.Err)
			continue
		}
		for _, s := range res.Streams {
			streams = append(streams, s)
			items = append(items, fmt.Sprintf("%s: %s [%s]", res.Source, s.Title, s.Quality))
		}
	}

	if len(streams) == 0 {
		return nil, fmt.Errorf("no playable streams found for %s", req.Label())
	}
	if len(streams) == 1 {
		return &streams[0], nil
	}

	idx, err := ui.Select("Stream", items)
	if err != nil {
		return nil, err
	}
	return &streams[idx], nil
}
