package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"minnow/internal/extract"
	"minnow/internal/media"
)

var flagServer string

var extractCmd = &cobra.Command{
	Use:   "extract <movie|tv> <id> [season] [episode]",
	Short: "Extract streams for one title and print them",
	Long: `Extract resolves a TMDB id into playable streams without starting
the HTTP server. TV requests take season and episode as extra arguments:

  minnow extract movie 550
  minnow extract tv 1399 1 5`,
	Args: cobra.RangeArgs(2, 4),
	RunE: extractRun,
}

func init() {
	extractCmd.Flags().StringVar(&flagServer, "server", extract.SelectorAll, "Source name or all")
}

func extractRun(cmd *cobra.Command, args []string) error {
	req, err := requestFromArgs(args)
	if err != nil {
		return err
	}

	orch := extract.NewOrchestrator(newRegistry())
	agg, err := orch.Run(context.Background(), req, flagServer)
	if err != nil {
		return err
	}

	if flagJSON {
		out := map[string]interface{}{
			"request":                 req.Label(),
			"totalServersWithStreams": agg.SourcesWithStreams,
			"totalStreamsFound":       agg.TotalStreams,
		}
		for _, res := range agg.Results {
			out[res.Source] = res.AsSourceResult()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, res := range agg.Results {
		if res.Err != "" {
			fmt.Printf("%s: error: %s\n", res.Source, res.Err)
			continue
		}
		if len(res.Streams) == 0 {
			fmt.Printf("%s: no streams found\n", res.Source)
			continue
		}
		for _, s := range res.Streams {
			fmt.Printf("%s: %s [%s, %s]\n  %s\n", res.Source, s.Title, s.Quality, s.Kind, s.File)
		}
	}
	fmt.Printf("%d stream(s) from %d source(s)\n", agg.TotalStreams, agg.SourcesWithStreams)
	return nil
}

// requestFromArgs parses "<movie|tv> <id> [season] [episode]".
func requestFromArgs(args []string) (media.StreamRequest, error) {
	mediaType, err := media.ParseMediaType(args[0])
	if err != nil {
		return media.StreamRequest{}, err
	}

	req := media.StreamRequest{ContentID: args[1], Type: mediaType}

	if mediaType == media.TV {
		if len(args) != 4 {
			return media.StreamRequest{}, fmt.Errorf("tv requires season and episode arguments")
		}
		if req.Season, err = strconv.Atoi(args[2]); err != nil {
			return media.StreamRequest{}, fmt.Errorf("invalid season %q", args[2])
		}
		if req.Episode, err = strconv.Atoi(args[3]); err != nil {
			return media.StreamRequest{}, fmt.Errorf("invalid episode %q", args[3])
		}
	} else if len(args) != 2 {
		return media.StreamRequest{}, fmt.Errorf("movie takes no season or episode arguments")
	}

	return req, req.Validate()
}
