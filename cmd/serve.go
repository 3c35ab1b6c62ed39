package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"minnow/internal/extract"
	"minnow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stream-extraction HTTP API",
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log, newRegistry())
	return srv.Run(ctx)
}

// newRegistry builds the extractor set from configuration. New sources
// get registered here and nowhere else.
func newRegistry() *extract.Registry {
	return extract.NewRegistry(
		extract.NewVixSrc(cfg.SourceBase, cfg.Timeout()),
	)
}
