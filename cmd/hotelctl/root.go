package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/logging"
)

// cli carries state shared by every subcommand once the config is loaded.
type cli struct {
	cfg     config.Config
	logger  *slog.Logger
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "hotelctl",
		Short: "Hotel review sentiment admin CLI",
		Long: `hotelctl manages the hotel review database and exercises the sentiment
and summarization engines from the command line.

Configuration is read from the same environment variables (and .env file)
as the API server; AUTH_TOKEN is not required.

Example usage:
  hotelctl migrate                     # Apply pending schema migrations
  hotelctl seed                        # Insert sample hotels and reviews
  hotelctl analyze "Lovely staff!"     # Score a piece of text
  hotelctl summarize --hotel-id 1      # Summarize a hotel's reviews`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newMigrateCmd(c),
		newSeedCmd(c),
		newResetCmd(c),
		newAnalyzeCmd(c),
		newSummarizeCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.LoadCLI()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	c.cfg = cfg
	c.logger = logging.New(level, cmd.ErrOrStderr())
	c.logger.Debug("configuration loaded",
		"sentiment_backends", cfg.SentimentBackends,
		"summary_backend", cfg.SummaryBackend)
	return nil
}
