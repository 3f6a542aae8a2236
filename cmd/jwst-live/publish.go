// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jwst-live/internal/ledger"
	"github.com/pdiddy/jwst-live/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish <link-file>",
	Short: "Publish the compiled post queue as each post comes due",
	Long: `Publish reads the output directory named on the first line of the link
file, loads its posts.json and publishes every post at its scheduled time.
Posts whose time has passed, or that the ledger records as published, are
skipped.

Editing the link file to point at a newer output directory switches the
queue without restarting. Publish exits once no future post remains.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("ledger", "", "SQLite ledger of published posts")
	publishCmd.Flags().Bool("draft", false, "publish posts as drafts")
	viper.BindPFlag("publish.ledger_path", publishCmd.Flags().Lookup("ledger"))
	viper.BindPFlag("publish.draft", publishCmd.Flags().Lookup("draft"))

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	linkFile := args[0]
	cfg := loadConfig()
	ctx := cmd.Context()

	client, err := publish.NewClient(cfg.Publish, nil)
	if err != nil {
		return fmt.Errorf("%w (set publish.* in the config and put credentials in .secrets/)", err)
	}

	l, err := ledger.Open(cfg.Publish.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	reload, err := publish.WatchLink(ctx, linkFile, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("link file not watched; changes apply after the next post")
	}

	s := &publish.Scheduler{
		Poster:   client,
		Ledger:   l,
		LinkFile: linkFile,
		Reload:   reload,
		Log:      logger,
		Out:      cmd.OutOrStdout(),
	}
	err = s.Run(ctx)
	if errors.Is(err, publish.ErrNoFuturePosts) {
		fmt.Fprintln(cmd.OutOrStdout(), "Point the link file at a newly compiled run to continue.")
	}
	return err
}
