// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jwst-live/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show compiled runs and published posts from the ledger",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("posts", false, "list every published post")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	showPosts, _ := cmd.Flags().GetBool("posts")
	ctx := cmd.Context()

	l, err := ledger.Open(viper.GetString("publish.ledger_path"))
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Runs(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No compiled runs recorded.")
		return nil
	}
	printRuns(out, runs)

	if !showPosts {
		return nil
	}
	entries, err := l.Entries(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	printEntries(out, entries)
	return nil
}

func printRuns(w io.Writer, runs []ledger.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tOBSERVATIONS\tPUBLISHED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", r.RunDir, r.Observations, r.Published)
	}
	tw.Flush()
}

func printEntries(w io.Writer, entries []ledger.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POST TIME\tTITLE\tREMOTE ID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.PostTime.Format(time.RFC3339), e.Title, e.RemoteID)
	}
	tw.Flush()
}
