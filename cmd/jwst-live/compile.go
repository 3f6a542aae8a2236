// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jwst-live/internal/container"
	"github.com/pdiddy/jwst-live/internal/corrections"
	"github.com/pdiddy/jwst-live/internal/ledger"
	"github.com/pdiddy/jwst-live/internal/render"
	"github.com/pdiddy/jwst-live/internal/report"
	"github.com/pdiddy/jwst-live/pkg/types"
)

var compileCmd = &cobra.Command{
	Use:   "compile <report>",
	Short: "Merge corrections and render the screenshot script and post queue",
	Long: `Compile loads the observations preprocess wrote for a report, overlays the
filled-in correction file, and writes a dated output directory containing
the planetarium screenshot script, metadata.json, posts.json and an empty
screenshots directory.

Observations without a title, and every observation of an excluded
proposal, are left out. When output.stellarium is configured the
planetarium is launched on the script to take the screenshots.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().IntSlice("exclude", nil, "proposal ids to leave out")
	compileCmd.Flags().String("output-dir", "", "base directory for compiled runs")
	compileCmd.Flags().Bool("no-screenshots", false, "do not launch the planetarium")
	viper.BindPFlag("output.dir", compileCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	input := args[0]
	cfg := loadConfig()
	out := cmd.OutOrStdout()
	exclude, _ := cmd.Flags().GetIntSlice("exclude")
	noShots, _ := cmd.Flags().GetBool("no-screenshots")

	obs, err := report.ReadObservations(report.AutoPath(input))
	if err != nil {
		return fmt.Errorf("loading observations (run preprocess first): %w", err)
	}
	rows, err := corrections.ParseFile(report.ManualPath(input))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d correction(s)\n", corrections.Apply(obs, rows))

	obs = publishable(obs, exclude)
	if len(obs) == 0 {
		return report.ErrNoObservations
	}

	dir := render.RunDir(cfg.Output.Dir, time.Now())
	res, err := render.Write(dir, obs, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d observation(s), %d screenshot(s) and %d post(s) to %s\n",
		len(obs), res.Shots, res.PostCount, dir)

	if err := indexRun(cmd, cfg.Publish.LedgerPath, dir); err != nil {
		return err
	}

	if noShots || cfg.Output.Stellarium == "" {
		fmt.Fprintf(out, "Take the screenshots by running %s in the planetarium.\n", res.Script)
		return nil
	}
	return render.Screenshot(cmd.Context(), container.Local(), cfg.Output, res, out)
}

// publishable drops observations with no title and those belonging to an
// excluded proposal.
func publishable(obs []types.Observation, exclude []int) []types.Observation {
	skip := make(map[int]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var kept []types.Observation
	for _, o := range obs {
		if o.Title == "" {
			continue
		}
		id, err := o.ID()
		if err != nil || skip[id.Proposal] {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// indexRun records the run's observations in the ledger so status can
// report on it.
func indexRun(cmd *cobra.Command, ledgerPath, dir string) error {
	records, err := render.ReadMetadata(dir)
	if err != nil {
		return err
	}
	l, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer l.Close()
	return l.RecordRun(cmd.Context(), dir, records)
}
