// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jwst-live/internal/container"
	"github.com/pdiddy/jwst-live/internal/convert"
	"github.com/pdiddy/jwst-live/internal/corrections"
	"github.com/pdiddy/jwst-live/internal/enrich"
	"github.com/pdiddy/jwst-live/internal/report"
	"github.com/pdiddy/jwst-live/pkg/types"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <report>",
	Short: "Parse a schedule report and enrich it from the proposal PDFs",
	Long: `Preprocess parses a fixed-width JWST schedule report, downloads and reads
the proposal PDF behind every observation, and writes two files next to the
report:

  <report>.auto.json   the merged, enriched observations
  <report>.manual.csv  one row per observation still missing coordinates

Fill in the correction file, then run compile.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().String("backend", "", "pdftotext backend: container or local")
	preprocessCmd.Flags().String("cache-dir", "", "base directory for proposals (contains raw/, text/, metadata/)")
	preprocessCmd.Flags().Duration("delay", 0, "delay between consecutive downloads")
	viper.BindPFlag("conversion.backend", preprocessCmd.Flags().Lookup("backend"))
	viper.BindPFlag("fetch.cache_dir", preprocessCmd.Flags().Lookup("cache-dir"))
	viper.BindPFlag("fetch.download_delay", preprocessCmd.Flags().Lookup("delay"))

	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	input := args[0]
	cfg := loadConfig()
	out := cmd.OutOrStdout()

	obs, err := report.ParseFile(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Parsed %d observations from %s\n", len(obs), input)

	conv, err := newConverter(cfg.Conversion)
	if err != nil {
		return err
	}

	p := &enrich.Pipeline{
		Client:    &http.Client{Timeout: cfg.Fetch.Timeout},
		Converter: conv,
		Config:    cfg.Fetch,
		Log:       logger,
		Out:       out,
	}
	res, err := p.Run(cmd.Context(), obs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Enriched %d observations from %d proposals\n", res.Enriched, res.Proposals)

	autoPath := report.AutoPath(input)
	if err := report.WriteObservations(autoPath, obs); err != nil {
		return err
	}
	manualPath := report.ManualPath(input)
	n, err := corrections.WriteFile(manualPath, obs, cfg.Fetch.ProposalURL)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nDone preprocessing")
	fmt.Fprintf(out, "Automatically detected data: %s\n", autoPath)
	fmt.Fprintf(out, "Fill in %d missing observation(s) in %s, then run compile.\n", n, manualPath)
	return nil
}

// newConverter picks the pdftotext runtime for the configured backend.
func newConverter(cfg types.ConversionConfig) (convert.Converter, error) {
	var rt container.Runtime
	switch cfg.Backend {
	case types.BackendLocal:
		rt = container.Local()
	case types.BackendContainer, "":
		detected, err := container.DetectRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, "No container runtime found; set conversion.backend to local to use a host pdftotext.")
			return nil, err
		}
		rt = detected
	default:
		return nil, fmt.Errorf("unknown conversion backend %q (want container or local)", cfg.Backend)
	}
	return convert.NewPdftotextConverter(rt, cfg.Image, cfg.Binary)
}
