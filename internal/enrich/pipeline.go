// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/internal/convert"
	"github.com/pdiddy/jwst-live/internal/fetch"
	"github.com/pdiddy/jwst-live/internal/proposal"
	"github.com/pdiddy/jwst-live/pkg/types"
)

// Pipeline downloads, converts and scrapes the proposals behind a set of
// observations, then joins the results in.
type Pipeline struct {
	Client    *http.Client
	Converter convert.Converter
	Config    types.FetchConfig
	Log       zerolog.Logger

	// Out receives per-proposal progress lines.
	Out io.Writer
}

// Result summarises a pipeline run.
type Result struct {
	Proposals int
	Enriched  int

	// Missing lists proposals that could not be downloaded or read. Their
	// observations must be completed by hand.
	Missing []int
}

// Run enriches obs in place. Individual proposal failures are logged and
// reported in Result.Missing; only context cancellation returns an error.
func (p *Pipeline) Run(ctx context.Context, obs []types.Observation) (Result, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	ctx = p.Log.WithContext(ctx)

	ids := Proposals(obs, p.Log)
	res := Result{Proposals: len(ids)}

	fmt.Fprintf(out, "Downloading %d proposal PDFs...\n", len(ids))
	batch := fetch.FetchBatch(ctx, p.Client, ids, p.Config, out)
	res.Missing = append(res.Missing, batch.Missing...)

	for _, id := range ids {
		path, ok := batch.Paths[id]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ex, err := p.extract(ctx, id, path, out)
		if err != nil {
			p.Log.Warn().Int("proposal", id).Err(err).Msg("proposal unreadable")
			res.Missing = append(res.Missing, id)
			continue
		}
		for _, s := range ex.Skipped {
			p.Log.Warn().Int("proposal", id).Str("section", s).Msg("proposal section skipped")
		}
		res.Enriched += Apply(obs, ex, p.Log)
	}

	if len(res.Missing) > 0 {
		fmt.Fprintf(out, "Failed to read %d proposal(s); fill in their details in the correction file.\n", len(res.Missing))
	}
	return res, nil
}

// extract returns the cached extraction for a proposal, or converts and
// scrapes the PDF and caches the result.
func (p *Pipeline) extract(ctx context.Context, id int, pdfPath string, out io.Writer) (types.Extraction, error) {
	metaPath := proposal.MetadataPath(p.Config.CacheDir, id)
	if ex, err := proposal.ReadExtraction(metaPath); err == nil {
		return ex, nil
	} else if !os.IsNotExist(err) {
		p.Log.Debug().Err(err).Msg("ignoring unreadable extraction cache")
	}

	text, _, err := convert.ConvertProposal(ctx, p.Converter, pdfPath, p.Config.CacheDir, out)
	if err != nil {
		return types.Extraction{}, err
	}

	ex := proposal.ScrapeText(id, text)
	if err := proposal.WriteExtraction(metaPath, ex); err != nil {
		return types.Extraction{}, fmt.Errorf("caching extraction: %w", err)
	}
	return ex, nil
}
