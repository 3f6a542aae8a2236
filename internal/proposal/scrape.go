// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proposal scrapes metadata out of the layout text of JWST
// proposal PDFs. Every field is best effort; sections that cannot be read
// are reported in the extraction's Skipped list instead of as errors.
package proposal

import (
	"fmt"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// Scrape runs every section extractor over the pages of one proposal.
func Scrape(proposal int, pages []Page) types.Extraction {
	ex := types.Extraction{Metadata: types.ProposalMetadata{ID: proposal}}
	md := &ex.Metadata
	skip := func(section string) {
		ex.Skipped = append(ex.Skipped, section)
	}

	if len(pages) == 0 || !pages[0].IsOverview(proposal) {
		skip(fmt.Sprintf("overview: first page is not the overview of proposal %d", proposal))
	}

	var ok bool
	if md.Title, ok = Title(pages, proposal); !ok || md.Title == "" {
		skip("title")
	}
	if md.Investigators, ok = Investigators(pages, proposal); !ok || len(md.Investigators) == 0 {
		skip("investigators")
	}
	if md.Abstract, ok = Abstract(pages, proposal); !ok {
		skip("abstract")
	}

	var notes []string
	md.Observations, notes, ok = Observations(pages, proposal)
	if !ok {
		skip("observations")
	}
	ex.Skipped = append(ex.Skipped, notes...)

	md.Targets, notes, ok = Targets(pages, proposal)
	if !ok {
		skip("targets")
	}
	ex.Skipped = append(ex.Skipped, notes...)

	return ex
}

// ScrapeText splits pdftotext output into pages and scrapes it.
func ScrapeText(proposal int, text string) types.Extraction {
	return Scrape(proposal, SplitPages(text))
}
