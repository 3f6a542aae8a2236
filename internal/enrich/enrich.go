// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich cross-references merged observations with the metadata
// scraped from their proposals.
package enrich

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// Proposals returns the distinct proposal numbers referenced by obs in
// ascending order. Observations with an unparseable visit id are logged
// and ignored.
func Proposals(obs []types.Observation, log zerolog.Logger) []int {
	seen := make(map[int]bool)
	var ids []int
	for i := range obs {
		id, err := obs[i].ID()
		if err != nil {
			log.Warn().Err(err).Msg("skipping observation")
			continue
		}
		if !seen[id.Proposal] {
			seen[id.Proposal] = true
			ids = append(ids, id.Proposal)
		}
	}
	slices.Sort(ids)
	return ids
}

// Apply copies one proposal's metadata into every observation of that
// proposal and returns how many observations it touched. Title, PI,
// abstract and co-investigators are copied as found. Coordinates are set
// only when the observation's science target lists them.
func Apply(obs []types.Observation, ex types.Extraction, log zerolog.Logger) int {
	md := ex.Metadata
	n := 0
	for i := range obs {
		o := &obs[i]
		id, err := o.ID()
		if err != nil || id.Proposal != md.ID {
			continue
		}
		n++

		o.Title = md.Title
		o.Abstract = md.Abstract
		o.PI = md.PI()
		o.CoInvestigators = md.CoInvestigators()

		olog := log.With().Str("visit_id", o.VisitID).Logger()
		ot, ok := md.Observations[id.Observation]
		if !ok {
			olog.Warn().Int("observation", id.Observation).Msg("observation not listed in proposal")
			continue
		}
		if ot.TargetNumber == nil {
			continue
		}

		target, ok := md.Targets[*ot.TargetNumber]
		if !ok {
			olog.Warn().Int("target", *ot.TargetNumber).Msg("science target not in target list")
			continue
		}
		if target.Name != ot.TargetName {
			olog.Warn().
				Str("observation_target", ot.TargetName).
				Str("target_list", target.Name).
				Msg("target name mismatch")
		}
		if target.Coordinates == nil {
			olog.Warn().Int("target", *ot.TargetNumber).Msg("no RA and Dec available")
			continue
		}
		o.RA = target.Coordinates.RA
		o.Dec = target.Coordinates.Dec
	}
	return n
}
