// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// ErrOrphanAttachment is returned when an attached line has no prime
// observation before it.
var ErrOrphanAttachment = errors.New("attached observation has no prime observation before it")

// Merge folds attached lines into their prime observation, drops records
// without a visit id and calibration records, and sorts the multi-value
// fields. The input is not modified.
func Merge(raw []types.Observation) ([]types.Observation, error) {
	folded, err := FoldAttachments(raw)
	if err != nil {
		return nil, err
	}
	kept := Filter(folded)
	Finalize(kept)
	return kept, nil
}

// FoldAttachments unions each attached line's visit types and instruments
// into the record immediately before it and removes the attached line.
// Attached lines must directly follow their prime line in report order.
func FoldAttachments(raw []types.Observation) ([]types.Observation, error) {
	out := make([]types.Observation, 0, len(raw))
	for i, obs := range raw {
		if obs.StartTime != types.AttachedToPrime {
			out = append(out, clone(obs))
			continue
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("record %d (visit %q): %w", i+1, obs.VisitID, ErrOrphanAttachment)
		}
		prime := &out[len(out)-1]
		prime.VisitType = union(prime.VisitType, obs.VisitType)
		prime.Instruments = union(prime.Instruments, obs.Instruments)
	}
	return out, nil
}

// Filter drops records with no visit id and calibration records.
func Filter(obs []types.Observation) []types.Observation {
	out := obs[:0:0]
	for _, o := range obs {
		if o.VisitID == "" || o.Category == types.CategoryCalibration {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Finalize sorts and de-duplicates the multi-value fields in place.
// Running it twice gives the same result.
func Finalize(obs []types.Observation) {
	for i := range obs {
		obs[i].VisitType = sortedSet(obs[i].VisitType)
		obs[i].Instruments = sortedSet(obs[i].Instruments)
	}
}

func union(a, b []string) []string {
	for _, v := range b {
		if !slices.Contains(a, v) {
			a = append(a, v)
		}
	}
	return a
}

func sortedSet(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

func clone(o types.Observation) types.Observation {
	o.VisitType = slices.Clone(o.VisitType)
	o.Instruments = slices.Clone(o.Instruments)
	return o
}
