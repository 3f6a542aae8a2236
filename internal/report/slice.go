// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// SliceLine cuts a data line into an Observation using the column spec.
// Each field is the trimmed text of the line within the column's range;
// columns past the end of a short line are empty. The two multi-value
// fields start as one-element sets.
func SliceLine(line string, spec types.ColumnSpec) types.Observation {
	runes := []rune(strings.TrimRight(line, "\r\n"))
	var obs types.Observation

	for _, col := range spec {
		value := strings.TrimSpace(cut(runes, col))
		switch col.Label {
		case types.LabelVisitID:
			obs.VisitID = value
		case types.LabelCategory:
			obs.Category = value
		case types.LabelStartTime:
			obs.StartTime = value
		case types.LabelDuration:
			obs.Duration = value
		case types.LabelTargetName:
			obs.TargetName = value
		case types.LabelKeywords:
			obs.Keywords = value
		case types.LabelVisitType:
			obs.VisitType = []string{value}
		case types.LabelInstruments:
			obs.Instruments = []string{value}
		default:
			if obs.Extra == nil {
				obs.Extra = make(map[string]string)
			}
			obs.Extra[col.Label] = value
		}
	}
	return obs
}

func cut(line []rune, col types.Column) string {
	start := min(max(col.Start, 0), len(line))
	end := len(line)
	if !col.Unbounded() {
		end = min(max(col.End, start), len(line))
	}
	return string(line[start:end])
}
