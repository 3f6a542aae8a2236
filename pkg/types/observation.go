// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Column labels used by the schedule report header.
const (
	LabelVisitID     = "VISIT ID"
	LabelVisitType   = "VISIT TYPE"
	LabelStartTime   = "SCHEDULED START TIME"
	LabelDuration    = "DURATION"
	LabelInstruments = "SCIENCE INSTRUMENT AND MODE"
	LabelTargetName  = "TARGET NAME"
	LabelCategory    = "CATEGORY"
	LabelKeywords    = "KEYWORDS"
)

// AttachedToPrime is the start-time value of a report line that belongs to
// the observation on the line before it.
const AttachedToPrime = "^ATTACHED TO PRIME^"

// CategoryCalibration marks observations that are never published.
const CategoryCalibration = "Calibration"

// Column is one named field of a fixed-width report line. End is exclusive;
// an End of -1 extends the column to the end of the line.
type Column struct {
	Label string `json:"label" yaml:"label"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Unbounded reports whether the column runs to the end of the line.
func (c Column) Unbounded() bool { return c.End < 0 }

// ColumnSpec is the ordered set of columns derived from a header line.
type ColumnSpec []Column

// Labels returns the column labels in order.
func (s ColumnSpec) Labels() []string {
	labels := make([]string, len(s))
	for i, c := range s {
		labels[i] = c.Label
	}
	return labels
}

// VisitID identifies one observation as proposal:observation:subindex.
type VisitID struct {
	Proposal    int
	Observation int
	Subindex    int
}

// ParseVisitID parses "1234:1:1". Each part must be a non-negative integer.
func ParseVisitID(s string) (VisitID, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return VisitID{}, fmt.Errorf("visit id %q: want proposal:observation:subindex", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return VisitID{}, fmt.Errorf("visit id %q: part %d is not a non-negative integer", s, i+1)
		}
		nums[i] = n
	}
	return VisitID{Proposal: nums[0], Observation: nums[1], Subindex: nums[2]}, nil
}

func (v VisitID) String() string {
	return fmt.Sprintf("%d:%d:%d", v.Proposal, v.Observation, v.Subindex)
}

// Less orders visit ids numerically, component by component.
func (v VisitID) Less(o VisitID) bool {
	if v.Proposal != o.Proposal {
		return v.Proposal < o.Proposal
	}
	if v.Observation != o.Observation {
		return v.Observation < o.Observation
	}
	return v.Subindex < o.Subindex
}

// Investigator is a named person and their institution.
type Investigator struct {
	Name        string `json:"name" yaml:"name"`
	Institution string `json:"institution" yaml:"institution"`
}

// Observation is one scheduled visit from the report, optionally enriched
// with proposal metadata and operator corrections.
type Observation struct {
	VisitID    string `json:"visit_id"`
	Category   string `json:"category"`
	StartTime  string `json:"start_time"`
	Duration   string `json:"duration"`
	TargetName string `json:"target_name"`
	Keywords   string `json:"keywords"`

	// VisitType and Instruments hold set semantics while records are
	// merged and are sorted once merging finishes.
	VisitType   []string `json:"visit_type"`
	Instruments []string `json:"instruments"`

	// Extra holds columns the report carries that have no dedicated field.
	Extra map[string]string `json:"extra,omitempty"`

	Title           string         `json:"title,omitempty"`
	Abstract        string         `json:"abstract,omitempty"`
	PI              *Investigator  `json:"pi,omitempty"`
	CoInvestigators []Investigator `json:"co_investigators,omitempty"`
	RA              string         `json:"ra,omitempty"`
	Dec             string         `json:"dec,omitempty"`
}

// ID parses the observation's visit id.
func (o *Observation) ID() (VisitID, error) {
	return ParseVisitID(o.VisitID)
}

// HasCoordinates reports whether both RA and Dec are known.
func (o *Observation) HasCoordinates() bool {
	return o.RA != "" && o.Dec != ""
}
