// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Coordinates is a target position as printed in the proposal.
type Coordinates struct {
	RA  string `json:"ra" yaml:"ra"`
	Dec string `json:"dec" yaml:"dec"`
}

// Target is one entry of a proposal's target list.
type Target struct {
	Name        string       `json:"name" yaml:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// ObservationTarget links a proposal observation to its science target.
// TargetNumber is nil when the observation has no target.
type ObservationTarget struct {
	TargetNumber *int   `json:"target_number,omitempty" yaml:"target_number,omitempty"`
	TargetName   string `json:"target_name,omitempty" yaml:"target_name,omitempty"`
}

// ProposalMetadata is what the scraper recovers from one proposal PDF.
// The first investigator is the principal investigator.
type ProposalMetadata struct {
	ID            int                       `json:"id" yaml:"id"`
	Title         string                    `json:"title" yaml:"title"`
	Investigators []Investigator            `json:"investigators" yaml:"investigators"`
	Abstract      string                    `json:"abstract" yaml:"abstract"`
	Observations  map[int]ObservationTarget `json:"observations" yaml:"observations"`
	Targets       map[int]Target            `json:"targets" yaml:"targets"`
}

// PI returns the principal investigator, or nil when none was found.
func (m *ProposalMetadata) PI() *Investigator {
	if len(m.Investigators) == 0 {
		return nil
	}
	pi := m.Investigators[0]
	return &pi
}

// CoInvestigators returns every investigator after the PI.
func (m *ProposalMetadata) CoInvestigators() []Investigator {
	if len(m.Investigators) < 2 {
		return []Investigator{}
	}
	return append([]Investigator(nil), m.Investigators[1:]...)
}

// Extraction is a best-effort scrape of a proposal. Skipped names every
// section that was not found or was cut short, so callers can warn.
type Extraction struct {
	Metadata ProposalMetadata `json:"metadata" yaml:"metadata"`
	Skipped  []string         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Partial reports whether any section was skipped.
func (e Extraction) Partial() bool {
	return len(e.Skipped) > 0
}
