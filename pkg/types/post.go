// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BlockType identifies the kind of content in a post body block.
type BlockType string

const (
	BlockMarkdown BlockType = "markdown"
	BlockImage    BlockType = "image"
)

// Block is one piece of a post body. For image blocks Value is the file
// name of the screenshot, relative to the output's screenshots directory.
type Block struct {
	Type    BlockType `json:"type"`
	Value   string    `json:"value"`
	AltText string    `json:"alt_text,omitempty"`
}

// Post is one scheduled social post.
type Post struct {
	PostTime time.Time `json:"post_time"`
	Title    string    `json:"title"`
	Body     []Block   `json:"body"`
	Tags     []string  `json:"tags"`
}

// Key identifies a post across runs of the publisher.
func (p Post) Key() string {
	return p.PostTime.UTC().Format(time.RFC3339) + " " + p.Title
}

// ObservationMetadata is the flattened per-observation record written to
// metadata.json. Missing values are "N/A".
type ObservationMetadata struct {
	VisitID         string         `json:"visit_id"`
	ProposalID      string         `json:"proposal_id"`
	Observation     string         `json:"observation"`
	StartDate       string         `json:"start_date"`
	StartTime       string         `json:"start_time"`
	TargetName      string         `json:"target_name"`
	Duration        string         `json:"duration"`
	PI              string         `json:"pi"`
	PIInstitution   string         `json:"pi_inst"`
	Title           string         `json:"title"`
	Image           string         `json:"image"`
	Category        string         `json:"category"`
	Keywords        string         `json:"keywords"`
	Abstract        string         `json:"abstract"`
	CoInvestigators []Investigator `json:"co_investigators"`
	InstrumentModes []string       `json:"inst_plus_mode"`
	Instruments     []string       `json:"instruments"`
}
