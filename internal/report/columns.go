// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report tokenizes the fixed-width observing schedule export into
// Observation records.
package report

import (
	"strings"
	"unicode"

	"github.com/pdiddy/jwst-live/pkg/types"
)

type scanState int

const (
	inWord     scanState = iota // inside a label, or before the first one
	exitedWord                  // one space after a label; may still be inside it
	inGap                       // two or more spaces; the next letter starts a column
)

// DetectColumns derives a ColumnSpec from a header line. Labels may contain
// single spaces ("VISIT TYPE"); two or more spaces separate columns. Each
// column spans from its first letter up to the first letter of the next
// column, and the last column is unbounded. A line with no letters yields
// an empty spec.
func DetectColumns(header string) types.ColumnSpec {
	line := []rune(strings.TrimRight(header, "\r\n"))

	var (
		spec     types.ColumnSpec
		seen     = make(map[string]bool)
		state    = inGap
		start    = -1
		labelEnd = 0
	)

	add := func(label string, s, e int) {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		spec = append(spec, types.Column{Label: label, Start: s, End: e})
	}

	for i, r := range line {
		switch state {
		case inWord:
			if r == ' ' {
				state = exitedWord
			}
		case exitedWord:
			switch {
			case unicode.IsLetter(r):
				state = inWord
			case r == ' ':
				state = inGap
				labelEnd = i - 1
			}
		case inGap:
			if unicode.IsLetter(r) {
				if start >= 0 {
					add(string(line[start:labelEnd]), start, i)
				}
				start = i
				state = inWord
			}
		}
	}

	if start < 0 {
		return spec
	}
	// The last label runs to the end of the line unless a gap closed it.
	end := len(line)
	if state == inGap && labelEnd > start {
		end = labelEnd
	}
	add(string(line[start:end]), start, -1)
	return spec
}
