// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/jwst-live/pkg/types"
)

const (
	// HeaderLine is the 1-based line number of the column header.
	HeaderLine = 3
	// FirstDataLine is the 1-based line number of the first observation.
	FirstDataLine = 5

	maxLineBytes = 1 << 20
)

// ErrNoObservations is returned when a report yields no usable observations.
var ErrNoObservations = errors.New("report contains no observations")

// Parse reads a schedule report and returns the merged observations in
// report order. Blank lines are skipped.
func Parse(r io.Reader) ([]types.Observation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		spec types.ColumnSpec
		raw  []types.Observation
	)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		switch {
		case n == HeaderLine:
			spec = DetectColumns(line)
		case n >= FirstDataLine:
			if strings.TrimSpace(line) == "" {
				continue
			}
			raw = append(raw, SliceLine(line, spec))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("no column header on line %d: %w", HeaderLine, ErrNoObservations)
	}

	obs, err := Merge(raw)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}
	return obs, nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string) ([]types.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report %s: %w", path, err)
	}
	defer f.Close()

	obs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obs, nil
}
