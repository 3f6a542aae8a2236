// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corrections reads and writes the operator correction file: a
// CSV keyed by visit id that fills in what the proposal scraper missed.
package corrections

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// ErrQuotedField is returned for any line containing a double quote. The
// reader splits on commas only and cannot interpret quoting.
var ErrQuotedField = errors.New("correction file contains a quoted field")

// Header is the first line of every correction file.
var Header = []string{
	"Proposal", "Observation", "Num", "Link", "RA", "Dec",
	"PI", "PI Institution", "Title", "Abstract",
}

// Column positions within a row.
const (
	colProposal = iota
	colObservation
	colNum
	colLink
	colRA
	colDec
	colPI
	colPIInstitution
	colTitle
	colAbstract
)

// Row is one line of the correction file. Empty cells mean "no change".
type Row struct {
	VisitID       types.VisitID
	Link          string
	RA            string
	Dec           string
	PI            string
	PIInstitution string
	Title         string
	Abstract      string
}

// Sanitize makes a free-text value safe for the strict reader: commas
// become " -", double quotes become single quotes, and line breaks and
// runs of whitespace collapse to one space with the ends trimmed.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, ",", " -")
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.Join(strings.Fields(s), " ")
}

// WriteCSV writes one row per observation that still lacks coordinates,
// sorted by visit id. link builds the proposal URL shown to the operator.
// It returns the number of rows written.
func WriteCSV(w io.Writer, obs []types.Observation, link func(proposal int) string) (int, error) {
	type entry struct {
		id types.VisitID
		o  *types.Observation
	}
	var pending []entry
	for i := range obs {
		o := &obs[i]
		if o.HasCoordinates() {
			continue
		}
		id, err := o.ID()
		if err != nil {
			return 0, fmt.Errorf("observation %q: %w", o.VisitID, err)
		}
		pending = append(pending, entry{id, o})
	}
	slices.SortStableFunc(pending, func(a, b entry) int {
		switch {
		case a.id.Less(b.id):
			return -1
		case b.id.Less(a.id):
			return 1
		}
		return 0
	})

	// Rows are joined on commas without quoting; Parse splits the same way.
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Header, ",") + "\n")
	for _, e := range pending {
		var pi, inst string
		if e.o.PI != nil {
			pi, inst = e.o.PI.Name, e.o.PI.Institution
		}
		record := []string{
			strconv.Itoa(e.id.Proposal),
			strconv.Itoa(e.id.Observation),
			strconv.Itoa(e.id.Subindex),
			Sanitize(link(e.id.Proposal)),
			Sanitize(e.o.RA),
			Sanitize(e.o.Dec),
			Sanitize(pi),
			Sanitize(inst),
			Sanitize(e.o.Title),
			Sanitize(e.o.Abstract),
		}
		bw.WriteString(strings.Join(record, ",") + "\n")
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("writing correction file: %w", err)
	}
	return len(pending), nil
}

// WriteFile writes the correction file at path.
func WriteFile(path string, obs []types.Observation, link func(proposal int) string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := WriteCSV(f, obs, link)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// Parse reads a correction file. The first line is the header and blank
// lines are skipped. Cells are split on every comma; cells past the last
// column belong to the abstract and are joined back with commas.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, `"`) {
			return nil, fmt.Errorf("line %d: %w", lineNum, ErrQuotedField)
		}

		cells := strings.Split(line, ",")
		if len(cells) > colAbstract+1 {
			cells = append(cells[:colAbstract], strings.Join(cells[colAbstract:], ","))
		}
		cell := func(i int) string {
			if i < len(cells) {
				return strings.TrimSpace(cells[i])
			}
			return ""
		}

		id, err := types.ParseVisitID(cell(colProposal) + ":" + cell(colObservation) + ":" + cell(colNum))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, Row{
			VisitID:       id,
			Link:          cell(colLink),
			RA:            cell(colRA),
			Dec:           cell(colDec),
			PI:            cell(colPI),
			PIInstitution: cell(colPIInstitution),
			Title:         cell(colTitle),
			Abstract:      cell(colAbstract),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading correction file: %w", err)
	}
	return rows, nil
}

// ParseFile reads the correction file at path.
func ParseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening correction file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply overlays rows onto matching observations and returns how many
// observations changed. Title, Abstract, PI name, PI institution, RA and
// Dec are overwritten only by non-empty cells; every other field is left
// as it was. Unmatched rows are ignored.
func Apply(obs []types.Observation, rows []Row) int {
	byID := make(map[types.VisitID]*Row, len(rows))
	for i := range rows {
		byID[rows[i].VisitID] = &rows[i]
	}

	n := 0
	for i := range obs {
		o := &obs[i]
		id, err := o.ID()
		if err != nil {
			continue
		}
		row, ok := byID[id]
		if !ok {
			continue
		}
		n++

		set(&o.Title, row.Title)
		set(&o.Abstract, row.Abstract)
		set(&o.RA, row.RA)
		set(&o.Dec, row.Dec)
		if row.PI != "" || row.PIInstitution != "" {
			pi := types.Investigator{}
			if o.PI != nil {
				pi = *o.PI
			}
			set(&pi.Name, row.PI)
			set(&pi.Institution, row.PIInstitution)
			o.PI = &pi
		}
	}
	return n
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
