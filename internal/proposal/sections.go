// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"strconv"
	"strings"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// Section header lines of the proposal overview, in document order.
const (
	HeaderInvestigators        = "INVESTIGATORS"
	HeaderObservations         = "OBSERVATIONS"
	HeaderAbstract             = "ABSTRACT"
	HeaderObservingDescription = "OBSERVING DESCRIPTION"

	cyclePrefix = "Cycle: "
)

// scanOverview feeds the bodies of consecutive overview pages to sec and
// calls visit for every content line until sec is done. It reports false
// when a non-overview page comes first or the pages run out.
func scanOverview(pages []Page, proposal int, sec *Section, visit func(line string)) bool {
	for _, p := range pages {
		if !p.IsOverview(proposal) {
			return false
		}
		for _, line := range p.Body() {
			if sec.Step(line) {
				visit(line)
			}
			if sec.Done() {
				return true
			}
		}
	}
	return false
}

// Title returns the proposal title: the first text on the overview up to
// the "Cycle: " line. Without that line there is no title.
func Title(pages []Page, proposal int) (string, bool) {
	sec := &Section{Name: "title", Opens: NonEmpty, Closes: Prefix(cyclePrefix), Inclusive: true}
	var parts []string
	ok := scanOverview(pages, proposal, sec, func(line string) {
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	})
	if !ok {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// Investigators returns the investigator table in document order. The
// "Name ... Institution" row fixes where the institution column begins.
func Investigators(pages []Page, proposal int) ([]types.Investigator, bool) {
	sec := NewSection("investigators", HeaderInvestigators, HeaderObservations)
	instCol := -1
	var out []types.Investigator
	ok := scanOverview(pages, proposal, sec, func(line string) {
		t := strings.TrimSpace(line)
		switch {
		case t == "":
			return
		case strings.HasPrefix(t, "Name"):
			instCol = column(line, "Institution")
			return
		}
		var name, inst string
		if instCol > 0 {
			name = span(line, 0, instCol)
			inst = span(line, instCol, -1)
		} else {
			name = line
		}
		name, _, _ = strings.Cut(name, "(")
		out = append(out, types.Investigator{
			Name:        strings.TrimSpace(name),
			Institution: collapse(strings.ReplaceAll(inst, ",", " - ")),
		})
	})
	return out, ok
}

// Abstract returns the abstract paragraph joined into one line.
func Abstract(pages []Page, proposal int) (string, bool) {
	sec := NewSection("abstract", HeaderAbstract, HeaderObservingDescription)
	var parts []string
	ok := scanOverview(pages, proposal, sec, func(line string) {
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " "), ok
}

// observationColumns are the offsets fixed by the "Folder" header row.
type observationColumns struct {
	number, label, template int
}

// Observations returns the proposal's observation list keyed by
// observation number. Rows that cannot be read are returned as notes.
func Observations(pages []Page, proposal int) (map[int]types.ObservationTarget, []string, bool) {
	sec := NewSection("observations", HeaderObservations, HeaderAbstract)
	out := make(map[int]types.ObservationTarget)
	var (
		cols  *observationColumns
		notes []string
	)
	ok := scanOverview(pages, proposal, sec, func(line string) {
		t := strings.TrimSpace(line)
		if t == "" {
			return
		}
		if strings.HasPrefix(t, "Folder") {
			cols = &observationColumns{
				number:   column(line, "Observation"),
				label:    column(line, "Label"),
				template: column(line, "Observing Template"),
			}
			if cols.template < cols.label {
				cols.template = cols.label
			}
			return
		}
		if cols == nil || cols.number < 0 {
			return
		}
		// Folder rows carry text left of the observation number.
		if strings.TrimSpace(span(line, 0, cols.number)) != "" {
			return
		}
		cell := strings.TrimSpace(span(line, cols.number, cols.label))
		if cell == "" {
			return
		}
		num, err := strconv.Atoi(cell)
		if err != nil {
			notes = append(notes, "observations: unreadable observation number "+strconv.Quote(cell))
			return
		}
		out[num] = observationTarget(span(line, cols.template, -1))
	})
	return out, notes, ok
}

// observationTarget reads "(3) NGC-1234" from the template column onward.
// Rows without a parenthesized number have no target.
func observationTarget(rest string) types.ObservationTarget {
	numText, found := between(rest, "(", ")")
	if !found {
		return types.ObservationTarget{}
	}
	var ot types.ObservationTarget
	if n, err := strconv.Atoi(strings.TrimSpace(numText)); err == nil {
		ot.TargetNumber = &n
	}
	if _, after, ok := strings.Cut(rest, ")"); ok {
		name, _, _ := strings.Cut(after, ")")
		ot.TargetName = strings.TrimSpace(name)
	}
	return ot
}

// Targets reads the target list pages that follow the overview. Each
// target row starts with "(n)"; a coordinate cell starting "RA:" carries
// RA in parentheses and the row below carries Dec at the same column.
func Targets(pages []Page, proposal int) (map[int]types.Target, []string, bool) {
	out := make(map[int]types.Target)
	var notes []string
	state := Searching

	for _, p := range pages {
		if state == Searching && p.IsOverview(proposal) {
			continue
		}
		if !p.IsTargets(proposal) {
			state = Done
			break
		}
		state = Inside

		nameCol, coordCol := -1, -1
		body := p.Body()
		for i, line := range body {
			if !strings.HasPrefix(strings.TrimSpace(line), "(") {
				continue
			}
			if nameCol < 0 {
				c := cells(line)
				if len(c) < 2 {
					notes = append(notes, "targets: cannot find columns in "+strconv.Quote(strings.TrimSpace(line)))
					continue
				}
				nameCol = column(line, c[1])
				if len(c) > 2 {
					coordCol = column(line, c[2])
				}
			}

			numText, _ := between(span(line, 0, nameCol), "(", ")")
			num, err := strconv.Atoi(strings.TrimSpace(numText))
			if err != nil {
				notes = append(notes, "targets: unreadable target number "+strconv.Quote(numText))
				continue
			}
			target := types.Target{Name: strings.TrimSpace(span(line, nameCol, coordCol))}

			if coordCol >= 0 {
				cell := strings.TrimSpace(span(line, coordCol, -1))
				if strings.HasPrefix(cell, "RA:") && i+1 < len(body) {
					ra, raOK := between(cell, "(", ")")
					dec, decOK := between(span(body[i+1], coordCol, -1), "(", ")")
					if raOK && decOK {
						target.Coordinates = &types.Coordinates{RA: strings.TrimSpace(ra), Dec: strings.TrimSpace(dec)}
					}
				}
			}
			out[num] = target
		}
	}
	// Running out of pages after the target list also ends the scan.
	if state == Inside {
		state = Done
	}
	return out, notes, state == Done && len(out) > 0
}
