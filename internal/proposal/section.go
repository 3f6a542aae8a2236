// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import "strings"

// State is the position of a Section scan.
type State int

const (
	Searching State = iota
	Inside
	Done
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Inside:
		return "inside"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Matcher tests a whitespace-trimmed line.
type Matcher func(line string) bool

// Literal matches a line equal to s.
func Literal(s string) Matcher {
	return func(line string) bool { return line == s }
}

// Prefix matches a line starting with s.
func Prefix(s string) Matcher {
	return func(line string) bool { return strings.HasPrefix(line, s) }
}

// NonEmpty matches any line with text on it.
func NonEmpty(line string) bool { return line != "" }

// Section is a three-state scanner for one labeled block of a document.
// Opens moves it from Searching to Inside and Closes from Inside to Done.
type Section struct {
	Name   string
	Opens  Matcher
	Closes Matcher

	// Inclusive makes the opening line part of the section content.
	Inclusive bool

	State State
}

// NewSection returns a section delimited by two exact header lines.
func NewSection(name, header, terminal string) *Section {
	return &Section{Name: name, Opens: Literal(header), Closes: Literal(terminal)}
}

// Step advances the scanner by one line and reports whether the line is
// section content.
func (s *Section) Step(line string) bool {
	t := strings.TrimSpace(line)
	switch s.State {
	case Searching:
		if s.Opens(t) {
			s.State = Inside
			return s.Inclusive
		}
	case Inside:
		if s.Closes(t) {
			s.State = Done
			return false
		}
		return true
	}
	return false
}

// Done reports whether the closing line has been seen.
func (s *Section) Done() bool { return s.State == Done }
