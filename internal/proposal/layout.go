// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"strings"
	"unicode/utf8"
)

// column returns the rune offset of sub in line, or -1.
func column(line, sub string) int {
	i := strings.Index(line, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(line[:i])
}

// span returns the runes of line in [start, end). An end of -1 means the
// end of the line. Out-of-range offsets are clamped.
func span(line string, start, end int) string {
	r := []rune(line)
	start = min(max(start, 0), len(r))
	if end < 0 || end > len(r) {
		end = len(r)
	}
	if end < start {
		return ""
	}
	return string(r[start:end])
}

// between returns the text after the first open delimiter up to the next
// close delimiter, or to the end of s when close is missing. ok is false
// when open does not occur.
func between(s, open, close string) (string, bool) {
	_, rest, found := strings.Cut(s, open)
	if !found {
		return "", false
	}
	inner, _, _ := strings.Cut(rest, close)
	return inner, true
}

// collapse joins the whitespace-separated fields of s with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cells splits a row on runs of three or more spaces.
func cells(line string) []string {
	var out []string
	for _, c := range strings.Split(line, "   ") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
