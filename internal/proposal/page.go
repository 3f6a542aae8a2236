// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"fmt"
	"strings"
)

// Page is the layout-preserving text of one PDF page.
type Page struct {
	Lines []string
}

// SplitPages splits pdftotext output on form feeds. A trailing empty page
// left by the final form feed is dropped.
func SplitPages(text string) []Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\f")
	if n := len(raw); n > 0 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}
	pages := make([]Page, len(raw))
	for i, p := range raw {
		pages[i] = Page{Lines: strings.Split(p, "\n")}
	}
	return pages
}

// Header returns the page's running header, its first non-blank line.
func (p Page) Header() string {
	if i := p.headerIndex(); i >= 0 {
		return strings.TrimSpace(p.Lines[i])
	}
	return ""
}

// Body returns the lines between the header and the page-number line.
func (p Page) Body() []string {
	first := p.headerIndex()
	if first < 0 {
		return nil
	}
	last := len(p.Lines) - 1
	for last > first && strings.TrimSpace(p.Lines[last]) == "" {
		last--
	}
	if last <= first+1 {
		return nil
	}
	return p.Lines[first+1 : last]
}

func (p Page) headerIndex() int {
	for i, l := range p.Lines {
		if strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}

// IsOverview reports whether the page belongs to the proposal's overview.
func (p Page) IsOverview(proposal int) bool {
	h := p.Header()
	return hasNumberPrefix(h, "JWST Proposal ", proposal) && strings.HasSuffix(h, "- Overview")
}

// IsTargets reports whether the page belongs to the proposal's target list.
func (p Page) IsTargets(proposal int) bool {
	h := p.Header()
	return hasNumberPrefix(h, "Proposal ", proposal) &&
		strings.HasPrefix(strings.TrimSpace(h[len(fmt.Sprintf("Proposal %d", proposal)):]), "- Targets")
}

// hasNumberPrefix reports whether s starts with prefix followed by n and a
// non-digit, so proposal 123 does not match a header for 1234.
func hasNumberPrefix(s, prefix string, n int) bool {
	p := fmt.Sprintf("%s%d", prefix, n)
	if !strings.HasPrefix(s, p) {
		return false
	}
	rest := s[len(p):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}
