// SPDX-License-Identifier: Apache-2.0

// Package evidence loads source documents and resolves numbered evidence
// back to the exact quoted span on the cited page.
package evidence

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedFormat is returned when no loader accepts a source.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the extracted text of one page (or sheet) of a document.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// SourceDocument is a loaded document split into pages numbered from 1.
type SourceDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Format string `json:"format"`
	Pages  []Page `json:"pages"`
}

// Page returns the page with the given number.
func (d SourceDocument) Page(number int) (Page, bool) {
	for _, p := range d.Pages {
		if p.Number == number {
			return p, true
		}
	}
	return Page{}, false
}

// Text returns all pages joined by blank lines.
func (d SourceDocument) Text() string {
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

// EvidenceSource describes the raw input to a Loader.
type EvidenceSource struct {
	// Content is the raw document content.
	Content []byte
	Format  string
	ID      string
	// Title is the display name citations use for this document, usually
	// the file name.
	Title string
}

type Loader interface {
	CanHandle(source EvidenceSource) bool
	Load(ctx context.Context, source EvidenceSource) (SourceDocument, error)
	Name() string
}

// SplitPages splits text on form feeds, the page separator emitted by most
// text extraction tools. Empty trailing pages are dropped.
func SplitPages(text string) []Page {
	raw := strings.Split(text, "\f")
	for len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make([]Page, len(raw))
	for i, t := range raw {
		pages[i] = Page{Number: i + 1, Text: t}
	}
	return pages
}
