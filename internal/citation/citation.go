// SPDX-License-Identifier: Apache-2.0

// Package citation turns inline source annotations in generated proposal
// text, such as "(出處：需求說明書.docx P.3)", into numbered markers backed by
// Evidence records, and formats citations back into that annotation form.
//
// Nothing in this package performs I/O or keeps state between calls.
package citation

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// UnknownSourceID marks evidence synthesized from annotation text alone.
	UnknownSourceID = "unknown"
	// UnknownSourceTitle is the title used by CollectAll for untitled records.
	UnknownSourceTitle = "Unknown Source"
	// PlaceholderTitle is the title written by the formatter for untitled records.
	PlaceholderTitle = "未知來源"
)

// Citation is a reference to a page of a source document supplied alongside
// generated text.
type Citation struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	Page     int    `json:"page" yaml:"page"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Quote    string `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// Evidence is the numbered, display-ready form of a Citation.
type Evidence struct {
	ID          int    `json:"id"`
	SourceID    string `json:"source_id"`
	Page        int    `json:"page"`
	SourceTitle string `json:"source_title"`
	Quote       string `json:"quote,omitempty"`
}

// Synthetic reports whether e carries the placeholder source id, either
// because no record matched or because the matched record had none.
func (e Evidence) Synthetic() bool {
	return e.SourceID == UnknownSourceID
}

// Evidences maps a marker number to its evidence.
type Evidences map[int]Evidence

// Sorted returns the evidences ordered by marker number.
func (e Evidences) Sorted() []Evidence {
	out := make([]Evidence, 0, len(e))
	for _, ev := range e {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var documentExtension = regexp.MustCompile(`\.(pdf|docx|doc|txt)$`)

// NormalizeTitle returns the form used to compare document titles: lower
// case, without a trailing .pdf, .docx, .doc or .txt extension.
func NormalizeTitle(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	return strings.TrimSpace(documentExtension.ReplaceAllString(lower, ""))
}

// CollectAll numbers every citation 1..N in slice order, independent of
// which ones are referenced in any text.
func CollectAll(citations []Citation) Evidences {
	evidences := make(Evidences, len(citations))
	for i, c := range citations {
		title := c.Title
		if title == "" {
			title = UnknownSourceTitle
		}
		evidences[i+1] = Evidence{
			ID:          i + 1,
			SourceID:    c.SourceID,
			Page:        c.Page,
			SourceTitle: title,
			Quote:       c.Quote,
		}
	}
	return evidences
}
