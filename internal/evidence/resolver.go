// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/textmatch"
)

const (
	confidenceCitedPage = 1.0
	confidenceOtherPage = 0.6
)

// Highlight is the resolved location of one evidence quote.
type Highlight struct {
	EvidenceID int             `json:"evidence_id"`
	DocumentID string          `json:"document_id,omitempty"`
	Page       int             `json:"page,omitempty"`
	Match      textmatch.Match `json:"match"`
	Text       string          `json:"text,omitempty"`
	Found      bool            `json:"found"`
	Confidence float64         `json:"confidence"`
}

// Resolver locates evidence quotes inside loaded documents. The cited page is
// searched first, then every other page of the same document.
type Resolver struct {
	opts []textmatch.Option
}

func NewResolver(opts ...textmatch.Option) *Resolver {
	return &Resolver{opts: opts}
}

// pageIndexes caches one textmatch.Index per page, keyed by the document's
// position in the docs slice of a single Resolve call.
type pageIndexes map[int]map[int]*textmatch.Index

func (c pageIndexes) get(doc int, page Page) *textmatch.Index {
	pages, ok := c[doc]
	if !ok {
		pages = make(map[int]*textmatch.Index)
		c[doc] = pages
	}
	idx, ok := pages[page.Number]
	if !ok {
		idx = textmatch.NewIndex(page.Text, nil)
		pages[page.Number] = idx
	}
	return idx
}

// Resolve returns one Highlight per evidence, ordered by evidence number.
func (r *Resolver) Resolve(evidences citation.Evidences, docs []SourceDocument) []Highlight {
	sorted := evidences.Sorted()
	cache := make(pageIndexes)
	highlights := make([]Highlight, 0, len(sorted))
	for _, ev := range sorted {
		highlights = append(highlights, r.resolveOne(ev, docs, cache))
	}
	return highlights
}

// resolveOne skips evidence without a quote. Synthetic evidence never
// carries one; a matched record without a source id still does.
func (r *Resolver) resolveOne(ev citation.Evidence, docs []SourceDocument, cache pageIndexes) Highlight {
	h := Highlight{EvidenceID: ev.ID, Page: ev.Page}
	if ev.Quote == "" {
		return h
	}
	i, ok := findDocument(ev, docs)
	if !ok {
		return h
	}
	doc := docs[i]
	h.DocumentID = doc.ID

	if page, ok := doc.Page(ev.Page); ok {
		if m, found := cache.get(i, page).Locate(ev.Quote, r.opts...); found {
			return r.found(h, page, m, confidenceCitedPage)
		}
	}
	for _, page := range doc.Pages {
		if page.Number == ev.Page {
			continue
		}
		if m, found := cache.get(i, page).Locate(ev.Quote, r.opts...); found {
			return r.found(h, page, m, confidenceOtherPage)
		}
	}
	return h
}

func (r *Resolver) found(h Highlight, page Page, m textmatch.Match, confidence float64) Highlight {
	h.Page = page.Number
	h.Match = m
	h.Text = m.Slice(page.Text)
	h.Found = true
	h.Confidence = confidence
	return h
}

// findDocument returns the position of the document matching ev: by source
// id first, then by normalized title.
func findDocument(ev citation.Evidence, docs []SourceDocument) (int, bool) {
	if !ev.Synthetic() {
		for i, d := range docs {
			if d.ID != "" && d.ID == ev.SourceID {
				return i, true
			}
		}
	}
	want := citation.NormalizeTitle(ev.SourceTitle)
	if want == "" {
		return 0, false
	}
	for i, d := range docs {
		if citation.NormalizeTitle(d.Title) == want {
			return i, true
		}
	}
	return 0, false
}
