// SPDX-License-Identifier: Apache-2.0

package citation

import (
	"strconv"
	"strings"
)

// Conversion is the result of ConvertMarks.
type Conversion struct {
	// Text is the input with every source annotation replaced by markers.
	Text      string    `json:"text_with_numbers"`
	Evidences Evidences `json:"evidences"`
}

// ConvertMarks replaces each source annotation in text with one "[n]"
// marker per referenced source and returns the evidence behind each number.
//
// Numbers start at 1 and follow the order of first appearance; a source
// cited again later reuses its number. References that match no citation
// record still get a number, backed by synthetic evidence.
func ConvertMarks(text string, citations []Citation) Conversion {
	c := newConverter(citations)

	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range Tokenize(text) {
		if tok.Kind != TokenSourceCitation || len(tok.Parts) == 0 {
			b.WriteString(tok.Raw)
			continue
		}
		b.WriteString(c.markers(tok.Parts))
	}
	return Conversion{Text: b.String(), Evidences: c.evidences}
}

// converter holds the numbering state of one ConvertMarks call.
type converter struct {
	citations []Citation
	evidences Evidences
	assigned  map[string]int
	next      int
}

func newConverter(citations []Citation) *converter {
	return &converter{
		citations: citations,
		evidences: make(Evidences),
		assigned:  make(map[string]int),
		next:      1,
	}
}

func (c *converter) markers(parts []SourcePart) string {
	tags := make([]string, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, part := range parts {
		id := c.number(c.match(part))
		if seen[id] {
			continue
		}
		seen[id] = true
		tags = append(tags, "["+strconv.Itoa(id)+"]")
	}
	return strings.Join(tags, " ")
}

// number returns the marker number for ev, minting one on first use.
func (c *converter) number(ev Evidence) int {
	key := dedupKey(ev)
	if id, ok := c.assigned[key]; ok {
		return id
	}
	id := c.next
	c.next++
	ev.ID = id
	c.assigned[key] = id
	c.evidences[id] = ev
	return id
}

func dedupKey(ev Evidence) string {
	page := strconv.Itoa(ev.Page)
	if ev.SourceID == "" || ev.SourceID == UnknownSourceID {
		return UnknownSourceID + "#" + NormalizeTitle(ev.SourceTitle) + "#" + page
	}
	return ev.SourceID + "#" + page
}

// match resolves a parsed reference against the citation records: title
// and page, then title alone, then page alone among untitled records. With
// no match the reference is turned into synthetic evidence.
func (c *converter) match(part SourcePart) Evidence {
	title := NormalizeTitle(part.Title)

	var titleOnly, pageOnly *Citation
	for i := range c.citations {
		rec := &c.citations[i]
		if rec.Title == "" {
			if pageOnly == nil && rec.Page == part.Page {
				pageOnly = rec
			}
			continue
		}
		if NormalizeTitle(rec.Title) != title {
			continue
		}
		if rec.Page == part.Page {
			return fromRecord(*rec, rec.Title)
		}
		if titleOnly == nil {
			titleOnly = rec
		}
	}

	switch {
	case titleOnly != nil:
		return fromRecord(*titleOnly, titleOnly.Title)
	case pageOnly != nil:
		return fromRecord(*pageOnly, part.Title)
	default:
		return Evidence{
			SourceID:    UnknownSourceID,
			Page:        part.Page,
			SourceTitle: part.Title,
		}
	}
}

func fromRecord(rec Citation, title string) Evidence {
	sourceID := rec.SourceID
	if sourceID == "" {
		sourceID = UnknownSourceID
	}
	return Evidence{
		SourceID:    sourceID,
		Page:        rec.Page,
		SourceTitle: title,
		Quote:       rec.Quote,
	}
}
