// SPDX-License-Identifier: Apache-2.0

package citation

import (
	"regexp"
	"strconv"
)

// SegmentKind classifies a piece of converted text for rendering.
type SegmentKind string

const (
	SegmentText       SegmentKind = "text"
	SegmentEvidence   SegmentKind = "evidence"
	SegmentUnresolved SegmentKind = "unresolved"
	SegmentSuggestion SegmentKind = "suggestion"
)

// Segment is one renderable piece of converted text. Evidence is set for
// SegmentEvidence and SegmentSuggestion.
type Segment struct {
	Kind     SegmentKind `json:"kind"`
	Text     string      `json:"text"`
	Evidence *Evidence   `json:"evidence,omitempty"`
}

// SuggestionEvidence backs "(建議實作)" markers, which have no source.
var SuggestionEvidence = Evidence{
	ID:          0,
	SourceID:    "suggestion",
	Page:        0,
	SourceTitle: suggestionKeyword,
	Quote:       "此項目為建議實作功能",
}

var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// Segments splits text produced by ConvertMarks into plain text, evidence
// markers and suggestion markers. A marker with no entry in evidences is
// returned as SegmentUnresolved so it can be shown as plain text.
func Segments(text string, evidences Evidences) []Segment {
	var out []Segment
	appendText := func(s string) {
		if s == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].Kind == SegmentText {
			out[n-1].Text += s
			return
		}
		out = append(out, Segment{Kind: SegmentText, Text: s})
	}

	for _, tok := range Tokenize(text) {
		if tok.Kind == TokenSuggestion {
			ev := SuggestionEvidence
			out = append(out, Segment{Kind: SegmentSuggestion, Text: tok.Raw, Evidence: &ev})
			continue
		}
		raw := tok.Raw
		last := 0
		for _, loc := range markerPattern.FindAllStringSubmatchIndex(raw, -1) {
			appendText(raw[last:loc[0]])
			marker := raw[loc[0]:loc[1]]
			id, err := strconv.Atoi(raw[loc[2]:loc[3]])
			if ev, ok := evidences[id]; err == nil && ok {
				out = append(out, Segment{Kind: SegmentEvidence, Text: marker, Evidence: &ev})
			} else {
				out = append(out, Segment{Kind: SegmentUnresolved, Text: marker})
			}
			last = loc[1]
		}
		appendText(raw[last:])
	}
	return out
}
