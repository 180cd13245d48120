// SPDX-License-Identifier: Apache-2.0

package citation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderkit/tender-citations/internal/citation"
)

func TestTokenize(t *testing.T) {
	text := "前言 (出處：A.docx P.1、B.pdf P.2) 中段 (建議實作) 結尾"
	tokens := citation.Tokenize(text)

	kinds := make([]citation.TokenKind, len(tokens))
	var raw strings.Builder
	for i, tok := range tokens {
		kinds[i] = tok.Kind
		raw.WriteString(tok.Raw)
	}
	assert.Equal(t, []citation.TokenKind{
		citation.TokenText,
		citation.TokenSourceCitation,
		citation.TokenText,
		citation.TokenSuggestion,
		citation.TokenText,
	}, kinds)
	assert.Equal(t, text, raw.String(), "tokens must cover the whole input")

	assert.Equal(t, []citation.SourcePart{
		{Title: "A.docx", Page: 1, RawPage: "1"},
		{Title: "B.pdf", Page: 2, RawPage: "2"},
	}, tokens[1].Parts)
}

func TestTokenize_PlainAndEmpty(t *testing.T) {
	assert.Nil(t, citation.Tokenize(""))

	tokens := citation.Tokenize("plain text")
	require.Len(t, tokens, 1)
	assert.Equal(t, citation.TokenText, tokens[0].Kind)
}

func TestTokenize_SuggestionWithFullWidthParens(t *testing.T) {
	tokens := citation.Tokenize("（ 建議實作 ）")
	require.Len(t, tokens, 1)
	assert.Equal(t, citation.TokenSuggestion, tokens[0].Kind)
	assert.Equal(t, "suggestion", tokens[0].Kind.String())
}

func TestParseSourceParts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []citation.SourcePart
	}{
		{
			name: "title containing P. is split at the last page token",
			body: "RFP.xlsx P.5",
			want: []citation.SourcePart{{Title: "RFP.xlsx", Page: 5, RawPage: "5"}},
		},
		{
			name: "space after P.",
			body: "規格書 P. 12",
			want: []citation.SourcePart{{Title: "規格書", Page: 12, RawPage: "12"}},
		},
		{
			name: "page range keeps first page",
			body: "規格書 P.3-4",
			want: []citation.SourcePart{{Title: "規格書", Page: 3, RawPage: "3-4"}},
		},
		{
			name: "bare page inherits title",
			body: "規格書 P.1, P.7",
			want: []citation.SourcePart{
				{Title: "規格書", Page: 1, RawPage: "1"},
				{Title: "規格書", Page: 7, RawPage: "7"},
			},
		},
		{
			name: "bare page without earlier title is dropped",
			body: "P.7",
			want: nil,
		},
		{
			name: "reference without page token is dropped",
			body: "附件一、規格書 P.2",
			want: []citation.SourcePart{{Title: "規格書", Page: 2, RawPage: "2"}},
		},
		{
			name: "non-numeric page",
			body: "規格書 P.abc",
			want: []citation.SourcePart{{Title: "規格書", Page: 0, RawPage: "abc"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, citation.ParseSourceParts(tt.body))
		})
	}
}

// ---------------------------------------------------------------------------
// Segments
// ---------------------------------------------------------------------------

func TestSegments(t *testing.T) {
	conv := citation.ConvertMarks("需求 (出處：RFP.xlsx P.5) 與建議 (建議實作)，另見 [9]。", mockCitations)
	segments := citation.Segments(conv.Text, conv.Evidences)

	kinds := make([]citation.SegmentKind, len(segments))
	for i, s := range segments {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []citation.SegmentKind{
		citation.SegmentText,
		citation.SegmentEvidence,
		citation.SegmentText,
		citation.SegmentSuggestion,
		citation.SegmentText,
		citation.SegmentUnresolved,
		citation.SegmentText,
	}, kinds)

	require.NotNil(t, segments[1].Evidence)
	assert.Equal(t, "uuid-2", segments[1].Evidence.SourceID)
	assert.Equal(t, "[1]", segments[1].Text)

	require.NotNil(t, segments[3].Evidence)
	assert.Equal(t, "suggestion", segments[3].Evidence.SourceID)
	assert.Equal(t, "[9]", segments[5].Text)
	assert.Nil(t, segments[5].Evidence)
}

func TestSegments_AdjacentMarkers(t *testing.T) {
	conv := citation.ConvertMarks("需求 (出處：3-需求說明書.docx P.1, RFP.xlsx P.5)", mockCitations)
	segments := citation.Segments(conv.Text, conv.Evidences)

	require.Len(t, segments, 4)
	assert.Equal(t, "需求 ", segments[0].Text)
	assert.Equal(t, citation.SegmentEvidence, segments[1].Kind)
	assert.Equal(t, " ", segments[2].Text)
	assert.Equal(t, citation.SegmentEvidence, segments[3].Kind)
}
