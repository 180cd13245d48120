// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/config"
	"github.com/tenderkit/tender-citations/internal/logging"
	"github.com/tenderkit/tender-citations/internal/textmatch"
)

var testCitations = []citation.Citation{
	{SourceID: "uuid-1", Page: 1, Title: "3-需求說明書.docx", Quote: "系統應支援匯出"},
	{SourceID: "uuid-2", Page: 5, Title: "RFP.xlsx"},
}

func TestConvertCitationMarks(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          InputConvertCitationMarks
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputConvertCitationMarks)
	}{
		{
			name:        "empty text returns error",
			input:       InputConvertCitationMarks{Text: ""},
			wantErr:     true,
			errContains: "text is required",
		},
		{
			name: "annotations become numbered markers",
			input: InputConvertCitationMarks{
				Text:      "系統應支援匯出 (出處：3-需求說明書.docx P.1, RFP.xlsx P.5)。",
				Citations: testCitations,
			},
			validateOutput: func(t *testing.T, output OutputConvertCitationMarks) {
				assert.Equal(t, "系統應支援匯出 [1] [2]。", output.TextWithNumbers)
				require.Len(t, output.Evidences, 2)
				assert.Equal(t, 1, output.Evidences[0].ID)
				assert.Equal(t, "uuid-1", output.Evidences[0].SourceID)
				assert.Equal(t, "uuid-2", output.Evidences[1].SourceID)
				assert.NotEmpty(t, output.Segments)
			},
		},
		{
			name:  "unmatched reference gets a placeholder",
			input: InputConvertCitationMarks{Text: "需求 (出處：不存在.pdf P.3)"},
			validateOutput: func(t *testing.T, output OutputConvertCitationMarks) {
				assert.Equal(t, "需求 [1]", output.TextWithNumbers)
				require.Len(t, output.Evidences, 1)
				assert.True(t, output.Evidences[0].Synthetic())
			},
		},
		{
			name:  "text without annotations is unchanged",
			input: InputConvertCitationMarks{Text: "沒有出處的句子", Citations: testCitations},
			validateOutput: func(t *testing.T, output OutputConvertCitationMarks) {
				assert.Equal(t, "沒有出處的句子", output.TextWithNumbers)
				assert.Empty(t, output.Evidences)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := ConvertCitationMarks(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestCollectEvidences(t *testing.T) {
	_, output, err := CollectEvidences(context.Background(), &mcp.CallToolRequest{}, InputCollectEvidences{
		Citations: append(testCitations, citation.Citation{SourceID: "uuid-3", Page: 2}),
	})
	require.NoError(t, err)
	require.Len(t, output.Evidences, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{output.Evidences[0].ID, output.Evidences[1].ID, output.Evidences[2].ID})
	assert.Equal(t, citation.UnknownSourceTitle, output.Evidences[2].SourceTitle)
}

func TestAppendAndExtractSource(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, appended, err := AppendSource(ctx, req, InputAppendSource{Text: "系統應支援匯出。", Citations: testCitations})
	require.NoError(t, err)
	assert.Equal(t, "系統應支援匯出 (出處：3-需求說明書.docx P.1, RFP.xlsx P.5)。", appended.Text)
	assert.Equal(t, "3-需求說明書.docx P.1, RFP.xlsx P.5", appended.Sources)

	_, extracted, err := ExtractSource(ctx, req, InputExtractSource{Text: appended.Text})
	require.NoError(t, err)
	assert.True(t, extracted.HasAnnotation)
	assert.Equal(t, "系統應支援匯出", extracted.Body)
	assert.Equal(t, appended.Sources, extracted.Sources)

	_, extracted, err = ExtractSource(ctx, req, InputExtractSource{Text: "沒有出處"})
	require.NoError(t, err)
	assert.False(t, extracted.HasAnnotation)
	assert.Equal(t, "沒有出處", extracted.Body)

	_, _, err = ExtractSource(ctx, req, InputExtractSource{Text: "  "})
	assert.Error(t, err)
}

func TestFormatRequirements(t *testing.T) {
	_, output, err := FormatRequirements(context.Background(), &mcp.CallToolRequest{}, InputFormatRequirements{
		Requirements: []citation.Requirement{
			{ID: "R1", RequirementText: "需求一", Citations: testCitations[:1]},
			{ID: "R2", RequirementText: "需求二"},
		},
	})
	require.NoError(t, err)
	require.Len(t, output.Requirements, 2)
	assert.Equal(t, "需求一 (出處：3-需求說明書.docx P.1)。", output.Requirements[0].FormattedText)
	assert.Equal(t, "需求二", output.Requirements[1].FormattedText)
}

func TestLocateQuote(t *testing.T) {
	ts := NewToolset(config.Default(), logging.NewNop())
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	off := false

	tests := []struct {
		name        string
		input       InputLocateQuote
		wantErr     bool
		wantFound   bool
		wantMatch   textmatch.Match
		wantText    string
		wantMatches int
	}{
		{name: "content required", input: InputLocateQuote{Quote: "x"}, wantErr: true},
		{
			name:      "normalized match",
			input:     InputLocateQuote{Content: "系統應支援 **匯出** 功能", Quote: "系統應支援匯出功能"},
			wantFound: true,
			wantMatch: textmatch.Match{Start: 0, End: 15},
			wantText:  "系統應支援 **匯出** 功能",
		},
		{
			name:      "exact fallback from server default",
			input:     InputLocateQuote{Content: "a|b", Quote: "|"},
			wantFound: true,
			wantMatch: textmatch.Match{Start: 1, End: 2},
			wantText:  "|",
		},
		{
			name:  "exact fallback disabled per call",
			input: InputLocateQuote{Content: "a|b", Quote: "|", ExactFallback: &off},
		},
		{
			name:        "all occurrences",
			input:       InputLocateQuote{Content: "Export, export, EXPORT", Quote: "export", All: true},
			wantFound:   true,
			wantMatch:   textmatch.Match{Start: 8, End: 14},
			wantText:    "export",
			wantMatches: 3,
		},
		{name: "empty quote is not found", input: InputLocateQuote{Content: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := ts.LocateQuote(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, output.Found)
			assert.Equal(t, tt.wantMatch, output.Match)
			assert.Equal(t, tt.wantText, output.Text)
			assert.Len(t, output.Occurrences, tt.wantMatches)
		})
	}
}

func newDocumentToolset(t *testing.T) (*Toolset, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "spec.txt"), []byte("第一頁\f系統應支援匯出功能"), 0o600))

	cfg := config.Default()
	cfg.Documents.Roots = []string{root}
	cfg.Documents.MaxBytes = 1024
	return NewToolset(cfg, logging.NewNop()), root
}

func TestResolveEvidence(t *testing.T) {
	ts, _ := newDocumentToolset(t)
	citations := []citation.Citation{{SourceID: "uuid-1", Page: 2, Title: "spec.txt", Quote: "系統應支援匯出功能"}}

	_, output, err := ts.ResolveEvidence(context.Background(), &mcp.CallToolRequest{}, InputResolveEvidence{
		Text:      "需求 (出處：spec.txt P.2)",
		Citations: citations,
		Documents: []DocumentRef{{Path: "spec.txt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "需求 [1]", output.TextWithNumbers)
	require.Len(t, output.Highlights, 1)

	h := output.Highlights[0]
	assert.True(t, h.Found)
	assert.Equal(t, 2, h.Page)
	assert.Equal(t, textmatch.Match{Start: 0, End: 9}, h.Match)
	assert.Equal(t, 1.0, h.Confidence)
}

func TestResolveEvidence_WithoutTextUsesAllCitations(t *testing.T) {
	ts, _ := newDocumentToolset(t)
	citations := []citation.Citation{
		{SourceID: "doc", Page: 1, Title: "spec.txt", Quote: "匯出功能"},
		{SourceID: "other", Page: 1, Title: "other.pdf", Quote: "x"},
	}

	_, output, err := ts.ResolveEvidence(context.Background(), &mcp.CallToolRequest{}, InputResolveEvidence{
		Citations: citations,
		Documents: []DocumentRef{{Path: "spec.txt", SourceID: "doc"}},
	})
	require.NoError(t, err)
	assert.Empty(t, output.TextWithNumbers)
	require.Len(t, output.Highlights, 2)
	assert.True(t, output.Highlights[0].Found)
	assert.Equal(t, 2, output.Highlights[0].Page)
	assert.Equal(t, 0.6, output.Highlights[0].Confidence)
	assert.False(t, output.Highlights[1].Found)
}

func TestResolveEvidence_DocumentErrors(t *testing.T) {
	ts, root := newDocumentToolset(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), make([]byte, 2048), 0o600))

	tests := []struct {
		name        string
		docs        []DocumentRef
		errContains string
	}{
		{name: "no documents", docs: nil, errContains: "at least one document"},
		{name: "empty path", docs: []DocumentRef{{}}, errContains: "document path is required"},
		{name: "outside roots", docs: []DocumentRef{{Path: "../secret.txt"}}, errContains: "outside the configured roots"},
		{name: "missing", docs: []DocumentRef{{Path: "missing.pdf"}}, errContains: "failed to resolve document path"},
		{name: "too large", docs: []DocumentRef{{Path: "big.txt"}}, errContains: "byte limit"},
		{name: "directory", docs: []DocumentRef{{Path: "."}}, errContains: "is a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ts.ResolveEvidence(context.Background(), &mcp.CallToolRequest{}, InputResolveEvidence{Documents: tt.docs})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestServer_InMemory(t *testing.T) {
	ctx := context.Background()
	server := NewServer(config.Default(), logging.NewNop())
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"convert_citation_marks",
		"collect_evidences",
		"append_source",
		"extract_source",
		"format_requirements",
		"locate_quote",
		"resolve_evidence",
	}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name: "locate_quote",
		Arguments: map[string]any{
			"content": "前言。系統應支援匯出功能。",
			"quote":   "系統應支援匯出功能",
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out OutputLocateQuote
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	assert.True(t, out.Found)
	assert.Equal(t, textmatch.Match{Start: 3, End: 12}, out.Match)

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "convert_citation_marks",
		Arguments: map[string]any{"text": ""},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError, "handler errors are reported as tool errors")
}
