// SPDX-License-Identifier: Apache-2.0

package records_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/records"
)

const citationsYAML = `citations:
  - source_id: uuid-1
    page: 1
    title: 3-需求說明書.docx
    quote: 系統應支援匯出
  - source_id: uuid-2
    page: 5
    title: RFP.xlsx
requirements:
  - id: "1"
    requirement_text: 需求一
    citations:
      - source_id: uuid-1
        page: 1
        title: 3-需求說明書.docx
`

func TestParse(t *testing.T) {
	f, err := records.Parse("records.yaml", []byte(citationsYAML))
	require.NoError(t, err)

	assert.Equal(t, []citation.Citation{
		{SourceID: "uuid-1", Page: 1, Title: "3-需求說明書.docx", Quote: "系統應支援匯出"},
		{SourceID: "uuid-2", Page: 5, Title: "RFP.xlsx"},
	}, f.Citations)
	require.Len(t, f.Requirements, 1)
	assert.Equal(t, "需求一", f.Requirements[0].RequirementText)
	assert.Equal(t, "uuid-1", f.Requirements[0].Citations[0].SourceID)
}

func TestParse_BareListAndJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "yaml list", data: "- source_id: uuid-9\n  page: 3\n  title: 規格書.pdf\n"},
		{name: "json list", data: `[{"source_id": "uuid-9", "page": 3, "title": "規格書.pdf"}]`},
		{name: "json object", data: `{"citations": [{"source_id": "uuid-9", "page": 3, "title": "規格書.pdf"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := records.ParseCitations(tt.name, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, []citation.Citation{{SourceID: "uuid-9", Page: 3, Title: "規格書.pdf"}}, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "negative page", data: "- source_id: a\n  page: -1\n", wantErr: "invalid records"},
		{name: "string page", data: "- source_id: a\n  page: five\n", wantErr: "invalid records"},
		{name: "missing page", data: "- source_id: a\n", wantErr: "invalid records"},
		{name: "unknown citation field", data: "- source_id: a\n  page: 1\n  pages: 2\n", wantErr: "invalid records"},
		{name: "unknown top-level key", data: "sources: []\n", wantErr: "invalid records"},
		{name: "requirement without text", data: "requirements:\n  - id: \"1\"\n", wantErr: "invalid records"},
		{name: "malformed yaml", data: "citations: [unclosed", wantErr: "failed to unmarshal records"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := records.Parse("bad.yaml", []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad.yaml")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := records.Parse("empty.yaml", nil)
	assert.True(t, errors.Is(err, records.ErrEmpty))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(citationsYAML), 0o600))

	f, err := records.Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Citations, 2)

	_, err = records.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
