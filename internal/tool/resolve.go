// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/evidence"
	"github.com/tenderkit/tender-citations/internal/logging"
	"github.com/tenderkit/tender-citations/internal/textmatch"
)

// MetadataResolveEvidence describes the resolve_evidence tool.
var MetadataResolveEvidence = &mcp.Tool{
	Name: "resolve_evidence",
	Description: "Number the source annotations in text (or every citation when text is empty), load the " +
		"cited documents from the server's document roots and locate each evidence quote in them. " +
		"Supported formats: pdf, xlsx, docx, markdown, text. Each highlight reports the page and " +
		"character offsets of the quote; confidence is 1.0 on the cited page and 0.6 elsewhere in the document.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"citations", "documents"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Generated text containing source annotations. Optional.",
			},
			"citations": citationsSchema,
			"documents": map[string]interface{}{
				"type":        "array",
				"description": "Documents to search, relative to the first document root or absolute inside a root.",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"path"},
					"properties": map[string]interface{}{
						"path":      map[string]interface{}{"type": "string"},
						"source_id": map[string]interface{}{"type": "string", "description": "Citation source_id this document answers to."},
						"format": map[string]interface{}{
							"type": "string",
							"enum": []string{"pdf", "xlsx", "docx", "markdown", "text"},
						},
					},
				},
			},
		},
	},
}

// DocumentRef points at a document on disk.
type DocumentRef struct {
	Path     string `json:"path"`
	SourceID string `json:"source_id,omitempty"`
	Format   string `json:"format,omitempty"`
}

type InputResolveEvidence struct {
	Text      string              `json:"text,omitempty"`
	Citations []citation.Citation `json:"citations"`
	Documents []DocumentRef       `json:"documents"`
}

type OutputResolveEvidence struct {
	TextWithNumbers string               `json:"text_with_numbers"`
	Evidences       []citation.Evidence  `json:"evidences"`
	Highlights      []evidence.Highlight `json:"highlights"`
}

func (ts *Toolset) ResolveEvidence(ctx context.Context, _ *mcp.CallToolRequest, input InputResolveEvidence) (*mcp.CallToolResult, OutputResolveEvidence, error) {
	if len(input.Documents) == 0 {
		return nil, OutputResolveEvidence{}, fmt.Errorf("at least one document is required")
	}

	docs := make([]evidence.SourceDocument, 0, len(input.Documents))
	for _, ref := range input.Documents {
		doc, err := ts.loadDocument(ctx, ref)
		if err != nil {
			return nil, OutputResolveEvidence{}, err
		}
		docs = append(docs, doc)
	}

	var (
		text      string
		evidences citation.Evidences
	)
	if input.Text == "" {
		evidences = citation.CollectAll(input.Citations)
	} else {
		conv := citation.ConvertMarks(input.Text, input.Citations)
		text, evidences = conv.Text, conv.Evidences
	}

	resolver := evidence.NewResolver(textmatch.WithExactFallback(ts.cfg.Locator.ExactFallback))
	highlights := resolver.Resolve(evidences, docs)

	found := 0
	for _, h := range highlights {
		if h.Found {
			found++
		}
	}
	ts.log.Debug("resolved evidence",
		logging.Int("documents", len(docs)),
		logging.Int("evidences", len(highlights)),
		logging.Int("found", found),
	)

	return nil, OutputResolveEvidence{
		TextWithNumbers: text,
		Evidences:       evidences.Sorted(),
		Highlights:      highlights,
	}, nil
}

func (ts *Toolset) loadDocument(ctx context.Context, ref DocumentRef) (evidence.SourceDocument, error) {
	if ref.Path == "" {
		return evidence.SourceDocument{}, fmt.Errorf("document path is required")
	}
	path, err := ts.cfg.Documents.Allow(ref.Path)
	if err != nil {
		return evidence.SourceDocument{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return evidence.SourceDocument{}, fmt.Errorf("document %q is a directory", ref.Path)
	}
	if info.Size() > ts.cfg.Documents.MaxBytes {
		return evidence.SourceDocument{}, fmt.Errorf("document %q is %d bytes, above the %d byte limit", ref.Path, info.Size(), ts.cfg.Documents.MaxBytes)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to read document: %w", err)
	}

	id := ref.SourceID
	if id == "" {
		id = path
	}
	format := ref.Format
	if format == "" {
		format = evidence.FormatFromName(path)
	}
	result, err := ts.pipeline.LoadWithMeta(ctx, evidence.EvidenceSource{
		Content: content,
		Format:  format,
		ID:      id,
		Title:   filepath.Base(path),
	})
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to load %q: %w", ref.Path, err)
	}
	ts.log.Debug("loaded document",
		logging.String("path", path),
		logging.String("loader", result.LoaderUsed),
		logging.Int("pages", result.PageCount),
	)
	return result.Document, nil
}
