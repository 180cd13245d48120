// SPDX-License-Identifier: Apache-2.0

// Package loaders turns raw document bytes into paged evidence.SourceDocuments.
package loaders

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tenderkit/tender-citations/internal/evidence"
)

// TextLoader loads plain text and Markdown documents. Pages are separated by
// form feeds; a document without any is a single page.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Name() string {
	return "text"
}

// CanHandle returns true for the "text" and "markdown" format hints, or for
// any content that is valid UTF-8 without NUL bytes.
func (l *TextLoader) CanHandle(source evidence.EvidenceSource) bool {
	switch strings.ToLower(source.Format) {
	case "text", "txt", "markdown", "md":
		return true
	case "":
		return utf8.Valid(source.Content) && bytes.IndexByte(source.Content, 0) < 0 && !isPDF(source.Content) && !isZip(source.Content)
	}
	return false
}

func (l *TextLoader) Load(_ context.Context, source evidence.EvidenceSource) (evidence.SourceDocument, error) {
	text := strings.TrimPrefix(string(source.Content), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	format := "text"
	if f := strings.ToLower(source.Format); f == "markdown" || f == "md" {
		format = "markdown"
	}
	return evidence.SourceDocument{
		ID:     source.ID,
		Title:  source.Title,
		Format: format,
		Pages:  evidence.SplitPages(text),
	}, nil
}
