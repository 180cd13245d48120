// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/tenderkit/tender-citations/internal/evidence"
)

// PDFLoader extracts the plain text of each PDF page.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Name() string {
	return "pdf"
}

func (l *PDFLoader) CanHandle(source evidence.EvidenceSource) bool {
	return handles(source, isPDF, "pdf")
}

func (l *PDFLoader) Load(ctx context.Context, source evidence.EvidenceSource) (evidence.SourceDocument, error) {
	r, err := pdf.NewReader(bytes.NewReader(source.Content), int64(len(source.Content)))
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to open PDF: %w", err)
	}

	n := r.NumPage()
	pages := make([]evidence.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return evidence.SourceDocument{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, evidence.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return evidence.SourceDocument{}, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, evidence.Page{Number: i, Text: text})
	}

	return evidence.SourceDocument{
		ID:     source.ID,
		Title:  source.Title,
		Format: "pdf",
		Pages:  pages,
	}, nil
}
