// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tenderkit/tender-citations/internal/evidence"
)

// XLSXLoader turns each worksheet into one page. Cells are joined by tabs
// and rows by newlines, so page numbers follow sheet order.
type XLSXLoader struct{}

func NewXLSXLoader() *XLSXLoader {
	return &XLSXLoader{}
}

func (l *XLSXLoader) Name() string {
	return "xlsx"
}

func (l *XLSXLoader) CanHandle(source evidence.EvidenceSource) bool {
	return handles(source, func(b []byte) bool { return zipContains(b, "xl/workbook.xml") }, "xlsx", "xlsm")
}

func (l *XLSXLoader) Load(ctx context.Context, source evidence.EvidenceSource) (evidence.SourceDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(source.Content))
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	pages := make([]evidence.Page, 0, len(sheets))
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return evidence.SourceDocument{}, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return evidence.SourceDocument{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
		pages = append(pages, evidence.Page{Number: i + 1, Text: strings.Join(lines, "\n")})
	}

	return evidence.SourceDocument{
		ID:     source.ID,
		Title:  source.Title,
		Format: "xlsx",
		Pages:  pages,
	}, nil
}
