// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tenderkit/tender-citations/internal/evidence"
)

const docxBody = "word/document.xml"

var errNoDocumentBody = errors.New("docx archive has no " + docxBody)

// DOCXLoader extracts text from Word documents. Explicit page breaks and the
// page breaks Word records at its last layout pass start new pages.
type DOCXLoader struct{}

func NewDOCXLoader() *DOCXLoader {
	return &DOCXLoader{}
}

func (l *DOCXLoader) Name() string {
	return "docx"
}

func (l *DOCXLoader) CanHandle(source evidence.EvidenceSource) bool {
	return handles(source, func(b []byte) bool { return zipContains(b, docxBody) }, "docx")
}

func (l *DOCXLoader) Load(_ context.Context, source evidence.EvidenceSource) (evidence.SourceDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(source.Content), int64(len(source.Content)))
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to open docx archive: %w", err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, docxBody) {
			body = f
			break
		}
	}
	if body == nil {
		return evidence.SourceDocument{}, errNoDocumentBody
	}
	rc, err := body.Open()
	if err != nil {
		return evidence.SourceDocument{}, fmt.Errorf("failed to open %s: %w", docxBody, err)
	}
	defer rc.Close()

	text, err := extractDOCXText(rc)
	if err != nil {
		return evidence.SourceDocument{}, err
	}
	return evidence.SourceDocument{
		ID:     source.ID,
		Title:  source.Title,
		Format: "docx",
		Pages:  evidence.SplitPages(text),
	}, nil
}

// extractDOCXText renders the document body as text with form feeds between
// pages.
func extractDOCXText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var buf strings.Builder
	pageStart := 0
	lastWasNewline := true

	pageBreak := func() {
		if strings.TrimSpace(buf.String()[pageStart:]) == "" {
			return
		}
		buf.WriteByte('\f')
		pageStart = buf.Len()
		lastWasNewline = true
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
				}
				buf.WriteString(text)
				lastWasNewline = false
			case "tab":
				buf.WriteByte('\t')
				lastWasNewline = false
			case "br":
				if attr(t, "type") == "page" {
					pageBreak()
					continue
				}
				buf.WriteByte('\n')
				lastWasNewline = true
			case "cr":
				buf.WriteByte('\n')
				lastWasNewline = true
			case "lastRenderedPageBreak":
				pageBreak()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tc":
				if !lastWasNewline {
					buf.WriteByte('\t')
				}
			}
		}
	}
	return buf.String(), nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
