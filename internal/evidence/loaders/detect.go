// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/tenderkit/tender-citations/internal/evidence"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

func isPDF(content []byte) bool {
	return bytes.HasPrefix(content, pdfMagic)
}

func isZip(content []byte) bool {
	return bytes.HasPrefix(content, zipMagic)
}

// zipContains reports whether content is a zip archive holding the named entry.
func zipContains(content []byte, name string) bool {
	if !isZip(content) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// handles reports whether the format hint names one of formats, falling back
// to sniffing when the hint is empty.
func handles(source evidence.EvidenceSource, sniff func([]byte) bool, formats ...string) bool {
	if source.Format == "" {
		return sniff(source.Content)
	}
	for _, f := range formats {
		if strings.EqualFold(source.Format, f) {
			return true
		}
	}
	return false
}

// Default returns the standard loaders in selection order.
func Default() []evidence.Loader {
	return []evidence.Loader{
		NewPDFLoader(),
		NewXLSXLoader(),
		NewDOCXLoader(),
		NewTextLoader(),
	}
}
