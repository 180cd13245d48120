// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

type Pipeline struct {
	loaders []Loader
}

// NewPipeline creates a new Pipeline with the provided loaders. Loaders are
// tried in order, so format-specific ones should come before generic text.
func NewPipeline(loaders ...Loader) *Pipeline {
	return &Pipeline{loaders: loaders}
}

// LoadResult is the output of a successful pipeline run.
type LoadResult struct {
	Document   SourceDocument
	LoaderUsed string
	PageCount  int
}

func (p *Pipeline) Load(ctx context.Context, source EvidenceSource) (SourceDocument, error) {
	result, err := p.LoadWithMeta(ctx, source)
	if err != nil {
		return SourceDocument{}, err
	}
	return result.Document, nil
}

func (p *Pipeline) LoadWithMeta(ctx context.Context, source EvidenceSource) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}
	if source.Format == "" {
		source.Format = FormatFromName(source.ID)
	}
	if source.Title == "" {
		source.Title = filepath.Base(source.ID)
	}

	loader, err := p.selectLoader(source)
	if err != nil {
		return LoadResult{}, err
	}

	doc, err := loader.Load(ctx, source)
	if err != nil {
		return LoadResult{}, fmt.Errorf("loader %q failed: %w", loader.Name(), err)
	}
	if doc.ID == "" {
		doc.ID = source.ID
	}
	if doc.Title == "" {
		doc.Title = source.Title
	}
	if doc.Format == "" {
		doc.Format = loader.Name()
	}
	return LoadResult{
		Document:   doc,
		LoaderUsed: loader.Name(),
		PageCount:  len(doc.Pages),
	}, nil
}

// selectLoader returns the first registered loader that can handle the given source.
func (p *Pipeline) selectLoader(source EvidenceSource) (Loader, error) {
	for _, loader := range p.loaders {
		if loader.CanHandle(source) {
			return loader, nil
		}
	}
	return nil, fmt.Errorf("%w: no loader found for source %q (format hint: %q)", ErrUnsupportedFormat, source.ID, source.Format)
}

// RegisteredLoaders returns the names of all currently registered loaders.
func (p *Pipeline) RegisteredLoaders() []string {
	names := make([]string, len(p.loaders))
	for i, loader := range p.loaders {
		names[i] = loader.Name()
	}
	return names
}

// FormatFromName derives a format hint from a file name extension.
func FormatFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".docx":
		return "docx"
	case ".md", ".markdown":
		return "markdown"
	case ".txt", ".text":
		return "text"
	}
	return ""
}
