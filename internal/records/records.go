// SPDX-License-Identifier: Apache-2.0

// Package records reads citation and requirement lists from YAML or JSON.
//
// A records file is either a mapping with "citations" and/or "requirements"
// lists, or a bare list of citations. Every document is checked against an
// embedded CUE schema before it is decoded.
package records

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"

	"github.com/tenderkit/tender-citations/internal/citation"
)

//go:embed schema.cue
var schemaSource string

// ErrEmpty is returned for a records file with no content.
var ErrEmpty = errors.New("records file is empty")

// File is the decoded content of a records file.
type File struct {
	Citations    []citation.Citation    `yaml:"citations,omitempty"`
	Requirements []citation.Requirement `yaml:"requirements,omitempty"`
}

// schemaMu guards the CUE context, which is not safe for concurrent use.
var (
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	cueCtx     *cue.Context
	fileSchema cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		cueCtx = cuecontext.New()
		v := cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("failed to compile records schema: %w", err)
			return
		}
		fileSchema = v.LookupPath(cue.ParsePath("#File"))
		schemaErr = fileSchema.Err()
	})
	return cueCtx, fileSchema, schemaErr
}

// Load reads and validates the records file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read records file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes data. name is used in error messages only.
func Parse(name string, data []byte) (File, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return File{}, fmt.Errorf("%s: failed to unmarshal records: %w", name, err)
	}
	if raw == nil {
		return File{}, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	bare := false
	if list, ok := raw.([]any); ok {
		raw = map[string]any{"citations": list}
		bare = true
	}
	if err := validate(raw); err != nil {
		return File{}, fmt.Errorf("%s: invalid records: %w", name, err)
	}

	var f File
	if bare {
		if err := yaml.Unmarshal(data, &f.Citations); err != nil {
			return File{}, fmt.Errorf("%s: failed to decode citations: %w", name, err)
		}
		return f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%s: failed to decode records: %w", name, err)
	}
	return f, nil
}

// ParseCitations decodes either form of records file and returns only its
// citations.
func ParseCitations(name string, data []byte) ([]citation.Citation, error) {
	f, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	return f.Citations, nil
}

func validate(raw any) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, schema, err := loadSchema()
	if err != nil {
		return err
	}
	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return err
	}
	return schema.Unify(v).Validate(cue.Concrete(true))
}
