// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tenderkit/tender-citations/internal/citation"
)

var citationItemSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"page"},
	"properties": map[string]interface{}{
		"source_id": map[string]interface{}{"type": "string", "description": "Identifier of the cited document."},
		"page":      map[string]interface{}{"type": "integer", "minimum": 0, "description": "Cited page, 1-based."},
		"title":     map[string]interface{}{"type": "string", "description": "Document title or file name."},
		"quote":     map[string]interface{}{"type": "string", "description": "Verbatim quote supporting the text."},
	},
}

var citationsSchema = map[string]interface{}{
	"type":        "array",
	"description": "Citation records available to the text, in the order they were produced.",
	"items":       citationItemSchema,
}

// MetadataConvertCitationMarks describes the convert_citation_marks tool.
var MetadataConvertCitationMarks = &mcp.Tool{
	Name: "convert_citation_marks",
	Description: "Replace source annotations such as \"(出處：RFP.xlsx P.5)\" in generated text with " +
		"numbered markers [1], [2], ... and return the evidence each number points to. " +
		"Annotations are matched to the supplied citations by title and page; unmatched references " +
		"still get a number backed by a placeholder evidence. \"(建議實作)\" is kept as is and reported " +
		"as a suggestion segment.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Generated text containing source annotations.",
			},
			"citations": citationsSchema,
		},
	},
}

type InputConvertCitationMarks struct {
	Text      string              `json:"text"`
	Citations []citation.Citation `json:"citations"`
}

type OutputConvertCitationMarks struct {
	TextWithNumbers string              `json:"text_with_numbers"`
	Evidences       []citation.Evidence `json:"evidences"`
	// Segments splits TextWithNumbers into plain text, markers and suggestions.
	Segments []citation.Segment `json:"segments"`
}

func ConvertCitationMarks(_ context.Context, _ *mcp.CallToolRequest, input InputConvertCitationMarks) (*mcp.CallToolResult, OutputConvertCitationMarks, error) {
	if input.Text == "" {
		return nil, OutputConvertCitationMarks{}, fmt.Errorf("text is required")
	}
	conv := citation.ConvertMarks(input.Text, input.Citations)
	return nil, OutputConvertCitationMarks{
		TextWithNumbers: conv.Text,
		Evidences:       conv.Evidences.Sorted(),
		Segments:        citation.Segments(conv.Text, conv.Evidences),
	}, nil
}

// MetadataCollectEvidences describes the collect_evidences tool.
var MetadataCollectEvidences = &mcp.Tool{
	Name:        "collect_evidences",
	Description: "Number every citation 1..N in the given order, regardless of whether any text references it.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"citations"},
		"properties": map[string]interface{}{
			"citations": citationsSchema,
		},
	},
}

type InputCollectEvidences struct {
	Citations []citation.Citation `json:"citations"`
}

type OutputCollectEvidences struct {
	Evidences []citation.Evidence `json:"evidences"`
}

func CollectEvidences(_ context.Context, _ *mcp.CallToolRequest, input InputCollectEvidences) (*mcp.CallToolResult, OutputCollectEvidences, error) {
	return nil, OutputCollectEvidences{Evidences: citation.CollectAll(input.Citations).Sorted()}, nil
}

// MetadataAppendSource describes the append_source tool.
var MetadataAppendSource = &mcp.Tool{
	Name: "append_source",
	Description: "Append a \"(出處：Title P.n, ...)\" annotation to a sentence, replacing its ending " +
		"punctuation and closing it with a full stop.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Sentence to annotate.",
			},
			"citations": citationsSchema,
		},
	},
}

type InputAppendSource struct {
	Text      string              `json:"text"`
	Citations []citation.Citation `json:"citations"`
}

type OutputAppendSource struct {
	Text    string `json:"text"`
	Sources string `json:"sources"`
}

func AppendSource(_ context.Context, _ *mcp.CallToolRequest, input InputAppendSource) (*mcp.CallToolResult, OutputAppendSource, error) {
	return nil, OutputAppendSource{
		Text:    citation.AppendSource(input.Text, input.Citations),
		Sources: citation.FormatMultipleSources(input.Citations),
	}, nil
}

// MetadataExtractSource describes the extract_source tool.
var MetadataExtractSource = &mcp.Tool{
	Name:        "extract_source",
	Description: "Split a sentence ending in a \"(出處：...)\" annotation into its body and the annotation's source list.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Annotated sentence.",
			},
		},
	},
}

type InputExtractSource struct {
	Text string `json:"text"`
}

type OutputExtractSource struct {
	Body          string `json:"body"`
	Sources       string `json:"sources"`
	HasAnnotation bool   `json:"has_annotation"`
}

func ExtractSource(_ context.Context, _ *mcp.CallToolRequest, input InputExtractSource) (*mcp.CallToolResult, OutputExtractSource, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, OutputExtractSource{}, fmt.Errorf("text is required")
	}
	body, sources, ok := citation.ExtractSource(input.Text)
	return nil, OutputExtractSource{Body: body, Sources: sources, HasAnnotation: ok}, nil
}

// MetadataFormatRequirements describes the format_requirements tool.
var MetadataFormatRequirements = &mcp.Tool{
	Name:        "format_requirements",
	Description: "Annotate each requirement's text with the sources of its own citations.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"requirements"},
		"properties": map[string]interface{}{
			"requirements": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"requirement_text"},
					"properties": map[string]interface{}{
						"id":               map[string]interface{}{"type": "string"},
						"requirement_text": map[string]interface{}{"type": "string"},
						"citations":        citationsSchema,
					},
				},
			},
		},
	},
}

type InputFormatRequirements struct {
	Requirements []citation.Requirement `json:"requirements"`
}

type OutputFormatRequirements struct {
	Requirements []citation.FormattedRequirement `json:"requirements"`
}

func FormatRequirements(_ context.Context, _ *mcp.CallToolRequest, input InputFormatRequirements) (*mcp.CallToolResult, OutputFormatRequirements, error) {
	return nil, OutputFormatRequirements{Requirements: citation.FormatRequirements(input.Requirements)}, nil
}
