// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tenderkit/tender-citations/internal/textmatch"
)

// MetadataLocateQuote describes the locate_quote tool.
var MetadataLocateQuote = &mcp.Tool{
	Name: "locate_quote",
	Description: "Find where a quote occurs in document text, ignoring whitespace, Markdown markers and " +
		"full-width punctuation differences. A quote may elide its middle with \"...\"; the match then " +
		"spans from its first to its last segment. Offsets are character (rune) offsets into content. " +
		"Set all=true to also list every case-insensitive occurrence of the quote.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content", "quote"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Document text to search.",
			},
			"quote": map[string]interface{}{
				"type":        "string",
				"description": "Quote to locate.",
			},
			"exact_fallback": map[string]interface{}{
				"type":        "boolean",
				"description": "Try a plain substring search when the normalized search fails. Defaults to the server setting.",
			},
			"all": map[string]interface{}{
				"type":        "boolean",
				"description": "Also return every case-insensitive occurrence of the quote.",
			},
		},
	},
}

type InputLocateQuote struct {
	Content       string `json:"content"`
	Quote         string `json:"quote"`
	ExactFallback *bool  `json:"exact_fallback,omitempty"`
	All           bool   `json:"all,omitempty"`
}

type OutputLocateQuote struct {
	Found bool            `json:"found"`
	Match textmatch.Match `json:"match"`
	// Text is the matched span of content.
	Text        string            `json:"text"`
	Occurrences []textmatch.Match `json:"occurrences,omitempty"`
}

func (ts *Toolset) LocateQuote(_ context.Context, _ *mcp.CallToolRequest, input InputLocateQuote) (*mcp.CallToolResult, OutputLocateQuote, error) {
	if input.Content == "" {
		return nil, OutputLocateQuote{}, fmt.Errorf("content is required")
	}

	exact := ts.cfg.Locator.ExactFallback
	if input.ExactFallback != nil {
		exact = *input.ExactFallback
	}

	var out OutputLocateQuote
	if m, ok := textmatch.Locate(input.Content, input.Quote, textmatch.WithExactFallback(exact)); ok {
		out.Found = true
		out.Match = m
		out.Text = m.Slice(input.Content)
	}
	if input.All {
		out.Occurrences = textmatch.FindAll(input.Content, input.Quote)
	}
	return nil, out, nil
}
