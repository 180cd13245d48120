// SPDX-License-Identifier: Apache-2.0

package citation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// trailingAnnotation matches a source annotation closing the text,
	// optionally followed by a full-width period.
	trailingAnnotation = regexp.MustCompile(`\s*[(（]出處[：:]([^)）]+)[)）]。?$`)
	// trailingPunctuation is removed before an annotation is appended.
	trailingPunctuation = regexp.MustCompile(`[。！？.!?]+$`)
)

// FormatSingleSource renders one citation as "Title P.n".
func FormatSingleSource(c Citation) string {
	title := c.Title
	if title == "" {
		title = PlaceholderTitle
	}
	return title + " " + pagePrefix + strconv.Itoa(c.Page)
}

// FormatMultipleSources renders citations as "A P.1, B P.5".
func FormatMultipleSources(citations []Citation) string {
	if len(citations) == 0 {
		return ""
	}
	parts := make([]string, len(citations))
	for i, c := range citations {
		parts[i] = FormatSingleSource(c)
	}
	return strings.Join(parts, ", ")
}

// AppendSource appends " (出處：...)。" to text, replacing its closing
// punctuation. Without citations the trimmed text is returned as is.
//
// Blank text still gets the annotation, leaving a leading space.
func AppendSource(text string, citations []Citation) string {
	trimmed := strings.TrimSpace(text)
	if len(citations) == 0 {
		return trimmed
	}
	body := trailingPunctuation.ReplaceAllString(trimmed, "")
	return body + " (" + sourceKeyword + "：" + FormatMultipleSources(citations) + ")。"
}

// ExtractSource splits a trailing source annotation off text. It returns
// the remaining text, the raw annotation body and whether one was found.
func ExtractSource(text string) (body, sources string, ok bool) {
	m := trailingAnnotation.FindStringSubmatchIndex(text)
	if m == nil {
		return text, "", false
	}
	return strings.TrimSpace(text[:m[0]]), text[m[2]:m[3]], true
}

// HasSourceAnnotation reports whether text ends with a complete source
// annotation.
func HasSourceAnnotation(text string) bool {
	return trailingAnnotation.MatchString(text)
}

// Requirement is a requirement statement with the citations backing it.
type Requirement struct {
	ID              string     `json:"id,omitempty" yaml:"id,omitempty"`
	RequirementText string     `json:"requirement_text" yaml:"requirement_text"`
	Citations       []Citation `json:"citations" yaml:"citations"`
}

// FormattedRequirement is a Requirement with its annotated text.
type FormattedRequirement struct {
	Requirement
	FormattedText string `json:"formatted_text"`
}

// FormatRequirements annotates every requirement with its sources.
func FormatRequirements(reqs []Requirement) []FormattedRequirement {
	out := make([]FormattedRequirement, len(reqs))
	for i, r := range reqs {
		out[i] = FormattedRequirement{
			Requirement:   r,
			FormattedText: AppendSource(r.RequirementText, r.Citations),
		}
	}
	return out
}
