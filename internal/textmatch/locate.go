// SPDX-License-Identifier: Apache-2.0

package textmatch

import (
	"strings"
	"unicode"
)

// minAnchorLength is the shortest ellipsis segment used as an anchor.
const minAnchorLength = 16

// ellipsis marks an elided middle section inside a quote.
const ellipsis = "..."

// Match is a located span of the original content, in runes, end exclusive.
type Match struct {
	Start int `json:"start_index"`
	End   int `json:"end_index"`
}

// Len returns the number of runes covered by m.
func (m Match) Len() int {
	return m.End - m.Start
}

// Slice returns the text of content covered by m.
func (m Match) Slice(content string) string {
	runes := []rune(content)
	if m.Start < 0 || m.End > len(runes) || m.Start >= m.End {
		return ""
	}
	return string(runes[m.Start:m.End])
}

type options struct {
	exactFallback bool
	skip          func(rune) bool
}

// Option configures Locate.
type Option func(*options)

// WithExactFallback toggles the plain substring search used when the
// normalized search fails. It is enabled by default.
func WithExactFallback(enabled bool) Option {
	return func(o *options) { o.exactFallback = enabled }
}

// WithSkipFunc replaces the predicate used to map normalized offsets back to
// the original content. A nil func restores IsSkipped.
func WithSkipFunc(skip func(rune) bool) Option {
	return func(o *options) {
		if skip == nil {
			skip = IsSkipped
		}
		o.skip = skip
	}
}

func buildOptions(opts []Option) options {
	o := options{exactFallback: true, skip: IsSkipped}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Locate finds quote in content. The quote may be wrapped in ellipses and
// may elide its middle with "..."; whitespace, Markdown markers and
// full-width punctuation differences are ignored.
func Locate(content, quote string, opts ...Option) (Match, bool) {
	o := buildOptions(opts)
	return newIndex(content, o.skip).locate(quote, o.exactFallback)
}

// Index is a precomputed view of one document for repeated lookups.
type Index struct {
	content    []rune
	normalized []rune
	// kept[k] is the content offset of the k-th non-skipped rune.
	kept []int
}

// NewIndex prepares content for Locate calls. skip may be nil.
func NewIndex(content string, skip func(rune) bool) *Index {
	if skip == nil {
		skip = IsSkipped
	}
	return newIndex(content, skip)
}

func newIndex(content string, skip func(rune) bool) *Index {
	runes := []rune(content)
	kept := make([]int, 0, len(runes))
	for i, r := range runes {
		if !skip(r) {
			kept = append(kept, i)
		}
	}
	return &Index{
		content:    runes,
		normalized: normalizeRunes(content),
		kept:       kept,
	}
}

// Locate finds quote in the indexed content.
func (x *Index) Locate(quote string, opts ...Option) (Match, bool) {
	o := buildOptions(opts)
	return x.locate(quote, o.exactFallback)
}

func (x *Index) locate(quote string, exactFallback bool) (Match, bool) {
	trimmed := trimEllipses(quote)

	fallback := func() (Match, bool) {
		if !exactFallback {
			return Match{}, false
		}
		return findExact(x.content, []rune(trimmed))
	}

	if strings.Contains(trimmed, ellipsis) {
		segments := anchorSegments(trimmed)
		if len(segments) >= 2 {
			if m, ok := x.locateSpan(segments[0], segments[len(segments)-1]); ok {
				return m, true
			}
			return fallback()
		}
	}

	normalized := normalizeRunes(trimmed)
	if idx := indexRunes(x.normalized, normalized, 0); idx >= 0 {
		if start, ok := x.originalPosition(idx); ok {
			if end, ok := x.endPosition(idx, len(normalized)); ok {
				return Match{Start: start, End: end}, true
			}
		}
	}
	return fallback()
}

// locateSpan anchors a quote on its first and last segment; the last one
// must start after the end of the first.
func (x *Index) locateSpan(first, last string) (Match, bool) {
	normalizedFirst := normalizeRunes(first)
	normalizedLast := normalizeRunes(last)

	firstIdx := indexRunes(x.normalized, normalizedFirst, 0)
	if firstIdx < 0 {
		return Match{}, false
	}
	start, ok := x.originalPosition(firstIdx)
	if !ok {
		return Match{}, false
	}

	lastIdx := indexRunes(x.normalized, normalizedLast, firstIdx+len(normalizedFirst))
	if lastIdx < 0 {
		return Match{}, false
	}
	if _, ok := x.originalPosition(lastIdx); !ok {
		return Match{}, false
	}
	end, ok := x.endPosition(lastIdx, len(normalizedLast))
	if !ok {
		return Match{}, false
	}
	return Match{Start: start, End: end}, true
}

// originalPosition maps a normalized offset to the content offset of the
// rune counted at that position.
func (x *Index) originalPosition(normalizedIdx int) (int, bool) {
	if normalizedIdx < 0 || normalizedIdx >= len(x.kept) {
		return 0, false
	}
	return x.kept[normalizedIdx], true
}

// endPosition returns one past the content offset reached after counting
// length non-skipped runes from the normalized offset normalizedIdx.
func (x *Index) endPosition(normalizedIdx, length int) (int, bool) {
	if length <= 0 {
		return 0, false
	}
	last := normalizedIdx + length - 1
	if last >= len(x.kept) {
		return 0, false
	}
	return x.kept[last] + 1, true
}

// trimEllipses strips leading and trailing "..", "...", "…" runs.
func trimEllipses(quote string) string {
	s := strings.TrimSpace(quote)
	for {
		stripped := stripLeadingEllipsis(s)
		stripped = stripTrailingEllipsis(stripped)
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.TrimSpace(s)
}

func stripLeadingEllipsis(s string) string {
	switch {
	case strings.HasPrefix(s, "…"):
		s = strings.TrimPrefix(s, "…")
	case strings.HasPrefix(s, ".."):
		s = strings.TrimLeft(s, ".")
	default:
		return s
	}
	return strings.TrimLeftFunc(s, isSpace)
}

func stripTrailingEllipsis(s string) string {
	switch {
	case strings.HasSuffix(s, "…"):
		s = strings.TrimSuffix(s, "…")
	case strings.HasSuffix(s, ".."):
		s = strings.TrimRight(s, ".")
	default:
		return s
	}
	return strings.TrimRightFunc(s, isSpace)
}

// anchorSegments splits on "..." and keeps segments long enough to anchor.
func anchorSegments(quote string) []string {
	parts := strings.Split(quote, ellipsis)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) >= minAnchorLength {
			segments = append(segments, p)
		}
	}
	return segments
}

// FindExact performs a plain substring search. An empty quote never matches.
func FindExact(content, quote string) (Match, bool) {
	return findExact([]rune(content), []rune(quote))
}

func findExact(content, quote []rune) (Match, bool) {
	if len(quote) == 0 {
		return Match{}, false
	}
	idx := indexRunes(content, quote, 0)
	if idx < 0 {
		return Match{}, false
	}
	return Match{Start: idx, End: idx + len(quote)}, true
}

// FindAll returns every case-insensitive occurrence of query, overlapping
// occurrences included. A blank query yields nil.
func FindAll(content, query string) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	haystack := lowerRunes(content)
	needle := lowerRunes(query)

	var matches []Match
	for pos := indexRunes(haystack, needle, 0); pos >= 0; pos = indexRunes(haystack, needle, pos+1) {
		matches = append(matches, Match{Start: pos, End: pos + len(needle)})
	}
	return matches
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

// indexRunes returns the first index >= from at which needle occurs in
// haystack, or -1.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 {
		if from <= len(haystack) {
			return from
		}
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		if haystack[i] != needle[0] {
			continue
		}
		if runesEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
