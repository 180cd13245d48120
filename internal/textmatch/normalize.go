// SPDX-License-Identifier: Apache-2.0

// Package textmatch locates quoted excerpts inside source text. Matching is
// done on a normalized form of both strings (no whitespace, no Markdown
// markers, ASCII punctuation) and the result is mapped back to offsets in
// the original text.
//
// Offsets are rune offsets. All functions are pure and safe for concurrent use.
package textmatch

import (
	"strings"
	"unicode"
)

// fullWidthPunctuation maps the full-width marks folded by Normalize.
var fullWidthPunctuation = map[rune]rune{
	'\uFF0C': ',', // ，
	'\u3002': '.', // 。
	'\uFF01': '!', // ！
	'\uFF1F': '?', // ？
	'\uFF1B': ';', // ；
	'\uFF1A': ':', // ：
	'\u3001': ',', // 、
}

// IsSkipped reports whether r is dropped by Normalize: whitespace or one of
// the Markdown markers '#', '*' and '|'.
func IsSkipped(r rune) bool {
	switch r {
	case '#', '*', '|':
		return true
	}
	return isSpace(r)
}

// isSpace matches the whitespace class used by browsers' \s: the Unicode
// White_Space set without U+0085, plus U+FEFF.
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Normalize returns the canonical matching form of s.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if IsSkipped(r) {
			continue
		}
		if ascii, ok := fullWidthPunctuation[r]; ok {
			r = ascii
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeRunes(s string) []rune {
	return []rune(Normalize(s))
}
