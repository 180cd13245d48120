// SPDX-License-Identifier: Apache-2.0

package citation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// TokenKind classifies a slice of annotated text.
type TokenKind int

const (
	// TokenText is plain text copied through unchanged.
	TokenText TokenKind = iota
	// TokenSourceCitation is a "(出處：Title P.n, ...)" annotation.
	TokenSourceCitation
	// TokenSuggestion is a "(建議實作)" marker for content with no source.
	TokenSuggestion
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenSourceCitation:
		return "source_citation"
	case TokenSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// SourcePart is one "Title P.n" reference inside a source annotation.
type SourcePart struct {
	Title string
	Page  int
	// RawPage is the text following "P." before integer parsing.
	RawPage string
}

// Token is a contiguous slice of the input text.
type Token struct {
	Kind TokenKind
	// Raw is the exact input text covered by the token.
	Raw   string
	Parts []SourcePart
}

const (
	sourceKeyword     = "出處"
	suggestionKeyword = "建議實作"
	pagePrefix        = "P."
)

// annotationPattern finds candidate annotations; the kind is decided by
// classify so no capture group carries meaning.
var annotationPattern = regexp.MustCompile(`[(（](?:出處\s*[：:][^)）]+|\s*建議實作\s*)[)）]`)

// partSeparators split bundled references inside one annotation.
var partSeparators = []string{"、", "，", ","}

// Tokenize splits text into plain text and annotation tokens. Concatenating
// the Raw fields of the result reproduces text.
func Tokenize(text string) []Token {
	locs := annotationPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if text == "" {
			return nil
		}
		return []Token{{Kind: TokenText, Raw: text}}
	}

	tokens := make([]Token, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			tokens = append(tokens, Token{Kind: TokenText, Raw: text[last:loc[0]]})
		}
		tokens = append(tokens, classify(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(text) {
		tokens = append(tokens, Token{Kind: TokenText, Raw: text[last:]})
	}
	return tokens
}

func classify(raw string) Token {
	inner := stripParens(raw)
	if strings.TrimSpace(inner) == suggestionKeyword {
		return Token{Kind: TokenSuggestion, Raw: raw}
	}
	body := strings.TrimSpace(strings.TrimPrefix(inner, sourceKeyword))
	body = strings.TrimLeft(body, "：:")
	return Token{Kind: TokenSourceCitation, Raw: raw, Parts: ParseSourceParts(body)}
}

func stripParens(raw string) string {
	inner := strings.TrimLeft(raw, "(（")
	return strings.TrimRight(inner, ")）")
}

// ParseSourceParts parses the body of a source annotation, e.g.
// "需求說明書.docx P.1、RFP.xlsx P.5". A bare "P.n" reuses the previous title;
// references without a "P." token are dropped.
func ParseSourceParts(body string) []SourcePart {
	var parts []SourcePart
	lastTitle := ""
	for _, piece := range splitParts(body) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		idx := lastPageToken(piece)
		if idx < 0 {
			continue
		}
		title := strings.TrimSpace(piece[:idx])
		if title == "" {
			if lastTitle == "" {
				continue
			}
			title = lastTitle
		}
		rawPage := strings.TrimSpace(piece[idx+len(pagePrefix):])
		parts = append(parts, SourcePart{Title: title, Page: parsePage(rawPage), RawPage: rawPage})
		lastTitle = title
	}
	return parts
}

func splitParts(body string) []string {
	for _, sep := range partSeparators[1:] {
		body = strings.ReplaceAll(body, sep, partSeparators[0])
	}
	return strings.Split(body, partSeparators[0])
}

// lastPageToken returns the byte offset of the last "P." that starts the
// reference or follows whitespace, so "RFP.xlsx P.5" splits before "P.5".
func lastPageToken(s string) int {
	end := len(s)
	for end > 0 {
		idx := strings.LastIndex(s[:end], pagePrefix)
		if idx < 0 {
			return -1
		}
		if idx == 0 {
			return 0
		}
		prev := []rune(s[:idx])
		if unicode.IsSpace(prev[len(prev)-1]) {
			return idx
		}
		end = idx
	}
	return -1
}

// parsePage reads the leading integer of a page reference: "12" → 12,
// "1-3" → 1, anything non-numeric → 0.
func parsePage(raw string) int {
	digits := 0
	for digits < len(raw) && raw[digits] >= '0' && raw[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0
	}
	page, err := strconv.Atoi(raw[:digits])
	if err != nil {
		return 0
	}
	return page
}
