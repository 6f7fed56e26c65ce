// Package search turns free-text queries into structured filters and runs
// paginated, stale-safe search sessions over them.
package search

import (
	"strconv"
	"strings"
)

// ParsedQuery is the structured form of a free-text query. Zero value means
// "match everything". String fields are unset when empty; ManaValue is nil
// when no cmc constraint was given, so cmc:0 stays expressible.
type ParsedQuery struct {
	Name       string
	Rarity     string
	SetCode    string
	OracleText string
	TypeLine   string
	ManaValue  *int
}

func (q ParsedQuery) IsZero() bool {
	return q.Name == "" && q.Rarity == "" && q.SetCode == "" &&
		q.OracleText == "" && q.TypeLine == "" && q.ManaValue == nil
}

// TagHelp documents one recognized search tag.
type TagHelp struct {
	Tag         string
	Field       string
	Example     string
	Description string
}

var syntaxHelp = []TagHelp{
	{Tag: "r", Field: "rarity", Example: "r:mythic", Description: "match card rarity"},
	{Tag: "s", Field: "set", Example: "s:neo", Description: "match set code"},
	{Tag: "o", Field: "oracle text", Example: `o:"draw a card"`, Description: "match rules text"},
	{Tag: "t", Field: "type line", Example: "t:creature", Description: "match type line"},
	{Tag: "cmc", Field: "mana value", Example: "cmc:3", Description: "match converted mana cost"},
}

// SyntaxHelp returns the recognized tags in display order.
func SyntaxHelp() []TagHelp {
	out := make([]TagHelp, len(syntaxHelp))
	copy(out, syntaxHelp)
	return out
}

// Compile parses a raw query into a ParsedQuery. It never fails: unknown
// tags and tags with empty values become name words, a malformed cmc value
// is dropped, and repeating a tag keeps the last occurrence. Double quotes
// group words into one value; an unterminated quote runs to the end of the
// input. The same input always yields the same result.
func Compile(raw string) ParsedQuery {
	var q ParsedQuery
	var nameParts []string

	for _, token := range tokenize(raw) {
		if sep := strings.IndexByte(token, ':'); sep > 0 {
			tag := strings.ToLower(token[:sep])
			value := stripQuotes(token[sep+1:])
			if value != "" && applyTag(&q, tag, value) {
				continue
			}
		}
		if word := stripQuotes(token); word != "" {
			nameParts = append(nameParts, word)
		}
	}

	q.Name = strings.Join(nameParts, " ")
	return q
}

// applyTag reports whether tag was consumed. A malformed cmc value still
// consumes the token so garbage numbers never leak into the name.
func applyTag(q *ParsedQuery, tag, value string) bool {
	switch tag {
	case "r":
		q.Rarity = value
	case "s":
		q.SetCode = value
	case "o":
		q.OracleText = value
	case "t":
		q.TypeLine = value
	case "cmc":
		if n, err := strconv.Atoi(value); err == nil {
			q.ManaValue = &n
		} else {
			q.ManaValue = nil
		}
	default:
		return false
	}
	return true
}

// tokenize splits on whitespace, keeping double-quoted runs inside a single
// token. Quote characters stay in place; stripQuotes removes them later so
// `o:"draw a card"` survives as one token.
func tokenize(raw string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
