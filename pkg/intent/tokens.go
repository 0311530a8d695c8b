package intent

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it into words. Letters, digits, inner hyphens
// and apostrophes are kept, so "unicorn-latte" stays one token and never matches "latte".
func Tokenize(s string) []string {
	s = strings.ToLower(strings.NewReplacer("’", "'", "‘", "'").Replace(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Text is a tokenized message with whole-word lookup helpers.
type Text struct {
	Raw    string
	Tokens []string
	words  map[string]bool
	joined string // " tok1 tok2 ... " for whole-word phrase search
}

// NewText tokenizes raw.
func NewText(raw string) Text {
	tokens := Tokenize(raw)
	words := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		words[t] = true
	}
	return Text{
		Raw:    raw,
		Tokens: tokens,
		words:  words,
		joined: " " + strings.Join(tokens, " ") + " ",
	}
}

// Has reports whether any of the terms occurs. Single words match whole tokens,
// multi-word terms match consecutive tokens.
func (t Text) Has(terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(term, " ") {
			if strings.Contains(t.joined, " "+term+" ") {
				return true
			}
			continue
		}
		if t.words[term] {
			return true
		}
	}
	return false
}

// Len returns the number of tokens.
func (t Text) Len() int {
	return len(t.Tokens)
}
