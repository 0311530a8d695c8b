package router

import (
	"sort"
	"strconv"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
)

// itemMatch is a catalog item found in a message with its requested quantity.
type itemMatch struct {
	Item     domain.CatalogItem
	Quantity int
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"single": 1, "couple": 2, "pair": 2,
}

// fillers never name an item.
var fillers = map[string]bool{
	"a": true, "an": true, "the": true, "some": true, "please": true, "to": true, "my": true,
	"me": true, "and": true, "i": true, "i'd": true, "i'll": true, "like": true, "have": true,
	"can": true, "could": true, "would": true, "will": true, "also": true, "too": true,
	"of": true, "for": true, "with": true, "now": true, "just": true, "more": true, "another": true,
	"cart": true, "order": true, "get": true, "want": true, "buy": true, "add": true, "purchase": true,
	"give": true, "it": true, "that": true, "this": true, "in": true, "into": true, "from": true,
	"remove": true, "delete": true, "take": true, "off": true, "drop": true, "cancel": true,
	"thanks": true, "thank": true, "you": true, "x": true, "one": true,
}

type pattern struct {
	item  domain.CatalogItem
	words []string
}

// patterns returns the word sequences that name each item, longest first.
// The last word of a multi-word key is an alias when no other item shares it
// ("muffin" for "blueberry muffin").
// Keys are tokenized like messages, so punctuation in a key ("mac & cheese") is ignored.
func patterns(items []domain.CatalogItem) []pattern {
	lastWords := make(map[string]int)
	keys := make(map[string]bool)
	tokenized := make([][]string, len(items))
	for i, it := range items {
		words := intent.Tokenize(it.Key)
		tokenized[i] = words
		if len(words) == 0 {
			continue
		}
		lastWords[words[len(words)-1]]++
		keys[strings.Join(words, " ")] = true
	}

	out := make([]pattern, 0, len(items)*2)
	for i, it := range items {
		words := tokenized[i]
		if len(words) == 0 {
			continue
		}
		out = append(out, pattern{item: it, words: words})
		last := words[len(words)-1]
		if len(words) > 1 && lastWords[last] == 1 && !keys[last] {
			out = append(out, pattern{item: it, words: []string{last}})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].words) > len(out[j].words) })
	return out
}

// findItems scans tokens for catalog item names, each optionally preceded by a
// quantity. Repeated mentions of an item are summed. Tokens that neither name an
// item nor are fillers or quantities are returned as leftovers, in order.
func findItems(tokens []string, items []domain.CatalogItem) ([]itemMatch, []string) {
	pats := patterns(items)
	used := make([]bool, len(tokens))
	var matches []itemMatch
	index := make(map[string]int)

	for i := 0; i < len(tokens); i++ {
		for _, p := range pats {
			if !matchAt(tokens, i, p.words) {
				continue
			}
			qty := 1
			if i > 0 && !used[i-1] {
				if q, ok := parseQuantity(tokens[i-1]); ok {
					qty = q
					used[i-1] = true
				}
			}
			for j := range p.words {
				used[i+j] = true
			}
			if k, ok := index[p.item.Key]; ok {
				matches[k].Quantity += qty
			} else {
				index[p.item.Key] = len(matches)
				matches = append(matches, itemMatch{Item: p.item, Quantity: qty})
			}
			i += len(p.words) - 1
			break
		}
	}

	var leftover []string
	for i, tok := range tokens {
		if used[i] || fillers[tok] {
			continue
		}
		if _, ok := parseQuantity(tok); ok {
			continue
		}
		leftover = append(leftover, tok)
	}
	return matches, leftover
}

// resolveName matches a whole phrase, such as one entry of an "ADD:" line, to a single item.
func resolveName(phrase string, items []domain.CatalogItem) (itemMatch, bool) {
	tokens := intent.Tokenize(phrase)
	qty := 1
	if len(tokens) > 1 {
		if q, ok := parseQuantity(tokens[0]); ok {
			qty = q
			tokens = tokens[1:]
		}
	}
	if len(tokens) == 0 {
		return itemMatch{}, false
	}
	for _, p := range patterns(items) {
		if len(p.words) == len(tokens) && matchAt(tokens, 0, p.words) {
			return itemMatch{Item: p.item, Quantity: qty}, true
		}
	}
	return itemMatch{}, false
}

func matchAt(tokens []string, i int, words []string) bool {
	if i+len(words) > len(tokens) {
		return false
	}
	last := len(words) - 1
	for j, w := range words {
		tok := tokens[i+j]
		if j == last {
			if !singularMatch(tok, w) {
				return false
			}
		} else if tok != w {
			return false
		}
	}
	return true
}

func singularMatch(tok, word string) bool {
	switch tok {
	case word, word + "s", word + "es":
		return true
	}
	return strings.HasSuffix(word, "y") && tok == word[:len(word)-1]+"ies"
}

// parseQuantity reads "2", "2x", "two" or "a".
func parseQuantity(tok string) (int, bool) {
	if n, ok := numberWords[tok]; ok {
		return n, true
	}
	tok = strings.TrimSuffix(tok, "x")
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 99 {
		return 0, false
	}
	return n, true
}
