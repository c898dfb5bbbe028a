// Package query implements the lexical query engine used by both the food
// and recipe datasets: normalization of free-text search input into tokens,
// structured filter predicates, and parameter parsing for the HTTP API.
//
// Tokens are matched against a precomputed keyword column in the backing
// database (substring match per token, intersected across tokens), so the
// normalization here must mirror the normalization used when the datasets
// were built: lowercase, punctuation stripped, naive singularization.
package query

import (
	"sort"
	"strings"
	"unicode"
)

// Tokenize normalizes a raw search string into a deduplicated, sorted set of
// search tokens:
//
//   - lowercase the input
//   - strip punctuation and symbol runes
//   - split on whitespace
//   - discard words without at least one letter
//   - drop a trailing "s" from words longer than one rune
//
// The returned slice is sorted so that composed queries are deterministic.
// An empty result means the input had no searchable terms; callers must not
// treat that as "match everything" on the keyword path.
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}

	seen := make(map[string]struct{})
	var tokens []string
	for _, word := range strings.Fields(b.String()) {
		if !hasLetter(word) {
			continue
		}
		if r := []rune(word); len(r) > 1 && r[len(r)-1] == 's' {
			word = string(r[:len(r)-1])
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}

	sort.Strings(tokens)
	return tokens
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// LikePattern wraps a token for substring matching with LIKE.
// Tokens are punctuation-free by construction, so they cannot carry
// LIKE wildcards and need no escaping.
func LikePattern(token string) string {
	return "%" + token + "%"
}
