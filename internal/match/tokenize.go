package match

import (
	"strings"
	"unicode"
)

// stopWords filters common English words that add noise to similarity scoring.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "may": true,
	"such": true, "other": true, "these": true, "those": true, "them": true,
	"any": true, "must": true, "should": true, "would": true, "could": true,
	"when": true, "where": true, "while": true, "within": true, "between": true,
	"through": true, "during": true, "before": true, "after": true, "under": true,
	"over": true, "both": true, "some": true, "there": true, "here": true,
	"his": true, "her": true, "she": true, "him": true, "out": true,
	"off": true, "own": true, "same": true, "very": true, "only": true,
	"most": true, "being": true, "does": true, "did": true, "had": true,
	"including": true, "ensure": true, "etc": true,
}

// Tokenize lowercases text into keyword tokens (>= 3 chars, stop words
// removed). + # . count as word characters so "c++", "c#" and "node.js"
// survive intact; trailing dots are stripped.
func Tokenize(text string) []string {
	var out []string
	var word strings.Builder

	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".")
		if len([]rune(w)) >= 3 && !stopWords[w] {
			out = append(out, w)
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

func termCounts(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}
