// Package skills produces the weighted term list a word-cloud view
// consumes: term frequencies over job description text.
package skills

import (
	"sort"

	"careerscope-engine/internal/match"
)

type WeightedTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TopTerms counts keyword occurrences across all texts and returns the
// limit most frequent, ties broken alphabetically.
func TopTerms(texts []string, limit int) []WeightedTerm {
	if limit <= 0 {
		limit = 50
	}

	counts := map[string]int{}
	for _, t := range texts {
		for _, tok := range match.Tokenize(t) {
			counts[tok]++
		}
	}

	out := make([]WeightedTerm, 0, len(counts))
	for term, c := range counts {
		out = append(out, WeightedTerm{Term: term, Count: c})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
