// Package match ranks documents against a resume using TF-IDF weighted
// cosine similarity. The resume is fit into the corpus as document zero,
// so its rare terms carry the same inverse-document-frequency weighting
// the candidate documents get.
package match

import (
	"math"
	"sort"
	"strings"

	"careerscope-engine/internal/domain"
)

type Recommendation struct {
	Occupation domain.Occupation `json:"occupation"`
	Similarity float64           `json:"similarity"`
}

type vectorizer struct {
	vocab map[string]int // term -> column
	idf   []float64
}

// fit builds the vocabulary and smooth idf weights over all documents:
// idf(t) = ln((1+n)/(1+df(t))) + 1. Matches the usual smoothed variant so
// a term present in every document still contributes.
func fit(docs [][]string) *vectorizer {
	v := &vectorizer{vocab: make(map[string]int)}

	df := make(map[string]int)
	for _, tokens := range docs {
		seen := map[string]bool{}
		for _, t := range tokens {
			if seen[t] {
				continue
			}
			seen[t] = true
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms) // deterministic columns

	n := float64(len(docs))
	v.idf = make([]float64, len(terms))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// transform maps tokens to an L2-normalized tf-idf vector, so cosine
// similarity between two transformed vectors is a plain dot product.
func (v *vectorizer) transform(tokens []string) []float64 {
	vec := make([]float64, len(v.idf))
	for t, c := range termCounts(tokens) {
		if col, ok := v.vocab[t]; ok {
			vec[col] = float64(c) * v.idf[col]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine computes cosine similarity between two vectors.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarities scores the resume against every doc. The resume is document
// zero of the fitted corpus; the result has one score per doc, in order.
// A blank resume or empty corpus yields nil.
func Similarities(resume string, docs []string) []float64 {
	if strings.TrimSpace(resume) == "" || len(docs) == 0 {
		return nil
	}

	tokenized := make([][]string, 0, len(docs)+1)
	tokenized = append(tokenized, Tokenize(resume))
	for _, d := range docs {
		tokenized = append(tokenized, Tokenize(d))
	}

	v := fit(tokenized)
	q := v.transform(tokenized[0])

	out := make([]float64, len(docs))
	for i, tokens := range tokenized[1:] {
		dv := v.transform(tokens)
		// both sides normalized in transform
		var dot float64
		for j := range q {
			dot += q[j] * dv[j]
		}
		out[i] = dot
	}
	return out
}

// Recommend returns the topN occupations most similar to the resume,
// highest first, ties broken by title. Scores below minSim are dropped.
func Recommend(resume string, occupations []domain.Occupation, topN int, minSim float64) []Recommendation {
	docs := make([]string, len(occupations))
	for i, o := range occupations {
		docs[i] = o.Description
	}

	sims := Similarities(resume, docs)
	if sims == nil {
		return nil
	}

	recs := make([]Recommendation, 0, len(occupations))
	for i, s := range sims {
		if s < minSim {
			continue
		}
		recs = append(recs, Recommendation{Occupation: occupations[i], Similarity: s})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Similarity != recs[j].Similarity {
			return recs[i].Similarity > recs[j].Similarity
		}
		return recs[i].Occupation.Title < recs[j].Occupation.Title
	})

	if topN > 0 && len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}
