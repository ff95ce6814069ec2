package match

import (
	"testing"

	"careerscope-engine/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Senior C++ / C# Developer, Node.js and the Go toolchain.")

	require.Contains(t, tokens, "c++")
	require.Contains(t, tokens, "c#")
	require.Contains(t, tokens, "node.js")
	require.Contains(t, tokens, "developer")
	require.Contains(t, tokens, "senior")

	// stop words and short tokens dropped
	require.NotContains(t, tokens, "and")
	require.NotContains(t, tokens, "the")
	require.NotContains(t, tokens, "go")

	// trailing dot stripped
	require.Contains(t, tokens, "toolchain")
}

func TestSimilaritiesRanksRelevantDocHigher(t *testing.T) {
	resume := "Experienced Go developer. Kubernetes, Docker, distributed systems, backend APIs in Golang."
	docs := []string{
		"Backend engineer building distributed systems with Golang, Kubernetes and Docker.",
		"Pastry chef preparing croissants, cakes and desserts in a busy bakery kitchen.",
	}

	sims := Similarities(resume, docs)
	require.Len(t, sims, 2)
	require.Greater(t, sims[0], sims[1])
	require.Greater(t, sims[0], 0.0)

	// scores stay in the cosine range
	for _, s := range sims {
		require.GreaterOrEqual(t, s, 0.0)
		require.LessOrEqual(t, s, 1.0000001)
	}
}

func TestSimilaritiesBlankResume(t *testing.T) {
	require.Nil(t, Similarities("   ", []string{"anything"}))
	require.Nil(t, Similarities("resume", nil))
}

func TestSimilaritiesIdenticalDoc(t *testing.T) {
	text := "site reliability engineer automating infrastructure with terraform and prometheus"
	sims := Similarities(text, []string{text})
	require.Len(t, sims, 1)
	require.InDelta(t, 1.0, sims[0], 1e-9)
}

func TestRecommendTopNAndOrder(t *testing.T) {
	occupations := []domain.Occupation{
		{Title: "pastry chef", Description: "Prepares cakes, croissants and desserts in bakeries.", ESCOCode: "7512.1"},
		{Title: "software developer", Description: "Implements software systems using programming languages, debugging and testing.", ESCOCode: "2512.4"},
		{Title: "devops engineer", Description: "Automates software delivery, testing, programming pipelines and infrastructure.", ESCOCode: "2522.9"},
	}

	resume := "Programming, debugging, testing and shipping software. Automating delivery pipelines."

	recs := Recommend(resume, occupations, 2, 0)
	require.Len(t, recs, 2)

	// both software-ish roles outrank the chef, highest first
	require.Greater(t, recs[0].Similarity+1e-12, recs[1].Similarity)
	for _, r := range recs {
		require.NotEqual(t, "pastry chef", r.Occupation.Title)
	}
}

func TestRecommendMinSimilarity(t *testing.T) {
	occupations := []domain.Occupation{
		{Title: "pastry chef", Description: "Prepares cakes and desserts."},
	}
	recs := Recommend("golang kubernetes terraform", occupations, 10, 0.2)
	require.Empty(t, recs)
}

func TestCosine(t *testing.T) {
	require.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	require.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	require.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	require.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}
