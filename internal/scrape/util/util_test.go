package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "New York, NY", CleanText("  New York,   NY \n"))
	require.Equal(t, "", CleanText("   "))
}

func TestNormalizeLocation(t *testing.T) {
	require.Equal(t, "Austin, TX", NormalizeLocation("Location: Austin , TX"))
	// duplicate segments collapse
	require.Equal(t, "Remote", NormalizeLocation("Remote, remote"))
	require.Equal(t, "", NormalizeLocation(""))
}

func TestInferWorkModeFromText(t *testing.T) {
	require.Equal(t, "Remote", InferWorkModeFromText("Remote - US", "", ""))
	require.Equal(t, "Hybrid", InferWorkModeFromText("", "Hybrid Engineer", ""))
	require.Equal(t, "Onsite", InferWorkModeFromText("", "", "This role is on-site in Berlin"))
	require.Equal(t, "Unknown", InferWorkModeFromText("NYC", "Engineer", "desc"))
}

func TestCanonicalizeURL(t *testing.T) {
	in := "HTTPS://Boards.Greenhouse.io/acme/jobs/123?utm_source=alert&ref=x#apply"
	got := CanonicalizeURL(in)
	require.Equal(t, "https://boards.greenhouse.io/acme/jobs/123?ref=x", got)
}

func TestSourceIDFromURLStableAcrossTracking(t *testing.T) {
	a := SourceIDFromURL("https://example.com/jobs/9?utm_campaign=daily")
	b := SourceIDFromURL("https://example.com/jobs/9#frag")
	require.Equal(t, a, b)
	require.Len(t, a, 40) // sha1 hex
}

func TestIsObviousJunkURL(t *testing.T) {
	require.True(t, IsObviousJunkURL("https://x.com/email-preferences"))
	require.True(t, IsObviousJunkURL("https://x.com/unsubscribe?id=1"))
	require.False(t, IsObviousJunkURL("https://x.com/jobs/view/1"))
}

func TestExtractLocationFromLabeledText(t *testing.T) {
	require.Equal(t, "Dallas, TX", ExtractLocationFromLabeledText("Job Location: Dallas, TX\nTeam: Infra"))
	require.Equal(t, "", ExtractLocationFromLabeledText("no label here"))
}
