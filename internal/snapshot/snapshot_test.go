package snapshot

import (
	"testing"
	"time"

	"careerscope-engine/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	leads := []domain.JobLead{
		{CompanyName: "Acme", Title: "Go Engineer", URL: "https://example.com/1", SourceJobID: "lever:acme:1"},
		{CompanyName: "Globex", Title: "SRE", URL: "https://example.com/2"},
	}
	require.NoError(t, s.Save("lever", leads))

	got, fetchedAt, err := s.Load("lever")
	require.NoError(t, err)
	require.Equal(t, leads, got)
	require.WithinDuration(t, time.Now(), fetchedAt, time.Minute)
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.Save("remoteok", []domain.JobLead{{Title: "Old", URL: "https://x/1"}}))
	require.NoError(t, s.Save("remoteok", []domain.JobLead{{Title: "New", URL: "https://x/2"}}))

	got, _, err := s.Load("remoteok")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "New", got[0].Title)
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	_, _, err := s.Load("greenhouse")
	require.Error(t, err)
}

func TestPathSanitized(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save("../weird source", nil))

	got, _, err := s.Load("../weird source")
	require.NoError(t, err)
	require.Empty(t, got)
}
