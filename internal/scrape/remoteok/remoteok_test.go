package remoteok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleFeed = `[
  {"legal": "API terms of use..."},
  {
    "id": "99001",
    "slug": "remote-go-engineer-acme-99001",
    "position": "Go Engineer",
    "company": "Acme",
    "tags": ["golang", "backend"],
    "location": "Worldwide",
    "salary_min": 90000,
    "salary_max": 140000,
    "date": "2026-08-20T12:00:00+00:00",
    "url": "https://remoteok.com/remote-jobs/99001",
    "description": "Ship   Go services."
  },
  {
    "id": "99002",
    "slug": "remote-data-engineer-99002",
    "position": "Data Engineer",
    "company": "Globex",
    "tags": ["python"],
    "location": "",
    "salary_min": 0,
    "salary_max": 0,
    "date": "not-a-date",
    "url": ""
  },
  {
    "id": "99003",
    "position": "",
    "company": "NoTitle Inc"
  }
]`

func TestParseFeed(t *testing.T) {
	leads, err := ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, leads, 2)

	require.Equal(t, "Go Engineer", leads[0].Title)
	require.Equal(t, "Acme", leads[0].CompanyName)
	require.Equal(t, "remoteok:99001", leads[0].SourceJobID)
	require.Equal(t, "$90000 - $140000", leads[0].Salary)
	require.Equal(t, "Remote", leads[0].WorkMode)
	require.Equal(t, "Ship Go services.", leads[0].Description)
	require.Contains(t, leads[0].Tags, "golang")
	require.NotNil(t, leads[0].PostedAt)
	require.Equal(t, "2026-08-20", leads[0].PostedAt.UTC().Format("2006-01-02"))

	// url built from slug, blank location defaults to Remote, bad date dropped
	require.Equal(t, "https://remoteok.com/remote-jobs/remote-data-engineer-99002", leads[1].URL)
	require.Equal(t, "Remote", leads[1].LocationRaw)
	require.Equal(t, "", leads[1].Salary)
	require.Nil(t, leads[1].PostedAt)
}

func TestParseFeedLegalOnly(t *testing.T) {
	leads, err := ParseFeed([]byte(`[{"legal": "terms"}]`))
	require.NoError(t, err)
	require.Empty(t, leads)
}

func TestParseFeedBadJSON(t *testing.T) {
	_, err := ParseFeed([]byte(`{"not":"an array"}`))
	require.Error(t, err)
}

const idlessFeed = `[
  {"legal": "API terms of use..."},
  {
    "slug": "remote-go-engineer-acme",
    "position": "Go Engineer",
    "company": "Acme",
    "location": "Worldwide"
  },
  {
    "slug": "remote-sre-globex",
    "position": "Site Reliability Engineer",
    "company": "Globex",
    "location": "Worldwide"
  }
]`

func TestFetchKeepsDistinctIDLessJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(idlessFeed))
	}))
	defer srv.Close()

	s := New(Config{Tags: []string{"golang", "devops"}}, nil)
	s.apiURL = srv.URL

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)

	// both id-less jobs survive one pass (distinct URLs, so distinct
	// identities), and the second tag's identical feed adds nothing
	require.Len(t, res.Leads, 2)
	require.Equal(t, "Go Engineer", res.Leads[0].Title)
	require.Equal(t, "Site Reliability Engineer", res.Leads[1].Title)
	require.Empty(t, res.Leads[0].SourceJobID)
}
