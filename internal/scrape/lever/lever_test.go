package lever

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePostings = `[
  {
    "id": "a1b2c3d4",
    "text": "Senior Go Engineer",
    "hostedUrl": "https://jobs.lever.co/acme/a1b2c3d4",
    "createdAt": 1735689600000,
    "categories": {"location": "Remote - US", "team": "Platform"},
    "description": "<p>Build and run Go services.</p>"
  },
  {
    "id": "e5f6a7b8",
    "text": "  Data Engineer  ",
    "hostedUrl": "https://jobs.lever.co/acme/e5f6a7b8",
    "createdAt": 0,
    "categories": {"location": "Austin, TX"},
    "description": ""
  },
  {
    "id": "",
    "text": "Broken posting",
    "hostedUrl": "https://jobs.lever.co/acme/broken"
  },
  {
    "id": "c9d0e1f2",
    "text": "Ghost posting",
    "hostedUrl": ""
  }
]`

func TestLeadsFromPostings(t *testing.T) {
	var postings []leverPosting
	require.NoError(t, json.Unmarshal([]byte(samplePostings), &postings))

	leads := leadsFromPostings(Company{Slug: "acme", Name: "Acme"}, postings)
	require.Len(t, leads, 2)

	require.Equal(t, "Senior Go Engineer", leads[0].Title)
	require.Equal(t, "Acme", leads[0].CompanyName)
	require.Equal(t, "https://jobs.lever.co/acme/a1b2c3d4", leads[0].URL)
	require.Equal(t, "lever:acme:a1b2c3d4", leads[0].SourceJobID)
	require.Equal(t, "Remote - US", leads[0].LocationRaw)
	require.Equal(t, "Remote", leads[0].WorkMode)
	require.NotNil(t, leads[0].PostedAt)
	require.Equal(t, time.UnixMilli(1735689600000).Unix(), leads[0].PostedAt.Unix())

	// title trimmed, missing createdAt falls back to now
	require.Equal(t, "Data Engineer", leads[1].Title)
	require.Equal(t, "lever:acme:e5f6a7b8", leads[1].SourceJobID)
	require.NotNil(t, leads[1].PostedAt)
	require.WithinDuration(t, time.Now(), *leads[1].PostedAt, time.Minute)
}
