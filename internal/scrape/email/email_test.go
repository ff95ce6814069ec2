package email

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleAlert = `From: Acme Alerts <alerts@acme.com>
Subject: Job Alert: new roles
Message-Id: <abc123@acme.com>
Content-Type: multipart/alternative; boundary="BOUND"

--BOUND
Content-Type: text/plain; charset=utf-8

New roles this week: https://jobs.lever.co/globex/deadbeef
--BOUND
Content-Type: text/html; charset=utf-8

<html><body>
<a href="https://boards.greenhouse.io/acme/jobs/123?utm_source=alert">Senior Go Engineer &middot; Acme &middot; Remote</a>
<a href="https://acme.com/unsubscribe">Unsubscribe</a>
<a href="https://twitter.com/acme">Follow us on Twitter</a>
</body></html>
--BOUND--
`

func sampleMessage() Message {
	return Message{
		UID:        41,
		From:       "Acme Alerts <alerts@acme.com>",
		Subject:    "Job Alert: new roles",
		RawMessage: []byte(sampleAlert),
	}
}

func TestLeadsFromMessage(t *testing.T) {
	leads := LeadsFromMessage(sampleMessage(), nil)
	require.Len(t, leads, 2)

	// anchor context wins over the subject, tracking params stripped
	require.Equal(t, "Senior Go Engineer", leads[0].Title)
	require.Equal(t, "Acme", leads[0].CompanyName)
	require.Equal(t, "https://boards.greenhouse.io/acme/jobs/123", leads[0].URL)
	require.Equal(t, "email", leads[0].FirstSeenSource)
	require.NotEmpty(t, leads[0].SourceJobID)

	// naked URL in the plain part falls back to subject + sender
	require.Equal(t, "https://jobs.lever.co/globex/deadbeef", leads[1].URL)
	require.Equal(t, "Job Alert: new roles", leads[1].Title)
	require.Equal(t, "Acme Alerts", leads[1].CompanyName)

	require.NotEqual(t, leads[0].SourceJobID, leads[1].SourceJobID)
}

func TestLeadsFromMessageSubjectFilter(t *testing.T) {
	require.Nil(t, LeadsFromMessage(sampleMessage(), []string{"weekly digest"}))

	leads := LeadsFromMessage(sampleMessage(), []string{"job alert"})
	require.Len(t, leads, 2)
}

func TestFilterJobishURLs(t *testing.T) {
	urls := []string{
		"https://boards.greenhouse.io/acme/jobs/1",
		"https://example.com/unsubscribe",
		"https://twitter.com/acme",
		"https://jobs.lever.co/acme/xyz?utm_source=mail",
	}
	out := filterJobishURLs(urls, 10)
	require.Equal(t, []string{
		"https://boards.greenhouse.io/acme/jobs/1",
		"https://jobs.lever.co/acme/xyz",
	}, out)
}

func TestParseFromSubject(t *testing.T) {
	co, title, loc := parseFromSubject("Globex is hiring for Staff Engineer in Denver, CO")
	require.Equal(t, "Globex", co)
	require.Equal(t, "Staff Engineer", title)
	require.Equal(t, "Denver, CO", loc)

	co, title, loc = parseFromSubject("Fwd: Initech - SRE - Remote")
	require.Equal(t, "Initech", co)
	require.Equal(t, "SRE", title)
	require.Equal(t, "", loc) // "Remote" is a mode, not a place

	_, title, _ = parseFromSubject("Plain subject line")
	require.Equal(t, "Plain subject line", title)
}

func TestMakeSourceIDStable(t *testing.T) {
	a := makeSourceID("<m1>", "https://x/jobs/1", "s", "f")
	b := makeSourceID("<m1>", "https://x/jobs/1", "s", "f")
	c := makeSourceID("<m2>", "https://x/jobs/1", "s", "f")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
