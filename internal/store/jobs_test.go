package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func insertAt(t *testing.T, db *sql.DB, title, desc string, score int, at time.Time) {
	t.Helper()
	_, err := db.Exec(`
INSERT INTO jobs(company, title, location, work_mode, url, description, salary, score, tags, date, source_id, seen_from_source)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
		"Acme", title, "Remote", "Remote",
		fmt.Sprintf("https://example.com/%s/%d", title, at.UnixNano()),
		desc, "", score, `[]`,
		at.UTC().Format(time.RFC3339),
		fmt.Sprintf("t:%s:%d", title, at.UnixNano()), "test")
	require.NoError(t, err)
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestListJobsWindowAndSort(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	insertAt(t, db, "Fresh", "x", 10, now)
	insertAt(t, db, "ThisWeek", "x", 90, now.AddDate(0, 0, -3))
	insertAt(t, db, "Old", "x", 50, now.AddDate(0, 0, -30))

	jobs, err := ListJobs(context.Background(), db, ListJobsOpts{Window: "24h"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "Fresh", jobs[0].Title)

	jobs, err = ListJobs(context.Background(), db, ListJobsOpts{Window: "7d", Sort: "score"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "ThisWeek", jobs[0].Title) // highest score first

	jobs, err = ListJobs(context.Background(), db, ListJobsOpts{Window: "all", Sort: "title"})
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	require.Equal(t, "Fresh", jobs[0].Title) // alphabetical

	// unknown sort falls back to score instead of injecting
	_, err = ListJobs(context.Background(), db, ListJobsOpts{Window: "all", Sort: "1;DROP TABLE jobs"})
	require.NoError(t, err)
}

func TestDeleteJob(t *testing.T) {
	db := testDB(t)
	insertAt(t, db, "Gone", "x", 1, time.Now())

	jobs, err := ListJobs(context.Background(), db, ListJobsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, DeleteJob(context.Background(), db, jobs[0].ID))

	jobs, err = ListJobs(context.Background(), db, ListJobsOpts{Window: "all"})
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestDailyCounts(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	insertAt(t, db, "A", "x", 1, now)
	insertAt(t, db, "B", "x", 1, now)
	insertAt(t, db, "C", "x", 1, now.AddDate(0, 0, -1))

	counts, err := DailyCounts(context.Background(), db, 90)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	// ascending by day, today last with both rows
	require.Equal(t, 1, counts[0].Count)
	require.Equal(t, now.Format("2006-01-02"), counts[1].Date)
	require.Equal(t, 2, counts[1].Count)
}

func TestDescriptionsSkipsEmpty(t *testing.T) {
	db := testDB(t)
	insertAt(t, db, "WithDesc", "Run kubernetes clusters", 1, time.Now())
	insertAt(t, db, "NoDesc", "", 1, time.Now())

	texts, err := Descriptions(context.Background(), db, 0)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	require.Contains(t, texts[0], "WithDesc")
	require.Contains(t, texts[0], "kubernetes")
}

func TestCleanupOldJobs(t *testing.T) {
	db := testDB(t)
	insertAt(t, db, "Recent", "x", 1, time.Now())
	insertAt(t, db, "Ancient", "x", 1, time.Now().AddDate(0, -4, 0))

	n, err := CleanupOldJobs(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	jobs, err := ListJobs(context.Background(), db, ListJobsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "Recent", jobs[0].Title)
}
