package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type Job struct {
	ID          int64    `json:"id"`
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	WorkMode    string   `json:"workMode"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Salary      string   `json:"salary,omitempty"`
	Score       int      `json:"score"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Source      string   `json:"source"`
}

type ListJobsOpts struct {
	Sort   string // score | date | company | title
	Window string // 24h | 7d | all
	Limit  int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  location TEXT NOT NULL,
  work_mode TEXT NOT NULL,
  url TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  score INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '[]',
  date TEXT NOT NULL,
  source_id TEXT NOT NULL DEFAULT '',
  seen_from_source TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_date
ON jobs(date);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_source_id
ON jobs(source_id)
WHERE source_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]Job, error) {
	if opts.Sort == "" {
		opts.Sort = "score"
	}
	if opts.Window == "" {
		opts.Window = "7d"
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"score":   "score",
		"date":    "date",
		"company": "company",
		"title":   "title",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "score"
	}
	order := "DESC"
	if sortCol == "company" || sortCol == "title" {
		order = "ASC"
	}

	where := ""
	switch opts.Window {
	case "24h":
		where = "WHERE date >= datetime('now','-24 hours')"
	case "all":
		// no filter
	default:
		where = "WHERE date >= datetime('now','-7 days')"
	}

	query := fmt.Sprintf(`
SELECT id, company, title, location, work_mode, url, description, salary, score, tags, date, seen_from_source
FROM jobs
%s
ORDER BY %s %s
LIMIT ?;
`, where, sortCol, order)

	rows, err := db.QueryContext(ctx, query, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var tagsJSON string
		var dateStr string
		if err := rows.Scan(
			&j.ID,
			&j.Company,
			&j.Title,
			&j.Location,
			&j.WorkMode,
			&j.URL,
			&j.Description,
			&j.Salary,
			&j.Score,
			&tagsJSON,
			&dateStr,
			&j.Source,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &j.Tags)
		if parsed, err := time.Parse(time.RFC3339, dateStr); err == nil {
			j.Date = parsed.Format("2006-01-02 15:04:05")
		} else {
			j.Date = dateStr
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func DeleteJob(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	return err
}

// DailyCount is one day of posting volume, forecast input.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// DailyCounts aggregates stored jobs per calendar day over the trailing
// historyDays window. Dates are stored as RFC3339 text so substr gives
// the calendar day directly.
func DailyCounts(ctx context.Context, db *sql.DB, historyDays int) ([]DailyCount, error) {
	if historyDays <= 0 {
		historyDays = 90
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
SELECT substr(date, 1, 10) AS day, COUNT(*)
FROM jobs
WHERE date >= datetime('now', '-%d days')
GROUP BY day
ORDER BY day ASC;`, historyDays))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// Descriptions returns stored job description text for term-frequency
// views. Empty descriptions are skipped.
func Descriptions(ctx context.Context, db *sql.DB, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 2000
	}
	rows, err := db.QueryContext(ctx, `
SELECT title || ' ' || description
FROM jobs
WHERE description != ''
ORDER BY date DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func CleanupOldJobs(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM jobs
WHERE date < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
