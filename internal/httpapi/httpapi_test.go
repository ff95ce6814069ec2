package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/esco"
	"careerscope-engine/internal/events"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/store"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testMux(t *testing.T) (*http.ServeMux, *sql.DB, *atomic.Value) {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	var cfg config.Config
	cfg.Match.TopN = 10
	cfg.Forecast.HorizonDays = 14
	cfg.Forecast.HistoryDays = 90

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)
	status := &atomic.Value{}
	status.Store(types.ScrapeStatus{})

	catalog := &esco.Catalog{Occupations: []domain.Occupation{
		{Title: "DevOps Engineer", Description: "Operate kubernetes clusters, containers and deployment pipelines", ESCOCode: "2522.1"},
		{Title: "Baker", Description: "Bake bread, pastries and cakes in a commercial bakery", ESCOCode: "7512.1"},
	}}

	mux := NewMux(Deps{
		DB:           db,
		Hub:          events.NewHub(),
		Catalog:      catalog,
		CfgVal:       cfgVal,
		ScrapeStatus: status,
		DeleteJob:    store.DeleteJob,
		RunPoll:      func(cfg config.Config) {},
	})
	return mux, db, status
}

func insertTestJob(t *testing.T, db *sql.DB, title, desc string) int64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(), `
INSERT INTO jobs(company, title, location, work_mode, url, description, salary, score, tags, date, source_id, seen_from_source)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
		"Acme", title, "Remote", "Remote",
		fmt.Sprintf("https://example.com/%d", time.Now().UnixNano()),
		desc, "", 10, `["go"]`,
		time.Now().UTC().Format(time.RFC3339),
		fmt.Sprintf("test:%d", time.Now().UnixNano()), "test")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestHealth(t *testing.T) {
	mux, _, _ := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestJobsListAndDelete(t *testing.T) {
	mux, db, _ := testMux(t)
	id := insertTestJob(t, db, "Go Engineer", "Build Go services")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs?window=all", nil))
	require.Equal(t, 200, rec.Code)

	var jobs []store.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	require.Equal(t, "Go Engineer", jobs[0].Title)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/jobs/%d", id), nil))
	require.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs?window=all", nil))
	require.Equal(t, "null\n", rec.Body.String())
}

func TestJobsDeleteInvalidID(t *testing.T) {
	mux, _, _ := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/jobs/abc", nil))
	require.Equal(t, 400, rec.Code)
}

func TestMatchOccupations(t *testing.T) {
	mux, _, _ := testMux(t)

	body := `{"resume_text": "Platform engineer experienced with kubernetes clusters and containers"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(body)))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Matches []struct {
			Title      string  `json:"title"`
			Similarity float64 `json:"similarity"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Matches)
	require.Equal(t, "DevOps Engineer", resp.Matches[0].Title)
	require.Greater(t, resp.Matches[0].Similarity, 0.0)
}

func TestMatchEmptyResume(t *testing.T) {
	mux, _, _ := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(`{"resume_text":"  "}`)))
	require.Equal(t, 400, rec.Code)
	require.Contains(t, rec.Body.String(), "empty_resume")
}

func TestMatchJobs(t *testing.T) {
	mux, db, _ := testMux(t)
	insertTestJob(t, db, "Kubernetes Platform Engineer", "Operate kubernetes and containers at scale")
	insertTestJob(t, db, "Pastry Chef", "Bake croissants every morning")

	body := `{"resume_text": "SRE with kubernetes and containers background", "top_n": 1}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match/jobs", strings.NewReader(body)))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Matches []struct {
			Job        store.Job `json:"job"`
			Similarity float64   `json:"similarity"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	require.Equal(t, "Kubernetes Platform Engineer", resp.Matches[0].Job.Title)
	require.Greater(t, resp.Matches[0].Similarity, 0.0)
}

func TestSkillsTerms(t *testing.T) {
	mux, db, _ := testMux(t)
	insertTestJob(t, db, "Go Engineer", "kubernetes kubernetes docker")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/skills?limit=5", nil))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Terms []struct {
			Term  string `json:"term"`
			Count int    `json:"count"`
		} `json:"terms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Terms)
	require.Equal(t, "kubernetes", resp.Terms[0].Term)
	require.Equal(t, 2, resp.Terms[0].Count)
}

func TestSkillsBadLimit(t *testing.T) {
	mux, _, _ := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/skills?limit=-1", nil))
	require.Equal(t, 400, rec.Code)
}

func TestForecast(t *testing.T) {
	mux, db, _ := testMux(t)
	insertTestJob(t, db, "Go Engineer", "x")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forecast?days=3", nil))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		History  []any `json:"history"`
		Forecast []struct {
			Date  string  `json:"date"`
			Count float64 `json:"count"`
		} `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Forecast, 3)
	require.NotEmpty(t, resp.History)
}

func TestForecastBadDays(t *testing.T) {
	mux, _, _ := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forecast?days=9999", nil))
	require.Equal(t, 400, rec.Code)
}

func TestScrapeStatusAndRun(t *testing.T) {
	mux, _, status := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scrape/status", nil))
	require.Equal(t, 200, rec.Code)

	var st types.ScrapeStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.False(t, st.Running)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape/run", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)

	// a running poll refuses a second trigger
	status.Store(types.ScrapeStatus{Running: true})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape/run", nil))
	require.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _, _ := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
