package types

import (
	"context"
	"time"

	"careerscope-engine/internal/domain"
)

type ScrapeResult struct {
	Source string
	Leads  []domain.JobLead
}

type ScrapeStatus struct {
	LastRunAt       string   `json:"last_run_at"`
	LastOkAt        string   `json:"last_ok_at"`
	LastError       string   `json:"last_error"`
	LastAdded       int      `json:"last_added"`
	Running         bool     `json:"running"`
	DegradedSources []string `json:"degraded_sources,omitempty"`
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}

type JobRow struct {
	Company        string
	Title          string
	Location       string
	WorkMode       string
	Description    string
	Salary         string
	URL            string
	Score          int
	Tags           []string
	ReceivedAt     time.Time
	SourceID       string
	SeenFromSource string
}
