package coresignal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/scrape/util"
)

type Config struct {
	JobIDs []string
	APIKey string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	apiBase string // override in tests
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		apiBase: "https://api.coresignal.com/cdapi/v2/job_base/collect",
	}
}

func (s *Scraper) Name() string { return "coresignal" }

type collectResponse struct {
	ID             json.Number `json:"id"`
	Title          string      `json:"title"`
	CompanyName    string      `json:"company_name"`
	Location       string      `json:"location"`
	Description    string      `json:"description"`
	EmploymentType string      `json:"employment_type"`
	Salary         string      `json:"salary"`
	URL            string      `json:"url"`
	Created        string      `json:"created"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	if s.cfg.APIKey == "" {
		return types.ScrapeResult{Source: "coresignal"}, fmt.Errorf("coresignal: no api key in keyring")
	}

	var out []domain.JobLead
	var lastErr error
	for _, id := range s.cfg.JobIDs {
		lead, err := s.collect(ctx, id)
		if err != nil {
			log.Printf("[coresignal] job_id=%q err=%v", id, err)
			lastErr = err
			continue
		}
		out = append(out, lead)
	}

	if len(out) == 0 && lastErr != nil {
		return types.ScrapeResult{Source: "coresignal"}, lastErr
	}

	log.Printf("[coresignal] Processed: %d", len(out))
	return types.ScrapeResult{Source: "coresignal", Leads: out}, nil
}

func (s *Scraper) collect(ctx context.Context, jobID string) (domain.JobLead, error) {
	apiURL := fmt.Sprintf("%s/%s", s.apiBase, jobID)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("apikey", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return domain.JobLead{}, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return domain.JobLead{}, fmt.Errorf("coresignal get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return domain.JobLead{}, fmt.Errorf("coresignal status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 2*1024*1024))
	if err != nil {
		return domain.JobLead{}, err
	}

	return ParseCollect(jobID, body)
}

// ParseCollect maps a job_base/collect response onto a lead.
func ParseCollect(jobID string, body []byte) (domain.JobLead, error) {
	var r collectResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.JobLead{}, fmt.Errorf("coresignal parse: %w", err)
	}
	if strings.TrimSpace(r.Title) == "" {
		return domain.JobLead{}, fmt.Errorf("coresignal job %s: empty title", jobID)
	}

	var postedAt *time.Time
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, r.Created); err == nil {
			postedAt = &t
			break
		}
	}

	loc := util.NormalizeLocation(r.Location)
	lead := domain.JobLead{
		CompanyName:     util.CleanText(r.CompanyName),
		Title:           util.CleanText(r.Title),
		URL:             r.URL,
		LocationRaw:     loc,
		WorkMode:        util.InferWorkModeFromText(loc, r.Title, r.Description),
		Description:     util.CleanText(r.Description),
		Salary:          util.CleanText(r.Salary),
		PostedAt:        postedAt,
		FirstSeenSource: "coresignal",
		SourceJobID:     "coresignal:" + jobID,
	}
	if r.EmploymentType != "" {
		lead.Tags = append(lead.Tags, strings.ToLower(util.CleanText(r.EmploymentType)))
	}
	return lead, nil
}
