package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/scrape/util"
)

type Config struct {
	Tags []string // tag filters; empty means one unfiltered pull
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	apiURL string // override in tests
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		apiURL:  "https://remoteok.com/api",
	}
}

func (s *Scraper) Name() string { return "remoteok" }

type feedJob struct {
	Slug      string   `json:"slug"`
	ID        string   `json:"id"`
	Position  string   `json:"position"`
	Company   string   `json:"company"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
	SalaryMin int      `json:"salary_min"`
	SalaryMax int      `json:"salary_max"`
	Date      string   `json:"date"`
	URL       string   `json:"url"`
	Desc      string   `json:"description"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	tags := s.cfg.Tags
	if len(tags) == 0 {
		tags = []string{""}
	}

	seen := map[string]bool{}
	var out []domain.JobLead
	var lastErr error

	for _, tag := range tags {
		leads, err := s.fetchTag(ctx, tag)
		if err != nil {
			log.Printf("[remoteok] tag=%q err=%v", tag, err)
			lastErr = err
			continue
		}
		for _, l := range leads {
			// items without a feed id dedupe by URL, same identity the
			// store would assign them
			key := l.SourceJobID
			if key == "" {
				key = util.SourceIDFromURL(l.URL)
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, l)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return types.ScrapeResult{Source: "remoteok"}, lastErr
	}

	log.Printf("[remoteok] Processed: %d", len(out))
	return types.ScrapeResult{Source: "remoteok", Leads: out}, nil
}

func (s *Scraper) fetchTag(ctx context.Context, tag string) ([]domain.JobLead, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return nil, err
	}
	if tag != "" {
		q := u.Query()
		q.Set("tag", tag)
		u.RawQuery = q.Encode()
	}
	apiURL := u.String()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "CareerScope/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remoteok status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}

	return ParseFeed(body)
}

// ParseFeed parses the RemoteOK JSON array. The first element is a legal
// notice, not a job, so it is skipped.
func ParseFeed(body []byte) ([]domain.JobLead, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("remoteok parse: %w", err)
	}
	if len(raw) <= 1 {
		return nil, nil
	}

	var out []domain.JobLead
	for _, item := range raw[1:] {
		var j feedJob
		if err := json.Unmarshal(item, &j); err != nil {
			continue
		}
		if j.Position == "" {
			continue
		}

		jobURL := j.URL
		if jobURL == "" && j.Slug != "" {
			jobURL = "https://remoteok.com/remote-jobs/" + j.Slug
		}
		if jobURL == "" {
			continue
		}

		var postedAt *time.Time
		if j.Date != "" {
			if t, err := time.Parse(time.RFC3339, j.Date); err == nil {
				postedAt = &t
			}
		}

		loc := util.NormalizeLocation(j.Location)
		if loc == "" {
			loc = "Remote"
		}

		sourceID := ""
		if j.ID != "" {
			sourceID = "remoteok:" + j.ID
		}

		tags := make([]string, len(j.Tags))
		copy(tags, j.Tags)

		out = append(out, domain.JobLead{
			CompanyName:     j.Company,
			Title:           util.CleanText(j.Position),
			URL:             jobURL,
			LocationRaw:     loc,
			WorkMode:        "Remote",
			Description:     util.CleanText(j.Desc),
			Salary:          formatSalary(j.SalaryMin, j.SalaryMax),
			Tags:            tags,
			PostedAt:        postedAt,
			FirstSeenSource: "remoteok",
			SourceJobID:     sourceID,
		})
	}

	return out, nil
}

func formatSalary(min, max int) string {
	if min == 0 && max == 0 {
		return ""
	}
	if min == max {
		return fmt.Sprintf("$%d", max)
	}
	return fmt.Sprintf("$%d - $%d", min, max)
}
