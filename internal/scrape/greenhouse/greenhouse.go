package greenhouse

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

type Config struct {
	Companies []Company // list of boards
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	baseURL string // override in tests
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		baseURL: "https://boards.greenhouse.io",
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var out []domain.JobLead
	for _, co := range s.cfg.Companies {
		jobs, err := s.fetchCompany(ctx, co)
		if err != nil {
			// don't fail the whole run because one board is down
			log.Printf("[ats:greenhouse] company=%q slug=%q err=%v", co.Name, co.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}

	log.Printf("[greenhouse] Processed: %d", len(out))
	return types.ScrapeResult{Source: "greenhouse", Leads: out}, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.JobLead, error) {
	boardURL := fmt.Sprintf("%s/%s", s.baseURL, co.Slug)

	doc, err := s.getDoc(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}

	jobs := ParseBoard(doc, co, s.baseURL)

	// Hydrate details (title/location/desc) by fetching each job page;
	// ignore hydrate errors and keep the minimal entry.
	for i := range jobs {
		_ = s.hydrateJob(ctx, &jobs[i])
	}

	return jobs, nil
}

// ParseBoard walks a board page's anchors for /jobs/<id> links.
func ParseBoard(doc *goquery.Document, co Company, baseURL string) []domain.JobLead {
	seen := map[string]bool{}

	var jobs []domain.JobLead
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = baseURL + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "/jobs/") {
			return
		}

		jobID := extractJobID(abs)
		if jobID == "" {
			return
		}

		sourceID := fmt.Sprintf("greenhouse:%s:%s", co.Slug, jobID)
		if seen[sourceID] {
			return
		}
		seen[sourceID] = true

		title := util.CleanText(a.Text())
		if title == "" || util.LooksLikeJunkTitle(title) {
			// still fetch the details page to get the true title
			// (some boards wrap titles weird)
			title = ""
		}

		jobs = append(jobs, domain.JobLead{
			CompanyName:     co.Name,
			Title:           title,
			URL:             abs,
			FirstSeenSource: "greenhouse",
			SourceJobID:     sourceID,
		})
	})

	return jobs
}

func (s *Scraper) hydrateJob(ctx context.Context, j *domain.JobLead) error {
	doc, err := s.getDoc(ctx, j.URL)
	if err != nil {
		return err
	}

	HydrateFromDoc(j, doc)
	return nil
}

// HydrateFromDoc fills missing title/location/description from a job page.
func HydrateFromDoc(j *domain.JobLead, doc *goquery.Document) {
	if j.Title == "" {
		if t := util.CleanText(doc.Find("h1").First().Text()); t != "" {
			j.Title = t
		}
	}

	loc := util.CleanText(doc.Find(".location").First().Text())
	if loc == "" {
		loc = util.FindLocation(doc)
	}
	if loc != "" {
		j.LocationRaw = util.NormalizeLocation(loc)
	}

	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		j.Description = util.CleanText(sel.Text())
	}

	if j.PostedAt == nil {
		t := time.Now()
		j.PostedAt = &t
	}

	if j.WorkMode == "" || j.WorkMode == "Unknown" {
		j.WorkMode = util.InferWorkModeFromText(j.LocationRaw, j.Title, j.Description)
	}
}

func (s *Scraper) getDoc(ctx context.Context, u string) (*goquery.Document, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "CareerScope/1.0 (+local)")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}

func extractJobID(u string) string {
	// crude but effective: split on /jobs/ and take next chunk of digits
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	tail := parts[1]
	id := ""
	for _, r := range tail {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}
