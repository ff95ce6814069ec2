package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/scrape/util"

	"github.com/emersion/go-imap/v2"
)

const maxLinksPerEmail = 10

type Config struct {
	IMAPHost         string
	IMAPPort         int
	Username         string
	Password         string
	Mailbox          string
	SearchSubjectAny []string
	MaxMessages      int
}

// Scraper turns unseen job-alert mail into leads. Processed messages are
// marked \Seen so the next poll starts where this one stopped.
type Scraper struct {
	cfg Config
}

func New(cfg Config) *Scraper { return &Scraper{cfg: cfg} }

func (s *Scraper) Name() string { return "email" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: "email"}

	if s.cfg.IMAPHost == "" || s.cfg.Username == "" {
		return res, fmt.Errorf("email enabled but missing imap_host/username")
	}
	if s.cfg.Password == "" {
		return res, fmt.Errorf("email enabled but no imap password in keyring")
	}

	addr := s.cfg.IMAPHost
	if !strings.Contains(addr, ":") {
		port := s.cfg.IMAPPort
		if port == 0 {
			port = 993
		}
		addr = fmt.Sprintf("%s:%d", addr, port)
	}

	mailbox := s.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	maxMsgs := s.cfg.MaxMessages
	if maxMsgs <= 0 {
		maxMsgs = 20
	}

	c, err := dialAndLogin(ctx, addr, s.cfg.IMAPHost, s.cfg.Username, s.cfg.Password)
	if err != nil {
		return res, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return res, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, maxMsgs)
	if err != nil {
		return res, err
	}
	if len(msgs) == 0 {
		return res, nil
	}

	processed := make([]imap.UID, 0, len(msgs))
	for _, m := range msgs {
		res.Leads = append(res.Leads, LeadsFromMessage(m, s.cfg.SearchSubjectAny)...)
		processed = append(processed, m.UID)
	}

	if err := markSeen(c, processed); err != nil {
		return res, fmt.Errorf("mark seen: %w", err)
	}

	return res, nil
}

// LeadsFromMessage extracts job leads from one alert email. Messages whose
// subject misses every configured filter produce nothing.
func LeadsFromMessage(m Message, subjectAny []string) []domain.JobLead {
	msgID, bodyText, subject := parseRFC822(m.RawMessage, m.Subject)
	subject = decodeRFC2047(subject)

	if len(subjectAny) > 0 && !containsAnyCI(subject, subjectAny) {
		return nil
	}

	urls, ctxTextByURL := extractLinks(bodyText)
	urls = filterJobishURLs(urls, maxLinksPerEmail)
	if len(urls) == 0 {
		return nil
	}

	subjCompany, subjTitle, subjLocation := parseFromSubject(subject)

	received := m.Date
	if received.IsZero() {
		received = time.Now()
	}

	var out []domain.JobLead
	for _, canonURL := range urls {
		company, title, location := subjCompany, subjTitle, subjLocation

		if ctxText := ctxTextByURL[canonURL]; ctxText != "" {
			if c2, t2, l2 := parseFromContext(ctxText); t2 != "" {
				title = t2
				if company == "" {
					company = c2
				}
				if location == "" {
					location = l2
				}
			}
		}

		if company == "" {
			company = guessCompanyFromFrom(m.From)
		}
		if title == "" || looksLikeJunkLeadTitle(title) {
			continue
		}

		postedAt := received
		out = append(out, domain.JobLead{
			CompanyName:     company,
			Title:           title,
			URL:             canonURL,
			LocationRaw:     util.NormalizeLocation(location),
			WorkMode:        util.InferWorkModeFromText(location, title, subject),
			PostedAt:        &postedAt,
			FirstSeenSource: "email",
			SourceJobID:     makeSourceID(msgID, canonURL, subject, m.From),
		})
	}

	return out
}

// looksLikeJunkLeadTitle rejects navbar/footer anchor text that slipped
// through the link filter ("Mobile", "Apply", "View").
func looksLikeJunkLeadTitle(t string) bool {
	t = strings.TrimSpace(t)
	if len(t) < 8 {
		return true
	}
	if len(strings.Fields(t)) < 2 && len(t) < 18 {
		return true
	}
	letters := 0
	for _, r := range t {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			letters++
		}
	}
	return letters < 5
}
