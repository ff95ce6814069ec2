package scrape

import (
	"context"
	"database/sql"
	"log"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/domain"
	"careerscope-engine/internal/rank"
)

// ProcessLeads filters, scores and inserts leads; returns how many rows
// were actually new. onNewJob fires once per inserted row so the SSE hub
// can nudge any open views.
func ProcessLeads(ctx context.Context, db *sql.DB, cfg config.Config, leads []domain.JobLead, onNewJob func()) (added int) {
	scorer := rank.YAMLScorer{Cfg: cfg}

	for _, lead := range leads {
		keep, why := ShouldKeepJob(cfg, lead)
		if !keep {
			log.Printf("[%s] skipped (%s) title=%q loc=%q url=%q",
				lead.FirstSeenSource, why, lead.Title, lead.LocationRaw, lead.URL)
			continue
		}

		j := jobRowFromLead(lead, scorer)

		ok, ierr := InsertJobIfNew(ctx, db, j)
		if ierr != nil {
			log.Printf("[process:%s] insert error: %v title=%q url=%q source_id=%q",
				lead.FirstSeenSource, ierr, lead.Title, lead.URL, j.SourceID)
			continue
		}
		if !ok {
			continue
		}

		added++
		if onNewJob != nil {
			onNewJob()
		}
	}

	return added
}
