package poll

import (
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/events"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/snapshot"
)

// StartPoller runs PollOnce on the configured interval and mirrors
// progress into scrapeStatus for the /scrape/status handler.
func StartPoller(db *sql.DB, cfgVal *atomic.Value, scrapeStatus *atomic.Value, hub *events.Hub, snaps *snapshot.Store) {
	go func() {
		for {
			cfgAny := cfgVal.Load()
			if cfgAny == nil {
				time.Sleep(time.Second)
				continue
			}
			cfg := cfgAny.(config.Config)

			interval := time.Duration(cfg.Polling.IntervalSeconds) * time.Second
			if interval <= 0 {
				interval = 30 * time.Second
			}
			time.Sleep(interval)

			cfgAny = cfgVal.Load()
			if cfgAny == nil {
				continue
			}
			cfg = cfgAny.(config.Config)

			if !anySourceEnabled(cfg) {
				continue
			}

			RunPoll(db, cfg, scrapeStatus, hub, snaps)
		}
	}()
}

// pollRunning is the real overlap guard; ScrapeStatus.Running mirrors it
// for the status endpoint but its load/store is not atomic enough to race
// the ticker against the HTTP trigger.
var pollRunning atomic.Bool

// RunPoll is one status-tracked poll cycle; the HTTP trigger calls it too.
func RunPoll(db *sql.DB, cfg config.Config, scrapeStatus *atomic.Value, hub *events.Hub, snaps *snapshot.Store) {
	if !pollRunning.CompareAndSwap(false, true) {
		log.Printf("[poll] already running, skipping")
		return
	}
	defer pollRunning.Store(false)

	st := loadStatus(scrapeStatus)
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	scrapeStatus.Store(st)

	added, degraded, err := PollOnce(db, cfg, snaps, func() {
		hub.Publish(events.MakeEvent("", "job_created", 1, nil))
	})

	st = loadStatus(scrapeStatus)
	st.Running = false
	st.LastAdded = added
	st.DegradedSources = degraded

	if err != nil {
		st.LastError = err.Error()
		log.Printf("[poll] error: %v", err)
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
		log.Printf("[poll] ok added=%d degraded=%d", added, len(degraded))
	}
	scrapeStatus.Store(st)

	hub.Publish(events.MakeEvent("", "scrape_finished", 1, map[string]any{
		"added":            added,
		"degraded_sources": degraded,
	}))
}

func loadStatus(scrapeStatus *atomic.Value) types.ScrapeStatus {
	if v := scrapeStatus.Load(); v != nil {
		return v.(types.ScrapeStatus)
	}
	return types.ScrapeStatus{}
}

func anySourceEnabled(cfg config.Config) bool {
	return cfg.Email.Enabled ||
		cfg.Sources.Greenhouse.Enabled ||
		cfg.Sources.Lever.Enabled ||
		cfg.Sources.RemoteOK.Enabled ||
		cfg.Sources.Coresignal.Enabled
}
