package poll

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"time"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/scrape"
	"careerscope-engine/internal/scrape/coresignal"
	email_scrape "careerscope-engine/internal/scrape/email"
	"careerscope-engine/internal/scrape/greenhouse"
	"careerscope-engine/internal/scrape/lever"
	"careerscope-engine/internal/scrape/remoteok"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/scrape/util"
	"careerscope-engine/internal/secrets"
	"careerscope-engine/internal/snapshot"

	"golang.org/x/sync/errgroup"
)

// PollOnce runs every enabled source, falls back to the last snapshot for
// sources that fail, and inserts the surviving leads. degraded lists the
// sources that served stale data this run.
func PollOnce(db *sql.DB, cfg config.Config, snaps *snapshot.Store, onNewJob func()) (added int, degraded []string, err error) {
	return pollFetchers(db, cfg, buildFetchers(cfg), snaps, onNewJob)
}

func pollFetchers(db *sql.DB, cfg config.Config, fetchers []types.Fetcher, snaps *snapshot.Store, onNewJob func()) (added int, degraded []string, err error) {
	parent := context.Background()

	if len(fetchers) == 0 {
		return 0, nil, nil
	}

	type sourceOutcome struct {
		res   types.ScrapeResult
		stale bool
	}

	var g errgroup.Group
	outcomes := make(chan sourceOutcome, len(fetchers))

	for _, f := range fetchers {
		f := f

		g.Go(func() error {
			timeout := 2 * time.Minute
			switch f.Name() {
			case "greenhouse", "lever":
				timeout = 5 * time.Minute
			}

			fctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			log.Printf("[%s] Running...", f.Name())
			res, ferr := f.Fetch(fctx)
			if ferr != nil {
				log.Printf("[%s] fetch error: %v", f.Name(), ferr)

				// degrade to the last good fetch, if we have one
				if snaps != nil {
					leads, fetchedAt, serr := snaps.Load(f.Name())
					if serr == nil && len(leads) > 0 {
						log.Printf("[%s] using snapshot from %s (%d leads)",
							f.Name(), fetchedAt.Format(time.RFC3339), len(leads))
						outcomes <- sourceOutcome{
							res:   types.ScrapeResult{Source: f.Name(), Leads: leads},
							stale: true,
						}
					}
				}
				return nil
			}

			if snaps != nil && len(res.Leads) > 0 {
				if serr := snaps.Save(f.Name(), res.Leads); serr != nil {
					log.Printf("[%s] snapshot save: %v", f.Name(), serr)
				}
			}

			outcomes <- sourceOutcome{res: res}
			return nil
		})
	}

	_ = g.Wait()
	close(outcomes)

	insertCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for o := range outcomes {
		log.Printf("[poll] got source=%s leads=%d stale=%v", o.res.Source, len(o.res.Leads), o.stale)
		if o.stale {
			degraded = append(degraded, o.res.Source)
		}
		if len(o.res.Leads) > 0 {
			added += scrape.ProcessLeads(insertCtx, db, cfg, o.res.Leads, onNewJob)
		}
	}
	sort.Strings(degraded)

	return added, degraded, nil
}

func buildFetchers(cfg config.Config) []types.Fetcher {
	limiter := util.NewHostLimiter(1.0, 2)

	var fetchers []types.Fetcher

	if cfg.Sources.Greenhouse.Enabled {
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{
			Companies: mapGreenhouseCompanies(cfg.Sources.Greenhouse.Companies),
		}, limiter))
	}
	if cfg.Sources.Lever.Enabled {
		fetchers = append(fetchers, lever.New(lever.Config{
			Companies: mapLeverCompanies(cfg.Sources.Lever.Companies),
		}, limiter))
	}
	if cfg.Sources.RemoteOK.Enabled {
		fetchers = append(fetchers, remoteok.New(remoteok.Config{
			Tags: cfg.Sources.RemoteOK.Tags,
		}, limiter))
	}
	if cfg.Sources.Coresignal.Enabled && len(cfg.Sources.Coresignal.JobIDs) > 0 {
		key, err := secrets.GetCoresignalAPIKey()
		if err != nil {
			log.Printf("[coresignal] disabled: %v", err)
		} else {
			fetchers = append(fetchers, coresignal.New(coresignal.Config{
				JobIDs: cfg.Sources.Coresignal.JobIDs,
				APIKey: key,
			}, limiter))
		}
	}
	if cfg.Email.Enabled {
		pass, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		if err != nil {
			log.Printf("[email] disabled: %v", err)
		} else {
			fetchers = append(fetchers, email_scrape.New(email_scrape.Config{
				IMAPHost:         cfg.Email.IMAPHost,
				IMAPPort:         cfg.Email.IMAPPort,
				Username:         cfg.Email.Username,
				Password:         pass,
				Mailbox:          cfg.Email.Mailbox,
				SearchSubjectAny: cfg.Email.SearchSubjectAny,
				MaxMessages:      cfg.Email.MaxMessages,
			}))
		}
	}

	return fetchers
}

func mapGreenhouseCompanies(in []config.Company) []greenhouse.Company {
	out := make([]greenhouse.Company, 0, len(in))
	for _, c := range in {
		out = append(out, greenhouse.Company{Slug: c.Slug, Name: c.Name})
	}
	return out
}

func mapLeverCompanies(in []config.Company) []lever.Company {
	out := make([]lever.Company, 0, len(in))
	for _, c := range in {
		out = append(out, lever.Company{Slug: c.Slug, Name: c.Name})
	}
	return out
}
