package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/esco"
	"careerscope-engine/internal/events"
	"careerscope-engine/internal/httpapi"
	"careerscope-engine/internal/poll"
	"careerscope-engine/internal/scheduler"
	"careerscope-engine/internal/scrape/types"
	"careerscope-engine/internal/snapshot"
	"careerscope-engine/internal/store"

	"github.com/gofrs/flock"
)

func main() {
	// Engine data dir: use env if provided (a desktop shell can pass one),
	// else local folder.
	dataDir := os.Getenv("CAREERSCOPE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite
	// and the poll schedule.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running for %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	companiesPath := filepath.Join(dataDir, "companies.yml")
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		// optional board list kept outside the main config
		err = config.OverlayCompanies(&cfg, companiesPath)
		return cfg, err
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "careerscope.db")
	sdb, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sdb.Close()
	db := sdb.Pool

	if err := store.Migrate(db); err != nil {
		log.Fatal(err)
	}

	// Occupation catalog; matching degrades to job-only mode without it.
	escoPath := cfg.App.ESCOPath
	if escoPath == "" {
		escoPath = filepath.Join(dataDir, "occupations_en.csv")
	}
	catalog, err := esco.Load(escoPath)
	if err != nil {
		log.Printf("[esco] catalog not loaded (%s): %v", escoPath, err)
		catalog = &esco.Catalog{}
	} else {
		log.Printf("[esco] loaded %d occupations from %s", catalog.Len(), escoPath)
	}

	hub := events.NewHub()

	var scrapeStatus atomic.Value
	scrapeStatus.Store(types.ScrapeStatus{})

	snaps := snapshot.New(dataDir)

	runPoll := func(cfg config.Config) {
		poll.RunPoll(db, cfg, &scrapeStatus, hub, snaps)
	}

	poll.StartPoller(db, &cfgVal, &scrapeStatus, hub, snaps)

	go scheduler.Every(context.Background(), 24*time.Hour, "cleanup", func(ctx context.Context) error {
		n, err := store.CleanupOldJobs(db)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[cleanup] removed %d old jobs", n)
		}
		return nil
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db,
		Hub:          hub,
		Catalog:      catalog,
		CfgVal:       &cfgVal,
		ScrapeStatus: &scrapeStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		DeleteJob:    store.DeleteJob,
		RunPoll:      runPoll,
	})

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
		httpapi.Cors,
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatalf("shutdown token: %v", err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	if err := os.WriteFile(filepath.Join(dataDir, "engine.token"), []byte(token), 0o600); err != nil {
		log.Printf("[main] could not write token file: %v", err)
	}

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Printf("engine stopped")
}
