package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/esco"
	"careerscope-engine/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Catalog *esco.Catalog

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores types.ScrapeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	DeleteJob func(ctx context.Context, db *sql.DB, id int64) error

	// Poll entrypoint (inject for testability)
	RunPoll func(cfg config.Config)
}
