package httpapi

import (
	"net/http"
	"sync/atomic"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/scrape/types"
)

type ScrapeHandler struct {
	CfgVal       *atomic.Value // config.Config
	ScrapeStatus *atomic.Value // types.ScrapeStatus
	RunPoll      func(cfg config.Config)
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := types.ScrapeStatus{}
	if v := h.ScrapeStatus.Load(); v != nil {
		st = v.(types.ScrapeStatus)
	}
	writeJSON(w, st)
}

func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := types.ScrapeStatus{}
	if v := h.ScrapeStatus.Load(); v != nil {
		st = v.(types.ScrapeStatus)
	}
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	go h.RunPoll(cfg)

	writeJSON(w, map[string]any{"ok": true})
}
