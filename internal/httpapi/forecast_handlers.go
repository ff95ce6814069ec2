package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync/atomic"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/forecast"
	"careerscope-engine/internal/store"
)

type ForecastHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // config.Config
}

// Volume projects daily posting counts over the requested horizon from
// the stored history.
func (h ForecastHandler) Volume(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)

	days := cfg.Forecast.HorizonDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 365 {
			WriteError(w, r, http.StatusBadRequest, "invalid_days", "days must be between 1 and 365")
			return
		}
		days = n
	}
	if days <= 0 {
		days = 14
	}

	counts, err := store.DailyCounts(r.Context(), h.DB, cfg.Forecast.HistoryDays)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	history := make([]forecast.Point, len(counts))
	for i, c := range counts {
		history[i] = forecast.Point{Date: c.Date, Count: float64(c.Count)}
	}

	m := forecast.Fit(history)
	writeJSON(w, map[string]any{
		"history":  history,
		"forecast": m.Project(days),
	})
}
