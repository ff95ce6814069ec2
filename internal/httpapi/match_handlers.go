package httpapi

import (
	"database/sql"
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/esco"
	"careerscope-engine/internal/match"
	"careerscope-engine/internal/store"
)

type MatchHandler struct {
	DB      *sql.DB
	Catalog *esco.Catalog
	CfgVal  *atomic.Value // config.Config
}

type matchReq struct {
	ResumeText    string   `json:"resume_text"`
	TopN          int      `json:"top_n,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
}

type occupationMatch struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ESCOCode    string  `json:"esco_code,omitempty"`
	Similarity  float64 `json:"similarity"`
}

// Occupations ranks the ESCO catalog against a pasted resume.
func (h MatchHandler) Occupations(w http.ResponseWriter, r *http.Request) {
	var req matchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		WriteError(w, r, http.StatusBadRequest, "empty_resume", "resume_text is required")
		return
	}
	if h.Catalog.Len() == 0 {
		WriteError(w, r, http.StatusServiceUnavailable, "catalog_empty", "occupation catalog not loaded")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	topN := req.TopN
	if topN <= 0 {
		topN = cfg.Match.TopN
	}
	minSim := cfg.Match.MinSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}

	recs := match.Recommend(req.ResumeText, h.Catalog.Occupations, topN, minSim)

	out := make([]occupationMatch, 0, len(recs))
	for _, rec := range recs {
		out = append(out, occupationMatch{
			Title:       rec.Occupation.Title,
			Description: rec.Occupation.Description,
			ESCOCode:    rec.Occupation.ESCOCode,
			Similarity:  round4(rec.Similarity),
		})
	}
	writeJSON(w, map[string]any{"matches": out})
}

type matchJobsReq struct {
	ResumeText    string   `json:"resume_text"`
	Window        string   `json:"window,omitempty"`
	TopN          int      `json:"top_n,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
}

type jobMatch struct {
	Job        store.Job `json:"job"`
	Similarity float64   `json:"similarity"`
}

// Jobs ranks the stored postings against a pasted resume.
func (h MatchHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	var req matchJobsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		WriteError(w, r, http.StatusBadRequest, "empty_resume", "resume_text is required")
		return
	}

	window := req.Window
	if window == "" {
		window = "all"
	}
	jobs, err := store.ListJobs(r.Context(), h.DB, store.ListJobsOpts{
		Sort: "date", Window: window, Limit: 2000,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if len(jobs) == 0 {
		writeJSON(w, map[string]any{"matches": []jobMatch{}})
		return
	}

	docs := make([]string, len(jobs))
	for i, j := range jobs {
		docs[i] = j.Title + " " + j.Description
	}
	sims := match.Similarities(req.ResumeText, docs)

	cfg := h.CfgVal.Load().(config.Config)
	topN := req.TopN
	if topN <= 0 {
		topN = cfg.Match.TopN
	}
	minSim := cfg.Match.MinSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}

	out := make([]jobMatch, 0, len(jobs))
	for i, s := range sims {
		if s < minSim {
			continue
		}
		out = append(out, jobMatch{Job: jobs[i], Similarity: round4(s)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Job.ID < out[j].Job.ID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	writeJSON(w, map[string]any{"matches": out})
}

// scores are presentation values; four decimals is plenty
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
