package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"careerscope-engine/internal/skills"
	"careerscope-engine/internal/store"
)

type SkillsHandler struct {
	DB *sql.DB
}

// Terms serves word-cloud data: the most frequent terms across stored
// job titles and descriptions.
func (h SkillsHandler) Terms(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	texts, err := store.Descriptions(r.Context(), h.DB, 0)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	terms := skills.TopTerms(texts, limit)
	writeJSON(w, map[string]any{"terms": terms})
}
