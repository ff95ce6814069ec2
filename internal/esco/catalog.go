// Package esco loads the ESCO occupation catalog from its published CSV
// export (occupation_en.csv). Only the preferred label, description and
// concept code survive; everything else in the export is ignored.
package esco

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"careerscope-engine/internal/domain"
)

// Catalog holds the loaded occupations for the lifetime of the process.
type Catalog struct {
	Occupations []domain.Occupation
}

func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("esco open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // the export has ragged rows; pick columns by header

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("esco read header: %w", err)
	}

	labelIdx, descIdx, codeIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "preferredLabel":
			labelIdx = i
		case "description":
			descIdx = i
		case "code":
			codeIdx = i
		}
	}
	if labelIdx < 0 || descIdx < 0 {
		return nil, fmt.Errorf("esco header missing preferredLabel/description columns")
	}

	seen := map[string]bool{}
	var out []domain.Occupation

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("esco read row: %w", err)
		}
		if labelIdx >= len(rec) || descIdx >= len(rec) {
			continue
		}

		label := strings.TrimSpace(rec[labelIdx])
		desc := strings.TrimSpace(rec[descIdx])
		if label == "" || desc == "" {
			continue // dropna
		}

		key := strings.ToLower(label) + "\x00" + strings.ToLower(desc)
		if seen[key] {
			continue // drop_duplicates
		}
		seen[key] = true

		code := ""
		if codeIdx >= 0 && codeIdx < len(rec) {
			code = strings.TrimSpace(rec[codeIdx])
		}

		out = append(out, domain.Occupation{
			Title:       label,
			Description: desc,
			ESCOCode:    code,
		})
	}

	return &Catalog{Occupations: out}, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Occupations)
}
