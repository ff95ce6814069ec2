package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"careerscope-engine/internal/domain"
)

// Store keeps the last good fetch per source on disk so a wedged site or
// a dead network degrades to stale data instead of an empty run.
type Store struct {
	dir string
}

type file struct {
	Source    string           `json:"source"`
	FetchedAt time.Time        `json:"fetched_at"`
	Leads     []domain.JobLead `json:"leads"`
}

func New(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, "snapshots")}
}

func (s *Store) path(source string) string {
	// source names are fixed identifiers, but don't trust them with the path
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.ToLower(source))
	return filepath.Join(s.dir, name+".json")
}

// Save writes the leads for a source atomically (tmp + rename).
func (s *Store) Save(source string, leads []domain.JobLead) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot mkdir: %w", err)
	}

	f := file{
		Source:    source,
		FetchedAt: time.Now().UTC(),
		Leads:     leads,
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}

	target := s.path(source)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("snapshot write tmp: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("snapshot rename: %w", err)
	}
	return nil
}

// Load returns the stored leads for a source and when they were fetched.
// A missing snapshot is an error; the caller decides whether that matters.
func (s *Store) Load(source string) ([]domain.JobLead, time.Time, error) {
	b, err := os.ReadFile(s.path(source))
	if err != nil {
		return nil, time.Time{}, err
	}

	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, time.Time{}, fmt.Errorf("snapshot parse %s: %w", source, err)
	}
	return f.Leads, f.FetchedAt, nil
}
