package rank

import (
	"testing"

	"careerscope-engine/internal/config"
	"careerscope-engine/internal/domain"

	"github.com/stretchr/testify/require"
)

func testCfg() config.Config {
	var cfg config.Config
	cfg.Scoring.TitleRules = []config.Rule{
		{Tag: "go", Weight: 40, Any: []string{"golang", "go developer"}},
		{Tag: "sre", Weight: 30, Any: []string{"sre", "site reliability"}},
	}
	cfg.Scoring.KeywordRules = []config.Rule{
		{Tag: "k8s", Weight: 20, Any: []string{"kubernetes"}},
	}
	cfg.Scoring.Penalties = []config.Penalty{
		{Reason: "clearance", Weight: -50, Any: []string{"security clearance"}},
	}
	return cfg
}

func TestYAMLScorer(t *testing.T) {
	s := YAMLScorer{Cfg: testCfg()}

	score, tags := s.Score(domain.JobLead{
		Title:       "Senior Golang SRE",
		Description: "Kubernetes platform work. Golang services.",
	})
	require.Equal(t, 90, score)
	require.ElementsMatch(t, []string{"go", "sre", "k8s"}, tags)
}

func TestYAMLScorerRuleCountsOnce(t *testing.T) {
	s := YAMLScorer{Cfg: testCfg()}

	// both "golang" and "go developer" present; the rule fires once
	score, tags := s.Score(domain.JobLead{Title: "Golang Go Developer"})
	require.Equal(t, 40, score)
	require.Equal(t, []string{"go"}, tags)
}

func TestYAMLScorerPenalty(t *testing.T) {
	s := YAMLScorer{Cfg: testCfg()}

	score, _ := s.Score(domain.JobLead{
		Title:       "Golang Engineer",
		Description: "Active security clearance required.",
	})
	require.Equal(t, -10, score)
}

func TestYAMLScorerNoMatch(t *testing.T) {
	s := YAMLScorer{Cfg: testCfg()}
	score, tags := s.Score(domain.JobLead{Title: "Pastry Chef"})
	require.Equal(t, 0, score)
	require.Empty(t, tags)
}
