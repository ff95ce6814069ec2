// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Company struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		ESCOPath string `yaml:"esco_path" json:"esco_path"`
	} `yaml:"app" json:"app"`

	Polling struct {
		IntervalSeconds int `yaml:"interval_seconds" json:"interval_seconds"`
		EmailSeconds    int `yaml:"email_seconds" json:"email_seconds"`
	} `yaml:"polling" json:"polling"`

	Filters struct {
		RemoteOK       bool     `yaml:"remote_ok" json:"remote_ok"`
		LocationsAllow []string `yaml:"locations_allow" json:"locations_allow"`
		LocationsBlock []string `yaml:"locations_block" json:"locations_block"`
	} `yaml:"filters" json:"filters"`

	Scoring struct {
		NotifyMinScore int       `yaml:"notify_min_score" json:"notify_min_score"`
		TitleRules     []Rule    `yaml:"title_rules" json:"title_rules"`
		KeywordRules   []Rule    `yaml:"keyword_rules" json:"keyword_rules"`
		Penalties      []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"scoring" json:"scoring"`

	Match struct {
		TopN          int     `yaml:"top_n" json:"top_n"`
		MinSimilarity float64 `yaml:"min_similarity" json:"min_similarity"`
	} `yaml:"match" json:"match"`

	Forecast struct {
		HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
		HistoryDays int `yaml:"history_days" json:"history_days"`
	} `yaml:"forecast" json:"forecast"`

	Sources struct {
		Greenhouse struct {
			Enabled   bool      `yaml:"enabled" json:"enabled"`
			Companies []Company `yaml:"companies" json:"companies"`
		} `yaml:"greenhouse" json:"greenhouse"`
		Lever struct {
			Enabled   bool      `yaml:"enabled" json:"enabled"`
			Companies []Company `yaml:"companies" json:"companies"`
		} `yaml:"lever" json:"lever"`
		RemoteOK struct {
			Enabled bool     `yaml:"enabled" json:"enabled"`
			Tags    []string `yaml:"tags" json:"tags"`
		} `yaml:"remoteok" json:"remoteok"`
		Coresignal struct {
			Enabled bool     `yaml:"enabled" json:"enabled"`
			JobIDs  []string `yaml:"job_ids" json:"job_ids"`
		} `yaml:"coresignal" json:"coresignal"`
	} `yaml:"sources" json:"sources"`

	Email struct {
		Enabled          bool     `yaml:"enabled" json:"enabled"`
		IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
		IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
		Username         string   `yaml:"username" json:"username"`
		Mailbox          string   `yaml:"mailbox" json:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
	} `yaml:"email" json:"email"`
}

type CompaniesFile struct {
	Sources struct {
		Greenhouse struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`
	} `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
