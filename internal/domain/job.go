package domain

import "time"

type JobLead struct {
	CompanyName     string
	Title           string
	URL             string
	LocationRaw     string
	WorkMode        string // remote/hybrid/onsite/unknown
	SourceJobID     string
	Description     string
	Salary          string
	Tags            []string
	PostedAt        *time.Time
	FirstSeenSource string // greenhouse/lever/remoteok/email/coresignal
}
