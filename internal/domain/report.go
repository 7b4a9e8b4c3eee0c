package domain

import "time"

// LeakEntry is a single candidate leak location in a report
type LeakEntry struct {
	Repo        string `json:"repo"`
	URL         string `json:"url"`
	Remediation string `json:"remediation"`
}

// Report is the compiled result of one audit run
type Report struct {
	ID               string      `json:"id"`
	Org              string      `json:"org"`
	Keyword          string      `json:"keyword"`
	GeneratedAt      time.Time   `json:"generated_at"`
	MemberCount      int         `json:"member_count"`
	QueryCount       int         `json:"query_count"`
	Leaks            []LeakEntry `json:"leaks"`
	Count            int         `json:"count"`
	AbandonedQueries []string    `json:"abandoned_queries,omitempty"`
}
