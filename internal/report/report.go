package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

// Input is the data a report is compiled from
type Input struct {
	Org         string
	Keyword     string
	Result      *domain.SearchResult
	MemberCount int
	QueryCount  int
}

// Compile turns search hits into report entries, one per repository, ordered by name
func Compile(in Input) *domain.Report {
	rep := &domain.Report{
		ID:          uuid.New().String(),
		Org:         in.Org,
		Keyword:     in.Keyword,
		GeneratedAt: time.Now().UTC(),
		MemberCount: in.MemberCount,
		QueryCount:  in.QueryCount,
		Leaks:       []domain.LeakEntry{},
	}
	if in.Result == nil {
		return rep
	}

	for _, name := range in.Result.Hits {
		repo := domain.Repository{FullName: name}
		rep.Leaks = append(rep.Leaks, domain.LeakEntry{
			Repo:        name,
			URL:         repo.URL(),
			Remediation: Remediation(name, in.Keyword),
		})
	}
	rep.Count = len(rep.Leaks)
	rep.AbandonedQueries = append(rep.AbandonedQueries, in.Result.Abandoned...)
	return rep
}

// Remediation is the suggested action for a flagged repository
func Remediation(repo, keyword string) string {
	return fmt.Sprintf("Investigate %s and take it down if it contains %s information.", repo, keyword)
}
