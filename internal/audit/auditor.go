// Package audit finds organization references in the personal repositories of its members.
//
// An audit enumerates the members of the organization, packs their logins into
// as few GitHub search queries as the query length limit allows, runs code and
// repository searches for each query under exponential backoff, and compiles
// the deduplicated hits into a report.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-leak-audit/internal/collector"
	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	"github.com/kurihiro0119/github-leak-audit/internal/report"
)

// Settings is everything an audit needs to know about the organization
type Settings struct {
	OrgName     string
	OrgNickname string
	Exceptions  []string
	Executor    ExecutorOptions
}

// Auditor runs the enumerate, batch, search and compile stages
type Auditor struct {
	settings  Settings
	directory collector.DirectoryAPI
	search    collector.SearchAPI
}

// NewAuditor creates a new auditor
func NewAuditor(settings Settings, directory collector.DirectoryAPI, search collector.SearchAPI) *Auditor {
	return &Auditor{
		settings:  settings,
		directory: directory,
		search:    search,
	}
}

// OnProgress registers a callback invoked as each query of a run settles
func (a *Auditor) OnProgress(cb ProgressCallback) {
	a.settings.Executor.OnProgress = cb
}

// Members enumerates the organization members
func (a *Auditor) Members(ctx context.Context) ([]string, error) {
	log := logrus.WithField("org", a.settings.OrgName)
	log.Info("enumerating organization members")

	members, err := EnumerateMembers(ctx, a.directory, a.settings.OrgName)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate members of %s: %w", a.settings.OrgName, err)
	}
	log.WithField("members", len(members)).Info("members enumerated")
	return members, nil
}

// Queries builds the query batch for members, warning about logins too long to be searched
func (a *Auditor) Queries(members []string) domain.QueryBatch {
	for _, member := range OversizedMembers(a.settings.OrgNickname, members) {
		logrus.WithField("member", member).Warn("member login exceeds the search query limit; its query may be rejected")
	}
	return BuildQueries(a.settings.OrgNickname, members)
}

// Run performs a full audit
func (a *Auditor) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()

	members, err := a.Members(ctx)
	if err != nil {
		return nil, err
	}

	queries := a.Queries(members)
	logrus.WithFields(logrus.Fields{
		"keyword": a.settings.OrgNickname,
		"queries": len(queries),
	}).Info("searching for personal repos containing references to the organization")

	executor := NewExecutor(a.search, a.settings.Exceptions, a.settings.Executor)
	result, err := executor.Execute(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("leak search failed: %w", err)
	}

	logrus.Info("compiling leak monitoring report data")
	rep := report.Compile(report.Input{
		Org:         a.settings.OrgName,
		Keyword:     a.settings.OrgNickname,
		Result:      result,
		MemberCount: len(members),
		QueryCount:  len(queries),
	})

	logrus.WithFields(logrus.Fields{
		"leaks":     rep.Count,
		"abandoned": len(rep.AbandonedQueries),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("audit complete")
	return rep, nil
}
