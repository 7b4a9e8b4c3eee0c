package audit

import (
	"context"
	"fmt"

	"github.com/kurihiro0119/github-leak-audit/internal/auth"
	"github.com/kurihiro0119/github-leak-audit/internal/collector"
	"github.com/kurihiro0119/github-leak-audit/internal/config"
)

// SettingsFromConfig extracts the audit settings from the application configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		OrgName:     cfg.OrgName,
		OrgNickname: cfg.OrgNickname,
		Exceptions:  cfg.Exceptions,
		Executor: ExecutorOptions{
			Workers: cfg.SearchWorkers,
		},
	}
}

// NewFromConfig acquires a token and builds an auditor backed by the GitHub API.
// Tokens may expire, so callers running several audits should build one per run.
func NewFromConfig(ctx context.Context, cfg *config.Config, tokens auth.TokenProvider) (*Auditor, error) {
	token, err := tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	coll, err := collector.NewGitHubCollector(token, cfg.GitHubURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return NewAuditor(SettingsFromConfig(cfg), coll, coll), nil
}
