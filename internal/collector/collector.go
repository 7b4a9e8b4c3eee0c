package collector

import (
	"context"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

// DirectoryAPI pages through the members of an organization
type DirectoryAPI interface {
	// ListMembers returns the page of members following cursor; an empty cursor starts at the beginning
	ListMembers(ctx context.Context, org, cursor string) (*domain.MemberPage, error)
}

// SearchAPI runs GitHub searches and returns the full names of matching repositories.
// Errors are classified: see ClassifySearchError.
type SearchAPI interface {
	// SearchCode searches file contents and returns the repositories of every hit
	SearchCode(ctx context.Context, query string) ([]string, error)

	// SearchRepositories searches repository names and descriptions
	SearchRepositories(ctx context.Context, query string) ([]string, error)
}

// Collector defines the interface for collecting GitHub data
type Collector interface {
	DirectoryAPI
	SearchAPI
}
