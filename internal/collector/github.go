package collector

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

const membersPerPage = 100

// githubCollector implements Collector using the GitHub REST and GraphQL APIs
type githubCollector struct {
	rest     *github.Client
	graphql  *githubv4.Client
	limiters SearchLimiters
}

// NewGitHubCollector creates a new GitHub collector. baseURL may be empty for github.com.
func NewGitHubCollector(token, baseURL string) (Collector, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 30 * time.Second

	return NewGitHubCollectorWithClient(tc, baseURL, DefaultSearchLimiters())
}

// NewGitHubCollectorWithClient creates a collector on top of an already authenticated http.Client
func NewGitHubCollectorWithClient(httpClient *http.Client, baseURL string, limiters SearchLimiters) (Collector, error) {
	rest := github.NewClient(httpClient)
	graphql := githubv4.NewClient(httpClient)

	if baseURL != "" {
		base := strings.TrimSuffix(baseURL, "/")
		u, err := url.Parse(base + "/")
		if err != nil {
			return nil, errors.Wrap(err, "invalid GitHub API URL")
		}
		rest.BaseURL = u
		graphql = githubv4.NewEnterpriseClient(graphqlURL(base), httpClient)
	}

	return &githubCollector{
		rest:     rest,
		graphql:  graphql,
		limiters: limiters,
	}, nil
}

// graphqlURL derives the GraphQL endpoint from a REST base; GitHub Enterprise serves REST under /api/v3.
func graphqlURL(base string) string {
	if strings.HasSuffix(base, "/api/v3") {
		return strings.TrimSuffix(base, "/v3") + "/graphql"
	}
	return base + "/graphql"
}

type membersQuery struct {
	Organization struct {
		Login           string
		MembersWithRole struct {
			Nodes []struct {
				Login string
			}
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
		} `graphql:"membersWithRole(first: $first, after: $cursor)"`
	} `graphql:"organization(login: $org)"`
}

// ListMembers retrieves one page of organization members
func (c *githubCollector) ListMembers(ctx context.Context, org, cursor string) (*domain.MemberPage, error) {
	var after *githubv4.String
	if cursor != "" {
		after = githubv4.NewString(githubv4.String(cursor))
	}

	var query membersQuery
	err := c.query(ctx, &query, map[string]any{
		"org":    githubv4.String(org),
		"first":  githubv4.Int(membersPerPage),
		"cursor": after,
	})
	if err != nil {
		switch {
		case isHTTPUnauthorized(err):
			return nil, apperrors.NewAuthError("GitHub rejected the credentials", err)
		case strings.Contains(err.Error(), "Could not resolve to an Organization"):
			return nil, apperrors.NewNotFoundError("organization " + org)
		default:
			return nil, apperrors.NewNetworkError("failed to list members for "+org, err)
		}
	}
	if query.Organization.Login == "" {
		return nil, apperrors.NewNotFoundError("organization " + org)
	}

	members := query.Organization.MembersWithRole
	page := &domain.MemberPage{
		Logins:      make([]string, 0, len(members.Nodes)),
		HasNextPage: members.PageInfo.HasNextPage,
		EndCursor:   string(members.PageInfo.EndCursor),
	}
	for _, node := range members.Nodes {
		if node.Login == "" {
			return nil, apperrors.NewInternalError("malformed members response: node without login", nil)
		}
		page.Logins = append(page.Logins, node.Login)
	}
	return page, nil
}

func (c *githubCollector) query(ctx context.Context, query any, variables map[string]any) (reterr error) {
	log := logrus.WithField("variables", variables)
	log.Debug("executing GitHub GraphQL query...")
	startTime := time.Now()
	defer func() {
		log := log.WithField("elapsed", time.Since(startTime))
		if reterr != nil {
			log.WithError(reterr).Debug("GitHub GraphQL query failed")
		} else {
			log.Debug("GitHub GraphQL query succeeded")
		}
	}()
	return c.graphql.Query(ctx, query, variables)
}

// isHTTPUnauthorized relies on the message of the graphql package, which exports no error types.
func isHTTPUnauthorized(err error) bool {
	return strings.Contains(err.Error(), "status code: 401")
}

// SearchCode retrieves the repositories of every code search hit, following all result pages
func (c *githubCollector) SearchCode(ctx context.Context, query string) ([]string, error) {
	var names []string
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := c.limiters.Code.Wait(ctx); err != nil {
			return nil, err
		}

		result, resp, err := c.rest.Search.Code(ctx, query, opts)
		updateRateLimitFromResponse(c.limiters.Code, resp)
		if err != nil {
			return nil, ClassifySearchError(err)
		}

		for _, hit := range result.CodeResults {
			name := hit.GetRepository().GetFullName()
			if name == "" {
				return nil, apperrors.NewInternalError("malformed code search response: hit without repository", nil)
			}
			names = append(names, name)
		}
		logSearchPage("code", query, opts.Page, result.GetTotal(), result.GetIncompleteResults())

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// SearchRepositories retrieves repositories matching the query, following all result pages
func (c *githubCollector) SearchRepositories(ctx context.Context, query string) ([]string, error) {
	var names []string
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := c.limiters.Repositories.Wait(ctx); err != nil {
			return nil, err
		}

		result, resp, err := c.rest.Search.Repositories(ctx, query, opts)
		updateRateLimitFromResponse(c.limiters.Repositories, resp)
		if err != nil {
			return nil, ClassifySearchError(err)
		}

		for _, repo := range result.Repositories {
			name := repo.GetFullName()
			if name == "" {
				return nil, apperrors.NewInternalError("malformed repository search response: repository without full_name", nil)
			}
			names = append(names, name)
		}
		logSearchPage("repositories", query, opts.Page, result.GetTotal(), result.GetIncompleteResults())

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

func logSearchPage(kind, query string, page, total int, incomplete bool) {
	logrus.WithFields(logrus.Fields{
		"kind":       kind,
		"query":      query,
		"page":       page,
		"total":      total,
		"incomplete": incomplete,
	}).Debug("GitHub search page received")
}

// updateRateLimitFromResponse updates the limiter of the search kind that produced resp
func updateRateLimitFromResponse(limiter RateLimiter, resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		limiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
