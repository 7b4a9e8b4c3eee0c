// Package auth selects and produces the GitHub credential used by an audit.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v55/github"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-leak-audit/internal/config"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

// TokenProvider produces the access token used for GitHub API calls
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// NewTokenProvider prefers the GitHub App over the personal access token
func NewTokenProvider(cfg *config.Config) (TokenProvider, error) {
	switch {
	case cfg.AppID != "":
		appID, err := strconv.ParseInt(cfg.AppID, 10, 64)
		if err != nil {
			return nil, apperrors.NewAuthError("GitHub App ID must be numeric", err)
		}
		p, err := NewAppTokenProvider(appID, []byte(cfg.PrivateKey), cfg.OrgName, cfg.GitHubURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case cfg.PAT != "":
		return StaticTokenProvider(cfg.PAT), nil
	default:
		return nil, apperrors.NewAuthError("missing both a GitHub App and a personal access token", nil)
	}
}

// StaticTokenProvider returns a fixed personal access token
type StaticTokenProvider string

// GetToken returns the token
func (p StaticTokenProvider) GetToken(context.Context) (string, error) {
	if p == "" {
		return "", apperrors.NewAuthError("empty personal access token", nil)
	}
	return string(p), nil
}

// AppTokenProvider mints an installation token for the GitHub App installed in the organization
type AppTokenProvider struct {
	apps *ghinstallation.AppsTransport
	org  string
}

// NewAppTokenProvider creates a provider for the given App from its PEM encoded private key.
// baseURL may be empty for github.com.
func NewAppTokenProvider(appID int64, privateKey []byte, org, baseURL string) (*AppTokenProvider, error) {
	apps, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKey)
	if err != nil {
		return nil, apperrors.NewAuthError("invalid GitHub App private key", err)
	}
	if baseURL != "" {
		apps.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &AppTokenProvider{
		apps: apps,
		org:  org,
	}, nil
}

// GetToken looks up the organization installation and creates an access token for it
func (p *AppTokenProvider) GetToken(ctx context.Context) (string, error) {
	client := github.NewClient(&http.Client{
		Transport: p.apps,
		Timeout:   30 * time.Second,
	})
	u, err := url.Parse(p.apps.BaseURL + "/")
	if err != nil {
		return "", apperrors.NewAuthError("invalid GitHub API URL", err)
	}
	client.BaseURL = u

	install, _, err := client.Apps.FindOrganizationInstallation(ctx, p.org)
	if err != nil {
		return "", apperrors.NewAuthError("failed to find App installation for "+p.org, err)
	}

	itr := ghinstallation.NewFromAppsTransport(p.apps, install.GetID())
	token, err := itr.Token(ctx)
	if err != nil {
		return "", apperrors.NewAuthError("failed to create installation token", err)
	}

	logrus.WithFields(logrus.Fields{
		"org":          p.org,
		"installation": install.GetID(),
	}).Debug("created GitHub App installation token")
	return token, nil
}
