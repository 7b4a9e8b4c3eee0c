package collector

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"

	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

// unsearchablePhrase appears in the validation error GitHub returns when none of the
// users in a query can be searched. GitHub reports it with the generic "invalid" code
// that also covers malformed queries, so the message is the only discriminator.
const unsearchablePhrase = "cannot be searched"

// ClassifySearchError maps a go-github error onto the search outcome taxonomy:
// RATE_LIMITED (retry later), UNSEARCHABLE (benign empty result), AUTH, or NETWORK (fatal).
func ClassifySearchError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError("search rate limit exceeded", err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return apperrors.NewRateLimitedError("secondary rate limit exceeded", err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		if isUnsearchable(respErr) {
			return apperrors.NewUnsearchableError("listed users cannot be searched", err)
		}
		if respErr.Response != nil {
			switch respErr.Response.StatusCode {
			case http.StatusForbidden, http.StatusTooManyRequests:
				return apperrors.NewRateLimitedError("search forbidden, treating as rate limit", err)
			case http.StatusUnauthorized:
				return apperrors.NewAuthError("search request unauthorized", err)
			}
		}
	}

	return apperrors.NewNetworkError("search request failed", err)
}

func isUnsearchable(respErr *github.ErrorResponse) bool {
	for _, e := range respErr.Errors {
		if strings.Contains(e.Message, unsearchablePhrase) {
			return true
		}
	}
	return strings.Contains(respErr.Message, unsearchablePhrase)
}

// RetryAfter returns the wait GitHub suggested for a rate limit error, or zero
func RetryAfter(err error) time.Duration {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		return *abuseErr.RetryAfter
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && !rateErr.Rate.Reset.IsZero() {
		if d := time.Until(rateErr.Rate.Reset.Time); d > 0 {
			return d
		}
	}
	return 0
}
