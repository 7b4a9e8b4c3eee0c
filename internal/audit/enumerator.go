package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-leak-audit/internal/collector"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

// EnumerateMembers retrieves every member login of org, preserving page order.
// A failed page is fatal; nothing is retried here.
func EnumerateMembers(ctx context.Context, dir collector.DirectoryAPI, org string) ([]string, error) {
	var members []string
	cursor := ""

	for page := 1; ; page++ {
		result, err := dir.ListMembers(ctx, org, cursor)
		if err != nil {
			return nil, err
		}
		members = append(members, result.Logins...)

		logrus.WithFields(logrus.Fields{
			"org":     org,
			"page":    page,
			"members": len(members),
		}).Debug("member page received")

		if !result.HasNextPage {
			break
		}
		if result.EndCursor == "" || result.EndCursor == cursor {
			return nil, apperrors.NewNetworkError("member directory reported another page without advancing the cursor", nil)
		}
		cursor = result.EndCursor
	}

	return members, nil
}
