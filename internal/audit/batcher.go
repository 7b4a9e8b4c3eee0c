package audit

import (
	"strings"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

const (
	// MaxQueryLength is GitHub's limit on a search query, not counting operators or qualifiers
	MaxQueryLength = 256

	userQualifier = " user:"
)

// BuildQueries packs members into as few search queries as a single greedy pass allows.
// Each query starts with the lowercased keyword and scopes the search to its members.
// The running length counts the keyword and the logins; a query is closed before it
// would reach MaxQueryLength. A login that is oversized on its own still gets a query.
func BuildQueries(keyword string, members []string) domain.QueryBatch {
	if len(members) == 0 {
		return nil
	}
	prefix := strings.ToLower(keyword) + userQualifier

	var queries domain.QueryBatch
	var group []string
	groupLen := len(keyword)

	for _, member := range members {
		if len(member)+groupLen >= MaxQueryLength && len(group) > 0 {
			queries = append(queries, prefix+strings.Join(group, userQualifier))
			group = nil
			groupLen = len(keyword)
		}
		group = append(group, member)
		groupLen += len(member)
	}

	return append(queries, prefix+strings.Join(group, userQualifier))
}

// OversizedMembers returns the logins that exceed the query budget on their own
func OversizedMembers(keyword string, members []string) []string {
	var oversized []string
	for _, member := range members {
		if len(member)+len(keyword) >= MaxQueryLength {
			oversized = append(oversized, member)
		}
	}
	return oversized
}
