package domain

// QueryBatch is the ordered set of search queries covering every member exactly once
type QueryBatch []string

// SearchResult is the merged output of executing a query batch
type SearchResult struct {
	Hits      []string // deduplicated repository full names, sorted
	Abandoned []string // queries given up on after the maximum backoff delay
}
