package audit

import (
	"context"
	"sync"
	"time"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

// fakeDirectory serves pages keyed by the cursor that requests them
type fakeDirectory struct {
	pages   map[string]*domain.MemberPage
	err     error
	cursors []string
}

func (d *fakeDirectory) ListMembers(_ context.Context, _ string, cursor string) (*domain.MemberPage, error) {
	d.cursors = append(d.cursors, cursor)
	if d.err != nil {
		return nil, d.err
	}
	return d.pages[cursor], nil
}

// searchResponse is the scripted reply for one search call
type searchResponse struct {
	hits []string
	err  error
}

// fakeSearch replays scripted responses per query and mode; the last response repeats
type fakeSearch struct {
	mu    sync.Mutex
	code  map[string][]searchResponse
	repos map[string][]searchResponse
	calls map[string]int
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{
		code:  make(map[string][]searchResponse),
		repos: make(map[string][]searchResponse),
		calls: make(map[string]int),
	}
}

func (f *fakeSearch) next(mode string, script map[string][]searchResponse, query string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := mode + ":" + query
	n := f.calls[key]
	f.calls[key]++

	responses := script[query]
	if len(responses) == 0 {
		return nil, nil
	}
	if n >= len(responses) {
		n = len(responses) - 1
	}
	return responses[n].hits, responses[n].err
}

func (f *fakeSearch) SearchCode(_ context.Context, query string) ([]string, error) {
	return f.next("code", f.code, query)
}

func (f *fakeSearch) SearchRepositories(_ context.Context, query string) ([]string, error) {
	return f.next("repos", f.repos, query)
}

func (f *fakeSearch) callCount(mode, query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[mode+":"+query]
}

// recordingSleep captures backoff delays without waiting
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}
