package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-leak-audit/internal/collector"
	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

const (
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 128 * time.Second
)

// OutcomeKind is the result class of one attempt at a query
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRateLimited
	OutcomeUnsearchable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeUnsearchable:
		return "unsearchable"
	default:
		return "fatal"
	}
}

// SearchOutcome is the result of running both search modes once for a query
type SearchOutcome struct {
	Kind       OutcomeKind
	Hits       []string
	RetryAfter time.Duration // provider hint, only for OutcomeRateLimited
	Err        error
}

// ProgressCallback is called after each query settles
type ProgressCallback func(query string, progress float64)

// ExecutorOptions tunes the search executor
type ExecutorOptions struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Workers      int
	Sleep        func(ctx context.Context, d time.Duration) error
	OnProgress   ProgressCallback
}

// Executor runs a query batch against the search API with per-query exponential backoff
type Executor struct {
	search     collector.SearchAPI
	exceptions map[string]struct{}
	opts       ExecutorOptions
}

// NewExecutor creates an executor; names in exceptions never appear in its results
func NewExecutor(search collector.SearchAPI, exceptions []string, opts ExecutorOptions) *Executor {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	set := make(map[string]struct{}, len(exceptions))
	for _, name := range exceptions {
		set[name] = struct{}{}
	}

	return &Executor{
		search:     search,
		exceptions: set,
		opts:       opts,
	}
}

// Execute runs every query and returns the merged, deduplicated hits.
// Rate limited queries are retried and eventually abandoned; any unrecognized fault aborts the run.
func (e *Executor) Execute(ctx context.Context, queries domain.QueryBatch) (*domain.SearchResult, error) {
	hits := NewHitSet()
	abandoned := make([]bool, len(queries))

	var err error
	if e.opts.Workers == 1 {
		err = e.executeSequential(ctx, queries, hits, abandoned)
	} else {
		err = e.executeParallel(ctx, queries, hits, abandoned)
	}
	if err != nil {
		return nil, err
	}

	result := &domain.SearchResult{Hits: hits.Sorted()}
	for i, gaveUp := range abandoned {
		if gaveUp {
			result.Abandoned = append(result.Abandoned, queries[i])
		}
	}
	return result, nil
}

func (e *Executor) executeSequential(ctx context.Context, queries domain.QueryBatch, hits *HitSet, abandoned []bool) error {
	for i, query := range queries {
		gaveUp, err := e.runQuery(ctx, query, hits)
		if err != nil {
			return err
		}
		abandoned[i] = gaveUp
		e.reportProgress(query, i+1, len(queries))
	}
	return nil
}

func (e *Executor) executeParallel(ctx context.Context, queries domain.QueryBatch, hits *HitSet, abandoned []bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	done := 0

	// Limit concurrent goroutines
	semaphore := make(chan struct{}, e.opts.Workers)

	for i, query := range queries {
		wg.Add(1)
		go func(index int, q string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}

			gaveUp, err := e.runQuery(ctx, q, hits)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			abandoned[index] = gaveUp
			done++
			e.reportProgress(q, done, len(queries))
		}(i, query)
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// runQuery drives one query through ATTEMPT -> SUCCESS | UNSEARCHABLE | RATE_LIMITED* -> abandoned.
// The backoff state is private to the call.
func (e *Executor) runQuery(ctx context.Context, query string, hits *HitSet) (abandoned bool, err error) {
	log := logrus.WithField("query", query)
	log.Info("trying query")

	for delay := e.opts.InitialDelay; delay <= e.opts.MaxDelay; delay *= 2 {
		outcome := e.attempt(ctx, query)

		switch outcome.Kind {
		case OutcomeSuccess:
			kept := e.filter(outcome.Hits)
			hits.Add(kept...)
			log.WithField("hits", len(kept)).Debug("query succeeded")
			return false, nil

		case OutcomeUnsearchable:
			// none of the users in this group have searchable content
			log.Debug("query users cannot be searched, skipping")
			return false, nil

		case OutcomeRateLimited:
			log.WithFields(logrus.Fields{
				"delay":       delay,
				"retry_after": outcome.RetryAfter,
			}).Warn("rate limit exceeded, waiting before trying again")
			if err := e.opts.Sleep(ctx, delay); err != nil {
				return false, err
			}

		default:
			return false, fmt.Errorf("query %q: %w", query, outcome.Err)
		}
	}

	log.Error("max delay time reached, skipping query")
	return true, nil
}

// attempt runs both search modes; hits count only when both complete
func (e *Executor) attempt(ctx context.Context, query string) SearchOutcome {
	codeHits, err := e.search.SearchCode(ctx, query)
	if err != nil {
		return outcomeFromError(err)
	}
	repoHits, err := e.search.SearchRepositories(ctx, query)
	if err != nil {
		return outcomeFromError(err)
	}
	hits := make([]string, 0, len(codeHits)+len(repoHits))
	hits = append(hits, codeHits...)
	return SearchOutcome{
		Kind: OutcomeSuccess,
		Hits: append(hits, repoHits...),
	}
}

func outcomeFromError(err error) SearchOutcome {
	switch {
	case apperrors.IsRateLimited(err):
		return SearchOutcome{Kind: OutcomeRateLimited, RetryAfter: collector.RetryAfter(err), Err: err}
	case apperrors.IsUnsearchable(err):
		return SearchOutcome{Kind: OutcomeUnsearchable, Err: err}
	default:
		return SearchOutcome{Kind: OutcomeFatal, Err: err}
	}
}

func (e *Executor) filter(names []string) []string {
	kept := names[:0:0]
	for _, name := range names {
		if _, skip := e.exceptions[name]; !skip {
			kept = append(kept, name)
		}
	}
	return kept
}

func (e *Executor) reportProgress(query string, done, total int) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(query, float64(done)/float64(total))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
