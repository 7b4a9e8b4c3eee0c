package audit

import (
	"sort"
	"sync"
)

// HitSet is a goroutine-safe set of repository full names
type HitSet struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewHitSet creates an empty set
func NewHitSet() *HitSet {
	return &HitSet{names: make(map[string]struct{})}
}

// Add inserts names, ignoring ones already present
func (s *HitSet) Add(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.names[name] = struct{}{}
	}
}

// Len returns the number of distinct names
func (s *HitSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// Sorted returns the names in lexical order
func (s *HitSet) Sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
