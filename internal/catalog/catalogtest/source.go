package catalogtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/agentwiz/internal/catalog"
)

// MapSource is a catalog.Source over a map. It counts fetches and can be
// made to fail.
type MapSource struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Err     error
	fetches map[string]int
}

func (s *MapSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetches == nil {
		s.fetches = make(map[string]int)
	}
	s.fetches[path]++
	if s.Err != nil {
		return nil, s.Err
	}
	data, ok := s.Files[path]
	if !ok {
		return nil, fmt.Errorf("reading %s: %w", path, catalog.ErrNotExist)
	}
	return data, nil
}

func (s *MapSource) Location() string { return "memory" }

// Fetches returns how many times path was fetched.
func (s *MapSource) Fetches(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[path]
}

// SetErr makes every subsequent fetch fail with err.
func (s *MapSource) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}
