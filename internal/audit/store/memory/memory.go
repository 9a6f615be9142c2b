package memory

import (
	"context"
	"sync"

	"riskserve/internal/audit"
)

// Store keeps inference records in memory. It backs tests and the debug
// surface; it intentionally favors clarity over performance.
type Store struct {
	mu      sync.RWMutex
	records []audit.Record
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ListRecent returns up to limit records, newest first. limit <= 0 returns
// everything.
func (s *Store) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]audit.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
