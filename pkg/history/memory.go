package history

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps runs in process memory. Runs are lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return newStorageError("memory", "save", fmt.Errorf("duplicate run id %s", run.ID))
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, q *Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sorted(q)
	if q != nil {
		if q.Offset > 0 {
			matched = matched[min(q.Offset, len(matched)):]
		}
		if q.Limit > 0 && len(matched) > q.Limit {
			matched = matched[:q.Limit]
		}
	}

	out := make([]*Run, len(matched))
	for i, run := range matched {
		cp := *run
		cp.Report = nil
		out[i] = &cp
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, q *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sorted(q))), nil
}

func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) DeleteBeyond(_ context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sorted(nil)
	if keep < 0 || len(all) <= keep {
		return 0, nil
	}
	for _, run := range all[keep:] {
		delete(s.runs, run.ID)
	}
	return int64(len(all) - keep), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// sorted returns matching runs newest first. Callers hold mu.
func (s *MemoryStore) sorted(q *Query) []*Run {
	var out []*Run
	for _, run := range s.runs {
		if matches(run, q) {
			out = append(out, run)
		}
	}
	slices.SortFunc(out, func(a, b *Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func matches(run *Run, q *Query) bool {
	if q == nil {
		return true
	}
	if q.Template != "" && run.Template != q.Template {
		return false
	}
	if q.Valid != nil && run.Valid != *q.Valid {
		return false
	}
	if q.Since != nil && run.StartedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && !run.StartedAt.Before(*q.Until) {
		return false
	}
	return true
}
