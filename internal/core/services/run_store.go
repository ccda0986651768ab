package services

import (
	"context"
	"sync"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/ports"
)

// RunStore persists agent runs with an in-memory LRU cache in front of the repository.
// Recent runs are served from memory; older ones are loaded on demand.
type RunStore struct {
	mu   sync.RWMutex
	repo ports.RunRepository

	cache    map[domain.RunID]domain.RunRecord
	order    []domain.RunID // LRU order, most recent last
	maxCache int
}

// NewRunStore creates a new store with the given cache capacity.
func NewRunStore(repo ports.RunRepository, maxCache int) *RunStore {
	if maxCache <= 0 {
		maxCache = 64
	}
	return &RunStore{
		repo:     repo,
		cache:    make(map[domain.RunID]domain.RunRecord, maxCache),
		order:    make([]domain.RunID, 0, maxCache),
		maxCache: maxCache,
	}
}

// Save persists a run and caches it.
func (s *RunStore) Save(ctx context.Context, run domain.RunRecord) error {
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[run.ID] = run
	s.touchLocked(run.ID)
	s.evictLocked()
	s.mu.Unlock()

	return nil
}

// Get returns a run, using the cache when available.
func (s *RunStore) Get(ctx context.Context, id domain.RunID) (domain.RunRecord, error) {
	s.mu.RLock()
	run, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		// a concurrent Save may have evicted it meanwhile
		if _, still := s.cache[id]; still {
			s.touchLocked(id)
		}
		s.mu.Unlock()
		return run, nil
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return domain.RunRecord{}, err
	}

	s.mu.Lock()
	s.cache[id] = run
	s.touchLocked(id)
	s.evictLocked()
	s.mu.Unlock()

	return run, nil
}

// Cached reports how many runs are held in memory.
func (s *RunStore) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// --- LRU helpers (must be called with mu held) ---

func (s *RunStore) touchLocked(id domain.RunID) {
	s.removeLRULocked(id)
	s.order = append(s.order, id)
}

func (s *RunStore) removeLRULocked(id domain.RunID) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *RunStore) evictLocked() {
	for len(s.order) > s.maxCache {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cache, oldest)
	}
}
