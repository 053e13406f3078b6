package store

import (
	"context"
	"sort"
	"sync"

	"github.com/calvinwijaya/blackjack-be/internal/game"
)

// MemoryStore is an in-memory implementation of round storage. Rounds are
// copied on the way in and out so callers never share state with the store.
type MemoryStore struct {
	games   map[string]game.Round
	results map[string][]RoundResult
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]game.Round),
		results: make(map[string][]RoundResult),
	}
}

// Load retrieves a round by ID
func (s *MemoryStore) Load(_ context.Context, id string) (*game.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.games[id]
	if !exists {
		return nil, ErrNotFound
	}

	out := r.Clone()
	return &out, nil
}

// Save saves a round to the store
func (s *MemoryStore) Save(_ context.Context, r *game.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[r.ID] = r.Clone()
	return nil
}

// Remove removes a round and its history from the store
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; !exists {
		return ErrNotFound
	}

	delete(s.games, id)
	delete(s.results, id)
	return nil
}

// LoadSummaries returns all rounds, newest first
func (s *MemoryStore) LoadSummaries(_ context.Context) ([]game.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]game.Summary, 0, len(s.games))
	for _, r := range s.games {
		summaries = append(summaries, r.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].DtInsert.Equal(summaries[j].DtInsert) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].DtInsert.After(summaries[j].DtInsert)
	})
	return summaries, nil
}

// RecordResult appends a settled result to the round's history
func (s *MemoryStore) RecordResult(_ context.Context, result RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[result.RoundID]; !exists {
		return ErrNotFound
	}
	s.results[result.RoundID] = append(s.results[result.RoundID], result)
	return nil
}

// Stats aggregates the round's recorded results
func (s *MemoryStore) Stats(_ context.Context, id string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.games[id]; !exists {
		return nil, ErrNotFound
	}

	stats := &Stats{RoundID: id}
	for _, r := range s.results[id] {
		stats.Add(r)
	}
	return stats, nil
}
