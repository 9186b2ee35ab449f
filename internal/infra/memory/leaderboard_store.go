package memory

import (
	"context"
	"sync"

	"quizzio/internal/app"
	"quizzio/internal/domain"
)

// LeaderboardStore is an in-memory implementation of app.LeaderboardRepository.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[int64]domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{entries: make(map[int64]domain.LeaderboardEntry)}
}

func (s *LeaderboardStore) Upsert(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = entry
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.TotalScore <= 0 {
			continue
		}
		entries = append(entries, entry)
	}
	app.SortEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
