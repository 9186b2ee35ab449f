package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"quizzio/internal/domain"
	"golang.org/x/sync/singleflight"
)

// LeaderboardRepository stores the denormalized ranking rows. Implementations
// must return Top ordered by total_score desc with accuracy desc as the
// tie-break, excluding rows with total_score <= 0.
type LeaderboardRepository interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Upsert(ctx context.Context, entry domain.LeaderboardEntry) error
}

// LeaderboardService serves the ranking as a cache with a logical TTL. Rows
// are rebuilt from the user aggregates when the cached materialization is
// older than the staleness window; a point write per user keeps the board
// responsive right after a quiz without waiting for the sweep.
type LeaderboardService struct {
	users   UserRepository
	entries LeaderboardRepository
	ttl     time.Duration
	now     func() time.Time
	sf      singleflight.Group

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(users UserRepository, entries LeaderboardRepository, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{
		users:       users,
		entries:     entries,
		ttl:         ttl,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// WithClock is test-only for deterministic staleness checks.
func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

// Leaderboard returns the top entries, refreshing the materialization first
// if any cached row is older than the TTL (or nothing is cached yet).
// Concurrent refreshes collapse into one via singleflight.
func (s *LeaderboardService) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.entries.Top(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("read leaderboard: %w", err)
	}

	if s.stale(entries) {
		if _, err, _ := s.sf.Do("refresh", func() (interface{}, error) {
			return nil, s.refreshAll(ctx)
		}); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("refresh leaderboard: %w", err)
		}
		if entries, err = s.entries.Top(ctx, limit); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("read leaderboard: %w", err)
		}
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

func (s *LeaderboardService) stale(entries []domain.LeaderboardEntry) bool {
	if len(entries) == 0 {
		return true
	}
	cutoff := s.now().Add(-s.ttl)
	for _, entry := range entries {
		if entry.LastUpdated.Before(cutoff) {
			return true
		}
	}
	return false
}

func (s *LeaderboardService) refreshAll(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	now := s.now()
	for _, user := range users {
		if err := s.entries.Upsert(ctx, entryFromUser(user, now)); err != nil {
			return fmt.Errorf("upsert leaderboard row for user %d: %w", user.ID, err)
		}
	}
	s.broadcast(ctx)
	return nil
}

// RefreshUser rewrites a single user's row from the current aggregates,
// independent of the TTL sweep.
func (s *LeaderboardService) RefreshUser(ctx context.Context, userID int64) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.entries.Upsert(ctx, entryFromUser(user, s.now())); err != nil {
		return fmt.Errorf("upsert leaderboard row: %w", err)
	}
	s.broadcast(ctx)
	return nil
}

func entryFromUser(user domain.User, now time.Time) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		UserID:           user.ID,
		Username:         user.DisplayName,
		TotalScore:       user.TotalPoints,
		QuizzesCompleted: user.QuizzesCompleted,
		CorrectAnswers:   user.CorrectAnswers,
		TotalAnswers:     user.TotalAnswers,
		Accuracy:         user.Accuracy,
		LastUpdated:      now,
	}
}

// Subscribe returns a channel that receives leaderboard snapshots whenever
// the materialization changes. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx, 10)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *LeaderboardService) broadcast(ctx context.Context) {
	s.mu.Lock()
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	entries, err := s.entries.Top(ctx, 10)
	if err != nil {
		return
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	snapshot := domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale update so a slow client never blocks the others
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// SortEntries orders entries by total score descending with accuracy as the
// tie-break, matching the contract stores must honor. Shared by the memory
// and redis implementations.
func SortEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Accuracy > entries[j].Accuracy
	})
}
