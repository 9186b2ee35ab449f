package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizzio/internal/domain"
)

// UpdateStreak records daily activity for the user and advances the
// calendar-day streak. Comparison is by UTC calendar day, not 24h windows:
//   - already counted today: no-op, safe to call any number of times a day
//   - last activity was yesterday: the streak continues and grows by one
//   - anything older, or no activity ever: the streak restarts at one
//
// best_streak only ever ratchets up. Streak achievements depend on it, so a
// non-noop update re-runs the cumulative achievement pass.
func (s *ProgressService) UpdateStreak(ctx context.Context, userID int64) (domain.StreakInfo, []string, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.StreakInfo{}, nil, err
	}

	today := dateOf(s.now())
	info := domain.StreakInfo{
		UserID:        userID,
		CurrentStreak: user.CurrentStreak,
		BestStreak:    user.BestStreak,
		LastActivity:  user.LastActivity,
	}

	if !user.LastActivity.IsZero() && dateOf(user.LastActivity).Equal(today) {
		return info, nil, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	if !user.LastActivity.IsZero() && dateOf(user.LastActivity).Equal(yesterday) {
		info.CurrentStreak = user.CurrentStreak + 1
	} else {
		info.CurrentStreak = 1
	}
	if info.CurrentStreak > info.BestStreak {
		info.BestStreak = info.CurrentStreak
	}
	info.LastActivity = today

	if err := s.users.UpdateStreak(ctx, userID, info.CurrentStreak, info.BestStreak, today); err != nil {
		return domain.StreakInfo{}, nil, fmt.Errorf("write streak: %w", err)
	}

	unlocked, err := s.evaluateCumulative(ctx, userID)
	if err != nil {
		// The streak write itself succeeded; achievement lag is non-fatal here
		// for the same reason it is in RecordSession.
		log.Printf("streak achievement evaluation lagging for user %d: %v", userID, err)
	}
	return info, unlocked, nil
}

// Streak returns the user's streak fields without touching them.
func (s *ProgressService) Streak(ctx context.Context, userID int64) (domain.StreakInfo, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.StreakInfo{}, err
	}
	return domain.StreakInfo{
		UserID:        userID,
		CurrentStreak: user.CurrentStreak,
		BestStreak:    user.BestStreak,
		LastActivity:  user.LastActivity,
	}, nil
}

// dateOf truncates t to its UTC calendar day. Stored timestamps come back
// from Postgres in UTC while the clock may carry another zone, so both sides
// must be normalized before day comparison.
func dateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
