package app

import (
	"context"
	"fmt"
	"math"

	"quizzio/internal/domain"
)

// Stats derives the cumulative read model from the user's full session
// history without writing anything back. A user with no sessions gets a
// zeroed result, not an error.
func (s *ProgressService) Stats(ctx context.Context, userID int64) (domain.UserStats, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return domain.UserStats{}, err
	}
	sessions, err := s.sessions.ByUser(ctx, userID, 0)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("read session history: %w", err)
	}
	return aggregate(sessions), nil
}

// RecomputeStats rebuilds the user's cumulative totals from the session fact
// table and writes them to the user row. This is deliberately a full
// recompute rather than an incremental delta: it always derives from the
// complete history, so concurrent completions converge to the same final
// state without per-user locks. O(sessions) per call, fine at per-user quiz
// volumes. After the write it evaluates cumulative achievements and returns
// any newly unlocked ids.
func (s *ProgressService) RecomputeStats(ctx context.Context, userID int64) ([]string, error) {
	sessions, err := s.sessions.ByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	stats := aggregate(sessions)

	if err := s.users.UpdateStats(ctx, userID,
		stats.TotalScore, stats.CorrectAnswers, stats.TotalQuestions,
		stats.TotalSessions, stats.Accuracy); err != nil {
		return nil, fmt.Errorf("write user stats: %w", err)
	}
	return s.evaluateCumulative(ctx, userID)
}

func aggregate(sessions []domain.QuizSession) domain.UserStats {
	var stats domain.UserStats
	for _, session := range sessions {
		stats.TotalSessions++
		stats.TotalScore += session.Score
		stats.TotalQuestions += session.TotalQuestions
		stats.CorrectAnswers += session.CorrectAnswers
		if session.Score > stats.BestScore {
			stats.BestScore = session.Score
		}
	}
	if stats.TotalSessions > 0 {
		stats.AverageScore = int(math.Round(float64(stats.TotalScore) / float64(stats.TotalSessions)))
	}
	stats.Accuracy = accuracy(stats.CorrectAnswers, stats.TotalQuestions)
	return stats
}

// accuracy is the rounded percentage of correct answers, 0 when nothing was
// answered yet.
func accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
