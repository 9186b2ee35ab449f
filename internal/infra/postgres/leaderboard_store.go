package postgres

import (
	"context"
	"fmt"

	"quizzio/internal/domain"
	"github.com/uptrace/bun"
)

// LeaderboardStore is the Postgres implementation of app.LeaderboardRepository.
type LeaderboardStore struct {
	db *bun.DB
}

func NewLeaderboardStore(db *bun.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

func (s *LeaderboardStore) Upsert(ctx context.Context, entry domain.LeaderboardEntry) error {
	row := &leaderboardRow{
		UserID:           entry.UserID,
		Username:         entry.Username,
		TotalScore:       entry.TotalScore,
		QuizzesCompleted: entry.QuizzesCompleted,
		CorrectAnswers:   entry.CorrectAnswers,
		TotalAnswers:     entry.TotalAnswers,
		Accuracy:         entry.Accuracy,
		LastUpdated:      entry.LastUpdated,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("total_score = EXCLUDED.total_score").
		Set("quizzes_completed = EXCLUDED.quizzes_completed").
		Set("correct_answers = EXCLUDED.correct_answers").
		Set("total_answers = EXCLUDED.total_answers").
		Set("accuracy = EXCLUDED.accuracy").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert leaderboard row: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("total_score > 0").
		Order("total_score DESC", "accuracy DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}
