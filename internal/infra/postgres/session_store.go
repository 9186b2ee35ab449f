package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizzio/internal/domain"
	"github.com/uptrace/bun"
)

// SessionStore is the Postgres implementation of app.SessionRepository.
// quiz_sessions is an append-only fact table; there is deliberately no
// update path here.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Append(ctx context.Context, session domain.QuizSession) (domain.QuizSession, error) {
	row := &sessionRow{
		UserID:         session.UserID,
		Subject:        session.Subject,
		Difficulty:     session.Difficulty,
		TotalQuestions: session.TotalQuestions,
		CorrectAnswers: session.CorrectAnswers,
		Score:          session.Score,
		Status:         session.Status,
		TimeTaken:      session.TimeTaken,
		Answers:        session.Answers,
		StartedAt:      session.StartedAt,
		CompletedAt:    session.CompletedAt,
		CreatedAt:      session.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return domain.QuizSession{}, fmt.Errorf("insert session: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SessionStore) Get(ctx context.Context, id int64) (domain.QuizSession, error) {
	row := new(sessionRow)
	err := s.db.NewSelect().Model(row).Where("qs.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("select session: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SessionStore) ByUser(ctx context.Context, userID int64, limit int) ([]domain.QuizSession, error) {
	var rows []sessionRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	sessions := make([]domain.QuizSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}
