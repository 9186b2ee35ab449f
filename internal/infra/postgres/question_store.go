package postgres

import (
	"context"
	"fmt"

	"quizzio/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore reads the question bank from Postgres. It serves both as an
// app.QuestionRepository and as the loader behind the question caches.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) Find(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, subject, question, options, correct_answer, difficulty, explanation, points
		FROM questions
		WHERE ($1 = '' OR subject = $1)
		  AND ($2 = '' OR difficulty = $2)
		ORDER BY random()
		LIMIT nullif($3, 0)`,
		filter.Subject, filter.Difficulty, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Subject, &q.Question, &q.Options,
			&q.CorrectAnswer, &q.Difficulty, &q.Explanation, &q.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// LoadQuestions implements the loader interface used by the caches.
func (s *QuestionStore) LoadQuestions(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	return s.Find(ctx, domain.QuestionFilter{Subject: subject, Difficulty: difficulty})
}
