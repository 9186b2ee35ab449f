package app

import (
	"context"

	"quizzio/internal/domain"
)

// QuestionRepository loads question bank content for the quiz flow. The
// engine only reads questions; authoring and import live elsewhere.
type QuestionRepository interface {
	Find(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
}
