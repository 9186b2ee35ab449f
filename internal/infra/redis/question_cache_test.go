package redis

import (
	"context"
	"testing"
	"time"

	"quizzio/internal/domain"
	"quizzio/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionBank(sampleQuestions()),
	}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)

	questions, err := cache.Find(context.Background(), domain.QuestionFilter{Subject: "Math"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 math questions, got %d", len(questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:questions:Math:") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	if _, err := cache.Find(context.Background(), domain.QuestionFilter{Subject: "Math"}); err != nil {
		t.Fatalf("find 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheSamplesWithLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewQuestionCache(newClient(mr), memory.NewStaticQuestionBank(sampleQuestions()), time.Minute)

	questions, err := cache.Find(context.Background(), domain.QuestionFilter{Subject: "Math", Limit: 1})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 sampled question, got %d", len(questions))
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, subject, difficulty)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Subject: "Math", Question: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Difficulty: "easy", Points: 10},
		{ID: 2, Subject: "Math", Question: "What is 7 * 8?", Options: []string{"54", "56"}, CorrectAnswer: "56", Difficulty: "hard", Points: 10},
		{ID: 3, Subject: "Science", Question: "H2O is?", Options: []string{"Water", "Salt"}, CorrectAnswer: "Water", Difficulty: "easy", Points: 10},
	}
}
