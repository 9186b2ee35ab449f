package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizzio/internal/domain"
)

func TestSessionStoreAppendAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session, err := store.Append(ctx, domain.QuizSession{
		UserID: 1, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 4, Score: 40,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if session.ID != 1 {
		t.Fatalf("expected sequential id 1, got %d", session.ID)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 40 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := store.Get(ctx, 99); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, domain.QuizSession{
			UserID: 1, Subject: "Math", TotalQuestions: 5, Score: i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Another user's sessions stay invisible.
	if _, err := store.Append(ctx, domain.QuizSession{UserID: 2, Subject: "Math", TotalQuestions: 5, CreatedAt: base}); err != nil {
		t.Fatalf("append: %v", err)
	}

	sessions, err := store.ByUser(ctx, 1, 2)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected limit applied, got %d sessions", len(sessions))
	}
	if sessions[0].Score != 2 || sessions[1].Score != 1 {
		t.Fatalf("expected newest first, got %+v", sessions)
	}

	all, err := store.ByUser(ctx, 1, 0)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected full history with limit 0, got %d", len(all))
	}
}
