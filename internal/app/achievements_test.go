package app_test

import (
	"context"
	"testing"

	"quizzio/internal/app"
)

func TestCumulativeUnlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, users := newTestService(t)
	user := mustCreateUser(t, users, "alice@example.com", "Alice")

	record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 10, CorrectAnswers: 6, Score: 60})

	first, err := service.RecomputeStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(first) != 0 {
		t.Fatalf("expected no new unlocks on unchanged stats, got %v", first)
	}

	before, _ := users.Get(ctx, user.ID)
	again, err := service.RecomputeStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second recompute unlocked %v", again)
	}
	after, _ := users.Get(ctx, user.ID)
	if len(before.Achievements) != len(after.Achievements) {
		t.Fatalf("achievement set changed across idempotent recomputes: %v vs %v",
			before.Achievements, after.Achievements)
	}
}

func TestQuizEnthusiastUnlocksAtFive(t *testing.T) {
	ctx := context.Background()
	service, users := newTestService(t)
	user := mustCreateUser(t, users, "alice@example.com", "Alice")

	for i := 0; i < 4; i++ {
		record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 4, CorrectAnswers: 2, Score: 5})
	}
	got, _ := users.Get(ctx, user.ID)
	if got.HasAchievement("quiz_enthusiast") {
		t.Fatalf("quiz_enthusiast unlocked too early at %d quizzes", got.QuizzesCompleted)
	}

	report := record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 4, CorrectAnswers: 2, Score: 5})
	found := false
	for _, id := range report.Unlocked {
		if id == "quiz_enthusiast" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected quiz_enthusiast on fifth quiz, got %v", report.Unlocked)
	}
}

func TestPerfectionistUnlocksExactlyOnce(t *testing.T) {
	service, users := newTestService(t)
	user := mustCreateUser(t, users, "alice@example.com", "Alice")

	perfect := app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 5, Score: 50}
	first := record(t, service, perfect)
	if !contains(first.Unlocked, "perfectionist") {
		t.Fatalf("expected perfectionist on the first perfect quiz, got %v", first.Unlocked)
	}

	second := record(t, service, perfect)
	if contains(second.Unlocked, "perfectionist") {
		t.Fatalf("perfectionist unlocked twice")
	}

	got, _ := users.Get(context.Background(), user.ID)
	seen := 0
	for _, id := range got.Achievements {
		if id == "perfectionist" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("perfectionist appears %d times in the set", seen)
	}
}

func TestSpeedsterNeedsTimeTaken(t *testing.T) {
	service, users := newTestService(t)
	user := mustCreateUser(t, users, "alice@example.com", "Alice")

	// No time measured: the rule must not fire.
	report := record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 3, Score: 30})
	if contains(report.Unlocked, "speedster") {
		t.Fatalf("speedster unlocked without time_taken")
	}

	// 2 minutes exactly is not under the threshold.
	report = record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 3, Score: 30, TimeTaken: 120})
	if contains(report.Unlocked, "speedster") {
		t.Fatalf("speedster unlocked at the threshold boundary")
	}

	report = record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 3, Score: 30, TimeTaken: 119})
	if !contains(report.Unlocked, "speedster") {
		t.Fatalf("expected speedster under 120s, got %v", report.Unlocked)
	}
}

func TestAchievementCatalogRead(t *testing.T) {
	service, users := newTestService(t)
	user := mustCreateUser(t, users, "alice@example.com", "Alice")

	record(t, service, app.RecordInput{UserID: user.ID, Subject: "Math", TotalQuestions: 5, CorrectAnswers: 5, Score: 50})

	catalog, err := service.Achievements(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	byID := make(map[string]bool, len(catalog))
	for _, achievement := range catalog {
		byID[achievement.ID] = achievement.Unlocked
	}
	if !byID["first_quiz"] || !byID["perfectionist"] {
		t.Fatalf("expected first_quiz and perfectionist unlocked: %v", byID)
	}
	if byID["quiz_master"] {
		t.Fatalf("quiz_master must stay locked")
	}
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
