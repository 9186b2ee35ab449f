package app_test

import (
	"context"
	"testing"
	"time"

	"quizzio/internal/app"
	"quizzio/internal/domain"
	"quizzio/internal/infra/memory"
)

func newBoardFixture(t *testing.T, ttl time.Duration) (*app.LeaderboardService, *memory.UserStore, *fakeClock) {
	t.Helper()
	users := memory.NewUserStore()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	board := app.NewLeaderboardService(users, memory.NewLeaderboardStore(), ttl).WithClock(clock.Now)
	return board, users, clock
}

func seedUser(t *testing.T, users *memory.UserStore, name string, points, correct, total int) domain.User {
	t.Helper()
	user, err := users.Create(context.Background(), domain.User{Email: name + "@example.com", DisplayName: name})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	acc := 0
	if total > 0 {
		acc = int(float64(correct)/float64(total)*100 + 0.5)
	}
	if err := users.UpdateStats(context.Background(), user.ID, points, correct, total, 1, acc); err != nil {
		t.Fatalf("seed stats: %v", err)
	}
	return user
}

func TestLeaderboardOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	board, users, _ := newBoardFixture(t, time.Hour)

	seedUser(t, users, "alice", 100, 8, 10)  // acc 80
	seedUser(t, users, "bob", 150, 9, 10)    // acc 90
	seedUser(t, users, "carol", 100, 10, 10) // acc 100, ties with alice on score
	seedUser(t, users, "idle", 0, 0, 0)      // never played, must be excluded

	got, err := board.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(got.Entries) != 3 {
		t.Fatalf("expected 3 ranked entries, got %d", len(got.Entries))
	}
	order := []string{"bob", "carol", "alice"}
	for i, want := range order {
		if got.Entries[i].Username != want {
			t.Fatalf("rank %d: expected %s, got %s", i+1, want, got.Entries[i].Username)
		}
		if got.Entries[i].Rank != i+1 {
			t.Fatalf("expected rank %d assigned, got %d", i+1, got.Entries[i].Rank)
		}
	}
}

func TestLeaderboardServesCachedRowsInsideTTL(t *testing.T) {
	ctx := context.Background()
	board, users, clock := newBoardFixture(t, time.Hour)

	alice := seedUser(t, users, "alice", 100, 8, 10)
	if _, err := board.Leaderboard(ctx, 10); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}

	// The aggregate moves, but the cache is still fresh.
	if err := users.UpdateStats(ctx, alice.ID, 500, 40, 50, 5, 80); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	clock.Advance(30 * time.Minute)
	got, err := board.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if got.Entries[0].TotalScore != 100 {
		t.Fatalf("expected stale cached score 100 inside TTL, got %d", got.Entries[0].TotalScore)
	}

	// Past the staleness window the rows are rebuilt.
	clock.Advance(time.Hour)
	got, err = board.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if got.Entries[0].TotalScore != 500 {
		t.Fatalf("expected refreshed score 500 after TTL, got %d", got.Entries[0].TotalScore)
	}
}

func TestRefreshUserBypassesTTL(t *testing.T) {
	ctx := context.Background()
	board, users, _ := newBoardFixture(t, time.Hour)

	alice := seedUser(t, users, "alice", 100, 8, 10)
	if _, err := board.Leaderboard(ctx, 10); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}

	if err := users.UpdateStats(ctx, alice.ID, 250, 20, 25, 3, 80); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	if err := board.RefreshUser(ctx, alice.ID); err != nil {
		t.Fatalf("refresh user: %v", err)
	}

	got, err := board.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if got.Entries[0].TotalScore != 250 {
		t.Fatalf("expected point-refreshed score 250, got %d", got.Entries[0].TotalScore)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	ctx := context.Background()
	board, users, _ := newBoardFixture(t, time.Hour)

	for i, name := range []string{"a", "b", "c", "d"} {
		seedUser(t, users, name, (i+1)*10, 5, 10)
	}
	got, err := board.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Username != "d" {
		t.Fatalf("expected d first, got %s", got.Entries[0].Username)
	}
}

func TestSubscribeReceivesRefreshes(t *testing.T) {
	ctx := context.Background()
	board, users, _ := newBoardFixture(t, time.Hour)
	alice := seedUser(t, users, "alice", 100, 8, 10)

	updates, cancel, err := board.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-updates
	if len(initial.Entries) != 1 {
		t.Fatalf("expected initial snapshot, got %+v", initial)
	}

	if err := users.UpdateStats(ctx, alice.ID, 300, 24, 30, 3, 80); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	if err := board.RefreshUser(ctx, alice.ID); err != nil {
		t.Fatalf("refresh user: %v", err)
	}

	update := <-updates
	if update.Entries[0].TotalScore != 300 {
		t.Fatalf("expected pushed snapshot with score 300, got %+v", update.Entries)
	}
}
