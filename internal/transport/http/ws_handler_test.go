package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizzio/internal/app"
	"quizzio/internal/domain"
	"quizzio/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketLeaderboardStream(t *testing.T) {
	users := memory.NewUserStore()
	board := app.NewLeaderboardService(users, memory.NewLeaderboardStore(), time.Hour)
	wsHandler := NewWSHandler(board)

	ctx := context.Background()
	alice, err := users.Create(ctx, domain.User{Email: "alice@example.com", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.UpdateStats(ctx, alice.ID, 100, 8, 10, 1, 80); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives on connect.
	snapshot := readBoard(conn, t)
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].TotalScore != 100 {
		t.Fatalf("unexpected initial snapshot: %+v", snapshot.Entries)
	}

	// A point refresh pushes a fresh snapshot to the stream.
	if err := users.UpdateStats(ctx, alice.ID, 250, 20, 25, 3, 80); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	if err := board.RefreshUser(ctx, alice.ID); err != nil {
		t.Fatalf("refresh user: %v", err)
	}

	update := readBoard(conn, t)
	if update.Entries[0].TotalScore != 250 {
		t.Fatalf("expected pushed score 250, got %+v", update.Entries)
	}
}

func readBoard(conn *websocket.Conn, t *testing.T) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
