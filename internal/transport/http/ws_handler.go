package http

import (
	"log"
	"net/http"

	"quizzio/internal/app"
	"quizzio/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams leaderboard snapshots to connected clients. A client
// receives the current board on connect and a fresh snapshot every time the
// materialization changes.
type WSHandler struct {
	board    *app.LeaderboardService
	upgrader websocket.Upgrader
}

func NewWSHandler(board *app.LeaderboardService) *WSHandler {
	return &WSHandler{
		board: board,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string             `json:"type"`
	Payload domain.Leaderboard `json:"payload"`
}

// ServeWS upgrades the request and pipes leaderboard updates until the
// client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.board.Subscribe(r.Context())
	if err != nil {
		log.Printf("ws subscribe failed: %v", err)
		return
	}
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for update := range updates {
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: update}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Drain the connection; the read loop only exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
}
