package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"quizzio/internal/app"
	"quizzio/internal/domain"
)

// Handler exposes the progress engine over JSON endpoints. Authentication is
// out of scope: user ids arrive as trusted path/body values supplied by the
// identity layer in front of this service.
type Handler struct {
	progress  *app.ProgressService
	board     *app.LeaderboardService
	questions app.QuestionRepository
}

func NewHandler(progress *app.ProgressService, board *app.LeaderboardService, questions app.QuestionRepository) *Handler {
	return &Handler{progress: progress, board: board, questions: questions}
}

// Router wires the endpoints onto a ServeMux.
func (h *Handler) Router(ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/sessions", h.recordSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.session)
	mux.HandleFunc("GET /api/users/{id}/sessions", h.userSessions)
	mux.HandleFunc("GET /api/users/{id}/stats", h.userStats)
	mux.HandleFunc("GET /api/users/{id}/streak", h.streak)
	mux.HandleFunc("POST /api/users/{id}/streak", h.touchStreak)
	mux.HandleFunc("GET /api/users/{id}/achievements", h.achievements)
	mux.HandleFunc("GET /api/leaderboard", h.leaderboard)
	mux.HandleFunc("GET /api/questions", h.findQuestions)
	if ws != nil {
		mux.HandleFunc("GET /ws/leaderboard", ws.ServeWS)
	}
	return mux
}

type recordSessionRequest struct {
	UserID         int64                  `json:"user_id"`
	Subject        string                 `json:"subject"`
	Difficulty     string                 `json:"difficulty"`
	TotalQuestions int                    `json:"total_questions"`
	CorrectAnswers int                    `json:"correct_answers"`
	Score          int                    `json:"score"`
	Status         string                 `json:"status"`
	TimeTaken      int                    `json:"time_taken"`
	Answers        []domain.SessionAnswer `json:"answers"`
	StartedAt      time.Time              `json:"started_at"`
}

type recordSessionResponse struct {
	Session   domain.QuizSession `json:"session"`
	Unlocked  []string           `json:"unlocked_achievements"`
	StatsLag  bool               `json:"stats_lagging,omitempty"`
	UnlockLag bool               `json:"achievements_lagging,omitempty"`
}

func (h *Handler) recordSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	report, err := h.progress.RecordSession(r.Context(), app.RecordInput{
		UserID:         req.UserID,
		Subject:        req.Subject,
		Difficulty:     req.Difficulty,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Score:          req.Score,
		Status:         req.Status,
		TimeTaken:      req.TimeTaken,
		Answers:        req.Answers,
		StartedAt:      req.StartedAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	unlocked := report.Unlocked
	if unlocked == nil {
		unlocked = []string{}
	}
	writeJSON(w, http.StatusCreated, recordSessionResponse{
		Session:   report.Session,
		Unlocked:  unlocked,
		StatsLag:  report.StatsLag != nil,
		UnlockLag: report.UnlockLag != nil,
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := h.progress.Session(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) userSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sessions, err := h.progress.RecentSessions(r.Context(), id, queryInt(r, "limit", 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.QuizSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	stats, err := h.progress.Stats(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) streak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	info, err := h.progress.Streak(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type touchStreakResponse struct {
	domain.StreakInfo
	Unlocked []string `json:"unlocked_achievements"`
}

// touchStreak records daily activity. Safe to call repeatedly: the second
// call on the same day is a no-op.
func (h *Handler) touchStreak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	info, unlocked, err := h.progress.UpdateStreak(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	writeJSON(w, http.StatusOK, touchStreakResponse{StreakInfo: info, Unlocked: unlocked})
}

func (h *Handler) achievements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	catalog, err := h.progress.Achievements(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	unlocked := 0
	for _, achievement := range catalog {
		if achievement.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      id,
		"unlocked":     unlocked,
		"total":        len(catalog),
		"achievements": catalog,
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.board.Leaderboard(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) findQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.Find(r.Context(), domain.QuestionFilter{
		Subject:    r.URL.Query().Get("subject"),
		Difficulty: r.URL.Query().Get("difficulty"),
		Limit:      queryInt(r, "limit", 10),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNoQuestions):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
