package domain

import "time"

// User carries the mutable aggregate row for one player. The cumulative
// fields are owned by the progress engine: totals by stat recomputation,
// streaks by the streak tracker, achievements by the evaluator.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name"`
	Role             string    `json:"role"`
	TotalPoints      int       `json:"total_points"`
	CurrentStreak    int       `json:"current_streak"`
	BestStreak       int       `json:"best_streak"`
	QuizzesCompleted int       `json:"quizzes_completed"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalAnswers     int       `json:"total_answers"`
	Accuracy         int       `json:"accuracy"`
	Achievements     []string  `json:"achievements"`
	LastActivity     time.Time `json:"last_activity,omitempty"` // zero when the user has never played
	CreatedAt        time.Time `json:"created_at"`
}

// HasAchievement reports whether id is already unlocked.
func (u User) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// SessionAnswer records one answered question inside a session.
type SessionAnswer struct {
	Question  string `json:"question"`
	Selected  string `json:"selected"`
	Correct   string `json:"correct"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizSession is one completed quiz attempt. Rows are append-only facts;
// nothing in the engine mutates a session after it is recorded.
type QuizSession struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Subject        string          `json:"subject"`
	Difficulty     string          `json:"difficulty,omitempty"`
	TotalQuestions int             `json:"total_questions"`
	CorrectAnswers int             `json:"correct_answers"`
	Score          int             `json:"score"`
	Status         string          `json:"status"`
	TimeTaken      int             `json:"time_taken,omitempty"` // seconds, 0 when not supplied
	Answers        []SessionAnswer `json:"answers,omitempty"`
	StartedAt      time.Time       `json:"started_at,omitempty"`
	CompletedAt    time.Time       `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Perfect reports whether every question in the session was answered correctly.
func (s QuizSession) Perfect() bool {
	return s.TotalQuestions > 0 && s.CorrectAnswers == s.TotalQuestions
}

// UserStats is the read model produced by a full recompute over a user's
// session history. It is derived, never stored as-is.
type UserStats struct {
	TotalSessions  int `json:"total_sessions"`
	TotalScore     int `json:"total_score"`
	AverageScore   int `json:"average_score"`
	TotalQuestions int `json:"total_questions"`
	CorrectAnswers int `json:"correct_answers"`
	Accuracy       int `json:"accuracy"`
	BestScore      int `json:"best_score"`
}

// LeaderboardEntry is the denormalized per-user ranking row. Rows are a
// cache over the user aggregates and carry the time they were materialized.
type LeaderboardEntry struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	TotalScore       int       `json:"total_score"`
	QuizzesCompleted int       `json:"quizzes_completed"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalAnswers     int       `json:"total_answers"`
	Accuracy         int       `json:"accuracy"`
	Rank             int       `json:"rank"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Leaderboard is an ordered snapshot of the top entries.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// StreakInfo is the read model for a user's day streak.
type StreakInfo struct {
	UserID        int64     `json:"user_id"`
	CurrentStreak int       `json:"current_streak"`
	BestStreak    int       `json:"best_streak"`
	LastActivity  time.Time `json:"last_activity,omitempty"`
}

// Question models one multiple-choice question from the question bank.
type Question struct {
	ID            int64    `json:"id"`
	Subject       string   `json:"subject"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Explanation   string   `json:"explanation,omitempty"`
	Points        int      `json:"points"` // defaults to 10 if zero
}

// QuestionFilter narrows a question bank lookup.
type QuestionFilter struct {
	Subject    string
	Difficulty string
	Limit      int
}

// Achievement describes one entry of the static achievement catalog,
// optionally annotated with a user's unlock state.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}
