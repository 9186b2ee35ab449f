package postgres

import (
	"time"

	"quizzio/internal/domain"
	"github.com/uptrace/bun"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               int64     `bun:"id,pk,autoincrement"`
	Email            string    `bun:"email,notnull"`
	DisplayName      string    `bun:"display_name,notnull"`
	Role             string    `bun:"role,notnull"`
	TotalPoints      int       `bun:"total_points"`
	CurrentStreak    int       `bun:"current_streak"`
	BestStreak       int       `bun:"best_streak"`
	QuizzesCompleted int       `bun:"quizzes_completed"`
	CorrectAnswers   int       `bun:"correct_answers"`
	TotalAnswers     int       `bun:"total_answers"`
	Accuracy         int       `bun:"accuracy"`
	Achievements     []string  `bun:"achievements,array"`
	LastActivity     time.Time `bun:"last_activity,nullzero"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:               r.ID,
		Email:            r.Email,
		DisplayName:      r.DisplayName,
		Role:             r.Role,
		TotalPoints:      r.TotalPoints,
		CurrentStreak:    r.CurrentStreak,
		BestStreak:       r.BestStreak,
		QuizzesCompleted: r.QuizzesCompleted,
		CorrectAnswers:   r.CorrectAnswers,
		TotalAnswers:     r.TotalAnswers,
		Accuracy:         r.Accuracy,
		Achievements:     r.Achievements,
		LastActivity:     r.LastActivity,
		CreatedAt:        r.CreatedAt,
	}
}

type sessionRow struct {
	bun.BaseModel `bun:"table:quiz_sessions,alias:qs"`

	ID             int64                  `bun:"id,pk,autoincrement"`
	UserID         int64                  `bun:"user_id,notnull"`
	Subject        string                 `bun:"subject,notnull"`
	Difficulty     string                 `bun:"difficulty,nullzero"`
	TotalQuestions int                    `bun:"total_questions,notnull"`
	CorrectAnswers int                    `bun:"correct_answers,notnull"`
	Score          int                    `bun:"score,notnull"`
	Status         string                 `bun:"status,notnull"`
	TimeTaken      int                    `bun:"time_taken"`
	Answers        []domain.SessionAnswer `bun:"answers,type:jsonb,nullzero"`
	StartedAt      time.Time              `bun:"started_at,nullzero"`
	CompletedAt    time.Time              `bun:"completed_at,nullzero"`
	CreatedAt      time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r sessionRow) toDomain() domain.QuizSession {
	return domain.QuizSession{
		ID:             r.ID,
		UserID:         r.UserID,
		Subject:        r.Subject,
		Difficulty:     r.Difficulty,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		Score:          r.Score,
		Status:         r.Status,
		TimeTaken:      r.TimeTaken,
		Answers:        r.Answers,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
	}
}

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard,alias:lb"`

	UserID           int64     `bun:"user_id,pk"`
	Username         string    `bun:"username,notnull"`
	TotalScore       int       `bun:"total_score"`
	QuizzesCompleted int       `bun:"quizzes_completed"`
	CorrectAnswers   int       `bun:"correct_answers"`
	TotalAnswers     int       `bun:"total_answers"`
	Accuracy         int       `bun:"accuracy"`
	LastUpdated      time.Time `bun:"last_updated,nullzero,notnull,default:current_timestamp"`
}

func (r leaderboardRow) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		UserID:           r.UserID,
		Username:         r.Username,
		TotalScore:       r.TotalScore,
		QuizzesCompleted: r.QuizzesCompleted,
		CorrectAnswers:   r.CorrectAnswers,
		TotalAnswers:     r.TotalAnswers,
		Accuracy:         r.Accuracy,
		LastUpdated:      r.LastUpdated,
	}
}
