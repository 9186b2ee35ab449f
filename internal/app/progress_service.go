package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizzio/internal/domain"
)

// UserRepository abstracts how user aggregate rows are stored (in-memory, Postgres).
type UserRepository interface {
	Get(ctx context.Context, id int64) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// UpdateStats writes the recomputed cumulative totals.
	UpdateStats(ctx context.Context, id int64, totalPoints, correct, total, completed, accuracy int) error
	// UpdateStreak writes the streak fields and the activity date.
	UpdateStreak(ctx context.Context, id int64, current, best int, lastActivity time.Time) error
	// AddAchievements unions ids into the user's achievement set. Ids already
	// present must not be duplicated.
	AddAchievements(ctx context.Context, id int64, ids []string) error
}

// SessionRepository stores quiz sessions as append-only facts.
type SessionRepository interface {
	Append(ctx context.Context, session domain.QuizSession) (domain.QuizSession, error)
	Get(ctx context.Context, id int64) (domain.QuizSession, error)
	// ByUser returns the user's sessions newest first; limit <= 0 means all.
	ByUser(ctx context.Context, userID int64, limit int) ([]domain.QuizSession, error)
}

// RecordInput is the payload for recording one finished quiz attempt.
type RecordInput struct {
	UserID         int64
	Subject        string
	Difficulty     string
	TotalQuestions int
	CorrectAnswers int
	Score          int
	Status         string
	TimeTaken      int // seconds, 0 when the client did not measure
	Answers        []domain.SessionAnswer
	StartedAt      time.Time
}

// RecordReport tells the caller exactly what happened after the session row
// was committed. The session itself is always durable when RecordSession
// returns nil; the lag fields distinguish "recorded with stats lag" from a
// fully consistent write.
type RecordReport struct {
	Session  domain.QuizSession
	Unlocked []string // achievement ids newly unlocked by this record
	StatsLag error    // non-nil when the stat recompute could not run
	UnlockLag error   // non-nil when achievement evaluation could not run
}

// ProgressService is the scoring, streak and achievement engine. It owns the
// session lifecycle: append the fact, recompute the aggregates, evaluate the
// achievement catalog.
type ProgressService struct {
	users    UserRepository
	sessions SessionRepository
	board    *LeaderboardService // optional point-refresh hook
	now      func() time.Time
}

func NewProgressService(users UserRepository, sessions SessionRepository) *ProgressService {
	return &ProgressService{users: users, sessions: sessions, now: time.Now}
}

// WithLeaderboard wires an optional leaderboard point-refresh after each record.
func (s *ProgressService) WithLeaderboard(board *LeaderboardService) *ProgressService {
	s.board = board
	return s
}

// WithClock is test-only for deterministic timestamps.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// RecordSession validates and persists one quiz attempt, then runs the stat
// recompute and achievement evaluation. Validation and unknown-user failures
// reject the whole call before any write. Failures after the session row is
// committed never roll it back: they are logged and surfaced in the report so
// the quiz completion itself stays available.
func (s *ProgressService) RecordSession(ctx context.Context, in RecordInput) (RecordReport, error) {
	if err := validateRecordInput(in); err != nil {
		return RecordReport{}, err
	}
	if _, err := s.users.Get(ctx, in.UserID); err != nil {
		return RecordReport{}, err
	}

	now := s.now()
	status := in.Status
	if status == "" {
		status = "completed"
	}
	startedAt := in.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}
	session, err := s.sessions.Append(ctx, domain.QuizSession{
		UserID:         in.UserID,
		Subject:        in.Subject,
		Difficulty:     in.Difficulty,
		TotalQuestions: in.TotalQuestions,
		CorrectAnswers: in.CorrectAnswers,
		Score:          in.Score,
		Status:         status,
		TimeTaken:      in.TimeTaken,
		Answers:        in.Answers,
		StartedAt:      startedAt,
		CompletedAt:    now,
		CreatedAt:      now,
	})
	if err != nil {
		return RecordReport{}, fmt.Errorf("append session: %w", err)
	}

	report := RecordReport{Session: session}

	unlocked, err := s.RecomputeStats(ctx, in.UserID)
	if err != nil {
		log.Printf("stats recompute lagging for user %d: %v", in.UserID, err)
		report.StatsLag = err
	}
	report.Unlocked = append(report.Unlocked, unlocked...)

	sessionUnlocked, err := s.evaluateSession(ctx, session)
	if err != nil {
		log.Printf("session achievement evaluation lagging for user %d: %v", in.UserID, err)
		report.UnlockLag = err
	}
	report.Unlocked = append(report.Unlocked, sessionUnlocked...)

	if s.board != nil {
		if err := s.board.RefreshUser(ctx, in.UserID); err != nil {
			log.Printf("leaderboard refresh lagging for user %d: %v", in.UserID, err)
		}
	}
	return report, nil
}

func validateRecordInput(in RecordInput) error {
	switch {
	case in.TotalQuestions < 1:
		return fmt.Errorf("%w: total_questions must be at least 1", domain.ErrInvalidSession)
	case in.CorrectAnswers < 0 || in.CorrectAnswers > in.TotalQuestions:
		return fmt.Errorf("%w: correct_answers must be between 0 and total_questions", domain.ErrInvalidSession)
	case in.Score < 0:
		return fmt.Errorf("%w: score must not be negative", domain.ErrInvalidSession)
	case in.TimeTaken < 0:
		return fmt.Errorf("%w: time_taken must not be negative", domain.ErrInvalidSession)
	}
	return nil
}

// RecentSessions returns the user's latest attempts, newest first.
func (s *ProgressService) RecentSessions(ctx context.Context, userID int64, limit int) ([]domain.QuizSession, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.sessions.ByUser(ctx, userID, limit)
}

// Session returns one recorded attempt by id.
func (s *ProgressService) Session(ctx context.Context, id int64) (domain.QuizSession, error) {
	return s.sessions.Get(ctx, id)
}
