package app

import (
	"context"
	"fmt"

	"quizzio/internal/domain"
)

// achievementRule is one entry of the static catalog. A rule qualifies
// either on cumulative user stats or on a single just-played session, never
// both. Unlocks are monotonic: once an id is in a user's set it stays there.
type achievementRule struct {
	ID          string
	Title       string
	Description string
	Cumulative  func(domain.User) bool
	Session     func(domain.QuizSession) bool
}

// speedsterThreshold is the completion time under which a session counts as fast.
const speedsterThreshold = 120 // seconds

var achievementCatalog = []achievementRule{
	{
		ID: "first_quiz", Title: "First Quiz", Description: "Complete your first quiz",
		Cumulative: func(u domain.User) bool { return u.QuizzesCompleted >= 1 },
	},
	{
		ID: "quiz_enthusiast", Title: "Quiz Enthusiast", Description: "Complete 5 quizzes",
		Cumulative: func(u domain.User) bool { return u.QuizzesCompleted >= 5 },
	},
	{
		ID: "quiz_master", Title: "Quiz Master", Description: "Complete 25 quizzes",
		Cumulative: func(u domain.User) bool { return u.QuizzesCompleted >= 25 },
	},
	{
		ID: "century", Title: "Century", Description: "Earn 100 total points",
		Cumulative: func(u domain.User) bool { return u.TotalPoints >= 100 },
	},
	{
		ID: "accuracy_master", Title: "Accuracy Master", Description: "Reach 90% overall accuracy",
		Cumulative: func(u domain.User) bool { return u.Accuracy >= 90 },
	},
	{
		ID: "streak_3", Title: "Streak 3", Description: "3-day streak",
		Cumulative: func(u domain.User) bool { return u.BestStreak >= 3 },
	},
	{
		ID: "streak_5", Title: "Streak 5", Description: "5-day streak",
		Cumulative: func(u domain.User) bool { return u.BestStreak >= 5 },
	},
	{
		ID: "streak_7", Title: "Streak 7", Description: "7-day streak",
		Cumulative: func(u domain.User) bool { return u.BestStreak >= 7 },
	},
	{
		ID: "streak_30", Title: "Streak 30", Description: "30-day streak",
		Cumulative: func(u domain.User) bool { return u.BestStreak >= 30 },
	},
	{
		ID: "perfectionist", Title: "Perfectionist", Description: "Answer every question in a quiz correctly",
		Session: func(s domain.QuizSession) bool { return s.Perfect() },
	},
	{
		ID: "speedster", Title: "Speedster", Description: "Finish a quiz in under 2 minutes",
		Session: func(s domain.QuizSession) bool { return s.TimeTaken > 0 && s.TimeTaken < speedsterThreshold },
	},
}

// evaluateCumulative checks every cumulative rule against the user's current
// aggregates and unions the newly qualified ids into the achievement set.
// Calling it again on unchanged stats unlocks nothing: ids already present
// are skipped.
func (s *ProgressService) evaluateCumulative(ctx context.Context, userID int64) ([]string, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user for achievement check: %w", err)
	}

	var unlocked []string
	for _, rule := range achievementCatalog {
		if rule.Cumulative == nil || user.HasAchievement(rule.ID) {
			continue
		}
		if rule.Cumulative(user) {
			unlocked = append(unlocked, rule.ID)
		}
	}
	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := s.users.AddAchievements(ctx, userID, unlocked); err != nil {
		return nil, fmt.Errorf("persist achievements: %w", err)
	}
	return unlocked, nil
}

// evaluateSession checks the rules only a single attempt can answer, such as
// a perfect score or a fast completion. Idempotent the same way as the
// cumulative pass.
func (s *ProgressService) evaluateSession(ctx context.Context, session domain.QuizSession) ([]string, error) {
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user for achievement check: %w", err)
	}

	var unlocked []string
	for _, rule := range achievementCatalog {
		if rule.Session == nil || user.HasAchievement(rule.ID) {
			continue
		}
		if rule.Session(session) {
			unlocked = append(unlocked, rule.ID)
		}
	}
	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := s.users.AddAchievements(ctx, session.UserID, unlocked); err != nil {
		return nil, fmt.Errorf("persist achievements: %w", err)
	}
	return unlocked, nil
}

// Achievements returns the full catalog annotated with the user's unlock state.
func (s *ProgressService) Achievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog := make([]domain.Achievement, 0, len(achievementCatalog))
	for _, rule := range achievementCatalog {
		catalog = append(catalog, domain.Achievement{
			ID:          rule.ID,
			Title:       rule.Title,
			Description: rule.Description,
			Unlocked:    user.HasAchievement(rule.ID),
		})
	}
	return catalog, nil
}
