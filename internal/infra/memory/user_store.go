package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizzio/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository with
// sequential ids. Used when no Postgres backend is configured, and by tests.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[int64]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	if user.Role == "" {
		user.Role = "user"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) Get(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *UserStore) UpdateStats(_ context.Context, id int64, totalPoints, correct, total, completed, accuracy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.TotalPoints = totalPoints
	user.CorrectAnswers = correct
	user.TotalAnswers = total
	user.QuizzesCompleted = completed
	user.Accuracy = accuracy
	s.users[id] = user
	return nil
}

func (s *UserStore) UpdateStreak(_ context.Context, id int64, current, best int, lastActivity time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.CurrentStreak = current
	user.BestStreak = best
	user.LastActivity = lastActivity
	s.users[id] = user
	return nil
}

func (s *UserStore) AddAchievements(_ context.Context, id int64, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, achievementID := range ids {
		if !user.HasAchievement(achievementID) {
			user.Achievements = append(user.Achievements, achievementID)
		}
	}
	s.users[id] = user
	return nil
}

func cloneUser(user domain.User) domain.User {
	user.Achievements = append([]string(nil), user.Achievements...)
	return user
}
