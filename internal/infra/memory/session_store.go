package memory

import (
	"context"
	"sort"
	"sync"

	"quizzio/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions are append-only facts keyed by a generated sequential id.
type SessionStore struct {
	mu       sync.RWMutex
	nextID   int64
	sessions []domain.QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{nextID: 1}
}

func (s *SessionStore) Append(_ context.Context, session domain.QuizSession) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = s.nextID
	s.nextID++
	s.sessions = append(s.sessions, session)
	return session, nil
}

func (s *SessionStore) Get(_ context.Context, id int64) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return domain.QuizSession{}, domain.ErrSessionNotFound
}

func (s *SessionStore) ByUser(_ context.Context, userID int64, limit int) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []domain.QuizSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
