package domain

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when a quiz session id does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidSession indicates rejected session data; callers should wrap
	// it with the failing constraint.
	ErrInvalidSession = errors.New("invalid session data")
	// ErrNoQuestions indicates the question bank has nothing matching the filter.
	ErrNoQuestions = errors.New("no questions found")
)
