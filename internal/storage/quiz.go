package storage

import (
	"sync"

	"github.com/jim941206/110311/internal/service"
)

type quizEntry struct {
	mu         sync.Mutex
	controller *service.QuizController
}

// QuizStorage provides in-memory storage for quiz controllers by chat ID.
// Every access to a controller happens under that controller's own lock.
type QuizStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*quizEntry
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		sessions: make(map[int64]*quizEntry),
	}
}

// Ensure stores a controller built by create unless the chat already has one.
// It reports whether a new controller was created.
func (s *QuizStorage) Ensure(chatID int64, create func() *service.QuizController) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[chatID]; ok {
		return false
	}
	s.sessions[chatID] = &quizEntry{controller: create()}
	return true
}

// With runs fn with the chat's controller locked. It reports false if the chat has none.
func (s *QuizStorage) With(chatID int64, fn func(c *service.QuizController)) bool {
	s.mu.RLock()
	e, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.controller)
	return true
}

// Each runs fn for every stored controller, locking one controller at a time.
func (s *QuizStorage) Each(fn func(chatID int64, c *service.QuizController)) {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.sessions))
	entries := make([]*quizEntry, 0, len(s.sessions))
	for id, e := range s.sessions {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for i, e := range entries {
		e.mu.Lock()
		fn(ids[i], e.controller)
		e.mu.Unlock()
	}
}

// Delete removes the controller for a given chat ID.
func (s *QuizStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Evict removes every controller for which expired reports true and returns how many were removed.
// Controllers currently in use are skipped until the next call.
func (s *QuizStorage) Evict(expired func(c *service.QuizController) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if expired(e.controller) {
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Len returns the number of stored controllers.
func (s *QuizStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
