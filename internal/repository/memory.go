package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// MemoryStore is an in-memory session store with the same contract as
// SessionStore. Used in tests and for local development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.ChatSession)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := cloneSession(session)
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if session.ID == "" {
		session.ID = uuid.New().String()
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	s.sessions[session.ID] = cloneSession(*session)
	out := cloneSession(*session)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session.ID)
	return nil
}

func (s *MemoryStore) CountByUser(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []domain.ChatSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// cloneSession copies the message slice so callers cannot mutate stored
// state, mirroring the round-trip through a real database.
func cloneSession(s domain.ChatSession) domain.ChatSession {
	messages := make([]domain.ChatMessage, len(s.Messages))
	for i, m := range s.Messages {
		images := make([]domain.ImageContent, len(m.Images))
		copy(images, m.Images)
		if len(images) == 0 {
			images = nil
		}
		m.Images = images
		messages[i] = m
	}
	s.Messages = messages
	return s
}
