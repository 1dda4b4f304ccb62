package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"healthmate-backend/internal/models"
)

// MemoryStore keeps logs in process. Sessions idle for longer than ttl, or
// pushed out once maxSessions is exceeded, are dropped together with their log.
type MemoryStore struct {
	logs *expirable.LRU[uuid.UUID, *Log]
}

func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		logs: expirable.NewLRU[uuid.UUID, *Log](maxSessions, nil, ttl),
	}
}

func (s *MemoryStore) Create(_ context.Context) (models.Session, error) {
	id := uuid.New()
	l := NewLog()
	s.logs.Add(id, l)
	return models.Session{ID: id, CreatedAt: l.CreatedAt()}, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (models.Session, error) {
	l, ok := s.logs.Get(id)
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return models.Session{ID: id, CreatedAt: l.CreatedAt()}, nil
}

func (s *MemoryStore) Append(_ context.Context, id uuid.UUID, role models.Role, text string) (models.Turn, error) {
	l, ok := s.logs.Get(id)
	if !ok {
		return models.Turn{}, ErrNotFound
	}

	turn, err := l.Append(role, text)
	if err != nil {
		return models.Turn{}, err
	}

	// Re-adding refreshes the idle deadline.
	s.logs.Add(id, l)
	return turn, nil
}

func (s *MemoryStore) AppendExchange(_ context.Context, id uuid.UUID, user, assistant string) ([]models.Turn, error) {
	l, ok := s.logs.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	pair, err := l.AppendExchange(user, assistant)
	if err != nil {
		return nil, err
	}

	s.logs.Add(id, l)
	return pair, nil
}

func (s *MemoryStore) Transcript(_ context.Context, id uuid.UUID) ([]models.Turn, error) {
	l, ok := s.logs.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return l.All(), nil
}

// Len reports how many sessions are currently held.
func (s *MemoryStore) Len() int {
	return s.logs.Len()
}
