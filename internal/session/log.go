// Package session holds chat transcripts for the lifetime of a UI session.
package session

import (
	"sync"
	"time"

	"healthmate-backend/internal/models"
)

// Log is the ordered, append-only transcript of one session. There is no
// size cap; it grows until the session is dropped.
type Log struct {
	mu        sync.RWMutex
	createdAt time.Time
	turns     []models.Turn
}

func NewLog() *Log {
	return &Log{
		createdAt: time.Now().UTC(),
		turns:     make([]models.Turn, 0, 16),
	}
}

// Append adds one turn at the end.
func (l *Log) Append(role models.Role, text string) (models.Turn, error) {
	if _, err := models.ParseRole(string(role)); err != nil {
		return models.Turn{}, err
	}

	turn := models.Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	return turn, nil
}

// AppendExchange adds a user turn and the assistant's reply under one lock,
// so readers never see the question without its answer.
func (l *Log) AppendExchange(user, assistant string) ([]models.Turn, error) {
	now := time.Now().UTC()
	pair := []models.Turn{
		{Role: models.RoleUser, Text: user, CreatedAt: now},
		{Role: models.RoleAssistant, Text: assistant, CreatedAt: now},
	}

	l.mu.Lock()
	l.turns = append(l.turns, pair...)
	l.mu.Unlock()

	return pair, nil
}

// All returns a copy of the transcript in append order.
func (l *Log) All() []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]models.Turn, len(l.turns))
	copy(copied, l.turns)
	return copied
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func (l *Log) CreatedAt() time.Time {
	return l.createdAt
}
