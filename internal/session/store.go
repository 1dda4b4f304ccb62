package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"healthmate-backend/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps one Log per session. Implementations are safe for concurrent
// use across sessions.
type Store interface {
	Create(ctx context.Context) (models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (models.Session, error)
	Append(ctx context.Context, id uuid.UUID, role models.Role, text string) (models.Turn, error)
	// AppendExchange records a user message and its reply as one write.
	// On error neither turn is stored.
	AppendExchange(ctx context.Context, id uuid.UUID, user, assistant string) ([]models.Turn, error)
	Transcript(ctx context.Context, id uuid.UUID) ([]models.Turn, error)
}
