package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"healthmate-backend/internal/models"
)

// RedisStore shares transcripts between server instances. Every key carries
// the session TTL, so a transcript disappears with its session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func markerKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func turnsKey(id uuid.UUID) string {
	return "session:" + id.String() + ":turns"
}

func (s *RedisStore) Create(ctx context.Context) (models.Session, error) {
	sess := models.Session{ID: uuid.New(), CreatedAt: time.Now().UTC()}

	if err := s.client.Set(ctx, markerKey(sess.ID), sess.CreatedAt.Format(time.RFC3339Nano), s.ttl).Err(); err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (models.Session, error) {
	val, err := s.client.Get(ctx, markerKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return models.Session{}, fmt.Errorf("corrupt session marker: %w", err)
	}
	return models.Session{ID: id, CreatedAt: createdAt}, nil
}

func (s *RedisStore) Append(ctx context.Context, id uuid.UUID, role models.Role, text string) (models.Turn, error) {
	if _, err := models.ParseRole(string(role)); err != nil {
		return models.Turn{}, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return models.Turn{}, err
	}

	turn := models.Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()}
	if err := s.push(ctx, id, turn); err != nil {
		return models.Turn{}, err
	}
	return turn, nil
}

// AppendExchange pushes both turns in one MULTI/EXEC so a failure stores neither.
func (s *RedisStore) AppendExchange(ctx context.Context, id uuid.UUID, user, assistant string) ([]models.Turn, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pair := []models.Turn{
		{Role: models.RoleUser, Text: user, CreatedAt: now},
		{Role: models.RoleAssistant, Text: assistant, CreatedAt: now},
	}
	if err := s.push(ctx, id, pair...); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *RedisStore) push(ctx context.Context, id uuid.UUID, turns ...models.Turn) error {
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode turn: %w", err)
		}
		values = append(values, data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, turnsKey(id), values...)
		pipe.Expire(ctx, turnsKey(id), s.ttl)
		pipe.Expire(ctx, markerKey(id), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append turns: %w", err)
	}
	return nil
}

func (s *RedisStore) Transcript(ctx context.Context, id uuid.UUID) ([]models.Turn, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	raw, err := s.client.LRange(ctx, turnsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	turns := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("corrupt turn in transcript: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}
