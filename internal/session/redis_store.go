package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lira-chatbot/internal/common/database"
	stderrors "lira-chatbot/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:session:"

// RedisStore persists sessions as JSON values with a TTL, so conversations
// survive process restarts and expire without explicit cleanup.
type RedisStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(), nil
		}
		return nil, stderrors.NewSessionLoadFailedError(err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, stderrors.NewSessionLoadFailedError(err)
	}
	if s.History == nil {
		s.History = []Turn{}
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, id string, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return stderrors.NewSessionSaveFailedError(err)
	}
	if err := r.client.Set(ctx, keyPrefix+id, raw, r.ttl); err != nil {
		return stderrors.NewSessionSaveFailedError(err)
	}
	return nil
}
