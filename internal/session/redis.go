package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/chibi/internal/llm"
)

const (
	// sessionKeyPrefix namespaces session keys in Redis.
	sessionKeyPrefix = "chibi:session:"
	// defaultRedisTTL keeps idle sessions around for a month. Active
	// sessions refresh the TTL on every save.
	defaultRedisTTL = 30 * 24 * time.Hour
)

// redisStore implements Store over Redis with JSON-serialized sessions.
type redisStore struct {
	client       *redis.Client
	ttl          time.Duration
	defaultModel llm.Model
}

func newRedisStore(config *storeConfig) *redisStore {
	ttl := config.redisTTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &redisStore{
		client:       config.redisClient,
		ttl:          ttl,
		defaultModel: config.defaultModel,
	}
}

func (s *redisStore) LoadOrCreate(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("session load failed: user id is required")
	}

	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return newSession(s.defaultModel), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for %s: %w", userID, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session for %s: %w", userID, err)
	}
	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, userID string, sess *Session) error {
	if userID == "" {
		return fmt.Errorf("session save failed: user id is required")
	}
	if sess == nil {
		return fmt.Errorf("session save failed: session is nil")
	}

	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session for %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, s.key(userID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session for %s: %w", userID, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for %s: %w", userID, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

func (s *redisStore) key(userID string) string {
	return sessionKeyPrefix + userID
}
