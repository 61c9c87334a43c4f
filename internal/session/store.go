package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/chibi/internal/llm"
)

// StoreType selects a session store driver.
type StoreType string

// Supported store drivers.
const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Store loads and saves sessions keyed by user ID. Sessions are never
// deleted by the turn pipeline; Delete exists for administrative use.
type Store interface {
	// LoadOrCreate returns the stored session for a user, or a fresh one
	// with defaults filled in. The fresh session is not persisted until
	// the first Save.
	LoadOrCreate(ctx context.Context, userID string) (*Session, error)

	// Save persists the session for a user.
	Save(ctx context.Context, userID string, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, userID string) error

	// Close releases any store resources.
	Close() error
}

// Store configuration errors.
var (
	ErrInvalidStoreType = fmt.Errorf("session: invalid store type")
	ErrInvalidConfig    = fmt.Errorf("session: invalid store configuration")
)

type storeConfig struct {
	redisClient  *redis.Client
	redisTTL     time.Duration
	defaultModel llm.Model
}

// StoreOption configures a store created by NewStore.
type StoreOption func(*storeConfig)

// WithRedisClient supplies the Redis client for the redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL overrides the session key TTL for the redis driver.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithDefaultModel sets the model tier given to fresh sessions.
func WithDefaultModel(model llm.Model) StoreOption {
	return func(c *storeConfig) {
		c.defaultModel = model
	}
}

// NewStore creates a session store for the given driver type.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{
		defaultModel: llm.ModelGPT3,
	}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			sessions:     make(map[string]*Session),
			defaultModel: config.defaultModel,
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(config), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}

// newSession builds a session with defaults filled in explicitly.
func newSession(defaultModel llm.Model) *Session {
	return &Session{
		Language: DefaultLanguage,
		Voice:    DefaultVoice,
		Model:    defaultModel,
	}
}

// memoryStore implements Store with an in-process map. Suitable for tests
// and single-instance deployments without persistence requirements.
type memoryStore struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	defaultModel llm.Model
}

func (s *memoryStore) LoadOrCreate(_ context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("session load failed: user id is required")
	}

	s.mu.RLock()
	stored, exists := s.sessions[userID]
	s.mu.RUnlock()
	if !exists {
		return newSession(s.defaultModel), nil
	}

	// Return a copy so callers mutate freely and persist via Save.
	copied := *stored
	copied.Gallery = append(Gallery(nil), stored.Gallery...)
	return &copied, nil
}

func (s *memoryStore) Save(_ context.Context, userID string, sess *Session) error {
	if userID == "" {
		return fmt.Errorf("session save failed: user id is required")
	}
	if sess == nil {
		return fmt.Errorf("session save failed: session is nil")
	}

	copied := *sess
	copied.Gallery = append(Gallery(nil), sess.Gallery...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &copied
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
	return nil
}
