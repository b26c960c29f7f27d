// Package service contains the service layer for the Bookinsights API
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// issuedTokensKey is the Redis hash holding tokenID -> expiry (unix seconds)
const issuedTokensKey = "bookinsights:issued_tokens"

// TokenStore is the set of tokens issued by this process instance. A token
// is only accepted while its ID is present in the store; Clear is called at
// startup so a restart invalidates every outstanding token at once.
type TokenStore interface {
	Add(ctx context.Context, tokenID string, expiresAt time.Time) error
	Contains(ctx context.Context, tokenID string) (bool, error)
	Remove(ctx context.Context, tokenID string) error
	Clear(ctx context.Context) error
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// RedisTokenStore keeps the issued set in a Redis hash
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Add(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.client.HSet(ctx, issuedTokensKey, tokenID, expiresAt.Unix()).Err()
}

func (s *RedisTokenStore) Contains(ctx context.Context, tokenID string) (bool, error) {
	return s.client.HExists(ctx, issuedTokensKey, tokenID).Result()
}

func (s *RedisTokenStore) Remove(ctx context.Context, tokenID string) error {
	return s.client.HDel(ctx, issuedTokensKey, tokenID).Err()
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, issuedTokensKey).Err()
}

// Prune removes entries whose expiry has passed. Expired tokens are already
// rejected by signature validation; pruning only keeps the hash bounded.
func (s *RedisTokenStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	entries, err := s.client.HGetAll(ctx, issuedTokensKey).Result()
	if err != nil {
		return 0, err
	}

	expired := make([]string, 0)
	for tokenID, expiry := range entries {
		expiresAt, err := strconv.ParseInt(expiry, 10, 64)
		if err != nil || expiresAt < now.Unix() {
			expired = append(expired, tokenID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	return s.client.HDel(ctx, issuedTokensKey, expired...).Result()
}

// MemoryTokenStore is a process-local token store, used by tests and as a
// fallback when no Redis is configured
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

// NewMemoryTokenStore creates an in-memory token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]time.Time)}
}

func (s *MemoryTokenStore) Add(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenID] = expiresAt
	return nil
}

func (s *MemoryTokenStore) Contains(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[tokenID]
	return ok, nil
}

func (s *MemoryTokenStore) Remove(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenID)
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]time.Time)
	return nil
}

func (s *MemoryTokenStore) Prune(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for tokenID, expiresAt := range s.tokens {
		if expiresAt.Before(now) {
			delete(s.tokens, tokenID)
			removed++
		}
	}
	return removed, nil
}
