package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	NonceTTL    = 5 * time.Minute
	noncePrefix = "launchpad:nonce:"
)

// ErrChallengeExpired is returned when no pending challenge exists for a wallet
var ErrChallengeExpired = errors.New("challenge expired")

// NonceStore keeps one pending sign-in challenge per wallet.
// Take consumes the nonce so a signature can be used once.
type NonceStore interface {
	Put(ctx context.Context, wallet, nonce string) error
	Take(ctx context.Context, wallet string) (string, error)
}

// RedisNonceStore shares pending challenges between server replicas
type RedisNonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisNonceStore connects to the redis URL
func NewRedisNonceStore(url string) (*RedisNonceStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisNonceStore{rdb: redis.NewClient(opt), ttl: NonceTTL}, nil
}

// NewRedisNonceStoreWithClient wraps an existing client
func NewRedisNonceStoreWithClient(rdb *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{rdb: rdb, ttl: NonceTTL}
}

func (s *RedisNonceStore) Put(ctx context.Context, wallet, nonce string) error {
	if err := s.rdb.Set(ctx, noncePrefix+wallet, nonce, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

func (s *RedisNonceStore) Take(ctx context.Context, wallet string) (string, error) {
	nonce, err := s.rdb.GetDel(ctx, noncePrefix+wallet).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrChallengeExpired
	}
	if err != nil {
		return "", fmt.Errorf("failed to load nonce: %w", err)
	}
	return nonce, nil
}

// Ping checks the redis connection
func (s *RedisNonceStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisNonceStore) Close() error {
	return s.rdb.Close()
}

type pendingNonce struct {
	value   string
	expires time.Time
}

// MemoryNonceStore keeps challenges in process memory
type MemoryNonceStore struct {
	mu      sync.Mutex
	pending map[string]pendingNonce
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryNonceStore creates an empty in-memory store
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		pending: map[string]pendingNonce{},
		ttl:     NonceTTL,
		now:     time.Now,
	}
}

func (s *MemoryNonceStore) Put(_ context.Context, wallet, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.pending {
		if now.After(v.expires) {
			delete(s.pending, k)
		}
	}
	s.pending[wallet] = pendingNonce{value: nonce, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryNonceStore) Take(_ context.Context, wallet string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[wallet]
	delete(s.pending, wallet)
	if !ok || s.now().After(p.expires) {
		return "", ErrChallengeExpired
	}
	return p.value, nil
}
