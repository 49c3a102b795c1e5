package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const SessionKeyPrefix = "session:token"

var (
	ErrSessionMiss      = errors.New("session not cached")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// SessionCache keeps recently validated sessions. Entries hold the creation
// time, so a hit never extends a session beyond the caller's max age.
type SessionCache struct {
	Client *redis.Client
	TTL    time.Duration
}

type CachedSession struct {
	Email     string
	CreatedAt time.Time
}

func (c *SessionCache) key(token string) string {
	return fmt.Sprintf("%s:%s", SessionKeyPrefix, token)
}

func (c *SessionCache) Put(ctx context.Context, token, email string, createdAt time.Time) error {
	val := strconv.FormatInt(createdAt.UnixNano(), 10) + "|" + email
	if err := c.Client.Set(ctx, c.key(token), val, c.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (c *SessionCache) Get(ctx context.Context, token string) (*CachedSession, error) {
	val, err := c.Client.Get(ctx, c.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	ts, email, ok := strings.Cut(val, "|")
	if !ok {
		return nil, ErrSessionMiss
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, ErrSessionMiss
	}
	return &CachedSession{Email: email, CreatedAt: time.Unix(0, nanos).UTC()}, nil
}

func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if err := c.Client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
