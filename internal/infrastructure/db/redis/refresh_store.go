package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshStore records the latest refresh token issued per subject.
// Key format: refresh:<lowercased email>
type RefreshStore struct {
	client *redis.Client
}

// NewRefreshStore creates a RefreshStore wrapping the given Redis client.
func NewRefreshStore(client *redis.Client) *RefreshStore {
	return &RefreshStore{client: client}
}

// Save overwrites whatever token was recorded for subject. Concurrent
// logins of the same user resolve last-writer-wins.
func (s *RefreshStore) Save(ctx context.Context, subject, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(subject), token, ttl).Err(); err != nil {
		return fmt.Errorf("refresh store save: %w", err)
	}
	return nil
}

// Matches reports whether token is the one recorded for subject.
func (s *RefreshStore) Matches(ctx context.Context, subject, token string) (bool, error) {
	stored, err := s.client.Get(ctx, s.key(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("refresh store lookup: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

// Revoke forgets the token recorded for subject. Missing keys are not an error.
func (s *RefreshStore) Revoke(ctx context.Context, subject string) error {
	if err := s.client.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("refresh store revoke: %w", err)
	}
	return nil
}

func (s *RefreshStore) key(subject string) string {
	return "refresh:" + strings.ToLower(subject)
}
