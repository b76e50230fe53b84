package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ako-polymers/resinworks/internal/shared"
)

// SessionStore keeps opaque bearer tokens in Redis with a TTL. Tokens
// are keyed by their HMAC so a leaked keyspace dump cannot be replayed.
type SessionStore struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, secret string, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, secret: []byte(secret), ttl: ttl}
}

func (s *SessionStore) key(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return "auth:session:" + hex.EncodeToString(mac.Sum(nil))
}

// Issue creates a new token bound to the actor.
func (s *SessionStore) Issue(ctx context.Context, actor shared.Actor) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(actor)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to its actor.
func (s *SessionStore) Resolve(ctx context.Context, token string) (*shared.Actor, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var actor shared.Actor
	if err := json.Unmarshal(payload, &actor); err != nil {
		return nil, err
	}
	return &actor, nil
}

// Revoke deletes a token. Revoking an unknown token is a no-op.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
