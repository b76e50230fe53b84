package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps one-time codes in Redis with a TTL. State lives
// outside the process so verification survives restarts and works
// across replicas.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore constructs an OTPStore.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string {
	return "auth:otp:" + email
}

// Issue generates and stores a fresh 6-digit code for the email,
// replacing any outstanding one.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Consume verifies and deletes the code in one round trip, so a code
// can never be redeemed twice.
func (s *OTPStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.client.GetDel(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrInvalidOTP
	}
	return nil
}
