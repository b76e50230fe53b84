package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ako-polymers/resinworks/internal/shared"
)

// Mailer delivers OTP codes out of band.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Service wraps authentication business rules. Both signup and login
// finish through VerifyOTP, which activates the account and issues the
// session token.
type Service struct {
	repo     Repository
	otps     *OTPStore
	sessions *SessionStore
	mailer   Mailer
}

// NewService constructs a new Service.
func NewService(repo Repository, otps *OTPStore, sessions *SessionStore, mailer Mailer) *Service {
	return &Service{repo: repo, otps: otps, sessions: sessions, mailer: mailer}
}

// Signup registers an inactive account and sends the activation OTP.
func (s *Service) Signup(ctx context.Context, email, password string, role Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return fmt.Errorf("%w: email and a password of at least 8 characters required", ErrInvalidInput)
	}
	if role == "" {
		role = RoleOperator
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}); err != nil {
		return err
	}
	return s.sendOTP(ctx, email)
}

// Login validates credentials and sends a login OTP.
func (s *Service) Login(ctx context.Context, email, password string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	return s.sendOTP(ctx, user.Email)
}

// VerifyOTP consumes the code, activates the account if needed and
// issues a session token.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidOTP
	}
	if err := s.otps.Consume(ctx, user.Email, code); err != nil {
		return "", err
	}
	if !user.IsActive {
		if err := s.repo.Activate(ctx, user.ID); err != nil {
			return "", err
		}
	}
	return s.sessions.Issue(ctx, shared.Actor{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

// Logout revokes the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// ResolveToken maps a bearer token to its actor.
func (s *Service) ResolveToken(ctx context.Context, token string) (*shared.Actor, error) {
	return s.sessions.Resolve(ctx, token)
}

func (s *Service) sendOTP(ctx context.Context, email string) error {
	code, err := s.otps.Issue(ctx, email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		// The code is already stored; surface the delivery failure.
		return fmt.Errorf("auth: send otp: %w", err)
	}
	return nil
}

// IsAuthError reports whether the error is a credential-class failure.
func IsAuthError(err error) bool {
	return errors.Is(err, shared.ErrInvalidCredentials) || errors.Is(err, ErrInvalidOTP)
}
