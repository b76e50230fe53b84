package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ako-polymers/resinworks/internal/shared"
)

type memoryUserRepo struct {
	nextID int64
	users  map[string]*User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[string]*User)}
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memoryUserRepo) Create(_ context.Context, user User) (*User, error) {
	if _, ok := m.users[user.Email]; ok {
		return nil, ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = &user
	clone := user
	return &clone, nil
}

func (m *memoryUserRepo) Activate(_ context.Context, id int64) error {
	for _, user := range m.users {
		if user.ID == id {
			user.IsActive = true
			return nil
		}
	}
	return shared.ErrNotFound
}

type captureMailer struct {
	lastEmail string
	lastCode  string
}

func (c *captureMailer) SendOTP(_ context.Context, email, code string) error {
	c.lastEmail = email
	c.lastCode = code
	return nil
}

func newTestAuth(t *testing.T) (*Service, *memoryUserRepo, *captureMailer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryUserRepo()
	mailer := &captureMailer{}
	svc := NewService(repo,
		NewOTPStore(client, 10*time.Minute),
		NewSessionStore(client, "test-secret", time.Hour),
		mailer)
	return svc, repo, mailer, mr
}

func TestSignupVerifyIssuesSession(t *testing.T) {
	svc, repo, mailer, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "Ops@Example.com", "supersecret", ""))
	require.Equal(t, "ops@example.com", mailer.lastEmail)
	require.Len(t, mailer.lastCode, 6)
	require.False(t, repo.users["ops@example.com"].IsActive)

	token, err := svc.VerifyOTP(ctx, "ops@example.com", mailer.lastCode)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, repo.users["ops@example.com"].IsActive)

	actor, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", actor.Email)
	require.Equal(t, string(RoleOperator), actor.Role)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ResolveToken(ctx, token)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOTPIsSingleUse(t *testing.T) {
	svc, _, mailer, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "ops@example.com", "supersecret", "manager"))
	code := mailer.lastCode

	_, err := svc.VerifyOTP(ctx, "ops@example.com", code)
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "ops@example.com", code)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestOTPExpires(t *testing.T) {
	svc, _, mailer, mr := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "ops@example.com", "supersecret", ""))
	mr.FastForward(11 * time.Minute)

	_, err := svc.VerifyOTP(ctx, "ops@example.com", mailer.lastCode)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, mailer, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "ops@example.com", "supersecret", ""))
	_, err := svc.VerifyOTP(ctx, "ops@example.com", mailer.lastCode)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Login(ctx, "ops@example.com", "wrong-password"), shared.ErrInvalidCredentials)
	require.ErrorIs(t, svc.Login(ctx, "nobody@example.com", "supersecret"), shared.ErrInvalidCredentials)

	require.NoError(t, svc.Login(ctx, "ops@example.com", "supersecret"))
	require.Len(t, mailer.lastCode, 6)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _, _ := newTestAuth(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.Signup(ctx, "", "supersecret", ""), ErrInvalidInput)
	require.ErrorIs(t, svc.Signup(ctx, "ops@example.com", "short", ""), ErrInvalidInput)
	require.ErrorIs(t, svc.Signup(ctx, "ops@example.com", "supersecret", "janitor"), ErrInvalidInput)

	require.NoError(t, svc.Signup(ctx, "ops@example.com", "supersecret", ""))
	require.ErrorIs(t, svc.Signup(ctx, "ops@example.com", "supersecret", ""), ErrEmailTaken)
}
