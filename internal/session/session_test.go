package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightfold/portal/internal/session"
)

type fakeRepo struct {
	users map[string]*session.User
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*session.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, session.ErrUserNotFound
	}

	return u, nil
}

func newRepo(t *testing.T, email, password string, role session.Role) (*fakeRepo, *session.User) {
	t.Helper()

	hash, err := session.HashPassword(password)
	require.NoError(t, err)

	u := &session.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	return &fakeRepo{users: map[string]*session.User{email: u}}, u
}

func TestService_LoginAndVerify(t *testing.T) {
	repo, user := newRepo(t, "admin@agency.test", "s3cret", session.RoleAdmin)
	svc := session.NewService(repo, "signing-secret", time.Hour)

	token, err := svc.Login(context.Background(), "admin@agency.test", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, session.RoleAdmin, id.Role)
}

func TestService_Login_BadCredentials(t *testing.T) {
	repo, _ := newRepo(t, "client@example.test", "правильный", session.RoleClient)
	svc := session.NewService(repo, "signing-secret", time.Hour)

	_, err := svc.Login(context.Background(), "client@example.test", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	// An unknown account reads exactly like a wrong password.
	_, err = svc.Login(context.Background(), "nobody@example.test", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestService_Verify_RejectsForgedAndExpired(t *testing.T) {
	repo, _ := newRepo(t, "admin@agency.test", "s3cret", session.RoleAdmin)

	svc := session.NewService(repo, "signing-secret", time.Hour)
	other := session.NewService(repo, "different-secret", time.Hour)
	expired := session.NewService(repo, "signing-secret", -time.Minute)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	forged, err := other.Login(context.Background(), "admin@agency.test", "s3cret")
	require.NoError(t, err)

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	stale, err := expired.Login(context.Background(), "admin@agency.test", "s3cret")
	require.NoError(t, err)

	_, err = expired.Verify(stale)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}
