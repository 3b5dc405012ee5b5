package service

import (
	"context"
	"testing"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	repo := &fakeAuthRepo{}
	require.NoError(t, repo.UpsertUser(context.Background(), "sysadmin", HashPassword("ChangeMe123!"), "SystemAdmin"))
	return NewAuthService(repo, []byte("test-secret"), ttl)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	svc := setupAuth(t, time.Hour)

	token, user, err := svc.Login(context.Background(), "sysadmin", "ChangeMe123!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "SystemAdmin", user.Role)

	actor, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, actor.UserID)
	assert.Equal(t, "SystemAdmin", actor.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := setupAuth(t, time.Hour)

	_, _, err := svc.Login(context.Background(), "sysadmin", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownAccount(t *testing.T) {
	svc := setupAuth(t, time.Hour)

	_, _, err := svc.Login(context.Background(), "ghost", "ChangeMe123!")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := setupAuth(t, time.Hour)

	_, err := svc.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyToken_WrongKey(t *testing.T) {
	svc := setupAuth(t, time.Hour)
	other := NewAuthService(&fakeAuthRepo{}, []byte("other-secret"), time.Hour)

	token, _, err := svc.Login(context.Background(), "sysadmin", "ChangeMe123!")
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyToken_Expired(t *testing.T) {
	// TTL 为负：签出来就已过期（超出 30s leeway）
	svc := setupAuth(t, -time.Hour)

	token, _, err := svc.Login(context.Background(), "sysadmin", "ChangeMe123!")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
