package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
)

func setupRootUser(t *testing.T, env *testEnv) *AuthResponse {
	t.Helper()

	resp, err := env.auth.Setup(context.Background(), SetupRequest{
		Email:     "root@example.com",
		Password:  "correct horse battery",
		FirstName: "Root",
		LastName:  "User",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Setup(t *testing.T) {
	env := newTestEnv(t)

	resp := setupRootUser(t, env)

	assert.True(t, resp.User.IsRoot)
	assert.Equal(t, "root@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// Stored hash is not the plaintext password.
	user, err := env.store.GetUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestAuthService_Setup_OnlyOnce(t *testing.T) {
	env := newTestEnv(t)

	setupRootUser(t, env)

	_, err := env.auth.Setup(context.Background(), SetupRequest{
		Email:     "second@example.com",
		Password:  "another password",
		FirstName: "Second",
		LastName:  "User",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyConfigured)
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Registration before setup is rejected.
	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:     "early@example.com",
		Password:  "some password",
		FirstName: "Early",
		LastName:  "Bird",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	setupRootUser(t, env)

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email:     "new@example.com",
		Password:  "some password",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	assert.False(t, user.IsRoot)

	// Duplicate email is a conflict.
	_, err = env.auth.Register(ctx, RegisterRequest{
		Email:     "new@example.com",
		Password:  "some password",
		FirstName: "New",
		LastName:  "Again",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setupRootUser(t, env)

	resp, err := env.auth.Login(ctx, LoginRequest{
		Email:      "root@example.com",
		Password:   "correct horse battery",
		ClientName: "Test Client",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.False(t, resp.User.LastLoginAt.IsZero())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setupRootUser(t, env)

	// Wrong password and unknown email produce the same error.
	_, err := env.auth.Login(ctx, LoginRequest{
		Email:    "root@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{
		Email:    "stranger@example.com",
		Password: "whatever here",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setup := setupRootUser(t, env)

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: setup.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, setup.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, setup.SessionID, refreshed.SessionID, "rotation keeps the session")

	// The old refresh token is dead after rotation.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: setup.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// The new one works.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setup := setupRootUser(t, env)

	require.NoError(t, env.auth.Logout(ctx, setup.SessionID))

	_, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: setup.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setup := setupRootUser(t, env)

	user, claims, err := env.auth.VerifyAccessToken(ctx, setup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, setup.User.ID, user.ID)
	assert.Equal(t, setup.User.ID, claims.UserID)

	_, _, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
