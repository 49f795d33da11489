package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFlow(t *testing.T) {
	srv := newTestServer(t)

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":      "root@example.com",
		"password":   "correct horse battery",
		"first_name": "Root",
		"last_name":  "User",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	data := dataField(t, envelope)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	user := data["user"].(map[string]any)
	assert.Equal(t, "root@example.com", user["email"])
	assert.Equal(t, true, user["is_root"])

	// Setup is one-shot.
	status, envelope = doJSON(t, srv, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":      "other@example.com",
		"password":   "another password",
		"first_name": "Other",
		"last_name":  "User",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "ALREADY_CONFIGURED", envelope["code"])
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	setupRoot(t, srv)

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "root@example.com",
		"password": "not the password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope["code"])
}

func TestRefreshRotation(t *testing.T) {
	srv := newTestServer(t)

	_, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":      "root@example.com",
		"password":   "correct horse battery",
		"first_name": "Root",
		"last_name":  "User",
	})
	refreshToken := dataField(t, envelope)["refresh_token"].(string)

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refreshToken,
	})
	require.Equal(t, http.StatusOK, status)
	rotated := dataField(t, envelope)["refresh_token"].(string)
	assert.NotEqual(t, refreshToken, rotated)

	// The old token is dead after rotation.
	status, envelope = doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_EXPIRED", envelope["code"])
}

func TestLogoutRevokesSession(t *testing.T) {
	srv := newTestServer(t)

	_, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":      "root@example.com",
		"password":   "correct horse battery",
		"first_name": "Root",
		"last_name":  "User",
	})
	data := dataField(t, envelope)
	token := data["access_token"].(string)
	sessionID := data["session_id"].(string)
	refreshToken := data["refresh_token"].(string)

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/auth/logout", token, map[string]any{
		"session_id": sessionID,
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	status, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	data := dataField(t, envelope)
	assert.Equal(t, "root@example.com", data["email"])
	assert.Equal(t, "Root User", data["display_name"])
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	setupRoot(t, srv)

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      "not-an-email",
		"password":   "short",
		"first_name": "",
		"last_name":  "",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])
}
