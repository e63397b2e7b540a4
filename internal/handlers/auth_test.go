package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	server := newTestServer(t)

	recorder := server.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "小明",
		"email":    "ming@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	env := decodeEnvelope(t, recorder)
	assert.True(t, env.Success)
	assert.NotContains(t, recorder.Body.String(), "password_hash")

	// Duplicate email is rejected.
	recorder = server.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "小红",
		"email":    "ming@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ming@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "token" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie, "login sets the session cookie")
	assert.True(t, sessionCookie.HttpOnly)

	recorder = server.request(t, http.MethodGet, "/api/auth/me", sessionCookie.Value, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ming@example.com")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	server := newTestServer(t)
	server.createUser(t, "user@example.com")

	recorder := server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "邮箱或密码错误")

	// Unknown email fails with the same message, never revealing which part
	// was wrong.
	recorder = server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "邮箱或密码错误")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/api/glow-plans", "/api/fitness-items", "/api/dashboard"} {
		recorder := server.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, path)
	}

	recorder := server.request(t, http.MethodGet, "/api/glow-plans", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	server := newTestServer(t)
	server.createUser(t, "a@example.com")

	// createUser seeds the password "password123".
	recorder := server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var token string
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "token" {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	// Changing the password demands the current one.
	recorder = server.request(t, http.MethodPatch, "/api/auth/me", token, gin.H{
		"newPassword": "newpassword456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = server.request(t, http.MethodPatch, "/api/auth/me", token, gin.H{
		"currentPassword": "wrong",
		"newPassword":     "newpassword456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = server.request(t, http.MethodPatch, "/api/auth/me", token, gin.H{
		"currentPassword": "password123",
		"newPassword":     "newpassword456",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	// Old credentials stop working, new ones do.
	recorder = server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = server.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@example.com",
		"password": "newpassword456",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDisabledUserCannotAuthenticate(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "banned@example.com")

	require.NoError(t, server.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("status", models.UserStatusDisabled).Error)

	recorder := server.request(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
