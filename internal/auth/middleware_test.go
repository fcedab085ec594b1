package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

func TestMiddleware_NoCredentials_Returns401(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/library/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rr.Body.String())
	assert.Equal(t, basicRealm, rr.Header().Get("WWW-Authenticate"))
}

func TestMiddleware_BasicAuth(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.SetBasicAuth("alice", testPassword)
		rr := env.do(req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"username":"alice","auth_type":"basic"}`, rr.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.SetBasicAuth("alice", "nope")
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.SetBasicAuth("ghost", testPassword)
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "Basic !!!not-base64")
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})
}

func TestMiddleware_BasicAuth_LockedOut(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.SetBasicAuth("alice", "wrong")
		require.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	}

	// Even the right password is refused during the lockout
	req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
	req.SetBasicAuth("alice", testPassword)
	rr := env.do(req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestMiddleware_BearerAuth(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.users.LoadUserByUsername("alice")
	require.NoError(t, err)
	token, _, err := env.tokens.Issue(alice)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := env.do(req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"username":"alice","auth_type":"bearer"}`, rr.Body.String())
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "bearer "+token)
		assert.Equal(t, http.StatusOK, env.do(req).Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})

	t.Run("token for unknown user", func(t *testing.T) {
		ghostToken, _, err := env.tokens.Issue(&entities.User{Username: "ghost"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+ghostToken)
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenIssuer(testSecret, time.Minute)
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		old, _, err := expired.Issue(alice)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+old)
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})
}

func TestMiddleware_UnknownScheme(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/library/whoami", nil)
	req.Header.Set("Authorization", "Digest username=alice")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
}

func TestMiddleware_RequireRole(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		username string
		expected int
	}{
		{"admin", http.StatusOK},
		{"alice", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/library/admin", nil)
			req.SetBasicAuth(tt.username, testPassword)
			rr := env.do(req)

			assert.Equal(t, tt.expected, rr.Code)
			if tt.expected == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"insufficient permissions"}`, rr.Body.String())
			}
		})
	}
}

func TestContextHelpers_NoAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetUser(c))
	assert.Empty(t, GetUsername(c))
	assert.Empty(t, GetUserRoles(c))
	assert.Equal(t, AuthTypeNone, GetAuthType(c))
	assert.False(t, IsAuthenticated(c))
}

func TestContextHelpers_WithUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	user := &entities.User{ID: 5, Username: "alice", Roles: []string{entities.RoleUser}}

	setUserContext(c, user, AuthTypeSession)

	assert.Same(t, user, GetUser(c))
	assert.Equal(t, "alice", GetUsername(c))
	assert.Equal(t, []string{entities.RoleUser}, GetUserRoles(c))
	assert.Equal(t, AuthTypeSession, GetAuthType(c))
	assert.True(t, IsAuthenticated(c))
}

func decodeJSON(t *testing.T, body string, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(strings.NewReader(body)).Decode(v))
}
