package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const csrfTestSecret = "test-secret-key-32-bytes-long!!"

func newCSRFRouter() *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(csrfTestSecret, false))
	router.GET("/token", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
	})
	router.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func sessionCookie() *http.Cookie {
	return &http.Cookie{Name: SessionCookieName, Value: "some-session"}
}

func TestCSRFMiddleware_SkipsWithoutSessionCookie(t *testing.T) {
	router := newCSRFRouter()

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFMiddleware_SkipsAuthorizationHeader(t *testing.T) {
	router := newCSRFRouter()

	for _, header := range []string{"Bearer sometoken", "Basic YWxpY2U6cHc="} {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Authorization", header)
		req.AddCookie(sessionCookie())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, header)
	}
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	router := newCSRFRouter()

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.AddCookie(sessionCookie())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "csrf_token")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	router := gin.New()
	router.Use(CSRFMiddleware(csrfTestSecret, false))
	handlerCalled := false
	router.POST("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.AddCookie(sessionCookie())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"CSRF token invalid or missing"}`, rr.Body.String())
	assert.False(t, handlerCalled)
}

func TestCSRFMiddleware_AcceptsValidToken(t *testing.T) {
	router := newCSRFRouter()

	// Fetch a token along with its cookie
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.AddCookie(sessionCookie())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	token := body["csrf_token"]
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodPost, "/test", nil)
	req.AddCookie(sessionCookie())
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set(CSRFTokenHeader, token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))
}
