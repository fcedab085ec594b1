package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Neutralizer/BookManipulator/internal/config"
	"github.com/Neutralizer/BookManipulator/internal/database"
	"github.com/Neutralizer/BookManipulator/internal/database/users"
	"github.com/Neutralizer/BookManipulator/internal/entities"
	"github.com/Neutralizer/BookManipulator/internal/services"
)

const testPassword = "correct horse battery"

type testEnv struct {
	users    *services.UserService
	sessions *SessionManager
	tokens   *TokenIssuer
	limiter  *RateLimiter
	mw       *Middleware
	router   *gin.Engine
}

// setupTestEnv builds a router with the auth stack in front of a few stub
// routes. Users "alice" (USER) and "admin" (ADMIN) exist.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	sessions, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)

	userService := services.NewUserService(users.NewRepository(db.DB), NewBcryptEncoder(bcrypt.MinCost))
	_, err = userService.Save(&entities.User{Username: "alice", Password: testPassword})
	require.NoError(t, err)
	_, err = userService.Save(&entities.User{Username: "admin", Password: testPassword, Roles: []string{entities.RoleAdmin}})
	require.NoError(t, err)

	tokens := NewTokenIssuer(testSecret, time.Hour)
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 3, WindowDuration: time.Minute, LockoutDuration: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(limiter.Stop)

	mw := NewMiddleware(userService, sessions, tokens, limiter, nil)
	controller := NewAuthController(userService, sessions, tokens, limiter, nil, nil)

	router := gin.New()
	router.Use(sessions.SessionLoadSave())
	router.POST("/library/login", controller.Login)
	router.POST("/library/logout", controller.Logout)

	protected := router.Group("/library", mw.RequireAuth())
	protected.POST("/auth/token", controller.IssueToken)
	protected.GET("/users/me", controller.Me)
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": GetUsername(c), "auth_type": GetAuthType(c)})
	})
	protected.GET("/admin", mw.RequireRole(entities.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &testEnv{
		users:    userService,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
		mw:       mw,
		router:   router,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}
