package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/services"
)

// AuthController handles the login, logout and token endpoints.
type AuthController struct {
	users    UserProvider
	sessions *SessionManager
	tokens   *TokenIssuer
	limiter  *RateLimiter
	audit    *audit.Service
	logger   *zap.Logger
}

func NewAuthController(users UserProvider, sessions *SessionManager, tokens *TokenIssuer, limiter *RateLimiter, auditService *audit.Service, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
		audit:    auditService,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type principalResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /library/login and starts a cookie session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.limiter.Allow(ip, req.Username); !allowed {
		ac.audit.LogAuth(req.Username, "login_locked", ip, false)
		abortTooManyAttempts(c, retryAfter)
		return
	}

	user, err := ac.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			ac.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		ac.limiter.RecordFailure(ip, req.Username)
		ac.audit.LogAuth(req.Username, "login_failed", ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	ac.limiter.RecordSuccess(ip, req.Username)

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		ac.logger.Error("failed to create session", zap.String("username", user.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.audit.LogAuth(user.Username, "login", ip, true)
	c.JSON(http.StatusOK, principalResponse{ID: user.ID, Username: user.Username, Roles: user.Roles})
}

// Logout handles POST /library/logout. It succeeds without a session too.
func (ac *AuthController) Logout(c *gin.Context) {
	username := ac.sessions.GetUsername(c.Request)

	if err := ac.sessions.DestroySession(c.Request); err != nil {
		ac.logger.Error("failed to destroy session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if username != "" {
		ac.audit.LogAuth(username, "logout", c.ClientIP(), true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// IssueToken handles POST /library/auth/token for an authenticated principal.
func (ac *AuthController) IssueToken(c *gin.Context) {
	user := GetUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}

	token, expiresAt, err := ac.tokens.Issue(user)
	if err != nil {
		ac.logger.Error("failed to issue token", zap.String("username", user.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.audit.LogAuth(user.Username, "token_issued", c.ClientIP(), true)
	c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

// CSRFToken handles GET /library/auth/csrf. Session clients send the value
// back in the X-CSRF-Token header on writes.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
}

// Me handles GET /library/users/me.
func (ac *AuthController) Me(c *gin.Context) {
	user := GetUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, principalResponse{ID: user.ID, Username: user.Username, Roles: user.Roles})
}
