package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// Context keys for principal data
const (
	ContextKeyUser     = "auth_user"
	ContextKeyUsername = "auth_username"
	ContextKeyRoles    = "auth_roles"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeBasic   AuthType = "basic"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

const basicRealm = `Basic realm="library"`

// UserProvider resolves principals. *services.UserService satisfies it.
type UserProvider interface {
	LoadUserByUsername(username string) (*entities.User, error)
	Authenticate(username, password string) (*entities.User, error)
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	users    UserProvider
	sessions *SessionManager
	tokens   *TokenIssuer
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewMiddleware creates a new authentication middleware. sessions, tokens
// and limiter may be nil to disable the corresponding feature.
func NewMiddleware(users UserProvider, sessions *SessionManager, tokens *TokenIssuer, limiter *RateLimiter, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid principal with 401.
// Credentials in the Authorization header take precedence over the session;
// invalid header credentials fail the request even if a session exists.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			m.authenticateHeader(c, header)
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		abortUnauthorized(c)
	}
}

func (m *Middleware) authenticateHeader(c *gin.Context, header string) {
	scheme, credentials, _ := strings.Cut(header, " ")

	switch {
	case strings.EqualFold(scheme, "bearer"):
		user := m.tryBearerAuth(credentials)
		if user == nil {
			abortUnauthorized(c)
			return
		}
		setUserContext(c, user, AuthTypeBearer)

	case strings.EqualFold(scheme, "basic"):
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			abortUnauthorized(c)
			return
		}
		ip := c.ClientIP()
		if allowed, retryAfter := m.limiter.Allow(ip, username); !allowed {
			abortTooManyAttempts(c, retryAfter)
			return
		}
		user, err := m.users.Authenticate(username, password)
		if err != nil {
			m.limiter.RecordFailure(ip, username)
			m.logger.Debug("basic auth rejected", zap.String("username", username), zap.Error(err))
			abortUnauthorized(c)
			return
		}
		m.limiter.RecordSuccess(ip, username)
		setUserContext(c, user, AuthTypeBasic)

	default:
		abortUnauthorized(c)
		return
	}

	c.Next()
}

// tryBearerAuth validates the token and reloads the user so that deleted
// accounts and changed roles take effect before the token expires.
func (m *Middleware) tryBearerAuth(token string) *entities.User {
	if m.tokens == nil || token == "" {
		return nil
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		m.logger.Debug("bearer token rejected", zap.Error(err))
		return nil
	}

	user, err := m.users.LoadUserByUsername(claims.Username)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessions == nil {
		return nil
	}

	username := m.sessions.GetUsername(c.Request)
	if username == "" {
		return nil
	}

	user, err := m.users.LoadUserByUsername(username)
	if err != nil {
		return nil
	}
	return user
}

// RequireRole rejects principals holding none of roles with 403. It must
// run after RequireAuth.
func (m *Middleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted := GetUserRoles(c)
		for _, role := range roles {
			if slices.Contains(granted, role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient permissions",
		})
	}
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", basicRealm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication required",
	})
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRoles, user.Roles)
	c.Set(ContextKeyAuthType, authType)
}

// GetUser returns the authenticated user, or nil.
func GetUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

func GetUserRoles(c *gin.Context) []string {
	return c.GetStringSlice(ContextKeyRoles)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

func IsAuthenticated(c *gin.Context) bool {
	return GetAuthType(c) != AuthTypeNone
}
