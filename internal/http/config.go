package http

import (
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/auth"
	"github.com/Neutralizer/BookManipulator/internal/database"
	"github.com/Neutralizer/BookManipulator/internal/readonly"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    BookStore
	Users    UserStore
	Database *database.Database
	Audit    *audit.Service // optional; enables GET /library/audit

	// Authentication
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager // optional
	CSRFSecret     string               // empty disables CSRF protection
	SecureCookies  bool

	ReadOnly *readonly.Middleware // optional

	Logger  *zap.Logger
	Version string
}
