package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/auth"
	"github.com/Neutralizer/BookManipulator/internal/entities"
	"github.com/Neutralizer/BookManipulator/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(logging.RequestID())
	router.Use(logging.Middleware(logger))
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// Session runs before CSRF so the request CSRF hands downstream still
	// carries the loaded session.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.CSRFSecret != "" {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	readOnly := cfg.ReadOnly != nil && cfg.ReadOnly.IsEnabled()
	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version, readOnly)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	library := router.Group("/library")

	// Public auth endpoints
	if cfg.AuthController != nil && cfg.SessionManager != nil {
		library.POST("/login", cfg.AuthController.Login)
		library.POST("/logout", cfg.AuthController.Logout)
	}

	protected := library.Group("", cfg.AuthMiddleware.RequireAuth())

	if cfg.AuthController != nil {
		protected.POST("/auth/token", cfg.AuthController.IssueToken)
		protected.GET("/auth/csrf", cfg.AuthController.CSRFToken)
		protected.GET("/users/me", cfg.AuthController.Me)
	}

	books := NewBooksController(cfg.Books, cfg.Audit)
	protected.GET("/books", books.ListBooks)
	protected.GET("/books/:id", books.GetBook)
	protected.POST("/books", books.SaveBook)
	protected.POST("/books/", books.SaveBook)
	protected.DELETE("/books/:id", books.DeleteBook)
	protected.POST("/books/:id/add_rating", books.AddRating)
	protected.POST("/books/:id/remove_rating", books.RemoveRating)

	users := NewUsersController(cfg.Users, cfg.Audit)
	admin := protected.Group("", cfg.AuthMiddleware.RequireRole(entities.RoleAdmin))
	admin.POST("/users", users.CreateUser)
	protected.GET("/users/me/favourites", users.ListFavourites)
	protected.POST("/users/me/favourites/:bookId", users.AddFavourite)
	protected.DELETE("/users/me/favourites/:bookId", users.RemoveFavourite)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/audit", auditController.ListEvents)
	}

	return router
}
