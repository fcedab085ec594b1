// Package auth authenticates requests to the library API and guards routes by role.
//
// Three credentials are accepted on protected routes, checked in this order:
//   - "Authorization: Bearer <jwt>" issued by POST /library/auth/token
//   - "Authorization: Basic ..." checked against the stored bcrypt digest
//   - a session cookie created by POST /library/login
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<random>   # Signs JWTs and CSRF tokens; generated if empty
//	AUTH_SESSION_LIFETIME=24h      # Session duration
//	AUTH_TOKEN_EXPIRY=24h          # JWT lifetime
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failed logins before lockout
//
// # Usage
//
//	mw := auth.NewMiddleware(userService, sessions, tokens, limiter, logger)
//	protected := router.Group("/library", mw.RequireAuth())
//	protected.POST("/users", mw.RequireRole(entities.RoleAdmin), handler)
//
// Extract the principal in handlers:
//
//	username := auth.GetUsername(c)
package auth
