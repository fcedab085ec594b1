package interfaces

// Compile-time interface implementation checks.
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/auth"
	"github.com/Neutralizer/BookManipulator/internal/database/books"
	"github.com/Neutralizer/BookManipulator/internal/database/users"
	"github.com/Neutralizer/BookManipulator/internal/http"
	"github.com/Neutralizer/BookManipulator/internal/services"
	"github.com/Neutralizer/BookManipulator/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.BookRepository = (*books.Repository)(nil)
var _ services.UserRepository = (*users.Repository)(nil)
var _ services.PasswordEncoder = (*auth.BcryptEncoder)(nil)

// =============================================================================
// Boundaries
// =============================================================================

var _ http.BookStore = (*services.BookService)(nil)
var _ http.UserStore = (*services.UserService)(nil)
var _ auth.UserProvider = (*services.UserService)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
