// Package interfaces documents the core abstractions used throughout the
// application and verifies at compile time that the concrete types satisfy
// them.
//
// # Storage contracts
//
//   - BookRepository, UserRepository: persistence used by the services
//     (internal/services/interfaces.go), implemented by
//     internal/database/books and internal/database/users.
//   - PasswordEncoder: password hashing (internal/services/interfaces.go),
//     implemented by auth.BcryptEncoder.
//
// # Boundary contracts
//
//   - BookStore, UserStore: what the HTTP controllers call
//     (internal/http/stores.go), implemented by the services.
//   - UserProvider: identity lookup for the auth middleware
//     (internal/auth/middleware.go), implemented by services.UserService.
//   - AuditEventCleaner: audit retention (internal/tasks/cleanup_audit.go),
//     implemented by audit.Service.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the interface next to its consumer and add a check to checks.go:
//
//     var _ services.LoanRepository = (*loans.Repository)(nil)
package interfaces
