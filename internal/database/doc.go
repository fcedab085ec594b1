// Package database provides the data access layer for the library.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or mysql), migrations
//	├── seed.go          # Sample catalog for the dev profile
//	├── books/           # Book CRUD, title search, rating adjustment
//	├── users/           # User lookup and persistence
//	└── audit/           # Audit event log
//
// Each sub-package provides a Repository type wrapping a *gorm.DB:
//
//	db, err := database.NewDatabase("./library.db")
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
// The repositories satisfy the storage interfaces declared in
// internal/services, which is where the compile-time checks live.
package database
