package services_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Neutralizer/BookManipulator/internal/database"
	"github.com/Neutralizer/BookManipulator/internal/database/books"
	"github.com/Neutralizer/BookManipulator/internal/database/users"
	"github.com/Neutralizer/BookManipulator/internal/services"
)

var (
	_ services.BookRepository = (*books.Repository)(nil)
	_ services.UserRepository = (*users.Repository)(nil)
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { db.Close() })
	return db
}

// prefixEncoder is a reversible stand-in for bcrypt that keeps tests fast.
type prefixEncoder struct{}

func (prefixEncoder) Encode(plain string) (string, error) {
	return "encoded:" + plain, nil
}

func (prefixEncoder) Matches(plain, digest string) bool {
	return strings.TrimPrefix(digest, "encoded:") == plain && strings.HasPrefix(digest, "encoded:")
}
