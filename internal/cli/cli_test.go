package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neutralizer/BookManipulator/internal/database"
	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PROFILE", "")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("AUDIT_ARCHIVE_DIR", "")

	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func openDB(t *testing.T, path string) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeedCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")

	out, err := execute(t, "seed", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 sample books")

	out, err = execute(t, "seed", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	var books []entities.Book
	require.NoError(t, openDB(t, dbPath).DB.Order("id").Find(&books).Error)
	require.Len(t, books, 2)
	assert.Equal(t, "The Hobbit", books[0].Title)
	assert.InDelta(t, 4.2, books[0].Rating, 1e-9)
}

func TestCreateUserCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")

	out, err := execute(t, "create-user", "root", "--admin", "--password", "s3cret-pass", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `Created user "root"`)
	assert.Contains(t, out, entities.RoleAdmin)

	var user entities.User
	require.NoError(t, openDB(t, dbPath).DB.Where("username = ?", "root").First(&user).Error)
	assert.Equal(t, []string{entities.RoleUser, entities.RoleAdmin}, user.Roles)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = execute(t, "create-user", "root", "--password", "other", "--db", dbPath)
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateUserCommand_PromptsForPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("PROFILE", "")

	var prompted string
	cmd := NewCreateUserCommand()
	cmd.Username = "reader"
	cmd.DatabasePath = dbPath
	cmd.out = &bytes.Buffer{}
	cmd.ReadPassword = func(prompt string) (string, error) {
		prompted = prompt
		return "typed-secret", nil
	}

	require.NoError(t, cmd.Run())
	assert.Equal(t, "Password for reader: ", prompted)

	cmd.Username = "other"
	cmd.ReadPassword = func(string) (string, error) { return "", errors.New("no tty") }
	assert.ErrorContains(t, cmd.Run(), "no tty")
}

func TestImportBooksCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	archiveDir := filepath.Join(dir, "archive")
	file := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"title": "Dune", "author": "Frank Herbert", "summary": "Spice", "rating": 4.5},
		{"title": "dune", "author": "frank herbert"},
		{"title": "", "author": "Nobody"},
		{"title": "Hyperion", "author": "Dan Simmons", "rating": 4}
	]`), 0o644))

	out, err := execute(t, "import-books", file, "--db", dbPath, "--archive-dir", archiveDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 4 books")
	assert.Contains(t, out, "2 imported, 2 skipped, 0 failed")

	var count int64
	require.NoError(t, openDB(t, dbPath).DB.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	archived, err := filepath.Glob(filepath.Join(archiveDir, "import-books-*.json"))
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestImportBooksCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	file := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"title": "Dune", "author": "Frank Herbert"}]`), 0o644))

	out, err := execute(t, "import-books", file, "--db", dbPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `1. "Dune" by Frank Herbert`)

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")
}

func TestImportBooksCommand_BadInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"title": "not a list"}`), 0o644))

	_, err := execute(t, "import-books", file, "--db", filepath.Join(dir, "library.db"))
	assert.ErrorContains(t, err, "failed to parse")

	_, err = execute(t, "import-books", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}
