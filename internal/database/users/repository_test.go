package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newUser(username string) *entities.User {
	return &entities.User{
		Username:          username,
		Password:          "$2a$04$digest",
		Roles:             []string{entities.RoleUser},
		FavouriteBooksIDs: []uint{},
	}
}

func TestRepository_SaveAndFindByUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("alice")
	require.NoError(t, repo.Save(user))
	assert.NotZero(t, user.ID)

	found, ok, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "$2a$04$digest", found.Password)
	assert.Equal(t, []string{entities.RoleUser}, found.Roles)
	assert.Empty(t, found.FavouriteBooksIDs)
}

func TestRepository_FindByUsername_ExactMatch(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Save(newUser("alice")))

	_, ok, err := repo.FindByUsername("ali")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.FindByUsername("nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_SavePersistsFavourites(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("bob")
	require.NoError(t, repo.Save(user))

	user.FavouriteBooksIDs = append(user.FavouriteBooksIDs, 3, 1, 3)
	require.NoError(t, repo.Save(user))

	found, ok, err := repo.FindByUsername("bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, []uint{3, 1, 3}, found.FavouriteBooksIDs)
}

func TestRepository_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Save(newUser("carol")))
	assert.ErrorIs(t, repo.Save(newUser("carol")), gorm.ErrDuplicatedKey)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
