// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, found, err := repo.FindByUsername("alice")
package users

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new user or writes every column of an existing one,
// including the favourites list. A taken username yields an error wrapping
// gorm.ErrDuplicatedKey whatever the driver.
func (r *Repository) Save(user *entities.User) error {
	err := r.db.Save(user).Error
	if isUniqueViolation(err) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}

// FindByUsername looks up a user by exact username.
func (r *Repository) FindByUsername(username string) (*entities.User, bool, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return found(&user, err)
}

// Count returns the total number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

func found(user *entities.User, err error) (*entities.User, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// isUniqueViolation also covers sqlite handles opened without TranslateError.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
