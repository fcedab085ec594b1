// Package books provides database operations for the book catalog.
//
// This package implements the BookRepository interface defined in
// internal/services/interfaces.go.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, found, err := repo.FindByID(123)
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// likeEscape is used in LIKE patterns. A backslash would need different
// quoting in sqlite and mysql, so a neutral character is used instead.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the book when its ID is zero, otherwise updates the row with
// that ID (inserting it when no such row exists). An update without a
// creation time keeps the stored one.
func (r *Repository) Save(book *entities.Book) error {
	if book.ID == 0 || !book.CreatedAt.IsZero() {
		return r.db.Save(book).Error
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Select("created_at").First(&existing, book.ID).Error
		switch {
		case err == nil:
			book.CreatedAt = existing.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Save(book).Error
	})
}

// FindAll returns every book ordered by ID.
func (r *Repository) FindAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// FindAllPage returns at most pageSize books starting at page*pageSize.
func (r *Repository) FindAllPage(page, pageSize int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").
		Limit(pageSize).
		Offset(page * pageSize).
		Find(&books).Error
	return books, err
}

// FindByID returns the book with the given ID. A missing book is reported
// through found rather than an error.
func (r *Repository) FindByID(id uint) (*entities.Book, bool, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &book, true, nil
}

func (r *Repository) FindByTitleContaining(titleContaining string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.titleContaining(titleContaining).
		Order("id ASC").
		Find(&books).Error
	return books, err
}

func (r *Repository) FindByTitleContainingPage(titleContaining string, page, pageSize int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.titleContaining(titleContaining).
		Order("id ASC").
		Limit(pageSize).
		Offset(page * pageSize).
		Find(&books).Error
	return books, err
}

func (r *Repository) titleContaining(sub string) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(sub) + "%"
	return r.db.Where("title LIKE ? ESCAPE '"+likeEscape+"'", pattern)
}

// DeleteByID removes the book. Deleting a missing book is not an error.
func (r *Repository) DeleteByID(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// AdjustRating adds delta to the book's rating in a single UPDATE so that
// concurrent adjustments are not lost. Returns false if the book does not exist.
func (r *Repository) AdjustRating(id uint, delta float64) (bool, error) {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("rating", gorm.Expr("rating + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Count returns the number of books in the catalog.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
