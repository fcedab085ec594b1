package services

import "github.com/Neutralizer/BookManipulator/internal/entities"

// BookRepository is the storage contract for the book catalog.
// Lookups report absence through the bool result, not an error.
type BookRepository interface {
	Save(book *entities.Book) error
	FindAll() ([]entities.Book, error)
	FindAllPage(page, pageSize int) ([]entities.Book, error)
	FindByID(id uint) (*entities.Book, bool, error)
	FindByTitleContaining(titleContaining string) ([]entities.Book, error)
	FindByTitleContainingPage(titleContaining string, page, pageSize int) ([]entities.Book, error)
	DeleteByID(id uint) error
	// AdjustRating adds delta to the stored rating atomically.
	AdjustRating(id uint, delta float64) (bool, error)
}

// UserRepository is the storage contract for user accounts. Save reports a
// taken username with an error wrapping gorm.ErrDuplicatedKey.
type UserRepository interface {
	Save(user *entities.User) error
	FindByUsername(username string) (*entities.User, bool, error)
}

// PasswordEncoder turns plaintext passwords into one-way digests.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
	Matches(plain, digest string) bool
}

// ImportResult contains the outcome of a bulk book import.
type ImportResult struct {
	BooksProcessed int
	BooksSkipped   int
	BooksFailed    int
}
