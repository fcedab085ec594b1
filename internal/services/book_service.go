package services

import (
	"fmt"
	"math"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// BookService implements catalog operations on top of a BookRepository.
type BookService struct {
	repo BookRepository
}

func NewBookService(repo BookRepository) *BookService {
	return &BookService{repo: repo}
}

// SaveBook inserts the book when its ID is zero and updates it otherwise.
func (s *BookService) SaveBook(book *entities.Book) error {
	if err := s.repo.Save(book); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

func (s *BookService) GetAllBooks() ([]entities.Book, error) {
	books, err := s.repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetAllBooksByPage returns at most pageSize books, skipping the first
// page*pageSize in storage order.
func (s *BookService) GetAllBooksByPage(page, pageSize int) ([]entities.Book, error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	if beyondAnyCatalog(page, pageSize) {
		return []entities.Book{}, nil
	}
	books, err := s.repo.FindAllPage(page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBookByID returns the book and whether it exists.
func (s *BookService) GetBookByID(id uint) (*entities.Book, bool, error) {
	book, found, err := s.repo.FindByID(id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return book, found, nil
}

func (s *BookService) GetBookByTitleContaining(titleContaining string) ([]entities.Book, error) {
	books, err := s.repo.FindByTitleContaining(titleContaining)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

func (s *BookService) GetBookByTitleContainingByPage(titleContaining string, page, pageSize int) ([]entities.Book, error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	if beyondAnyCatalog(page, pageSize) {
		return []entities.Book{}, nil
	}
	books, err := s.repo.FindByTitleContainingPage(titleContaining, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// DeleteBook removes the book if present. Users' favourites are left as is.
func (s *BookService) DeleteBook(id uint) error {
	if err := s.repo.DeleteByID(id); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	return nil
}

func (s *BookService) AddRating(id uint) error {
	return s.adjustRating(id, 1)
}

func (s *BookService) RemoveRating(id uint) error {
	return s.adjustRating(id, -1)
}

func (s *BookService) adjustRating(id uint, delta float64) error {
	found, err := s.repo.AdjustRating(id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust rating of book %d: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrBookNotFound, id)
	}
	return nil
}

func validatePage(page, pageSize int) error {
	if page < 0 || pageSize <= 0 {
		return ErrInvalidPage
	}
	return nil
}

// beyondAnyCatalog reports pages whose offset page*pageSize does not fit in
// an int. No catalog holds that many books, so such pages are empty.
func beyondAnyCatalog(page, pageSize int) bool {
	return page > math.MaxInt/pageSize
}
