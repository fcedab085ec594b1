package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/auth"
	"github.com/Neutralizer/BookManipulator/internal/entities"
	"github.com/Neutralizer/BookManipulator/internal/services"
)

const (
	defaultPage     = 0
	defaultPageSize = 20
)

type BooksController struct {
	store BookStore
	audit *audit.Service
}

func NewBooksController(store BookStore, auditService *audit.Service) *BooksController {
	return &BooksController{
		store: store,
		audit: auditService,
	}
}

type bookRequest struct {
	ID      uint    `json:"id"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Summary string  `json:"summary"`
	Rating  float64 `json:"rating"`
}

// ListBooks returns one page of the catalog, optionally filtered by a title
// substring.
// GET /library/books?titleContaining=&page=0&pageSize=20
func (bc *BooksController) ListBooks(c *gin.Context) {
	page, ok := parseIntQuery(c, "page", defaultPage)
	if !ok {
		return
	}
	pageSize, ok := parseIntQuery(c, "pageSize", defaultPageSize)
	if !ok {
		return
	}

	var (
		books []entities.Book
		err   error
	)
	if title := c.Query("titleContaining"); title != "" {
		books, err = bc.store.GetBookByTitleContainingByPage(title, page, pageSize)
	} else {
		books, err = bc.store.GetAllBooksByPage(page, pageSize)
	}
	if err != nil {
		if errors.Is(err, services.ErrInvalidPage) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "list books")
		return
	}

	if books == nil {
		books = []entities.Book{}
	}
	c.JSON(http.StatusOK, books)
}

// GetBook returns a single book.
// GET /library/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, found, err := bc.store.GetBookByID(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// SaveBook inserts a book, or updates it when the body carries an id.
// POST /library/books/
func (bc *BooksController) SaveBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid book payload")
		return
	}

	book := entities.NewBook(req.Title, req.Author, req.Summary, req.Rating)
	book.ID = req.ID

	if err := bc.store.SaveBook(book); err != nil {
		respondInternalError(c, err, "save book")
		return
	}

	bc.audit.LogBook(auth.GetUsername(c), "book_save", book.ID, "Saved \""+book.Title+"\"")
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book. Deleting a missing id still succeeds.
// DELETE /library/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	bc.audit.LogBook(auth.GetUsername(c), "book_delete", id, "")
	respondSuccess(c, "book deleted")
}

// AddRating handles POST /library/books/:id/add_rating.
func (bc *BooksController) AddRating(c *gin.Context) {
	bc.adjustRating(c, bc.store.AddRating, "add_rating")
}

// RemoveRating handles POST /library/books/:id/remove_rating.
func (bc *BooksController) RemoveRating(c *gin.Context) {
	bc.adjustRating(c, bc.store.RemoveRating, "remove_rating")
}

func (bc *BooksController) adjustRating(c *gin.Context, adjust func(uint) error, action string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := adjust(id); err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, action)
		return
	}

	bc.audit.LogBook(auth.GetUsername(c), action, id, "")

	book, found, err := bc.store.GetBookByID(id)
	if err != nil || !found {
		respondSuccess(c, "rating updated")
		return
	}
	c.JSON(http.StatusOK, book)
}
