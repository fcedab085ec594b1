package http

import "github.com/Neutralizer/BookManipulator/internal/entities"

// Each controller depends only on the service methods it calls.
// *services.BookService and *services.UserService satisfy these.

// BookStore is the catalog surface used by BooksController.
type BookStore interface {
	SaveBook(book *entities.Book) error
	GetAllBooksByPage(page, pageSize int) ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, bool, error)
	GetBookByTitleContainingByPage(titleContaining string, page, pageSize int) ([]entities.Book, error)
	DeleteBook(id uint) error
	AddRating(id uint) error
	RemoveRating(id uint) error
}

// UserStore is the account surface used by UsersController.
type UserStore interface {
	Save(user *entities.User) (*entities.User, error)
	GetBookIDsFavouriteByUser(username string) ([]uint, error)
	AddFavouriteBookID(username string, bookID uint) error
	RemoveFavouriteBookID(username string, bookID uint) error
}
