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

// UsersController handles account creation and the caller's favourites.
type UsersController struct {
	store UserStore
	audit *audit.Service
}

func NewUsersController(store UserStore, auditService *audit.Service) *UsersController {
	return &UsersController{
		store: store,
		audit: auditService,
	}
}

type createUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type favouritesResponse struct {
	Username          string `json:"username"`
	FavouriteBooksIDs []uint `json:"favourite_books_ids"`
}

// CreateUser creates an account. The response never includes the password.
// POST /library/users
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid user payload")
		return
	}

	user, err := uc.store.Save(&entities.User{
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	switch {
	case errors.Is(err, services.ErrUserExists):
		respondError(c, http.StatusConflict, "user already exists")
		return
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "create user")
		return
	}

	uc.audit.LogUserCreated(auth.GetUsername(c), user)
	respondCreated(c, user)
}

// ListFavourites handles GET /library/users/me/favourites.
func (uc *UsersController) ListFavourites(c *gin.Context) {
	username := auth.GetUsername(c)

	ids, err := uc.store.GetBookIDsFavouriteByUser(username)
	if err != nil {
		uc.respondFavouritesError(c, err, "list favourites")
		return
	}
	if ids == nil {
		ids = []uint{}
	}

	c.JSON(http.StatusOK, favouritesResponse{Username: username, FavouriteBooksIDs: ids})
}

// AddFavourite handles POST /library/users/me/favourites/:bookId.
func (uc *UsersController) AddFavourite(c *gin.Context) {
	uc.updateFavourite(c, uc.store.AddFavouriteBookID, "add favourite")
}

// RemoveFavourite handles DELETE /library/users/me/favourites/:bookId.
// Only the first occurrence of the id is removed.
func (uc *UsersController) RemoveFavourite(c *gin.Context) {
	uc.updateFavourite(c, uc.store.RemoveFavouriteBookID, "remove favourite")
}

func (uc *UsersController) updateFavourite(c *gin.Context, update func(string, uint) error, context string) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	username := auth.GetUsername(c)
	if err := update(username, bookID); err != nil {
		uc.respondFavouritesError(c, err, context)
		return
	}

	uc.ListFavourites(c)
}

func (uc *UsersController) respondFavouritesError(c *gin.Context, err error, context string) {
	if errors.Is(err, services.ErrUserNotFound) {
		respondNotFound(c, "user")
		return
	}
	respondInternalError(c, err, context)
}
