package services

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// UserService manages accounts and their favourite books.
//
// Favourite updates read the whole user, change the list and write the whole
// user back. They are serialized per username within this process only; two
// processes sharing a database can still lose an update.
type UserService struct {
	repo    UserRepository
	encoder PasswordEncoder

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock is dropped from the map once no caller holds or awaits it.
type userLock struct {
	sync.Mutex
	refs int
}

func NewUserService(repo UserRepository, encoder PasswordEncoder) *UserService {
	return &UserService{
		repo:    repo,
		encoder: encoder,
		locks:   make(map[string]*userLock),
	}
}

// Save creates a new user from the given username, plaintext password and
// roles. Only the digest is stored. The favourites list starts empty.
func (s *UserService) Save(user *entities.User) (*entities.User, error) {
	if user.Username == "" {
		return nil, ErrUsernameRequired
	}
	if user.Password == "" {
		return nil, ErrPasswordRequired
	}

	_, exists, err := s.repo.FindByUsername(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", user.Username, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, user.Username)
	}

	digest, err := s.encoder.Encode(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode password: %w", err)
	}

	roles := slices.Clone(user.Roles)
	if len(roles) == 0 {
		roles = []string{entities.RoleUser}
	}

	created := &entities.User{
		Username:          user.Username,
		Password:          digest,
		Roles:             roles,
		FavouriteBooksIDs: []uint{},
	}
	// a concurrent signup can still win between the lookup and the insert
	if err := s.repo.Save(created); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, user.Username)
		}
		return nil, fmt.Errorf("failed to save user %q: %w", user.Username, err)
	}
	return created, nil
}

// LoadUserByUsername resolves an identity by exact username.
func (s *UserService) LoadUserByUsername(username string) (*entities.User, error) {
	user, found, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return user, nil
}

// Authenticate checks a username and plaintext password. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(username, password string) (*entities.User, error) {
	user, found, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if !found || !s.encoder.Matches(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetBookIDsFavouriteByUser(username string) ([]uint, error) {
	user, err := s.LoadUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user.FavouriteBooksIDs == nil {
		return []uint{}, nil
	}
	return user.FavouriteBooksIDs, nil
}

// AddFavouriteBookID appends bookID to the user's favourites. The book is
// not checked for existence.
func (s *UserService) AddFavouriteBookID(username string, bookID uint) error {
	return s.updateFavourites(username, func(ids []uint) []uint {
		return append(ids, bookID)
	})
}

// RemoveFavouriteBookID drops the first occurrence of bookID, if any.
func (s *UserService) RemoveFavouriteBookID(username string, bookID uint) error {
	return s.updateFavourites(username, func(ids []uint) []uint {
		if i := slices.Index(ids, bookID); i >= 0 {
			return slices.Delete(ids, i, i+1)
		}
		return ids
	})
}

func (s *UserService) updateFavourites(username string, update func([]uint) []uint) error {
	lock := s.acquire(username)
	defer s.release(username, lock)

	user, err := s.LoadUserByUsername(username)
	if err != nil {
		return err
	}

	user.FavouriteBooksIDs = update(user.FavouriteBooksIDs)
	if err := s.repo.Save(user); err != nil {
		return fmt.Errorf("failed to save favourites of %q: %w", username, err)
	}
	return nil
}

func (s *UserService) acquire(username string) *userLock {
	s.mu.Lock()
	lock, ok := s.locks[username]
	if !ok {
		lock = &userLock{}
		s.locks[username] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

func (s *UserService) release(username string, lock *userLock) {
	lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, username)
	}
}
