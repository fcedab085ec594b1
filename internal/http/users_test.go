package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

func TestUsersController_CreateUser(t *testing.T) {
	t.Run("admin creates a user", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/library/users", "admin", map[string]any{
			"username": "bob",
			"password": "hunter2hunter2",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")

		created := decode[map[string]any](t, w)
		assert.Equal(t, "bob", created["username"])
		assert.Equal(t, []any{entities.RoleUser}, created["roles"])

		user, err := env.users.LoadUserByUsername("bob")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter2hunter2", user.Password)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/library/users", "alice", map[string]any{
			"username": "bob",
			"password": "hunter2hunter2",
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		_, err := env.users.LoadUserByUsername("bob")
		assert.Error(t, err)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/library/users", "admin", map[string]any{
			"username": "alice",
			"password": "another password",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/library/users", "admin", map[string]any{"username": "bob"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(http.MethodPost, "/library/users", "admin", map[string]any{"password": "secret"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUsersController_Favourites(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/library/users/me/favourites", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice","favourite_books_ids":[]}`, w.Body.String())

	w = env.do(http.MethodPost, "/library/users/me/favourites/7", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPost, "/library/users/me/favourites/3", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPost, "/library/users/me/favourites/7", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice","favourite_books_ids":[7,3,7]}`, w.Body.String())

	w = env.do(http.MethodDelete, "/library/users/me/favourites/7", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice","favourite_books_ids":[3,7]}`, w.Body.String())

	// other users are unaffected
	ids, err := env.users.GetBookIDsFavouriteByUser("admin")
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/library/users/me/favourites/x", "alice", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/library/users/me/favourites", "", nil).Code)
}

func TestUsersController_Me(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/library/users/me", "admin", nil)

	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "admin", me["username"])
	assert.Equal(t, []any{entities.RoleAdmin}, me["roles"])
}
