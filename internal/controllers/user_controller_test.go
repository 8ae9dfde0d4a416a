package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	registration := map[string]interface{}{
		"email":      "Vasya@Example.com",
		"username":   "vasya.pupkin",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "Qwerty123",
	}
	w := app.do(http.MethodPost, "/api/users", registration, "")
	requireStatus(t, http.StatusCreated, w)
	user := decode[models.UserResponse](t, w)
	assert.Equal(t, "vasya@example.com", user.Email)
	assert.Equal(t, "vasya.pupkin", user.Username)

	w = app.do(http.MethodPost, "/api/users", registration, "")
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.ErrValidationFailed, decode[models.APIError](t, w).Code)

	w = app.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": "vasya@example.com", "password": "wrong"}, "")
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.ErrInvalidCredentials, decode[models.APIError](t, w).Code)

	w = app.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": "vasya@example.com", "password": "Qwerty123"}, "")
	requireStatus(t, http.StatusOK, w)
	token := decode[models.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = app.do(http.MethodGet, "/api/users/me", nil, token)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, user.ID, decode[models.UserResponse](t, w).ID)

	w = app.do(http.MethodPost, "/api/users/set_password",
		map[string]string{"current_password": "nope", "new_password": "Asdfgh456"}, token)
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, "current_password", decode[models.APIError](t, w).Details["field"])

	w = app.do(http.MethodPost, "/api/users/set_password",
		map[string]string{"current_password": "Qwerty123", "new_password": "Asdfgh456"}, token)
	requireStatus(t, http.StatusNoContent, w)

	requireStatus(t, http.StatusNoContent, app.do(http.MethodPost, "/api/auth/token/logout", nil, token))

	w = app.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": "vasya@example.com", "password": "Asdfgh456"}, "")
	requireStatus(t, http.StatusOK, w)
}

func TestMeRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/users/me", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersPagination(t *testing.T) {
	app := newTestApp(t)
	for _, name := range []string{"ann", "ben", "cid"} {
		app.createUser(t, name, models.RoleUser)
	}

	w := app.do(http.MethodGet, "/api/users?limit=2", nil, "")
	requireStatus(t, http.StatusOK, w)
	page := decode[models.PageResponse[models.UserResponse]](t, w)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "ann", page.Results[0].Username)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users?limit=2&page=2", *page.Next)

	w = app.do(http.MethodGet, "/api/users?limit=2&page=2", nil, "")
	requireStatus(t, http.StatusOK, w)
	page = decode[models.PageResponse[models.UserResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "cid", page.Results[0].Username)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users?limit=2", *page.Previous)
}

func TestSubscriptions(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author", models.RoleUser)
	reader := app.createUser(t, "reader", models.RoleUser)
	tag := app.createTag(t, "soup")
	beet := app.createIngredient(t, "beet", "g")
	authorToken := app.token(t, author)
	readerToken := app.token(t, reader)

	for _, name := range []string{"Borscht", "Shchi"} {
		w := app.do(http.MethodPost, "/api/recipes", recipePayload(name, []uint{tag.ID}, map[uint]int{beet.ID: 100}), authorToken)
		requireStatus(t, http.StatusCreated, w)
	}

	subscribe := fmt.Sprintf("/api/users/%d/subscribe", author.ID)

	w := app.do(http.MethodPost, subscribe+"?recipes_limit=1", nil, readerToken)
	requireStatus(t, http.StatusCreated, w)
	followed := decode[models.SubscriptionResponse](t, w)
	assert.Equal(t, author.ID, followed.ID)
	assert.True(t, followed.IsSubscribed)
	assert.Equal(t, int64(2), followed.RecipesCount)
	require.Len(t, followed.Recipes, 1)
	assert.Equal(t, "Shchi", followed.Recipes[0].Name)

	w = app.do(http.MethodPost, subscribe, nil, readerToken)
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.ErrAlreadyExists, decode[models.APIError](t, w).Code)

	w = app.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), nil, readerToken)
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.ErrValidationFailed, decode[models.APIError](t, w).Code)

	w = app.do(http.MethodPost, "/api/users/9999/subscribe", nil, readerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), nil, readerToken)
	requireStatus(t, http.StatusOK, w)
	assert.True(t, decode[models.UserResponse](t, w).IsSubscribed)

	w = app.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), nil, "")
	requireStatus(t, http.StatusOK, w)
	assert.False(t, decode[models.UserResponse](t, w).IsSubscribed)

	w = app.do(http.MethodGet, "/api/users/subscriptions", nil, readerToken)
	requireStatus(t, http.StatusOK, w)
	subscriptions := decode[models.PageResponse[models.SubscriptionResponse]](t, w)
	assert.Equal(t, int64(1), subscriptions.Count)
	require.Len(t, subscriptions.Results, 1)
	assert.Len(t, subscriptions.Results[0].Recipes, 2)

	w = app.do(http.MethodGet, fmt.Sprintf("/api/recipes?author=%d", author.ID), nil, readerToken)
	requireStatus(t, http.StatusOK, w)
	recipes := decode[models.PageResponse[models.RecipeResponse]](t, w)
	require.NotEmpty(t, recipes.Results)
	assert.True(t, recipes.Results[0].Author.IsSubscribed)

	requireStatus(t, http.StatusNoContent, app.do(http.MethodDelete, subscribe, nil, readerToken))

	w = app.do(http.MethodDelete, subscribe, nil, readerToken)
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.ErrNotFound, decode[models.APIError](t, w).Code)
}
