package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(username string) models.RegisterRequest {
	return models.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	req := registerRequest("ivan")
	req.Email = "  Ivan@Example.com "
	user, err := service.Register(ctx, req)
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "ivan@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.Password)
	assert.True(t, user.CheckPassword("s3cret-pass"))

	found, err := service.GetUserByEmail(ctx, "IVAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestRegister_Conflicts(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	_, err := service.Register(ctx, registerRequest("ivan"))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		req   models.RegisterRequest
		field string
	}{
		{name: "same email", req: func() models.RegisterRequest {
			r := registerRequest("other")
			r.Email = "ivan@example.com"
			return r
		}(), field: "email"},
		{name: "same username", req: func() models.RegisterRequest {
			r := registerRequest("ivan")
			r.Email = "different@example.com"
			return r
		}(), field: "username"},
		{name: "invalid username", req: func() models.RegisterRequest {
			r := registerRequest("badname")
			r.Username = "bad name!"
			return r
		}(), field: "username"},
		{name: "invalid email", req: func() models.RegisterRequest {
			r := registerRequest("noat")
			r.Email = "  not-an-email "
			return r
		}(), field: "email"},
		{name: "short password", req: func() models.RegisterRequest {
			r := registerRequest("shorty")
			r.Password = "123"
			return r
		}(), field: "password"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.req)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	_, err := service.GetUserByID(ctx, 7)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProfileAndListUsers_IsSubscribed(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	subscriptions := NewSubscriptionService(db)
	ctx := context.Background()

	viewer := createUser(t, db, "viewer")
	followed := createUser(t, db, "followed")
	stranger := createUser(t, db, "stranger")

	_, err := subscriptions.Subscribe(ctx, viewer.ID, followed.ID, 0)
	require.NoError(t, err)

	profile, err := users.GetProfile(ctx, viewer.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)

	profile, err = users.GetProfile(ctx, 0, followed.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed, "anonymous viewers are never subscribed")

	page, err := users.ListUsers(ctx, viewer.ID, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Items, 3)
	assert.Equal(t, viewer.ID, page.Items[0].User.ID)
	assert.False(t, page.Items[0].IsSubscribed)
	assert.True(t, page.Items[1].IsSubscribed)
	assert.Equal(t, stranger.ID, page.Items[2].User.ID)
	assert.False(t, page.Items[2].IsSubscribed)
}

func TestSetPassword(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	err := service.SetPassword(ctx, user.ID, models.SetPasswordRequest{NewPassword: "brand-new", CurrentPassword: "wrong"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "current_password", validationErr.Field)

	require.NoError(t, service.SetPassword(ctx, user.ID, models.SetPasswordRequest{NewPassword: "brand-new", CurrentPassword: "secret123"}))

	reloaded, err := service.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CheckPassword("brand-new"))
	assert.False(t, reloaded.CheckPassword("secret123"))
}

func TestEnsureUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	user, created, err := service.EnsureUser(ctx, "ops@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "ops", user.Username)

	again, created, err := service.EnsureUser(ctx, "ops@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
}
