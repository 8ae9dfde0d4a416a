package services

import (
	"context"
	"strings"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredients_PrefixFilter(t *testing.T) {
	db := setupTestDB(t)
	service := NewIngredientService(db)
	ctx := context.Background()

	createIngredient(t, db, "Sugar", "g")
	createIngredient(t, db, "salt", "g")
	createIngredient(t, db, "sour cream", "ml")
	createIngredient(t, db, "basil", "g")
	createIngredient(t, db, "100%_juice", "ml")

	names := func(items []models.Ingredient) []string {
		result := make([]string, len(items))
		for i, item := range items {
			result[i] = item.Name
		}
		return result
	}

	all, err := service.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	items, err := service.ListIngredients(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar", "salt", "sour cream"}, names(items))

	items, err = service.ListIngredients(ctx, "SU")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar"}, names(items))

	items, err = service.ListIngredients(ctx, "100%_")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_juice"}, names(items))

	items, err = service.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, items, "wildcards are matched literally")
}

func TestGetIngredient(t *testing.T) {
	db := setupTestDB(t)
	service := NewIngredientService(db)
	ctx := context.Background()
	egg := createIngredient(t, db, "egg", "pcs")

	found, err := service.GetIngredient(ctx, egg.ID)
	require.NoError(t, err)
	assert.Equal(t, egg, found)

	_, err = service.GetIngredient(ctx, egg.ID+1)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestImportCSV(t *testing.T) {
	db := setupTestDB(t)
	service := NewIngredientService(db)
	ctx := context.Background()
	createIngredient(t, db, "flour", "g")

	csvData := strings.Join([]string{
		"flour,g",
		"flour,kg",
		"\"milk, whole\",ml",
		"sugar, g",
		"sugar,g",
		",g",
	}, "\n")

	inserted, err := service.ImportCSV(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	items, err := service.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, int64(1), countRows(t, db, &models.Ingredient{}, "name = ? AND measurement_unit = ?", "milk, whole", "ml"))
}

func TestImportCSV_MalformedRow(t *testing.T) {
	db := setupTestDB(t)
	service := NewIngredientService(db)

	_, err := service.ImportCSV(context.Background(), strings.NewReader("flour,g\nbroken\n"))

	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	db := setupTestDB(t)
	service := NewTagService(db)
	ctx := context.Background()

	lunch, err := service.CreateTag(ctx, models.TagInput{Name: "Lunch", Color: "#E26C2D", Slug: "lunch"})
	require.NoError(t, err)
	_, err = service.CreateTag(ctx, models.TagInput{Name: "Breakfast", Color: "#49B64E", Slug: "breakfast"})
	require.NoError(t, err)

	_, err = service.CreateTag(ctx, models.TagInput{Name: "Lunch", Color: "#000000", Slug: "lunch-2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = service.CreateTag(ctx, models.TagInput{Name: "Bad", Color: "red", Slug: "bad"})
	assert.ErrorIs(t, err, ErrValidation)

	tags, err := service.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	found, err := service.GetTag(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, lunch, found)

	_, err = service.GetTag(ctx, 999)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestClients(t *testing.T) {
	db := setupTestDB(t)
	service := NewClientService(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	stranger := createUser(t, db, "stranger")

	client, secret, err := service.CreateClient(ctx, owner.ID, ClientInput{Name: "mobile app"})
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.NotEqual(t, secret, client.Secret, "only the hash is stored")
	assert.True(t, client.VerifyPassword(secret))
	assert.Equal(t, ClientCredentialsGrant, client.GrantTypes)
	assert.Equal(t, "read write", client.Scopes)

	_, _, err = service.CreateClient(ctx, owner.ID, ClientInput{})
	assert.ErrorIs(t, err, ErrValidation)

	clients, err := service.GetClientsByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)

	assert.ErrorIs(t, service.DeleteClient(ctx, client.ID, stranger.ID), ErrClientNotFound)
	require.NoError(t, service.DeleteClient(ctx, client.ID, owner.ID))

	_, err = service.GetClientByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}
