package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Role:      models.RoleUser,
		Password:  "secret123",
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTag(t *testing.T, db *gorm.DB, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: slug, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

type amountFixture struct {
	ingredient models.Ingredient
	amount     int
}

// createRecipe inserts a recipe straight into the store, bypassing RecipeService
func createRecipe(t *testing.T, db *gorm.DB, author models.User, name string, tags []models.Tag, amounts ...amountFixture) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and bake.",
		Image:       "recipes/" + name + ".png",
		CookingTime: 30,
		Tags:        tags,
	}
	require.NoError(t, db.Omit("Author", "Tags.*").Create(&recipe).Error)

	for _, a := range amounts {
		row := models.IngredientAmount{RecipeID: recipe.ID, IngredientID: a.ingredient.ID, Amount: a.amount}
		require.NoError(t, db.Omit("Ingredient").Create(&row).Error)
	}
	return recipe
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

// stubImageStore records saved and deleted references without touching disk
type stubImageStore struct {
	mu      sync.Mutex
	next    int
	saved   []string
	deleted []string
}

func (s *stubImageStore) Save(_ context.Context, encoded string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if encoded == "not-an-image" {
		return "", storage.ErrInvalidImage
	}
	s.next++
	ref := fmt.Sprintf("recipes/stub-%d.png", s.next)
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *stubImageStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *stubImageStore) URL(ref string) string {
	return "/media/" + ref
}
