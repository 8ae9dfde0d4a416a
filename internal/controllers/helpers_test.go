package controllers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

// pngImage is a PNG signature followed by filler, enough for type sniffing
var pngImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(
	append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...))

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
	issuer *auth.TokenIssuer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	images := storage.NewLocalImageStore(t.TempDir(), "/media/")
	memberships := services.NewMembershipService(db)
	users := services.NewUserService(db)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	sessions := auth.NewSessionService(db, users, issuer)
	oauth := auth.NewOAuthService(db, testSecret, time.Hour)
	presenter := NewPresenter(images)

	router := gin.New()
	Router{
		Recipes: NewRecipeController(services.NewRecipeService(db, images, memberships), memberships,
			services.NewShoppingListService(db), presenter, 6),
		Users:                NewUserController(users, services.NewSubscriptionService(db), presenter, 6),
		Catalog:              NewCatalogController(services.NewTagService(db), services.NewIngredientService(db)),
		Auth:                 NewAuthController(sessions),
		Clients:              NewClientController(services.NewClientService(db)),
		OAuthToken:           oauth.HandleToken,
		Authenticate:         middleware.Authenticate([]byte(testSecret), sessions),
		OptionalAuthenticate: middleware.OptionalAuthenticate([]byte(testSecret), sessions),
	}.Register(router.Group("/api"))

	return &testApp{db: db, router: router, issuer: issuer}
}

func (a *testApp) createUser(t *testing.T, username, role string) models.User {
	t.Helper()
	user := models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Role:      role,
		Password:  "secret123",
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, a.db.Create(&user).Error)
	return user
}

func (a *testApp) token(t *testing.T, user models.User) string {
	t.Helper()
	issued, err := a.issuer.Issue(&user)
	require.NoError(t, err)
	return issued.Token
}

func (a *testApp) createTag(t *testing.T, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: slug, Color: "#E26C2D", Slug: slug}
	require.NoError(t, a.db.Create(&tag).Error)
	return tag
}

func (a *testApp) createIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, a.db.Create(&ingredient).Error)
	return ingredient
}

// do sends body as JSON (unless nil) with an optional bearer token
func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func recipePayload(name string, tagIDs []uint, amounts map[uint]int) map[string]interface{} {
	ingredients := make([]map[string]interface{}, 0, len(amounts))
	for id, amount := range amounts {
		ingredients = append(ingredients, map[string]interface{}{"id": id, "amount": amount})
	}
	return map[string]interface{}{
		"name":         name,
		"text":         "Stir well.",
		"cooking_time": 15,
		"image":        pngImage,
		"tags":         tagIDs,
		"ingredients":  ingredients,
	}
}

func requireStatus(t *testing.T, expected int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, expected, w.Code, w.Body.String())
}
