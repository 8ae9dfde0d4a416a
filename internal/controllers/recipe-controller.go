package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes and the
// favorite and shopping cart ledgers
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToShoppingCart(c *gin.Context)
	RemoveFromShoppingCart(c *gin.Context)
	DownloadShoppingCart(c *gin.Context)
}

type recipeController struct {
	recipes     services.RecipeService
	memberships services.MembershipService
	shopping    services.ShoppingListService
	presenter   *Presenter
	pageSize    int
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(recipes services.RecipeService, memberships services.MembershipService,
	shopping services.ShoppingListService, presenter *Presenter, pageSize int) RecipeController {
	return &recipeController{
		recipes:     recipes,
		memberships: memberships,
		shopping:    shopping,
		presenter:   presenter,
		pageSize:    pageSize,
	}
}

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:  middleware.CurrentUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}

// ListRecipes godoc
// @Summary List recipes
// @Description Newest first. The favorite and cart filters only apply to authenticated users.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs, any of" collectionFormat(multi)
// @Param is_favorited query int false "1 to show only favorites"
// @Param is_in_shopping_cart query int false "1 to show only recipes in the cart"
// @Success 200 {object} models.PageResponse[models.RecipeResponse]
// @Router /api/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	filter := services.RecipeFilter{
		AuthorID:         uint(max(queryInt(c, "author"), 0)),
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryBool(c, "is_favorited"),
		IsInShoppingCart: queryBool(c, "is_in_shopping_cart"),
	}

	page, err := rc.recipes.ListRecipes(c.Request.Context(), middleware.CurrentUserID(c), filter, paginationFrom(c, rc.pageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, page, rc.presenter.Recipe))
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := rc.recipes.GetRecipe(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.presenter.Recipe(detail))
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description The image is a base64 data URL
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body models.RecipeInput true "Recipe"
// @Success 201 {object} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var input models.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	detail, err := rc.recipes.CreateRecipe(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rc.presenter.Recipe(detail))
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Replaces name, text, cooking time, tags and ingredients. The image is kept when omitted.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body models.RecipeInput true "Recipe"
// @Success 200 {object} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input models.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	detail, err := rc.recipes.UpdateRecipe(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.presenter.Recipe(detail))
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204 "Recipe deleted"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := rc.recipes.DeleteRecipe(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.BriefRecipe
// @Failure 400 {object} models.APIError "Already in favorites"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.addMembership(c, models.KindFavorite)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204 "Removed"
// @Failure 400 {object} models.APIError "Not in favorites"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.removeMembership(c, models.KindFavorite)
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.BriefRecipe
// @Failure 400 {object} models.APIError "Already in the cart"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToShoppingCart(c *gin.Context) {
	rc.addMembership(c, models.KindCart)
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204 "Removed"
// @Failure 400 {object} models.APIError "Not in the cart"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromShoppingCart(c *gin.Context) {
	rc.removeMembership(c, models.KindCart)
}

func (rc *recipeController) addMembership(c *gin.Context, kind models.MembershipKind) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	brief, err := rc.memberships.AddMembership(c.Request.Context(), middleware.CurrentUserID(c), id, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rc.presenter.Brief(brief))
}

func (rc *recipeController) removeMembership(c *gin.Context, kind models.MembershipKind) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := rc.memberships.RemoveMembership(c.Request.Context(), middleware.CurrentUserID(c), id, kind); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredient totals across every recipe in the cart, as a text file
// @Tags recipes
// @Produce plain
// @Success 200 {string} string "Shopping list"
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	items, err := rc.shopping.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rc.shopping.Render(items)))
}
