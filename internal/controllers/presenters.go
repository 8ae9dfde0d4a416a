package controllers

import (
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/gin-gonic/gin"
)

// Presenter turns service results into response bodies
type Presenter struct {
	images storage.ImageStore
}

func NewPresenter(images storage.ImageStore) *Presenter {
	return &Presenter{images: images}
}

func (p *Presenter) User(user models.User, subscribed bool) models.UserResponse {
	return models.UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func (p *Presenter) Brief(recipe models.BriefRecipe) models.BriefRecipe {
	recipe.Image = p.images.URL(recipe.Image)
	return recipe
}

func (p *Presenter) Recipe(detail services.RecipeDetail) models.RecipeResponse {
	recipe := detail.Recipe

	tags := make([]models.Tag, 0, len(recipe.Tags))
	tags = append(tags, recipe.Tags...)

	ingredients := make([]models.IngredientAmountResponse, 0, len(recipe.IngredientAmounts))
	for _, amount := range recipe.IngredientAmounts {
		ingredients = append(ingredients, models.IngredientAmountResponse{
			ID:              amount.Ingredient.ID,
			Name:            amount.Ingredient.Name,
			MeasurementUnit: amount.Ingredient.MeasurementUnit,
			Amount:          amount.Amount,
		})
	}

	return models.RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           p.User(recipe.Author, detail.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      detail.IsFavorited,
		IsInShoppingCart: detail.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            p.images.URL(recipe.Image),
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func (p *Presenter) Author(author services.AuthorDetail) models.SubscriptionResponse {
	recipes := make([]models.BriefRecipe, 0, len(author.Recipes))
	for _, recipe := range author.Recipes {
		recipes = append(recipes, p.Brief(recipe))
	}
	return models.SubscriptionResponse{
		UserResponse: p.User(author.Author, author.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: author.RecipesCount,
	}
}

// paginationFrom reads the page and limit query parameters
func paginationFrom(c *gin.Context, defaultLimit int) services.Pagination {
	return services.Pagination{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	}.Normalize(defaultLimit)
}

// pageResponse wraps a page in the {count, next, previous, results} envelope
func pageResponse[T, R any](c *gin.Context, page services.Page[T], present func(T) R) models.PageResponse[R] {
	results := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		results = append(results, present(item))
	}

	response := models.PageResponse[R]{
		Count:   page.Count,
		Results: results,
	}
	if page.HasNext() {
		response.Next = pageLink(c, page.Pagination.Page+1)
	}
	if page.HasPrevious() {
		response.Previous = pageLink(c, page.Pagination.Page-1)
	}
	return response
}

// pageLink rebuilds the request URL pointing at another page
func pageLink(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	link := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	s := link.String()
	return &s
}
