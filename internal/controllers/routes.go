package controllers

import (
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Router groups every API handler with the authentication middleware it needs
type Router struct {
	Recipes RecipeController
	Users   UserController
	Catalog CatalogController
	Auth    *AuthController
	Clients *ClientController

	// OAuthToken serves the client credentials token endpoint
	OAuthToken gin.HandlerFunc

	// Authenticate rejects anonymous requests; OptionalAuthenticate only
	// rejects invalid tokens
	Authenticate         gin.HandlerFunc
	OptionalAuthenticate gin.HandlerFunc
}

// Register mounts the API below api
func (r Router) Register(api *gin.RouterGroup) {
	authenticated := r.Authenticate
	optional := r.OptionalAuthenticate

	authGroup := api.Group("/auth/token")
	{
		authGroup.POST("/login", r.Auth.Login)
		authGroup.POST("/logout", authenticated, r.Auth.Logout)
	}

	api.POST("/oauth/token", r.OAuthToken)

	users := api.Group("/users")
	{
		users.GET("", optional, r.Users.ListUsers)
		users.POST("", r.Users.Register)
		users.GET("/me", authenticated, r.Users.Me)
		users.POST("/set_password", authenticated, r.Users.SetPassword)
		users.GET("/subscriptions", authenticated, r.Users.ListSubscriptions)
		users.GET("/:id", optional, r.Users.GetUser)
		users.POST("/:id/subscribe", authenticated, r.Users.Subscribe)
		users.DELETE("/:id/subscribe", authenticated, r.Users.Unsubscribe)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", r.Catalog.ListTags)
		tags.GET("/:id", r.Catalog.GetTag)
		tags.POST("", authenticated, middleware.RequireRole(models.RoleAdmin), r.Catalog.CreateTag)
	}

	ingredients := api.Group("/ingredients")
	{
		ingredients.GET("", r.Catalog.ListIngredients)
		ingredients.GET("/:id", r.Catalog.GetIngredient)
	}

	recipes := api.Group("/recipes")
	{
		recipes.GET("", optional, r.Recipes.ListRecipes)
		recipes.POST("", authenticated, r.Recipes.CreateRecipe)
		recipes.GET("/download_shopping_cart", authenticated, r.Recipes.DownloadShoppingCart)
		recipes.GET("/:id", optional, r.Recipes.GetRecipe)
		recipes.PATCH("/:id", authenticated, r.Recipes.UpdateRecipe)
		recipes.DELETE("/:id", authenticated, r.Recipes.DeleteRecipe)
		recipes.POST("/:id/favorite", authenticated, r.Recipes.AddFavorite)
		recipes.DELETE("/:id/favorite", authenticated, r.Recipes.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", authenticated, r.Recipes.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", authenticated, r.Recipes.RemoveFromShoppingCart)
	}

	clients := api.Group("/clients", authenticated)
	{
		clients.POST("", r.Clients.CreateClient)
		clients.GET("", r.Clients.ListClients)
		clients.DELETE("/:id", r.Clients.DeleteClient)
	}
}
