package models

// IngredientAmountInput references a catalog ingredient by id
type IngredientAmountInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1,lte=30000"`
}

// RecipeInput is used for both creation and full-replacement updates.
// Image is a base64 data URL; it is required on create and optional on update.
type RecipeInput struct {
	Ingredients []IngredientAmountInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []uint                  `json:"tags" validate:"required,min=1,unique,dive,required"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time" validate:"gte=1,lte=30000"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=6,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=6,max=150"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type TagInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"required,max=200,slug"`
}
