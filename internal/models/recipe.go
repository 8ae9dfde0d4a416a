package models

import (
	"time"
)

// Bounds shared by ingredient amounts and cooking time
const (
	MinAmount = 1
	MaxAmount = 30000
)

// Tag labels recipes, e.g. "breakfast"
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// Ingredient is a catalog entry; the (name, unit) pair is unique
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

// Recipe is owned by its author and exclusively owns its IngredientAmounts
type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	AuthorID    uint   `gorm:"not null;uniqueIndex:idx_recipe_author_name"`
	Author      User   `gorm:"constraint:OnDelete:CASCADE"`
	Name        string `gorm:"size:200;not null;uniqueIndex:idx_recipe_author_name"`
	Text        string `gorm:"not null"`
	Image       string
	CookingTime int `gorm:"not null"`

	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	IngredientAmounts []IngredientAmount `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// IngredientAmount joins a recipe with an ingredient and its quantity
type IngredientAmount struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_amount_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_amount_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null"`
}

// BriefRecipe is the minimal projection used by toggles and subscription listings
type BriefRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func (r *Recipe) Brief() BriefRecipe {
	return BriefRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
