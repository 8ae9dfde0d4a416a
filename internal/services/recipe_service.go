package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing a write
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// CanModify reports whether the actor may change a recipe owned by authorID
func (a Actor) CanModify(authorID uint) bool {
	return a.IsAdmin || (a.UserID != 0 && a.UserID == authorID)
}

// RecipeFilter narrows ListRecipes. The membership filters only apply to
// authenticated viewers.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeDetail is a recipe with its associations loaded and the viewer's
// relation to it
type RecipeDetail struct {
	Recipe           models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

type RecipeService interface {
	CreateRecipe(ctx context.Context, actor Actor, input models.RecipeInput) (RecipeDetail, error)
	// UpdateRecipe replaces every field, tag and ingredient of the recipe.
	// The image is kept when input.Image is empty.
	UpdateRecipe(ctx context.Context, actor Actor, id uint, input models.RecipeInput) (RecipeDetail, error)
	DeleteRecipe(ctx context.Context, actor Actor, id uint) error
	GetRecipe(ctx context.Context, viewerID uint, id uint) (RecipeDetail, error)
	ListRecipes(ctx context.Context, viewerID uint, filter RecipeFilter, page Pagination) (Page[RecipeDetail], error)
}

type recipeService struct {
	db          *gorm.DB
	images      storage.ImageStore
	memberships MembershipService
}

func NewRecipeService(db *gorm.DB, images storage.ImageStore, memberships MembershipService) RecipeService {
	return &recipeService{db: db, images: images, memberships: memberships}
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor Actor, input models.RecipeInput) (RecipeDetail, error) {
	if err := validate(input); err != nil {
		return RecipeDetail{}, err
	}
	if input.Image == "" {
		return RecipeDetail{}, newValidationError("image", "required", "image is required")
	}

	imageRef, err := s.saveImage(ctx, input.Image)
	if err != nil {
		return RecipeDetail{}, err
	}

	recipe := models.Recipe{
		AuthorID:    actor.UserID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       imageRef,
		CookingTime: input.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, input.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}

		recipe.Tags = tags
		if err := tx.Omit("Author", "Tags.*", "IngredientAmounts").Create(&recipe).Error; err != nil {
			return translateRecipeError(err)
		}
		return createAmounts(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageRef)
		return RecipeDetail{}, err
	}

	log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": actor.UserID,
	}).Info("Recipe created")

	return s.GetRecipe(ctx, actor.UserID, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor Actor, id uint, input models.RecipeInput) (RecipeDetail, error) {
	if err := validate(input); err != nil {
		return RecipeDetail{}, err
	}

	recipe, err := findRecipe(s.db.WithContext(ctx), id)
	if err != nil {
		return RecipeDetail{}, err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return RecipeDetail{}, ErrForbidden
	}

	oldImage := recipe.Image
	newImage := ""
	if input.Image != "" {
		if newImage, err = s.saveImage(ctx, input.Image); err != nil {
			return RecipeDetail{}, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, input.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if newImage != "" {
			updates["image"] = newImage
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return translateRecipeError(err)
		}

		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		return createAmounts(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, newImage)
		return RecipeDetail{}, err
	}

	if newImage != "" {
		s.discardImage(ctx, oldImage)
	}

	log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"actor_id":  actor.UserID,
	}).Info("Recipe updated")

	return s.GetRecipe(ctx, actor.UserID, recipe.ID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actor Actor, id uint) error {
	recipe, err := findRecipe(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"actor_id":  actor.UserID,
	}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, viewerID uint, id uint) (RecipeDetail, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecipeDetail{}, ErrRecipeNotFound
		}
		return RecipeDetail{}, err
	}

	details, err := s.decorate(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return RecipeDetail{}, err
	}
	return details[0], nil
}

func (s *recipeService) ListRecipes(ctx context.Context, viewerID uint, filter RecipeFilter, page Pagination) (Page[RecipeDetail], error) {
	filtered := recipeFilterScope(viewerID, filter)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(filtered).Count(&count).Error; err != nil {
		return Page[RecipeDetail]{}, err
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Scopes(filtered, preloadRecipe, page.scope).
		Order("recipes.created_at DESC, recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return Page[RecipeDetail]{}, err
	}

	details, err := s.decorate(ctx, viewerID, recipes)
	if err != nil {
		return Page[RecipeDetail]{}, err
	}
	return Page[RecipeDetail]{Items: details, Count: count, Pagination: page}, nil
}

// decorate attaches the viewer's favorite, cart and subscription flags
func (s *recipeService) decorate(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeDetail, error) {
	details := make([]RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	flags, err := s.memberships.MembershipFlags(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(s.db.WithContext(ctx), viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i, r := range recipes {
		f := flags[r.ID]
		details[i] = RecipeDetail{
			Recipe:           r,
			IsFavorited:      f.IsFavorited,
			IsInShoppingCart: f.IsInShoppingCart,
			AuthorSubscribed: subscribed[r.AuthorID],
		}
	}
	return details, nil
}

func (s *recipeService) saveImage(ctx context.Context, encoded string) (string, error) {
	ref, err := s.images.Save(ctx, encoded)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return "", newValidationError("image", "image", "image must be a base64 encoded picture")
		}
		return "", err
	}
	return ref, nil
}

func (s *recipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		log.WithError(err).WithField("image", ref).Warn("Failed to remove recipe image")
	}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id") }).
		Preload("IngredientAmounts.Ingredient")
}

func recipeFilterScope(viewerID uint, filter RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			tagged := db.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
			db = db.Where("recipes.id IN (?)", tagged)
		}
		if viewerID != 0 && filter.IsFavorited {
			db = db.Where("recipes.id IN (?)", membershipSubquery(db, viewerID, models.KindFavorite))
		}
		if viewerID != 0 && filter.IsInShoppingCart {
			db = db.Where("recipes.id IN (?)", membershipSubquery(db, viewerID, models.KindCart))
		}
		return db
	}
}

func membershipSubquery(db *gorm.DB, userID uint, kind models.MembershipKind) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Membership{}).
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, kind)
}

// loadTags fetches the referenced tags, failing when any id is unknown
func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, newValidationError("tags", "exists", "tags must reference existing tags")
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []models.IngredientAmountInput) error {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return newValidationError("ingredients", "exists", "ingredients must reference existing ingredients")
	}
	return nil
}

func createAmounts(tx *gorm.DB, recipeID uint, items []models.IngredientAmountInput) error {
	amounts := make([]models.IngredientAmount, len(items))
	for i, item := range items {
		amounts[i] = models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	if err := tx.Omit("Ingredient").Create(&amounts).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("ingredients", "unique", "ingredients must not contain duplicates")
		}
		return err
	}
	return nil
}

func translateRecipeError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return newValidationError("name", "unique", "you already have a recipe with this name")
	}
	return err
}
