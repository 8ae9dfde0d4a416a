package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MembershipFlags tells whether a recipe is in the viewer's favorites and cart
type MembershipFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

// MembershipService toggles recipes in and out of a user's favorites and shopping cart
type MembershipService interface {
	// AddMembership puts the recipe into the user's ledger of the given kind.
	// It fails with ErrRecipeNotFound when the recipe is absent and with
	// ErrAlreadyExists when the recipe is already there.
	AddMembership(ctx context.Context, userID, recipeID uint, kind models.MembershipKind) (models.BriefRecipe, error)
	// RemoveMembership takes the recipe out of the ledger, failing with
	// ErrMembershipNotFound when it was not there.
	RemoveMembership(ctx context.Context, userID, recipeID uint, kind models.MembershipKind) error
	// MembershipFlags reports the ledgers each recipe is in for userID
	MembershipFlags(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]MembershipFlags, error)
}

type membershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) MembershipService {
	return &membershipService{db: db}
}

func (s *membershipService) AddMembership(ctx context.Context, userID, recipeID uint, kind models.MembershipKind) (models.BriefRecipe, error) {
	if !kind.Valid() {
		return models.BriefRecipe{}, newValidationError("kind", "oneof", "unknown membership kind "+string(kind))
	}

	var brief models.BriefRecipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}

		_, created, err := getOrCreateMembership(tx, userID, recipeID, kind)
		if err != nil {
			return err
		}
		if !created {
			return ErrAlreadyExists
		}

		brief = recipe.Brief()
		return nil
	})

	recordToggle(kind, "add", err)
	if err != nil {
		return models.BriefRecipe{}, err
	}

	log.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"kind":      kind,
	}).Debug("Membership added")
	return brief, nil
}

func (s *membershipService) RemoveMembership(ctx context.Context, userID, recipeID uint, kind models.MembershipKind) error {
	if !kind.Valid() {
		return newValidationError("kind", "oneof", "unknown membership kind "+string(kind))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, recipeID); err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
			Delete(&models.Membership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMembershipNotFound
		}
		return nil
	})

	recordToggle(kind, "remove", err)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"kind":      kind,
	}).Debug("Membership removed")
	return nil
}

func (s *membershipService) MembershipFlags(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]MembershipFlags, error) {
	flags := make(map[uint]MembershipFlags, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return flags, nil
	}

	var rows []models.Membership
	err := s.db.WithContext(ctx).
		Select("recipe_id", "kind").
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		f := flags[row.RecipeID]
		switch row.Kind {
		case models.KindFavorite:
			f.IsFavorited = true
		case models.KindCart:
			f.IsInShoppingCart = true
		}
		flags[row.RecipeID] = f
	}
	return flags, nil
}

// getOrCreateMembership returns the existing membership or inserts a new one.
// created is false when the row was already present, including when a
// concurrent insert won the race against the unique index.
func getOrCreateMembership(tx *gorm.DB, userID, recipeID uint, kind models.MembershipKind) (models.Membership, bool, error) {
	var existing models.Membership
	result := tx.Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Limit(1).
		Find(&existing)
	if result.Error != nil {
		return models.Membership{}, false, result.Error
	}
	if result.RowsAffected > 0 {
		return existing, false, nil
	}

	membership := models.Membership{UserID: userID, RecipeID: recipeID, Kind: kind}
	if err := tx.Omit("User", "Recipe").Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Membership{}, false, nil
		}
		return models.Membership{}, false, err
	}
	return membership, true, nil
}

func findRecipe(tx *gorm.DB, recipeID uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, ErrRecipeNotFound
		}
		return models.Recipe{}, err
	}
	return recipe, nil
}

func recordToggle(kind models.MembershipKind, action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyExists):
		outcome = "already_exists"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.MembershipToggles.WithLabelValues(string(kind), action, outcome).Inc()
}
