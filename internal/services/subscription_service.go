package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthorDetail is a followed author with a preview of their newest recipes
type AuthorDetail struct {
	Author       models.User
	IsSubscribed bool
	Recipes      []models.BriefRecipe
	RecipesCount int64
}

type SubscriptionService interface {
	// Subscribe makes followerID follow authorID. Following yourself is a
	// validation error regardless of any existing rows.
	Subscribe(ctx context.Context, followerID, authorID uint, recipesLimit int) (AuthorDetail, error)
	Unsubscribe(ctx context.Context, followerID, authorID uint) error
	// ListSubscriptions pages through the authors followerID follows.
	// recipesLimit caps each author's recipe preview; zero or less means no cap.
	ListSubscriptions(ctx context.Context, followerID uint, page Pagination, recipesLimit int) (Page[AuthorDetail], error)
}

type subscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func (s *subscriptionService) Subscribe(ctx context.Context, followerID, authorID uint, recipesLimit int) (AuthorDetail, error) {
	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if followerID == authorID {
			return newValidationError("author", "self_subscription", "you cannot subscribe to yourself")
		}

		if err := tx.First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND author_id = ?", followerID, authorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyExists
		}

		subscription := models.Subscription{UserID: followerID, AuthorID: authorID}
		if err := tx.Omit("User", "Author").Create(&subscription).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})

	recordSubscriptionToggle("subscribe", err)
	if err != nil {
		return AuthorDetail{}, err
	}

	log.WithFields(logrus.Fields{
		"follower_id": followerID,
		"author_id":   authorID,
	}).Debug("Subscribed")

	return s.authorDetail(s.db.WithContext(ctx), author, true, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, followerID, authorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.User
		if err := tx.Select("id").First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		result := tx.Where("user_id = ? AND author_id = ?", followerID, authorID).Delete(&models.Subscription{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubscriptionNotFound
		}
		return nil
	})

	recordSubscriptionToggle("unsubscribe", err)
	return err
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, followerID uint, page Pagination, recipesLimit int) (Page[AuthorDetail], error) {
	db := s.db.WithContext(ctx)
	followed := func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Subscription{}).
				Select("author_id").
				Where("user_id = ?", followerID))
	}

	var count int64
	if err := db.Model(&models.User{}).Scopes(followed).Count(&count).Error; err != nil {
		return Page[AuthorDetail]{}, err
	}

	var authors []models.User
	if err := db.Scopes(followed, page.scope).Order("users.id").Find(&authors).Error; err != nil {
		return Page[AuthorDetail]{}, err
	}

	items := make([]AuthorDetail, 0, len(authors))
	for _, author := range authors {
		detail, err := s.authorDetail(db, author, true, recipesLimit)
		if err != nil {
			return Page[AuthorDetail]{}, err
		}
		items = append(items, detail)
	}
	return Page[AuthorDetail]{Items: items, Count: count, Pagination: page}, nil
}

func (s *subscriptionService) authorDetail(db *gorm.DB, author models.User, subscribed bool, recipesLimit int) (AuthorDetail, error) {
	detail := AuthorDetail{Author: author, IsSubscribed: subscribed, Recipes: []models.BriefRecipe{}}

	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&detail.RecipesCount).Error; err != nil {
		return AuthorDetail{}, err
	}

	query := db.Model(&models.Recipe{}).
		Select("id", "name", "image", "cooking_time").
		Where("author_id = ?", author.ID).
		Order("created_at DESC, id DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	if err := query.Scan(&detail.Recipes).Error; err != nil {
		return AuthorDetail{}, err
	}
	return detail, nil
}

// subscribedAuthors reports which of authorIDs followerID follows
func subscribedAuthors(db *gorm.DB, followerID uint, authorIDs []uint) (map[uint]bool, error) {
	subscribed := make(map[uint]bool)
	if followerID == 0 || len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uint
	err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}

func recordSubscriptionToggle(action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyExists):
		outcome = "already_exists"
	case errors.Is(err, ErrValidation):
		outcome = "invalid"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.SubscriptionToggles.WithLabelValues(action, outcome).Inc()
}
