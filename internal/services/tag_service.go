package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (models.Tag, error)
	CreateTag(ctx context.Context, input models.TagInput) (models.Tag, error)
}

type tagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Tag{}, ErrTagNotFound
		}
		return models.Tag{}, err
	}
	return tag, nil
}

func (s *tagService) CreateTag(ctx context.Context, input models.TagInput) (models.Tag, error) {
	if err := validate(input); err != nil {
		return models.Tag{}, err
	}

	tag := models.Tag{Name: input.Name, Color: input.Color, Slug: input.Slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Tag{}, ErrAlreadyExists
		}
		return models.Tag{}, err
	}

	log.WithField("tag_id", tag.ID).Info("Tag created")
	return tag, nil
}
