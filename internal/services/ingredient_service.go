package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

type IngredientService interface {
	// ListIngredients returns the catalog ordered by name, optionally
	// restricted to names starting with prefix (case-insensitive).
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (models.Ingredient, error)
	// ImportCSV loads "name,unit" rows, skipping ingredients already in the
	// catalog. It returns the number of rows inserted.
	ImportCSV(ctx context.Context, r io.Reader) (int64, error)
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *ingredientService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	ingredients := []models.Ingredient{}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, ErrIngredientNotFound
		}
		return models.Ingredient{}, err
	}
	return ingredient, nil
}

func (s *ingredientService) ImportCSV(ctx context.Context, r io.Reader) (int64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var (
		inserted int64
		batch    = make([]models.Ingredient, 0, importBatchSize)
		line     int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&batch)
		if result.Error != nil {
			return result.Error
		}
		inserted += result.RowsAffected
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return inserted, fmt.Errorf("read ingredients csv: %w", err)
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			log.WithField("line", line).Warn("Skipping ingredient row with empty fields")
			continue
		}

		batch = append(batch, models.Ingredient{Name: name, MeasurementUnit: unit})
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, err
	}

	log.WithFields(logrus.Fields{
		"rows":     line,
		"inserted": inserted,
	}).Info("Ingredients imported")
	return inserted, nil
}
