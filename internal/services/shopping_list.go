package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// ShoppingListHeader opens every rendered shopping list
const ShoppingListHeader = "Список покупок:"

// ShoppingListItem is the summed amount of one ingredient across the cart
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

type ShoppingListService interface {
	// BuildShoppingList sums the ingredient amounts of every recipe in the
	// user's cart, grouped by ingredient name and unit, ordered by name then unit.
	BuildShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error)
	Render(items []ShoppingListItem) string
}

type shoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	items := []ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("ingredient_amounts AS ia").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ia.amount) AS total").
		Joins("JOIN ingredients AS i ON i.id = ia.ingredient_id").
		Joins("JOIN memberships AS m ON m.recipe_id = ia.recipe_id").
		Where("m.user_id = ? AND m.kind = ?", userID, models.KindCart).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to build shopping list")
		return nil, err
	}

	metrics.ShoppingListsGenerated.Inc()
	return items, nil
}

func (s *shoppingListService) Render(items []ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteByte('\n')
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d(%s)\n", item.Name, item.Total, item.MeasurementUnit)
	}
	return b.String()
}
