package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShoppingList_SumsAcrossCart(t *testing.T) {
	db := setupTestDB(t)
	memberships := NewMembershipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	tag := createTag(t, db, "baking")
	flour := createIngredient(t, db, "flour", "g")
	sugar := createIngredient(t, db, "sugar", "g")
	salt := createIngredient(t, db, "salt", "g")

	a := createRecipe(t, db, user, "bread", []models.Tag{tag}, amountFixture{flour, 200})
	b := createRecipe(t, db, user, "cake", []models.Tag{tag}, amountFixture{flour, 100}, amountFixture{sugar, 50})
	// Favorited but not in the cart: must not be counted
	c := createRecipe(t, db, user, "pretzel", []models.Tag{tag}, amountFixture{salt, 5}, amountFixture{flour, 1000})

	_, err := memberships.AddMembership(ctx, user.ID, a.ID, models.KindCart)
	require.NoError(t, err)
	_, err = memberships.AddMembership(ctx, user.ID, b.ID, models.KindCart)
	require.NoError(t, err)
	_, err = memberships.AddMembership(ctx, user.ID, c.ID, models.KindFavorite)
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.ShoppingListsGenerated)

	items, err := lists.BuildShoppingList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 300},
		{Name: "sugar", MeasurementUnit: "g", Total: 50},
	}, items)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ShoppingListsGenerated))

	assert.Equal(t, "Список покупок:\nflour - 300(g)\nsugar - 50(g)\n", lists.Render(items))
}

func TestBuildShoppingList_GroupsByNameAndUnit(t *testing.T) {
	db := setupTestDB(t)
	memberships := NewMembershipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	tag := createTag(t, db, "drinks")
	milkMl := createIngredient(t, db, "milk", "ml")
	milkCup := createIngredient(t, db, "milk", "cup")

	r := createRecipe(t, db, user, "latte", []models.Tag{tag}, amountFixture{milkMl, 250}, amountFixture{milkCup, 1})
	_, err := memberships.AddMembership(ctx, user.ID, r.ID, models.KindCart)
	require.NoError(t, err)

	items, err := lists.BuildShoppingList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingListItem{
		{Name: "milk", MeasurementUnit: "cup", Total: 1},
		{Name: "milk", MeasurementUnit: "ml", Total: 250},
	}, items)
}

func TestBuildShoppingList_OnlyOwnCart(t *testing.T) {
	db := setupTestDB(t)
	memberships := NewMembershipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	egg := createIngredient(t, db, "egg", "pcs")
	r := createRecipe(t, db, alice, "omelette", []models.Tag{createTag(t, db, "breakfast")}, amountFixture{egg, 3})

	_, err := memberships.AddMembership(ctx, bob.ID, r.ID, models.KindCart)
	require.NoError(t, err)

	items, err := lists.BuildShoppingList(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRender_EmptyCartHasHeaderOnly(t *testing.T) {
	db := setupTestDB(t)
	lists := NewShoppingListService(db)
	user := createUser(t, db, "alice")

	items, err := lists.BuildShoppingList(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, ShoppingListHeader+"\n", lists.Render(items))
}
