package shoppingcart

import (
	"Foodgram-Backend/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregateIngredients_SumsByNameAndUnit(t *testing.T) {
	lines := []domain.ShoppingListLine{
		{RecipeName: "A", IngredientName: "flour", MeasurementUnit: "g", Amount: 200},
		{RecipeName: "A", IngredientName: "sugar", MeasurementUnit: "g", Amount: 50},
		{RecipeName: "B", IngredientName: "flour", MeasurementUnit: "g", Amount: 100},
		{RecipeName: "B", IngredientName: "eggs", MeasurementUnit: "pcs", Amount: 2},
	}

	items := AggregateIngredients(lines)

	assert.Equal(t, []domain.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
	}, items)
}

func TestAggregateIngredients_KeepsUnitsApart(t *testing.T) {
	lines := []domain.ShoppingListLine{
		{IngredientName: "milk", MeasurementUnit: "ml", Amount: 200},
		{IngredientName: "milk", MeasurementUnit: "cup", Amount: 1},
		{IngredientName: "milk", MeasurementUnit: "ml", Amount: 300},
	}

	items := AggregateIngredients(lines)

	assert.Equal(t, []domain.ShoppingListItem{
		{Name: "milk", MeasurementUnit: "ml", Amount: 500},
		{Name: "milk", MeasurementUnit: "cup", Amount: 1},
	}, items)
}

func TestAggregateIngredients_Empty(t *testing.T) {
	assert.Empty(t, AggregateIngredients(nil))
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"flour":      "Flour",
		"FLOUR":      "Flour",
		"мука":       "Мука",
		"égg whites": "Égg whites",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, capitalize(in), in)
	}
}

func TestRenderShoppingList(t *testing.T) {
	list := domain.ShoppingList{
		GeneratedAt: time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC),
		Ingredients: []domain.ShoppingListItem{
			{Name: "flour", MeasurementUnit: "g", Amount: 300},
			{Name: "sugar", MeasurementUnit: "g", Amount: 50},
			{Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
		},
		Recipes: []string{"A", "B"},
	}

	want := "Shopping list generated: 16-10-2026\n" +
		"Products:\n" +
		"1. Flour — 300 g\n" +
		"2. Sugar — 50 g\n" +
		"3. Eggs — 2 pcs\n" +
		"Recipes included in the shopping list:\n" +
		"1. A\n" +
		"2. B"

	assert.Equal(t, want, RenderShoppingList(list))
}
