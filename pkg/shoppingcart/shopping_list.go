package shoppingcart

import (
	"Foodgram-Backend/domain"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const shoppingListDateLayout = "02-01-2006"

type ingredientKey struct {
	name string
	unit string
}

// AggregateIngredients sums amounts per (name, unit) pair. Groups keep the
// order in which they first appear in lines.
func AggregateIngredients(lines []domain.ShoppingListLine) []domain.ShoppingListItem {
	index := make(map[ingredientKey]int, len(lines))
	items := make([]domain.ShoppingListItem, 0, len(lines))

	for _, line := range lines {
		key := ingredientKey{name: line.IngredientName, unit: line.MeasurementUnit}
		if i, ok := index[key]; ok {
			items[i].Amount += line.Amount
			continue
		}
		index[key] = len(items)
		items = append(items, domain.ShoppingListItem{
			Name:            line.IngredientName,
			MeasurementUnit: line.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return items
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// RenderShoppingList formats a shopping list as the plain-text download body.
func RenderShoppingList(list domain.ShoppingList) string {
	lines := make([]string, 0, len(list.Ingredients)+len(list.Recipes)+3)

	lines = append(lines, fmt.Sprintf("Shopping list generated: %s", list.GeneratedAt.Format(shoppingListDateLayout)))
	lines = append(lines, "Products:")
	for i, item := range list.Ingredients {
		lines = append(lines, fmt.Sprintf("%d. %s — %d %s", i+1, capitalize(item.Name), item.Amount, item.MeasurementUnit))
	}

	lines = append(lines, "Recipes included in the shopping list:")
	for i, name := range list.Recipes {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
	}

	return strings.Join(lines, "\n")
}
