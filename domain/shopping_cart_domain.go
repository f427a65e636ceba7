package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessAddShoppingCart    = "recipe added to shopping cart"
	MessageSuccessRemoveShoppingCart = "recipe removed from shopping cart"
	MessageSuccessGetShoppingCart    = "success get shopping cart"

	MessageFailedAddShoppingCart      = "failed to add recipe to shopping cart"
	MessageFailedRemoveShoppingCart   = "failed to remove recipe from shopping cart"
	MessageFailedGetShoppingCart      = "failed to get shopping cart"
	MessageFailedDownloadShoppingCart = "failed to download shopping list"

	ErrShoppingCartEmpty     = errors.New("shopping cart is empty")
	ErrAlreadyInShoppingCart = errors.New("recipe is already in shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in shopping cart")
)

const ShoppingListFileName = "shopping_list.txt"

type (
	// ShoppingListLine is one ingredient row of one recipe in a user's cart.
	ShoppingListLine struct {
		RecipeID        string
		RecipeName      string
		IngredientName  string
		MeasurementUnit string
		Amount          int
	}

	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	ShoppingList struct {
		GeneratedAt time.Time          `json:"generated_at"`
		Ingredients []ShoppingListItem `json:"ingredients"`
		Recipes     []string           `json:"recipes"`
	}
)
