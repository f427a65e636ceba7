package shoppingcart

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	ShoppingCartRepository interface {
		AddToCart(ctx context.Context, cart *entities.ShoppingCart) error
		RemoveFromCart(ctx context.Context, userID, recipeID string) (int64, error)
		GetCartRecipeNames(ctx context.Context, userID string) ([]string, error)
		GetShoppingListLines(ctx context.Context, userID string) ([]domain.ShoppingListLine, error)
	}

	shoppingCartRepository struct {
		db *gorm.DB
	}
)

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return &shoppingCartRepository{db: db}
}

func (r *shoppingCartRepository) AddToCart(ctx context.Context, cart *entities.ShoppingCart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *shoppingCartRepository) RemoveFromCart(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{})
	return res.RowsAffected, res.Error
}

// GetCartRecipeNames lists the recipes in a cart in the order they were added.
func (r *shoppingCartRepository) GetCartRecipeNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Joins("JOIN recipes ON recipes.id = shopping_carts.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.created_at asc").
		Pluck("recipes.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// GetShoppingListLines returns one row per (cart recipe, ingredient), cart
// order first and the author's ingredient order second.
func (r *shoppingCartRepository) GetShoppingListLines(ctx context.Context, userID string) ([]domain.ShoppingListLine, error) {
	var lines []domain.ShoppingListLine
	if err := r.db.WithContext(ctx).
		Table("shopping_carts").
		Select("recipes.id AS recipe_id, recipes.name AS recipe_name, " +
			"ingredients.name AS ingredient_name, ingredients.measurement_unit AS measurement_unit, " +
			"recipe_ingredients.amount AS amount").
		Joins("JOIN recipes ON recipes.id = shopping_carts.recipe_id").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipes.id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.created_at asc, recipe_ingredients.position asc").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
