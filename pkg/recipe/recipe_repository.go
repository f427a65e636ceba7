package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"strings"

	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tags []*entities.Tag) error
		DeleteRecipe(ctx context.Context, id string) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error)
		GetSubscriptionRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error)

		// Favorites
		AddFavorite(ctx context.Context, favorite *entities.Favorite) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		GetFavoritedRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error)
		GetInShoppingCartRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// preloadDetail loads everything the full recipe representation needs.
func preloadDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name asc")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position asc")
		}).
		Preload("Ingredients.Ingredient")
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	// tags already exist, only the recipe_tags links are written
	return r.db.WithContext(ctx).Omit("Author", "Tags.*").Create(recipe).Error
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"image_url":    recipe.ImageURL,
				"cooking_time": recipe.CookingTime,
			}).Error; err != nil {
			return err
		}

		if ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if len(ingredients) > 0 {
				if err := tx.Omit("Ingredient").Create(&ingredients).Error; err != nil {
					return err
				}
			}
		}

		if tags != nil {
			if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
				return err
			}
			links := make([]map[string]interface{}, 0, len(tags))
			for _, tag := range tags {
				links = append(links, map[string]interface{}{
					"recipe_id": recipe.ID,
					"tag_id":    tag.ID,
				})
			}
			if len(links) > 0 {
				if err := tx.Table("recipe_tags").Create(links).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Recipe{}).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Scopes(preloadDetail).
		Where("recipes.id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filter(filter domain.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Name != "" {
			db = db.Where("recipes.name ILIKE ?", "%"+escapeLike(filter.Name)+"%")
		}
		if filter.AuthorID != "" {
			db = db.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.Tags) > 0 {
			db = db.Where("recipes.id IN (?)", r.db.
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.Tags))
		}
		if filter.ViewerID != "" && filter.IsFavorited {
			db = db.Where("recipes.id IN (?)", r.db.
				Model(&entities.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", filter.ViewerID))
		}
		if filter.ViewerID != "" && filter.IsInShoppingCart {
			db = db.Where("recipes.id IN (?)", r.db.
				Model(&entities.ShoppingCart{}).
				Select("recipe_id").
				Where("user_id = ?", filter.ViewerID))
		}
		return db
	}
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	page := filter.PaginationRequest.Normalize()

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Scopes(r.filter(filter)).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(r.filter(filter), preloadDetail).
		Order("recipes.pub_date desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetSubscriptionRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	followed := r.db.Model(&entities.Follow{}).Select("author_id").Where("user_id = ?", userID)

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("recipes.author_id IN (?)", followed).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(preloadDetail).
		Where("recipes.author_id IN (?)", followed).
		Order("recipes.pub_date desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, favorite *entities.Favorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) pluckRecipeIDs(ctx context.Context, model interface{}, userID string, recipeIDs []string) (map[string]bool, error) {
	marked := make(map[string]bool)
	if userID == "" || len(recipeIDs) == 0 {
		return marked, nil
	}

	var ids []string
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

func (r *recipeRepository) GetFavoritedRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	return r.pluckRecipeIDs(ctx, &entities.Favorite{}, userID, recipeIDs)
}

func (r *recipeRepository) GetInShoppingCartRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	return r.pluckRecipeIDs(ctx, &entities.ShoppingCart{}, userID, recipeIDs)
}
