package shoppingcart

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ShoppingCartService interface {
		AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error)
		RemoveFromCart(ctx context.Context, recipeID string, userID string) error
		GetShoppingList(ctx context.Context, userID string) (domain.ShoppingList, error)
		DownloadShoppingList(ctx context.Context, userID string) (string, error)
	}

	shoppingCartService struct {
		shoppingCartRepository ShoppingCartRepository
		recipeRepository       recipe.RecipeRepository
		now                    func() time.Time
	}
)

func NewShoppingCartService(shoppingCartRepository ShoppingCartRepository, recipeRepository recipe.RecipeRepository) ShoppingCartService {
	return &shoppingCartService{
		shoppingCartRepository: shoppingCartRepository,
		recipeRepository:       recipeRepository,
		now:                    time.Now,
	}
}

func (s *shoppingCartService) getRecipe(ctx context.Context, id string) (*entities.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRecipeNotFound
	}
	found, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return found, nil
}

func (s *shoppingCartService) AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error) {
	found, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	cart := &entities.ShoppingCart{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  found.ID,
		CreatedAt: s.now(),
	}
	if err := s.shoppingCartRepository.AddToCart(ctx, cart); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeShortResponse{}, err
	}

	return user.ToRecipeShortResponse(found), nil
}

func (s *shoppingCartService) RemoveFromCart(ctx context.Context, recipeID string, userID string) error {
	found, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	deleted, err := s.shoppingCartRepository.RemoveFromCart(ctx, userID, found.ID.String())
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (s *shoppingCartService) GetShoppingList(ctx context.Context, userID string) (domain.ShoppingList, error) {
	recipes, err := s.shoppingCartRepository.GetCartRecipeNames(ctx, userID)
	if err != nil {
		return domain.ShoppingList{}, err
	}
	if len(recipes) == 0 {
		return domain.ShoppingList{}, domain.ErrShoppingCartEmpty
	}

	lines, err := s.shoppingCartRepository.GetShoppingListLines(ctx, userID)
	if err != nil {
		return domain.ShoppingList{}, err
	}

	return domain.ShoppingList{
		GeneratedAt: s.now(),
		Ingredients: AggregateIngredients(lines),
		Recipes:     recipes,
	}, nil
}

func (s *shoppingCartService) DownloadShoppingList(ctx context.Context, userID string) (string, error) {
	list, err := s.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.RecordShoppingListDownloaded()
	return RenderShoppingList(list), nil
}
