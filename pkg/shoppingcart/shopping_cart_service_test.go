package shoppingcart

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/recipe"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeShoppingCartRepository struct {
	carts map[string]map[string]bool
	names []string
	lines []domain.ShoppingListLine
}

func newFakeShoppingCartRepository() *fakeShoppingCartRepository {
	return &fakeShoppingCartRepository{carts: make(map[string]map[string]bool)}
}

func (f *fakeShoppingCartRepository) AddToCart(ctx context.Context, cart *entities.ShoppingCart) error {
	userID, recipeID := cart.UserID.String(), cart.RecipeID.String()
	if f.carts[userID] == nil {
		f.carts[userID] = make(map[string]bool)
	}
	if f.carts[userID][recipeID] {
		return gorm.ErrDuplicatedKey
	}
	f.carts[userID][recipeID] = true
	return nil
}

func (f *fakeShoppingCartRepository) RemoveFromCart(ctx context.Context, userID, recipeID string) (int64, error) {
	if !f.carts[userID][recipeID] {
		return 0, nil
	}
	delete(f.carts[userID], recipeID)
	return 1, nil
}

func (f *fakeShoppingCartRepository) GetCartRecipeNames(ctx context.Context, userID string) ([]string, error) {
	return f.names, nil
}

func (f *fakeShoppingCartRepository) GetShoppingListLines(ctx context.Context, userID string) ([]domain.ShoppingListLine, error) {
	return f.lines, nil
}

type fakeRecipeRepository struct {
	recipe.RecipeRepository
	recipes map[string]*entities.Recipe
}

func (f *fakeRecipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	found, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func newTestService(t *testing.T) (*shoppingCartService, *fakeShoppingCartRepository, *entities.Recipe) {
	t.Helper()
	existing := &entities.Recipe{ID: uuid.New(), Name: "Pancakes", ImageURL: "https://cdn/pancakes.png", CookingTime: 20}
	carts := newFakeShoppingCartRepository()
	recipes := &fakeRecipeRepository{recipes: map[string]*entities.Recipe{existing.ID.String(): existing}}

	svc := NewShoppingCartService(carts, recipes).(*shoppingCartService)
	svc.now = func() time.Time { return time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC) }
	return svc, carts, existing
}

func TestAddToCart(t *testing.T) {
	svc, _, existing := newTestService(t)
	userID := uuid.NewString()

	res, err := svc.AddToCart(context.Background(), existing.ID.String(), userID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), res.ID)
	assert.Equal(t, "Pancakes", res.Name)
	assert.Equal(t, 20, res.CookingTime)
}

func TestAddToCart_Duplicate(t *testing.T) {
	svc, _, existing := newTestService(t)
	userID := uuid.NewString()

	_, err := svc.AddToCart(context.Background(), existing.ID.String(), userID)
	require.NoError(t, err)

	_, err = svc.AddToCart(context.Background(), existing.ID.String(), userID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)
}

func TestAddToCart_UnknownRecipe(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddToCart(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = svc.AddToCart(context.Background(), "not-a-uuid", uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	svc, _, existing := newTestService(t)
	userID := uuid.NewString()

	err := svc.RemoveFromCart(context.Background(), existing.ID.String(), userID)
	assert.ErrorIs(t, err, domain.ErrNotInShoppingCart)

	_, err = svc.AddToCart(context.Background(), existing.ID.String(), userID)
	require.NoError(t, err)
	assert.NoError(t, svc.RemoveFromCart(context.Background(), existing.ID.String(), userID))
}

func TestGetShoppingList_EmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetShoppingList(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrShoppingCartEmpty)

	_, err = svc.DownloadShoppingList(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrShoppingCartEmpty)
}

func TestDownloadShoppingList(t *testing.T) {
	svc, carts, _ := newTestService(t)
	carts.names = []string{"A", "B"}
	carts.lines = []domain.ShoppingListLine{
		{RecipeName: "A", IngredientName: "flour", MeasurementUnit: "g", Amount: 200},
		{RecipeName: "A", IngredientName: "sugar", MeasurementUnit: "g", Amount: 50},
		{RecipeName: "B", IngredientName: "flour", MeasurementUnit: "g", Amount: 100},
		{RecipeName: "B", IngredientName: "eggs", MeasurementUnit: "pcs", Amount: 2},
	}

	body, err := svc.DownloadShoppingList(context.Background(), uuid.NewString())
	require.NoError(t, err)

	lines := strings.Split(body, "\n")
	assert.Equal(t, []string{
		"Shopping list generated: 16-10-2026",
		"Products:",
		"1. Flour — 300 g",
		"2. Sugar — 50 g",
		"3. Eggs — 2 pcs",
		"Recipes included in the shopping list:",
		"1. A",
		"2. B",
	}, lines)
}
