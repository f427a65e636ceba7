package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/tag"
	"Foodgram-Backend/pkg/user"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRecipeRepository struct {
	recipes   map[string]*entities.Recipe
	favorites map[string]bool
	inCart    map[string]bool
	updated   int
	deleted   []string
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:   make(map[string]*entities.Recipe),
		favorites: make(map[string]bool),
		inCart:    make(map[string]bool),
	}
}

func favoriteKey(userID, recipeID string) string {
	return userID + "/" + recipeID
}

func (f *fakeRecipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	f.recipes[recipe.ID.String()] = recipe
	return nil
}

func (f *fakeRecipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tags []*entities.Tag) error {
	f.updated++
	if ingredients != nil {
		recipe.Ingredients = ingredients
	}
	if tags != nil {
		recipe.Tags = tags
	}
	f.recipes[recipe.ID.String()] = recipe
	return nil
}

func (f *fakeRecipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	delete(f.recipes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	found, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (f *fakeRecipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error) {
	var result []*entities.Recipe
	for _, r := range f.recipes {
		if filter.IsInShoppingCart && !f.inCart[favoriteKey(filter.ViewerID, r.ID.String())] {
			continue
		}
		result = append(result, r)
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecipeRepository) GetSubscriptionRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecipeRepository) AddFavorite(ctx context.Context, favorite *entities.Favorite) error {
	key := favoriteKey(favorite.UserID.String(), favorite.RecipeID.String())
	if f.favorites[key] {
		return gorm.ErrDuplicatedKey
	}
	f.favorites[key] = true
	return nil
}

func (f *fakeRecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	key := favoriteKey(userID, recipeID)
	if !f.favorites[key] {
		return 0, nil
	}
	delete(f.favorites, key)
	return 1, nil
}

func (f *fakeRecipeRepository) GetFavoritedRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	marked := make(map[string]bool)
	for _, id := range recipeIDs {
		if f.favorites[favoriteKey(userID, id)] {
			marked[id] = true
		}
	}
	return marked, nil
}

func (f *fakeRecipeRepository) GetInShoppingCartRecipeIDs(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	marked := make(map[string]bool)
	for _, id := range recipeIDs {
		if f.inCart[favoriteKey(userID, id)] {
			marked[id] = true
		}
	}
	return marked, nil
}

type fakeIngredientRepository struct {
	ingredient.IngredientRepository
	known map[string]*entities.Ingredient
}

func (f *fakeIngredientRepository) GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error) {
	var found []*entities.Ingredient
	for _, id := range ids {
		if item, ok := f.known[id]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

type fakeTagRepository struct {
	tag.TagRepository
	known map[string]*entities.Tag
}

func (f *fakeTagRepository) GetTagsByIDs(ctx context.Context, ids []string) ([]*entities.Tag, error) {
	var found []*entities.Tag
	for _, id := range ids {
		if item, ok := f.known[id]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

type fakeUserRepository struct {
	user.UserRepository
	followed map[string]bool
}

func (f *fakeUserRepository) GetFollowedAuthorIDs(ctx context.Context, userID string, authorIDs []string) (map[string]bool, error) {
	marked := make(map[string]bool)
	for _, id := range authorIDs {
		if f.followed[favoriteKey(userID, id)] {
			marked[id] = true
		}
	}
	return marked, nil
}

type fakeS3 struct {
	uploaded []string
	removed  []string
}

func (f *fakeS3) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	return folder + "/" + fileName, nil
}

func (f *fakeS3) UploadBytes(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error) {
	key := fmt.Sprintf("%s/%s-%d.png", folder, fileName, len(f.uploaded))
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeS3) DeleteFile(ctx context.Context, objectKey string) error {
	f.removed = append(f.removed, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://media.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://media.test/")
}

type fixture struct {
	service     *recipeService
	recipes     *fakeRecipeRepository
	users       *fakeUserRepository
	s3          *fakeS3
	flour       *entities.Ingredient
	sugar       *entities.Ingredient
	breakfast   *entities.Tag
	dinner      *entities.Tag
	author      *entities.User
	pngDataURI  string
	authorIDStr string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		recipes:   newFakeRecipeRepository(),
		users:     &fakeUserRepository{followed: make(map[string]bool)},
		s3:        &fakeS3{},
		flour:     &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"},
		sugar:     &entities.Ingredient{ID: uuid.New(), Name: "sugar", MeasurementUnit: "g"},
		breakfast: &entities.Tag{ID: uuid.New(), Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		dinner:    &entities.Tag{ID: uuid.New(), Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
		author:    &entities.User{ID: uuid.New(), Username: "chef", Email: "chef@example.com"},
	}
	f.authorIDStr = f.author.ID.String()
	f.pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

	ingredients := &fakeIngredientRepository{known: map[string]*entities.Ingredient{
		f.flour.ID.String(): f.flour,
		f.sugar.ID.String(): f.sugar,
	}}
	tags := &fakeTagRepository{known: map[string]*entities.Tag{
		f.breakfast.ID.String(): f.breakfast,
		f.dinner.ID.String():    f.dinner,
	}}

	f.service = NewRecipeService(f.recipes, ingredients, tags, f.users, f.s3).(*recipeService)
	return f
}

func (f *fixture) createRequest() domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: f.flour.ID.String(), Amount: 200},
			{ID: f.sugar.ID.String(), Amount: 50},
		},
		Tags:        []string{f.breakfast.ID.String()},
		Image:       f.pngDataURI,
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
	}
}

// seed stores a recipe owned by the fixture author, with its relations loaded.
func (f *fixture) seed(t *testing.T) *entities.Recipe {
	t.Helper()
	res, err := f.service.CreateRecipe(context.Background(), f.createRequest(), f.authorIDStr)
	require.NoError(t, err)

	stored := f.recipes.recipes[res.ID]
	stored.Author = f.author
	for _, row := range stored.Ingredients {
		if row.IngredientID == f.flour.ID {
			row.Ingredient = f.flour
		} else {
			row.Ingredient = f.sugar
		}
	}
	return stored
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.CreateRecipe(context.Background(), f.createRequest(), f.authorIDStr)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", res.Name)
	assert.Equal(t, 20, res.CookingTime)
	assert.Len(t, f.s3.uploaded, 1)
	assert.Equal(t, "https://media.test/"+f.s3.uploaded[0], res.Image)
	require.Len(t, res.Ingredients, 2)
	assert.Equal(t, f.flour.ID.String(), res.Ingredients[0].ID)
	assert.Equal(t, 200, res.Ingredients[0].Amount)
	assert.Equal(t, f.sugar.ID.String(), res.Ingredients[1].ID)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "breakfast", res.Tags[0].Slug)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)

	stored := f.recipes.recipes[res.ID]
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.Ingredients[0].Position)
	assert.Equal(t, 1, stored.Ingredients[1].Position)
}

func TestCreateRecipe_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *fixture, req *domain.CreateRecipeRequest)
		want   error
	}{
		{
			name: "no ingredients",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Ingredients = nil
			},
			want: domain.ErrIngredientsRequired,
		},
		{
			name: "duplicate ingredients",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Ingredients = []domain.RecipeIngredientRequest{
					{ID: f.flour.ID.String(), Amount: 100},
					{ID: strings.ToUpper(f.flour.ID.String()), Amount: 200},
				}
			},
			want: domain.ErrDuplicateIngredients,
		},
		{
			name: "unknown ingredient",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Ingredients = []domain.RecipeIngredientRequest{{ID: uuid.NewString(), Amount: 1}}
			},
			want: domain.ErrUnknownIngredient,
		},
		{
			name: "zero amount",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Ingredients[0].Amount = 0
			},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "no tags",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Tags = []string{}
			},
			want: domain.ErrTagsRequired,
		},
		{
			name: "duplicate tags",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Tags = []string{f.dinner.ID.String(), f.dinner.ID.String()}
			},
			want: domain.ErrDuplicateTags,
		},
		{
			name: "unknown tag",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Tags = []string{uuid.NewString()}
			},
			want: domain.ErrUnknownTag,
		},
		{
			name: "zero cooking time",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.CookingTime = 0
			},
			want: domain.ErrInvalidCookingTime,
		},
		{
			name: "image is not a data uri",
			mutate: func(f *fixture, req *domain.CreateRecipeRequest) {
				req.Image = "https://example.com/pancakes.png"
			},
			want: domain.ErrInvalidImage,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.createRequest()
			tc.mutate(f, &req)

			_, err := f.service.CreateRecipe(context.Background(), req, f.authorIDStr)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.recipes.recipes)
		})
	}
}

func TestUpdateRecipe_OnlyAuthor(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)

	name := "Stolen pancakes"
	_, err := f.service.UpdateRecipe(context.Background(), stored.ID.String(), domain.UpdateRecipeRequest{Name: &name}, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	assert.Zero(t, f.recipes.updated)

	err = f.service.DeleteRecipe(context.Background(), stored.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	assert.Empty(t, f.recipes.deleted)
}

func TestUpdateRecipe_PartialReplacesSets(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)
	oldImage := stored.ImageURL

	cookingTime := 35
	image := f.pngDataURI
	res, err := f.service.UpdateRecipe(context.Background(), stored.ID.String(), domain.UpdateRecipeRequest{
		Tags:        []string{f.dinner.ID.String()},
		CookingTime: &cookingTime,
		Image:       &image,
	}, f.authorIDStr)
	require.NoError(t, err)

	assert.Equal(t, 35, res.CookingTime)
	assert.Equal(t, "Pancakes", res.Name)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "dinner", res.Tags[0].Slug)
	assert.Len(t, res.Ingredients, 2)
	assert.Contains(t, f.s3.removed, strings.TrimPrefix(oldImage, "https://media.test/"))
}

func TestUpdateRecipe_EmptyIngredients(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)

	_, err := f.service.UpdateRecipe(context.Background(), stored.ID.String(), domain.UpdateRecipeRequest{
		Ingredients: []domain.RecipeIngredientRequest{},
	}, f.authorIDStr)
	assert.ErrorIs(t, err, domain.ErrIngredientsRequired)
}

func TestDeleteRecipe_RemovesImage(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)

	require.NoError(t, f.service.DeleteRecipe(context.Background(), stored.ID.String(), f.authorIDStr))
	assert.Equal(t, []string{stored.ID.String()}, f.recipes.deleted)
	assert.Len(t, f.s3.removed, 1)

	_, err := f.service.GetRecipe(context.Background(), stored.ID.String(), "")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipe_ViewerFlags(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)
	viewer := uuid.NewString()
	recipeID := stored.ID.String()

	f.recipes.favorites[favoriteKey(viewer, recipeID)] = true
	f.recipes.inCart[favoriteKey(viewer, recipeID)] = true
	f.users.followed[favoriteKey(viewer, f.authorIDStr)] = true

	res, err := f.service.GetRecipe(context.Background(), recipeID, viewer)
	require.NoError(t, err)
	assert.True(t, res.IsFavorited)
	assert.True(t, res.IsInShoppingCart)
	assert.True(t, res.Author.IsSubscribed)
	assert.Equal(t, "chef", res.Author.Username)
	assert.Equal(t, "flour", res.Ingredients[0].Name)
	assert.Equal(t, "g", res.Ingredients[0].MeasurementUnit)

	anonymous, err := f.service.GetRecipe(context.Background(), recipeID, "")
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
	assert.False(t, anonymous.Author.IsSubscribed)
}

func TestGetRecipe_InvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetRecipe(context.Background(), "42", "")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	stored := f.seed(t)
	viewer := uuid.NewString()

	res, err := f.service.AddFavorite(context.Background(), stored.ID.String(), viewer)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.String(), res.ID)
	assert.Equal(t, stored.ImageURL, res.Image)

	_, err = f.service.AddFavorite(context.Background(), stored.ID.String(), viewer)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	require.NoError(t, f.service.RemoveFavorite(context.Background(), stored.ID.String(), viewer))
	err = f.service.RemoveFavorite(context.Background(), stored.ID.String(), viewer)
	assert.ErrorIs(t, err, domain.ErrNotFavorited)

	_, err = f.service.AddFavorite(context.Background(), uuid.NewString(), viewer)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipes_AnonymousIgnoresViewerFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	res, err := f.service.GetRecipes(context.Background(), domain.RecipeFilter{IsInShoppingCart: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, domain.DefaultLimit, res.Pagination.Limit)
}

func TestGetRecipes_InvalidAuthorIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	res, err := f.service.GetRecipes(context.Background(), domain.RecipeFilter{AuthorID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Empty(t, res.Results)
}

func TestGetShortLink(t *testing.T) {
	require.NoError(t, utils.ParseConfig([]byte("APP_URL: \"https://foodgram.test/\"\n")))
	t.Cleanup(func() { _ = utils.ParseConfig([]byte("{}")) })

	f := newFixture(t)
	stored := f.seed(t)

	res, err := f.service.GetShortLink(context.Background(), stored.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "https://foodgram.test/r/"+stored.ID.String(), res.ShortLink)
}
