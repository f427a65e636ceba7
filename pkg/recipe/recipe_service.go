package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/tag"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recipeImageFolder = "recipes"

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) (domain.RecipeListResponse, error)
		GetSubscriptionRecipes(ctx context.Context, page domain.PaginationRequest, userID string) (domain.RecipeListResponse, error)
		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)

		AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error)
		RemoveFavorite(ctx context.Context, recipeID string, userID string) error
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		tagRepository        tag.TagRepository
		userRepository       user.UserRepository
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		tagRepository:        tagRepository,
		userRepository:       userRepository,
		s3:                   s3,
	}
}

func (s *recipeService) getRecipe(ctx context.Context, id string) (*entities.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRecipeNotFound
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// getOwnRecipe loads a recipe the caller is allowed to change.
func (s *recipeService) getOwnRecipe(ctx context.Context, id string, userID string) (*entities.Recipe, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID.String() != userID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}
	return recipe, nil
}

func (s *recipeService) resolveIngredients(ctx context.Context, items []domain.RecipeIngredientRequest, recipeID uuid.UUID) ([]*entities.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, domain.ErrIngredientsRequired
	}

	ids := make([]string, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, domain.ErrUnknownIngredient
		}
		if _, ok := seen[id]; ok {
			return nil, domain.ErrDuplicateIngredients
		}
		seen[id] = struct{}{}
		ids = append(ids, id.String())
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, domain.ErrUnknownIngredient
	}

	rows := make([]*entities.RecipeIngredient, 0, len(items))
	for i, item := range items {
		rows = append(rows, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: uuid.MustParse(item.ID),
			Amount:       item.Amount,
			Position:     i,
		})
	}
	return rows, nil
}

func (s *recipeService) resolveTags(ctx context.Context, items []string) ([]*entities.Tag, error) {
	if len(items) == 0 {
		return nil, domain.ErrTagsRequired
	}

	ids := make([]string, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item)
		if err != nil {
			return nil, domain.ErrUnknownTag
		}
		if _, ok := seen[id]; ok {
			return nil, domain.ErrDuplicateTags
		}
		seen[id] = struct{}{}
		ids = append(ids, id.String())
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.ErrUnknownTag
	}
	return tags, nil
}

func (s *recipeService) storeImage(ctx context.Context, dataURI string, recipeID uuid.UUID) (string, error) {
	url, err := storage.StoreBase64Image(ctx, s.s3, dataURI, fmt.Sprintf("recipe-%s", recipeID), recipeImageFolder)
	if errors.Is(err, utils.ErrInvalidDataURI) {
		return "", domain.ErrInvalidImage
	}
	return url, err
}

func (s *recipeService) removeImage(ctx context.Context, link string) {
	if err := storage.RemoveImage(ctx, s.s3, link); err != nil {
		log.Warnf("failed to remove recipe image %s: %v", link, err)
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}
	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	recipeID := uuid.New()
	ingredients, err := s.resolveIngredients(ctx, req.Ingredients, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.storeImage(ctx, req.Image, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          recipeID,
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		PubDate:     time.Now(),
		Ingredients: ingredients,
		Tags:        tags,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		s.removeImage(ctx, imageURL)
		return domain.RecipeResponse{}, err
	}
	metrics.RecordRecipeCreated()

	return s.GetRecipe(ctx, recipeID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.getOwnRecipe(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	var ingredients []*entities.RecipeIngredient
	if req.Ingredients != nil {
		if ingredients, err = s.resolveIngredients(ctx, req.Ingredients, recipe.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var tags []*entities.Tag
	if req.Tags != nil {
		if tags, err = s.resolveTags(ctx, req.Tags); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if req.Name != nil {
		recipe.Name = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
		}
		recipe.CookingTime = *req.CookingTime
	}

	previousImage := ""
	if req.Image != nil {
		imageURL, err := s.storeImage(ctx, *req.Image, recipe.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		previousImage = recipe.ImageURL
		recipe.ImageURL = imageURL
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, ingredients, tags); err != nil {
		if req.Image != nil {
			s.removeImage(ctx, recipe.ImageURL)
		}
		return domain.RecipeResponse{}, err
	}
	if previousImage != "" && previousImage != recipe.ImageURL {
		s.removeImage(ctx, previousImage)
	}

	return s.GetRecipe(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.getOwnRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipe.ID.String()); err != nil {
		return err
	}
	s.removeImage(ctx, recipe.ImageURL)
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	responses, err := s.toRecipeResponses(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return responses[0], nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter) (domain.RecipeListResponse, error) {
	filter.PaginationRequest = filter.PaginationRequest.Normalize()
	if filter.AuthorID != "" {
		if _, err := uuid.Parse(filter.AuthorID); err != nil {
			return s.emptyList(filter.PaginationRequest), nil
		}
	}
	// anonymous callers have no favorites or cart to filter on
	if filter.ViewerID == "" && (filter.IsFavorited || filter.IsInShoppingCart) {
		filter.IsFavorited = false
		filter.IsInShoppingCart = false
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}
	return s.toRecipeList(ctx, recipes, count, filter.PaginationRequest, filter.ViewerID)
}

func (s *recipeService) GetSubscriptionRecipes(ctx context.Context, page domain.PaginationRequest, userID string) (domain.RecipeListResponse, error) {
	page = page.Normalize()

	recipes, count, err := s.recipeRepository.GetSubscriptionRecipes(ctx, userID, page.Page, page.Limit)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}
	return s.toRecipeList(ctx, recipes, count, page, userID)
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}

	baseURL := strings.TrimRight(utils.GetConfig("APP_URL"), "/")
	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/r/%s", baseURL, recipe.ID),
	}, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	favorite := &entities.Favorite{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipe.ID,
		CreatedAt: time.Now(),
	}
	if err := s.recipeRepository.AddFavorite(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}

	return user.ToRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	deleted, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipe.ID.String())
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) emptyList(page domain.PaginationRequest) domain.RecipeListResponse {
	return domain.RecipeListResponse{
		Results:    []domain.RecipeResponse{},
		Pagination: domain.NewPaginationResponse(page, 0),
	}
}

func (s *recipeService) toRecipeList(ctx context.Context, recipes []*entities.Recipe, count int64, page domain.PaginationRequest, viewerID string) (domain.RecipeListResponse, error) {
	results, err := s.toRecipeResponses(ctx, recipes, viewerID)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}
	return domain.RecipeListResponse{
		Count:      count,
		Results:    results,
		Pagination: domain.NewPaginationResponse(page, count),
	}, nil
}

// toRecipeResponses resolves the viewer-dependent flags for a page of recipes
// with one query per flag.
func (s *recipeService) toRecipeResponses(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.RecipeResponse, error) {
	recipeIDs := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID.String())
		authorIDs = append(authorIDs, recipe.AuthorID.String())
	}

	favorited, err := s.recipeRepository.GetFavoritedRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.recipeRepository.GetInShoppingCartRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := s.userRepository.GetFollowedAuthorIDs(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		id := recipe.ID.String()
		responses = append(responses, toRecipeResponse(recipe, followed[recipe.AuthorID.String()], favorited[id], inCart[id]))
	}
	return responses, nil
}

func toRecipeResponse(recipe *entities.Recipe, isSubscribed, isFavorited, isInShoppingCart bool) domain.RecipeResponse {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, tag.ToTagResponse(t))
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, item := range recipe.Ingredients {
		row := domain.RecipeIngredientResponse{
			ID:     item.IngredientID.String(),
			Amount: item.Amount,
		}
		if item.Ingredient != nil {
			row.Name = item.Ingredient.Name
			row.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, row)
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Author:           user.ToUserResponse(recipe.Author, isSubscribed),
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
}
