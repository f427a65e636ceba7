package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessGetShortLink    = "success get short link"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessRemoveFavorite  = "recipe removed from favorites"

	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedGetShortLink    = "failed to get short link"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("only the author can change this recipe")
	ErrIngredientsRequired      = errors.New("add at least one ingredient")
	ErrTagsRequired             = errors.New("add at least one tag")
	ErrDuplicateIngredients     = errors.New("ingredients must not repeat")
	ErrDuplicateTags            = errors.New("tags must not repeat")
	ErrUnknownIngredient        = errors.New("ingredient does not exist")
	ErrUnknownTag               = errors.New("tag does not exist")
	ErrInvalidAmount            = errors.New("ingredient amount must be at least 1")
	ErrInvalidCookingTime       = errors.New("cooking time must be at least 1 minute")
	ErrAlreadyFavorited         = errors.New("recipe is already in favorites")
	ErrNotFavorited             = errors.New("recipe is not in favorites")
)

type (
	RecipeIngredientRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
		Image       string                    `json:"image" validate:"required"`
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
	}

	// UpdateRecipeRequest is a partial update: nil fields are left untouched.
	UpdateRecipeRequest struct {
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"omitempty,dive"`
		Tags        []string                  `json:"tags" validate:"omitempty,dive,uuid"`
		Image       *string                   `json:"image" validate:"omitempty,min=1"`
		Name        *string                   `json:"name" validate:"omitempty,min=1,max=200"`
		Text        *string                   `json:"text" validate:"omitempty,min=1"`
		CookingTime *int                      `json:"cooking_time" validate:"omitempty,min=1"`
	}

	RecipeFilter struct {
		Name             string
		AuthorID         string
		Tags             []string
		IsFavorited      bool
		IsInShoppingCart bool
		// ViewerID scopes IsFavorited/IsInShoppingCart; empty for anonymous callers.
		ViewerID string
		PaginationRequest
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Author           UserResponse               `json:"author"`
		Tags             []TagResponse              `json:"tags"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
		PubDate          time.Time                  `json:"pub_date"`
	}

	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeListResponse struct {
		Count      int64              `json:"count"`
		Results    []RecipeResponse   `json:"results"`
		Pagination PaginationResponse `json:"pagination"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
