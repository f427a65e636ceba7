package main

import (
	"Foodgram-Backend/entities"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type (
	ingredientStore interface {
		FirstOrCreate(ctx context.Context, ingredient *entities.Ingredient) (bool, error)
	}

	tagStore interface {
		FirstOrCreate(ctx context.Context, tag *entities.Tag) (bool, error)
	}

	ingredientFixture struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	tagFixture struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	result struct {
		Created int
		Skipped int
	}
)

func importIngredients(ctx context.Context, store ingredientStore, r io.Reader) (result, error) {
	var fixtures []ingredientFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return result{}, fmt.Errorf("decode ingredients: %w", err)
	}

	var res result
	for i, fixture := range fixtures {
		name := strings.TrimSpace(fixture.Name)
		unit := strings.TrimSpace(fixture.MeasurementUnit)
		if name == "" || unit == "" {
			return res, fmt.Errorf("ingredient #%d: name and measurement_unit are required", i+1)
		}

		created, err := store.FirstOrCreate(ctx, &entities.Ingredient{Name: name, MeasurementUnit: unit})
		if err != nil {
			return res, fmt.Errorf("ingredient %q: %w", name, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

func importTags(ctx context.Context, store tagStore, r io.Reader) (result, error) {
	var fixtures []tagFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return result{}, fmt.Errorf("decode tags: %w", err)
	}

	var res result
	for i, fixture := range fixtures {
		if fixture.Name == "" || fixture.Slug == "" {
			return res, fmt.Errorf("tag #%d: name and slug are required", i+1)
		}

		created, err := store.FirstOrCreate(ctx, &entities.Tag{
			Name:  fixture.Name,
			Color: strings.ToUpper(fixture.Color),
			Slug:  fixture.Slug,
		})
		if err != nil {
			return res, fmt.Errorf("tag %q: %w", fixture.Slug, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}
