package main

import (
	"Foodgram-Backend/cmd/config"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/tag"
	"context"
	"flag"
	"os"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to an ingredients JSON fixture")
	tagsPath := flag.String("tags", "", "path to a tags JSON fixture")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	utils.LoadConfig()
	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	ctx := context.Background()

	if *ingredientsPath != "" {
		file, err := os.Open(*ingredientsPath)
		if err != nil {
			log.Fatalf("failed to open %s: %v", *ingredientsPath, err)
		}
		res, err := importIngredients(ctx, ingredient.NewIngredientRepository(db), file)
		file.Close()
		if err != nil {
			log.Fatalf("failed to import ingredients: %v", err)
		}
		log.Infof("ingredients imported: %d created, %d already present", res.Created, res.Skipped)
	}

	if *tagsPath != "" {
		file, err := os.Open(*tagsPath)
		if err != nil {
			log.Fatalf("failed to open %s: %v", *tagsPath, err)
		}
		res, err := importTags(ctx, tag.NewTagRepository(db), file)
		file.Close()
		if err != nil {
			log.Fatalf("failed to import tags: %v", err)
		}
		log.Infof("tags imported: %d created, %d already present", res.Created, res.Skipped)
	}
}
