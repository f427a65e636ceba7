package routes

import (
	"Foodgram-Backend/internal/api/handlers"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/internal/middleware"
	"Foodgram-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	RecipeHandler     handlers.RecipeHandler
	IngredientHandler handlers.IngredientHandler
	TagHandler        handlers.TagHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Auth()
	c.User()
	c.Recipes()
	c.Ingredients()
	c.Tags()
	c.GuestRoute()
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth/token")
	{
		auth.Post("/login", c.UserHandler.Login)
		auth.Post("/logout", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Logout)
	}
}

func (c *Config) User() {
	authed := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	user := c.App.Group("/api/users")
	// static paths go before /:id
	{
		user.Post("/", c.UserHandler.Register)
		user.Get("/", optional, c.UserHandler.GetUsers)
		user.Get("/me", authed, c.UserHandler.Me)
		user.Put("/me/avatar", authed, c.UserHandler.UpdateAvatar)
		user.Delete("/me/avatar", authed, c.UserHandler.DeleteAvatar)
		user.Post("/set_password", authed, c.UserHandler.SetPassword)
		user.Post("/reset_password", c.UserHandler.ResetPassword)
		user.Post("/reset_password_confirm", c.UserHandler.ResetPasswordConfirm)
		user.Get("/subscriptions", authed, c.UserHandler.GetSubscriptions)

		user.Get("/:id", optional, c.UserHandler.GetUser)
		user.Post("/:id/subscribe", authed, c.UserHandler.Subscribe)
		user.Delete("/:id/subscribe", authed, c.UserHandler.Unsubscribe)
	}
}

func (c *Config) Recipes() {
	authed := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	recipes := c.App.Group("/api/recipes")
	{
		recipes.Get("/", optional, c.RecipeHandler.GetRecipes)
		recipes.Post("/", authed, c.RecipeHandler.CreateRecipe)
		recipes.Get("/subscriptions", authed, c.RecipeHandler.GetSubscriptionRecipes)
		recipes.Get("/shopping_cart", authed, c.RecipeHandler.GetShoppingCart)
		recipes.Get("/download_shopping_cart", authed, c.RecipeHandler.DownloadShoppingCart)

		recipes.Get("/:id", optional, c.RecipeHandler.GetRecipe)
		recipes.Patch("/:id", authed, c.RecipeHandler.UpdateRecipe)
		recipes.Delete("/:id", authed, c.RecipeHandler.DeleteRecipe)
		recipes.Get("/:id/get-link", c.RecipeHandler.GetShortLink)
		recipes.Post("/:id/favorite", authed, c.RecipeHandler.AddFavorite)
		recipes.Delete("/:id/favorite", authed, c.RecipeHandler.RemoveFavorite)
		recipes.Post("/:id/shopping_cart", authed, c.RecipeHandler.AddToShoppingCart)
		recipes.Delete("/:id/shopping_cart", authed, c.RecipeHandler.RemoveFromShoppingCart)
	}

	c.App.Get("/r/:id", c.RecipeHandler.RedirectShortLink)
}

func (c *Config) Ingredients() {
	admin := []fiber.Handler{c.Middleware.AuthMiddleware(c.JWTService), c.Middleware.AdminMiddleware()}

	ingredients := c.App.Group("/api/ingredients")
	{
		ingredients.Get("/", c.IngredientHandler.GetIngredients)
		ingredients.Get("/:id", c.IngredientHandler.GetIngredient)
		ingredients.Post("/", append(admin, c.IngredientHandler.CreateIngredient)...)
		ingredients.Put("/:id", append(admin, c.IngredientHandler.UpdateIngredient)...)
		ingredients.Patch("/:id", append(admin, c.IngredientHandler.UpdateIngredient)...)
		ingredients.Delete("/:id", append(admin, c.IngredientHandler.DeleteIngredient)...)
	}
}

func (c *Config) Tags() {
	admin := []fiber.Handler{c.Middleware.AuthMiddleware(c.JWTService), c.Middleware.AdminMiddleware()}

	tags := c.App.Group("/api/tags")
	{
		tags.Get("/", c.TagHandler.GetTags)
		tags.Get("/:id", c.TagHandler.GetTag)
		tags.Post("/", append(admin, c.TagHandler.CreateTag)...)
		tags.Put("/:id", append(admin, c.TagHandler.UpdateTag)...)
		tags.Patch("/:id", append(admin, c.TagHandler.UpdateTag)...)
		tags.Delete("/:id", append(admin, c.TagHandler.DeleteTag)...)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", metrics.Handler())
}
