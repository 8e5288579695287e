package api

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers - everything RegisterRoutes needs to mount the API.
type Handlers struct {
	Users   *UserHandler
	Recipes *RecipeHandler
	Catalog *CatalogHandler
	Health  *HealthHandler
	Tokens  TokenStore
}

// RegisterRoutes - mount the public and authenticated route groups.
//
// Registration and token issuing are the only unauthenticated API routes;
// everything else sits behind the token middleware.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.Check)

	user := app.Group("/api/user")
	user.Post("/", h.Users.Register)
	user.Post("/token/", h.Users.IssueToken)

	me := user.Group("/me", TokenAuth(h.Tokens))
	me.Get("/", h.Users.Me)
	me.Patch("/", h.Users.UpdateMe)

	recipe := app.Group("/api/recipe", TokenAuth(h.Tokens))

	recipes := recipe.Group("/recipes")
	recipes.Get("/", h.Recipes.List)
	recipes.Post("/", h.Recipes.Create)
	recipes.Get("/:id", h.Recipes.Get)
	recipes.Put("/:id", h.Recipes.Update)
	recipes.Patch("/:id", h.Recipes.Update)
	recipes.Delete("/:id", h.Recipes.Delete)

	tags := recipe.Group("/tags")
	tags.Get("/", h.Catalog.ListTags)
	tags.Post("/", h.Catalog.CreateTag)
	tags.Patch("/:id", h.Catalog.RenameTag)
	tags.Delete("/:id", h.Catalog.DeleteTag)

	ingredients := recipe.Group("/ingredients")
	ingredients.Get("/", h.Catalog.ListIngredients)
	ingredients.Post("/", h.Catalog.CreateIngredient)
	ingredients.Patch("/:id", h.Catalog.RenameIngredient)
	ingredients.Delete("/:id", h.Catalog.DeleteIngredient)
}
