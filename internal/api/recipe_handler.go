package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/pkg/validator"
	"github.com/pkg/errors"
)

// RecipeHandler - CRUD over the authenticated user's recipes.
type RecipeHandler struct {
	recipes  RecipeStore
	events   EventPublisher
	validate *validator.Validator
}

// NewRecipeHandler - RecipeHandler constructor.
func NewRecipeHandler(recipes RecipeStore, events EventPublisher) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, events: events, validate: validator.NewValidator()}
}

// List - GET /api/recipe/recipes/
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	recipes, err := h.recipes.ListByUser(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return internalError(c, "Error listing recipes", err)
	}

	resp := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		resp = append(resp, toRecipeResponse(&recipes[i]))
	}

	return c.JSON(resp)
}

// Get - GET /api/recipe/recipes/:id
func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid recipe id")
	}

	recipe, err := h.recipes.GetByID(c.UserContext(), currentUser(c).ID, int64(recipeID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}

		return internalError(c, "Error loading recipe", err)
	}

	return c.JSON(toRecipeResponse(recipe))
}

// Create - POST /api/recipe/recipes/
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var req recipeRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	recipe, err := h.recipes.Create(c.UserContext(), req.toDomain(currentUser(c).ID))
	if err != nil {
		return internalError(c, "Error creating recipe", err)
	}

	h.events.RecipeCreated(c.UserContext(), recipe)

	return c.Status(fiber.StatusCreated).JSON(toRecipeResponse(recipe))
}

// Update - PUT /api/recipe/recipes/:id
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid recipe id")
	}

	var req recipeRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	recipe := req.toDomain(currentUser(c).ID)
	recipe.ID = int64(recipeID)

	updated, err := h.recipes.Update(c.UserContext(), recipe)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}

		return internalError(c, "Error updating recipe", err)
	}

	h.events.RecipeUpdated(c.UserContext(), updated)

	return c.JSON(toRecipeResponse(updated))
}

// Delete - DELETE /api/recipe/recipes/:id
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid recipe id")
	}

	userID := currentUser(c).ID

	err = h.recipes.Delete(c.UserContext(), userID, int64(recipeID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}

		return internalError(c, "Error deleting recipe", err)
	}

	h.events.RecipeDeleted(c.UserContext(), userID, int64(recipeID))

	return c.SendStatus(fiber.StatusNoContent)
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "not found"})
}
