package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/pkg/validator"
	"github.com/pkg/errors"
)

// CatalogHandler - CRUD over the authenticated user's tags and ingredients.
// Both resources share the same shape, so the handlers are parameterized over
// a small set of store callbacks.
type CatalogHandler struct {
	catalog  CatalogStore
	validate *validator.Validator
}

// NewCatalogHandler - CatalogHandler constructor.
func NewCatalogHandler(catalog CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, validate: validator.NewValidator()}
}

// ListTags - GET /api/recipe/tags/
func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.catalog.ListTags(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return internalError(c, "Error listing tags", err)
	}

	resp := make([]namedItemResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, namedItemResponse{ID: tag.ID, Name: tag.Name})
	}

	return c.JSON(resp)
}

// CreateTag - POST /api/recipe/tags/
func (h *CatalogHandler) CreateTag(c *fiber.Ctx) error {
	return h.create(c, func(c *fiber.Ctx, name string) (namedItemResponse, error) {
		tag, err := h.catalog.CreateTag(c.UserContext(), currentUser(c).ID, name)
		if err != nil {
			return namedItemResponse{}, err
		}

		return namedItemResponse{ID: tag.ID, Name: tag.Name}, nil
	})
}

// RenameTag - PATCH /api/recipe/tags/:id
func (h *CatalogHandler) RenameTag(c *fiber.Ctx) error {
	return h.rename(c, h.catalog.RenameTag)
}

// DeleteTag - DELETE /api/recipe/tags/:id
func (h *CatalogHandler) DeleteTag(c *fiber.Ctx) error {
	return h.delete(c, h.catalog.DeleteTag)
}

// ListIngredients - GET /api/recipe/ingredients/
func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := h.catalog.ListIngredients(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return internalError(c, "Error listing ingredients", err)
	}

	resp := make([]namedItemResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		resp = append(resp, namedItemResponse{ID: ingredient.ID, Name: ingredient.Name})
	}

	return c.JSON(resp)
}

// CreateIngredient - POST /api/recipe/ingredients/
func (h *CatalogHandler) CreateIngredient(c *fiber.Ctx) error {
	return h.create(c, func(c *fiber.Ctx, name string) (namedItemResponse, error) {
		ingredient, err := h.catalog.CreateIngredient(c.UserContext(), currentUser(c).ID, name)
		if err != nil {
			return namedItemResponse{}, err
		}

		return namedItemResponse{ID: ingredient.ID, Name: ingredient.Name}, nil
	})
}

// RenameIngredient - PATCH /api/recipe/ingredients/:id
func (h *CatalogHandler) RenameIngredient(c *fiber.Ctx) error {
	return h.rename(c, h.catalog.RenameIngredient)
}

// DeleteIngredient - DELETE /api/recipe/ingredients/:id
func (h *CatalogHandler) DeleteIngredient(c *fiber.Ctx) error {
	return h.delete(c, h.catalog.DeleteIngredient)
}

func (h *CatalogHandler) create(c *fiber.Ctx, createFn func(*fiber.Ctx, string) (namedItemResponse, error)) error {
	var req namedItemRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	resp, err := createFn(c, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return badRequest(c, "name already in use")
		}

		return internalError(c, "Error creating catalog item", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CatalogHandler) rename(c *fiber.Ctx, renameFn func(ctx context.Context, userID, id int64, name string) error) error {
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req namedItemRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	err = renameFn(c.UserContext(), currentUser(c).ID, int64(itemID), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c)
		case errors.Is(err, repository.ErrDuplicateName):
			return badRequest(c, "name already in use")
		default:
			return internalError(c, "Error renaming catalog item", err)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *CatalogHandler) delete(c *fiber.Ctx, deleteFn func(ctx context.Context, userID, id int64) error) error {
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid id")
	}

	err = deleteFn(c.UserContext(), currentUser(c).ID, int64(itemID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}

		return internalError(c, "Error deleting catalog item", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
