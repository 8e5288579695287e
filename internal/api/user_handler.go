package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/auth"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/mealforge/recipe-service/pkg/validator"
	"github.com/pkg/errors"
)

// UserHandler - registration, token issuing and profile management.
type UserHandler struct {
	users    UserStore
	tokens   TokenStore
	validate *validator.Validator
}

// NewUserHandler - UserHandler constructor.
func NewUserHandler(users UserStore, tokens TokenStore) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, validate: validator.NewValidator()}
}

// Register - POST /api/user/
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerUserRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return internalError(c, "Error hashing password", err)
	}

	user, err := h.users.Create(c.UserContext(), req.Email, req.Name, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: "email already registered"})
		}

		return internalError(c, "Error creating user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// IssueToken - POST /api/user/token/
func (h *UserHandler) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	user, err := h.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c, "invalid credentials")
		}

		return internalError(c, "Error loading user for token request", err)
	}

	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return unauthorized(c, "invalid credentials")
	}

	token := auth.NewToken()

	err = h.tokens.Store(c.UserContext(), auth.DigestToken(token), user.ID)
	if err != nil {
		return internalError(c, "Error storing auth token", err)
	}

	return c.JSON(tokenResponse{Token: token})
}

// Me - GET /api/user/me/
func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.JSON(toUserResponse(currentUser(c)))
}

// UpdateMe - PATCH /api/user/me/
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req updateProfileRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if valErrors := h.validate.ValidateStruct(req); valErrors != nil {
		return validationFailed(c, valErrors)
	}

	user := currentUser(c)

	name := user.Name
	if req.Name != "" {
		name = req.Name
	}

	var hash string

	if req.Password != "" {
		var err error

		hash, err = auth.HashPassword(req.Password)
		if err != nil {
			return internalError(c, "Error hashing password", err)
		}
	}

	err := h.users.Update(c.UserContext(), user.ID, name, hash)
	if err != nil {
		return internalError(c, "Error updating profile", err)
	}

	updated, err := h.users.GetByID(c.UserContext(), user.ID)
	if err != nil {
		return internalError(c, "Error reloading profile", err)
	}

	return c.JSON(toUserResponse(updated))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

func validationFailed(c *fiber.Ctx, details []*validator.ValidationErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "validation failed", Details: details})
}

func internalError(c *fiber.Ctx, logMsg string, err error) error {
	logx.GetLogger().LogError(c.UserContext(), logMsg, err)
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
}
