package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/auth"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/pkg/errors"
)

const (
	authScheme    = "Token"
	localsUserKey = "authenticated-user"
)

// TokenAuth - middleware resolving "Authorization: Token <key>" headers to a
// user. Requests without a valid token get 401 before reaching the handler.
func TokenAuth(tokens TokenStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		scheme, key, found := strings.Cut(header, " ")
		if !found || scheme != authScheme || key == "" {
			return unauthorized(c, "missing or malformed authorization header")
		}

		user, err := tokens.LookupUser(c.UserContext(), auth.DigestToken(key))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return unauthorized(c, "invalid token")
			}

			logx.GetLogger().LogError(c.UserContext(), "Error resolving auth token", err)

			return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
		}

		c.Locals(localsUserKey, user)

		return c.Next()
	}
}

// currentUser - the user stored by TokenAuth. Panics when called outside an
// authenticated route group.
func currentUser(c *fiber.Ctx) *domain.User {
	return c.Locals(localsUserKey).(*domain.User)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: msg})
}
