package api

import (
	"context"

	"github.com/mealforge/recipe-service/internal/domain"
)

// UserStore - user persistence as seen by the handlers.
type UserStore interface {
	Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, name, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TokenStore - token persistence as seen by the handlers and middleware.
type TokenStore interface {
	Store(ctx context.Context, digest string, userID int64) error
	LookupUser(ctx context.Context, digest string) (*domain.User, error)
}

// RecipeStore - recipe persistence as seen by the handlers.
type RecipeStore interface {
	Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error)
	Delete(ctx context.Context, userID, recipeID int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Recipe, error)
	GetByID(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error)
}

// CatalogStore - tag and ingredient persistence as seen by the handlers.
type CatalogStore interface {
	ListTags(ctx context.Context, userID int64) ([]domain.Tag, error)
	CreateTag(ctx context.Context, userID int64, name string) (*domain.Tag, error)
	RenameTag(ctx context.Context, userID, tagID int64, name string) error
	DeleteTag(ctx context.Context, userID, tagID int64) error
	ListIngredients(ctx context.Context, userID int64) ([]domain.Ingredient, error)
	CreateIngredient(ctx context.Context, userID int64, name string) (*domain.Ingredient, error)
	RenameIngredient(ctx context.Context, userID, ingredientID int64, name string) error
	DeleteIngredient(ctx context.Context, userID, ingredientID int64) error
}

// EventPublisher - downstream notification of recipe changes. Publishing is
// best effort and never fails a request.
type EventPublisher interface {
	RecipeCreated(ctx context.Context, recipe *domain.Recipe)
	RecipeUpdated(ctx context.Context, recipe *domain.Recipe)
	RecipeDeleted(ctx context.Context, userID, recipeID int64)
}
