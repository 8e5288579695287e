package api

import (
	"time"

	"github.com/mealforge/recipe-service/internal/domain"
)

// Requests

type registerUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name"`
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" validate:"omitempty,min=5"`
}

type namedItemRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type recipeRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	TimeMinutes int                `json:"time_minutes" validate:"required,min=1"`
	Description string             `json:"description"`
	Price       string             `json:"price" validate:"required,numeric"`
	Link        string             `json:"link" validate:"omitempty,url"`
	Tags        []namedItemRequest `json:"tags" validate:"dive"`
	Ingredients []namedItemRequest `json:"ingredients" validate:"dive"`
}

func (r *recipeRequest) toDomain(userID int64) *domain.Recipe {
	recipe := &domain.Recipe{
		UserID:      userID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Description: r.Description,
		Price:       r.Price,
		Link:        r.Link,
	}

	for _, tag := range r.Tags {
		recipe.Tags = append(recipe.Tags, domain.Tag{Name: tag.Name})
	}

	for _, ingredient := range r.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, domain.Ingredient{Name: ingredient.Name})
	}

	return recipe
}

// Responses

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type namedItemResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Description string              `json:"description"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Tags        []namedItemResponse `json:"tags"`
	Ingredients []namedItemResponse `json:"ingredients"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toRecipeResponse(recipe *domain.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Description: recipe.Description,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Tags:        make([]namedItemResponse, 0, len(recipe.Tags)),
		Ingredients: make([]namedItemResponse, 0, len(recipe.Ingredients)),
		CreatedAt:   recipe.CreatedAt,
	}

	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, namedItemResponse{ID: tag.ID, Name: tag.Name})
	}

	for _, ingredient := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, namedItemResponse{ID: ingredient.ID, Name: ingredient.Name})
	}

	return resp
}
