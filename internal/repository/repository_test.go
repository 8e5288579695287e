package repository_test

import (
	"context"
	"testing"

	"github.com/mealforge/recipe-service/internal/auth"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/mealforge/recipe-service/test/testcontainer/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDb(t *testing.T) (context.Context, dbx.InstanceManager) {
	t.Helper()

	ctx := context.Background()

	container := postgres.StartPostgresContainer(ctx, t, nil)
	db := postgres.SetupDatabaseConnection(ctx, container)

	t.Cleanup(func() {
		db.CloseDbConnPool()
		_ = container.StopContainer(ctx, t)
	})

	return ctx, db
}

func createUser(ctx context.Context, t *testing.T, users *repository.UserRepository, email string) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword("test-pass")
	require.NoError(t, err)

	user, err := users.Create(ctx, email, "Test User", hash)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	return user
}

func TestUserAndTokenRepositories(t *testing.T) {
	ctx, db := setupDb(t)

	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)

	user := createUser(ctx, t, users, "alice@example.com")
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := users.Create(ctx, "alice@example.com", "Other", user.PasswordHash)
		assert.ErrorIs(t, err, repository.ErrEmailTaken)
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.Email)

		_, err = users.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		err := users.Update(ctx, user.ID, "Alice Renamed", "")
		require.NoError(t, err)

		updated, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Renamed", updated.Name)
		assert.Equal(t, user.PasswordHash, updated.PasswordHash)

		err = users.Update(ctx, 99999, "Ghost", "")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("token round trip", func(t *testing.T) {
		token := auth.NewToken()
		digest := auth.DigestToken(token)

		err := tokens.Store(ctx, digest, user.ID)
		require.NoError(t, err)

		owner, err := tokens.LookupUser(ctx, digest)
		require.NoError(t, err)
		assert.Equal(t, user.ID, owner.ID)

		_, err = tokens.LookupUser(ctx, auth.DigestToken(auth.NewToken()))
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = tokens.Revoke(ctx, user.ID)
		require.NoError(t, err)

		_, err = tokens.LookupUser(ctx, digest)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRecipeRepository(t *testing.T) {
	ctx, db := setupDb(t)

	users := repository.NewUserRepository(db)
	recipes := repository.NewRecipeRepository(db)

	owner := createUser(ctx, t, users, "cook@example.com")
	stranger := createUser(ctx, t, users, "stranger@example.com")

	created, err := recipes.Create(ctx, &domain.Recipe{
		UserID:      owner.ID,
		Title:       "Carbonara",
		TimeMinutes: 25,
		Description: "Roman classic",
		Price:       "12.50",
		Link:        "https://example.com/carbonara",
		Tags:        []domain.Tag{{Name: "pasta"}, {Name: "dinner"}},
		Ingredients: []domain.Ingredient{{Name: "eggs"}, {Name: "guanciale"}},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	t.Run("get by id with attachments", func(t *testing.T) {
		got, err := recipes.GetByID(ctx, owner.ID, created.ID)
		require.NoError(t, err)

		assert.Equal(t, "Carbonara", got.Title)
		assert.Equal(t, "12.50", got.Price)
		require.Len(t, got.Tags, 2)
		require.Len(t, got.Ingredients, 2)
		// listLinked sorts by name
		assert.Equal(t, "dinner", got.Tags[0].Name)
		assert.Equal(t, "eggs", got.Ingredients[0].Name)
	})

	t.Run("recipes are user scoped", func(t *testing.T) {
		_, err := recipes.GetByID(ctx, stranger.ID, created.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		list, err := recipes.ListByUser(ctx, stranger.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("list newest first", func(t *testing.T) {
		second, err := recipes.Create(ctx, &domain.Recipe{
			UserID: owner.ID,
			Title:  "Cacio e Pepe",
			Price:  "9.00",
		})
		require.NoError(t, err)

		list, err := recipes.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, created.ID, list[1].ID)
	})

	t.Run("update replaces attachments", func(t *testing.T) {
		updated, err := recipes.Update(ctx, &domain.Recipe{
			ID:          created.ID,
			UserID:      owner.ID,
			Title:       "Carbonara (improved)",
			TimeMinutes: 20,
			Price:       "13.00",
			Tags:        []domain.Tag{{Name: "pasta"}},
			Ingredients: []domain.Ingredient{{Name: "eggs"}, {Name: "pecorino"}},
		})
		require.NoError(t, err)

		assert.Equal(t, "Carbonara (improved)", updated.Title)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, "pasta", updated.Tags[0].Name)
		require.Len(t, updated.Ingredients, 2)
	})

	t.Run("update of foreign recipe fails", func(t *testing.T) {
		_, err := recipes.Update(ctx, &domain.Recipe{
			ID:     created.ID,
			UserID: stranger.ID,
			Title:  "Hijacked",
			Price:  "0.00",
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		err := recipes.Delete(ctx, stranger.ID, created.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = recipes.Delete(ctx, owner.ID, created.ID)
		require.NoError(t, err)

		_, err = recipes.GetByID(ctx, owner.ID, created.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCatalogRepository(t *testing.T) {
	ctx, db := setupDb(t)

	users := repository.NewUserRepository(db)
	catalog := repository.NewCatalogRepository(db)

	owner := createUser(ctx, t, users, "catalog@example.com")
	other := createUser(ctx, t, users, "other@example.com")

	tag, err := catalog.CreateTag(ctx, owner.ID, "vegan")
	require.NoError(t, err)
	require.NotZero(t, tag.ID)

	t.Run("duplicate name per user is rejected", func(t *testing.T) {
		_, err := catalog.CreateTag(ctx, owner.ID, "vegan")
		assert.ErrorIs(t, err, repository.ErrDuplicateName)

		// same name under another user is fine
		_, err = catalog.CreateTag(ctx, other.ID, "vegan")
		assert.NoError(t, err)
	})

	t.Run("list is sorted and user scoped", func(t *testing.T) {
		_, err := catalog.CreateTag(ctx, owner.ID, "breakfast")
		require.NoError(t, err)

		tags, err := catalog.ListTags(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "breakfast", tags[0].Name)
		assert.Equal(t, "vegan", tags[1].Name)
	})

	t.Run("rename", func(t *testing.T) {
		err := catalog.RenameTag(ctx, owner.ID, tag.ID, "plant-based")
		require.NoError(t, err)

		err = catalog.RenameTag(ctx, other.ID, tag.ID, "stolen")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		err := catalog.DeleteTag(ctx, owner.ID, tag.ID)
		require.NoError(t, err)

		err = catalog.DeleteTag(ctx, owner.ID, tag.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ingredients share the catalog contract", func(t *testing.T) {
		ingredient, err := catalog.CreateIngredient(ctx, owner.ID, "salt")
		require.NoError(t, err)

		_, err = catalog.CreateIngredient(ctx, owner.ID, "salt")
		assert.ErrorIs(t, err, repository.ErrDuplicateName)

		err = catalog.RenameIngredient(ctx, owner.ID, ingredient.ID, "sea salt")
		require.NoError(t, err)

		ingredients, err := catalog.ListIngredients(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, ingredients, 1)
		assert.Equal(t, "sea salt", ingredients[0].Name)

		err = catalog.DeleteIngredient(ctx, owner.ID, ingredient.ID)
		require.NoError(t, err)
	})
}
