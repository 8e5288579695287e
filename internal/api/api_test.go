package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/api"
	"github.com/mealforge/recipe-service/internal/auth"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes

type fakeUserStore struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*domain.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, email, name, passwordHash string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return nil, repository.ErrEmailTaken
		}
	}

	s.nextID++
	user := &domain.User{ID: s.nextID, Email: email, Name: name, PasswordHash: passwordHash, IsActive: true}
	s.users[user.ID] = user

	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return user, nil
}

func (s *fakeUserStore) Update(_ context.Context, id int64, name, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.Name = name
	if passwordHash != "" {
		user.PasswordHash = passwordHash
	}

	return nil
}

type fakeTokenStore struct {
	users   *fakeUserStore
	digests map[string]int64
}

func newFakeTokenStore(users *fakeUserStore) *fakeTokenStore {
	return &fakeTokenStore{users: users, digests: map[string]int64{}}
}

func (s *fakeTokenStore) Store(_ context.Context, digest string, userID int64) error {
	s.digests[digest] = userID
	return nil
}

func (s *fakeTokenStore) LookupUser(ctx context.Context, digest string) (*domain.User, error) {
	userID, ok := s.digests[digest]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return s.users.GetByID(ctx, userID)
}

type fakeRecipeStore struct {
	nextID  int64
	recipes map[int64]*domain.Recipe
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{recipes: map[int64]*domain.Recipe{}}
}

func (s *fakeRecipeStore) Create(_ context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	s.nextID++
	stored := *recipe
	stored.ID = s.nextID
	s.recipes[stored.ID] = &stored

	return &stored, nil
}

func (s *fakeRecipeStore) Update(_ context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	existing, ok := s.recipes[recipe.ID]
	if !ok || existing.UserID != recipe.UserID {
		return nil, repository.ErrNotFound
	}

	stored := *recipe
	s.recipes[recipe.ID] = &stored

	return &stored, nil
}

func (s *fakeRecipeStore) Delete(_ context.Context, userID, recipeID int64) error {
	existing, ok := s.recipes[recipeID]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}

	delete(s.recipes, recipeID)

	return nil
}

func (s *fakeRecipeStore) ListByUser(_ context.Context, userID int64) ([]domain.Recipe, error) {
	list := make([]domain.Recipe, 0)

	for _, recipe := range s.recipes {
		if recipe.UserID == userID {
			list = append(list, *recipe)
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })

	return list, nil
}

func (s *fakeRecipeStore) GetByID(_ context.Context, userID, recipeID int64) (*domain.Recipe, error) {
	recipe, ok := s.recipes[recipeID]
	if !ok || recipe.UserID != userID {
		return nil, repository.ErrNotFound
	}

	return recipe, nil
}

type fakeCatalogStore struct {
	nextID int64
	tags   map[int64]*domain.Tag
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{tags: map[int64]*domain.Tag{}}
}

func (s *fakeCatalogStore) ListTags(_ context.Context, userID int64) ([]domain.Tag, error) {
	list := make([]domain.Tag, 0)

	for _, tag := range s.tags {
		if tag.UserID == userID {
			list = append(list, *tag)
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list, nil
}

func (s *fakeCatalogStore) CreateTag(_ context.Context, userID int64, name string) (*domain.Tag, error) {
	for _, tag := range s.tags {
		if tag.UserID == userID && tag.Name == name {
			return nil, repository.ErrDuplicateName
		}
	}

	s.nextID++
	tag := &domain.Tag{ID: s.nextID, UserID: userID, Name: name}
	s.tags[tag.ID] = tag

	return tag, nil
}

func (s *fakeCatalogStore) RenameTag(_ context.Context, userID, tagID int64, name string) error {
	tag, ok := s.tags[tagID]
	if !ok || tag.UserID != userID {
		return repository.ErrNotFound
	}

	tag.Name = name

	return nil
}

func (s *fakeCatalogStore) DeleteTag(_ context.Context, userID, tagID int64) error {
	tag, ok := s.tags[tagID]
	if !ok || tag.UserID != userID {
		return repository.ErrNotFound
	}

	delete(s.tags, tagID)

	return nil
}

func (s *fakeCatalogStore) ListIngredients(context.Context, int64) ([]domain.Ingredient, error) {
	return nil, nil
}

func (s *fakeCatalogStore) CreateIngredient(context.Context, int64, string) (*domain.Ingredient, error) {
	return nil, repository.ErrDuplicateName
}

func (s *fakeCatalogStore) RenameIngredient(context.Context, int64, int64, string) error {
	return repository.ErrNotFound
}

func (s *fakeCatalogStore) DeleteIngredient(context.Context, int64, int64) error {
	return repository.ErrNotFound
}

type fakeEventPublisher struct {
	created int
	updated int
	deleted int
}

func (p *fakeEventPublisher) RecipeCreated(context.Context, *domain.Recipe) { p.created++ }
func (p *fakeEventPublisher) RecipeUpdated(context.Context, *domain.Recipe) { p.updated++ }
func (p *fakeEventPublisher) RecipeDeleted(context.Context, int64, int64)   { p.deleted++ }

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

// Test app wiring

type testApp struct {
	app     *fiber.App
	users   *fakeUserStore
	tokens  *fakeTokenStore
	recipes *fakeRecipeStore
	catalog *fakeCatalogStore
	events  *fakeEventPublisher
	pinger  *fakePinger
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := newFakeUserStore()
	tokens := newFakeTokenStore(users)
	recipes := newFakeRecipeStore()
	catalog := newFakeCatalogStore()
	events := &fakeEventPublisher{}
	pinger := &fakePinger{}

	app := fiber.New()

	api.RegisterRoutes(app, api.Handlers{
		Users:   api.NewUserHandler(users, tokens),
		Recipes: api.NewRecipeHandler(recipes, events),
		Catalog: api.NewCatalogHandler(catalog),
		Health:  api.NewHealthHandler(pinger),
		Tokens:  tokens,
	})

	return &testApp{app: app, users: users, tokens: tokens, recipes: recipes, catalog: catalog, events: events, pinger: pinger}
}

func (ta *testApp) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T

	err := json.NewDecoder(resp.Body).Decode(&out)
	require.NoError(t, err)

	return out
}

// registerAndLogin - create a user through the API and return a usable token.
func (ta *testApp) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp := ta.request(t, http.MethodPost, "/api/user/", "", fiber.Map{
		"email":    email,
		"password": "secret-pass",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ta.request(t, http.MethodPost, "/api/user/token/", "", fiber.Map{
		"email":    email,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	require.NotEmpty(t, body["token"])

	return body["token"]
}

func TestUserRegistration(t *testing.T) {
	ta := newTestApp(t)

	t.Run("creates user and never echoes the password", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "secret-pass",
			"name":     "Alice",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Equal(t, "alice@example.com", body["email"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "password_hash")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "secret-pass",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects short password", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/", "", fiber.Map{
			"email":    "bob@example.com",
			"password": "pw",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTokenIssuing(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodPost, "/api/user/", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("rejects wrong password", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/token/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/token/", "", fiber.Map{
			"email":    "ghost@example.com",
			"password": "secret-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("issues opaque token for valid credentials", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/user/token/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "secret-pass",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[map[string]string](t, resp)
		assert.Len(t, body["token"], 32)

		// only the digest is stored
		_, stored := ta.tokens.digests[body["token"]]
		assert.False(t, stored)
		_, stored = ta.tokens.digests[auth.DigestToken(body["token"])]
		assert.True(t, stored)
	})
}

func TestAuthMiddleware(t *testing.T) {
	ta := newTestApp(t)
	token := ta.registerAndLogin(t, "alice@example.com")

	t.Run("rejects missing header", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/api/user/me/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/api/user/me/", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts valid token", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/api/user/me/", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Equal(t, "alice@example.com", body["email"])
	})

	t.Run("profile update", func(t *testing.T) {
		resp := ta.request(t, http.MethodPatch, "/api/user/me/", token, fiber.Map{
			"name": "Alice Renamed",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Equal(t, "Alice Renamed", body["name"])
	})
}

func TestRecipeEndpoints(t *testing.T) {
	ta := newTestApp(t)
	token := ta.registerAndLogin(t, "cook@example.com")
	otherToken := ta.registerAndLogin(t, "other@example.com")

	var recipeID float64

	t.Run("create publishes event", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/recipe/recipes/", token, fiber.Map{
			"title":        "Carbonara",
			"time_minutes": 25,
			"price":        "12.50",
			"tags":         []fiber.Map{{"name": "pasta"}},
			"ingredients":  []fiber.Map{{"name": "eggs"}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, 1, ta.events.created)

		body := decode[map[string]any](t, resp)
		recipeID = body["id"].(float64)
		assert.Equal(t, "Carbonara", body["title"])
	})

	t.Run("create rejects missing title", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/recipe/recipes/", token, fiber.Map{
			"time_minutes": 10,
			"price":        "5.00",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("recipes are invisible to other users", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/api/recipe/recipes/", otherToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decode[[]map[string]any](t, resp)
		assert.Empty(t, list)
	})

	t.Run("update and delete", func(t *testing.T) {
		path := "/api/recipe/recipes/" + itoa(recipeID)

		resp := ta.request(t, http.MethodPut, path, token, fiber.Map{
			"title":        "Carbonara v2",
			"time_minutes": 20,
			"price":        "13.00",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, ta.events.updated)

		resp = ta.request(t, http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, 1, ta.events.deleted)

		resp = ta.request(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTagEndpoints(t *testing.T) {
	ta := newTestApp(t)
	token := ta.registerAndLogin(t, "cook@example.com")

	resp := ta.request(t, http.MethodPost, "/api/recipe/tags/", token, fiber.Map{"name": "vegan"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tag := decode[map[string]any](t, resp)

	t.Run("duplicate name rejected", func(t *testing.T) {
		resp := ta.request(t, http.MethodPost, "/api/recipe/tags/", token, fiber.Map{"name": "vegan"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list rename delete", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/api/recipe/tags/", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]map[string]any](t, resp), 1)

		path := "/api/recipe/tags/" + itoa(tag["id"].(float64))

		resp = ta.request(t, http.MethodPatch, path, token, fiber.Map{"name": "plant-based"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = ta.request(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = ta.request(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp(t)

	t.Run("reports up", func(t *testing.T) {
		resp := ta.request(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Equal(t, "up", body["status"])
	})

	t.Run("reports down when the database is unreachable", func(t *testing.T) {
		ta.pinger.err = errors.New("connection refused")
		defer func() { ta.pinger.err = nil }()

		resp := ta.request(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Equal(t, "down", body["components"].(map[string]any)["database"])
	})
}

func itoa(id float64) string {
	return strconv.Itoa(int(id))
}
