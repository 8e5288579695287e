package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/pkg/errors"
)

// RecipeRepository - Postgres persistence for recipes and their tag and
// ingredient attachments. All reads and writes are scoped to the owning user.
type RecipeRepository struct {
	db dbx.InstanceManager
}

// NewRecipeRepository - RecipeRepository constructor.
func NewRecipeRepository(db dbx.InstanceManager) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create - insert a recipe and attach its tags and ingredients atomically.
// Tags and ingredients are created on first use and reused by (user, name).
func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	tx, err := r.db.TxBegin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.TxRollback(ctx)

	query := `INSERT INTO recipes (user_id, title, time_minutes, description, price, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	rows, err := tx.TxQuery(ctx, query, recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Description, recipe.Price, recipe.Link)
	if err != nil {
		return nil, errors.Wrap(err, "error inserting recipe")
	}

	created := *recipe

	err = scanSingle(rows.(pgx.Rows), &created.ID, &created.CreatedAt)
	if err != nil {
		return nil, err
	}

	err = r.attach(ctx, tx, &created)
	if err != nil {
		return nil, err
	}

	err = tx.TxCommit(ctx)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Update - replace a recipe's fields and attachments. Returns ErrNotFound
// when the recipe does not exist or belongs to another user.
func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	tx, err := r.db.TxBegin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.TxRollback(ctx)

	query := `UPDATE recipes
		SET title = $1, time_minutes = $2, description = $3, price = $4, link = $5
		WHERE id = $6 AND user_id = $7`

	affected, err := tx.TxExec(ctx, query, recipe.Title, recipe.TimeMinutes, recipe.Description, recipe.Price, recipe.Link, recipe.ID, recipe.UserID)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		return nil, ErrNotFound
	}

	_, err = tx.TxExec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID)
	if err != nil {
		return nil, err
	}

	_, err = tx.TxExec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID)
	if err != nil {
		return nil, err
	}

	updated := *recipe

	err = r.attach(ctx, tx, &updated)
	if err != nil {
		return nil, err
	}

	err = tx.TxCommit(ctx)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, recipe.UserID, recipe.ID)
}

// Delete - remove a recipe owned by the user. Join rows go with it via
// ON DELETE CASCADE.
func (r *RecipeRepository) Delete(ctx context.Context, userID, recipeID int64) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, recipeID, userID)
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

const recipeColumns = `id, user_id, title, time_minutes, description, price::text, link, created_at`

// ListByUser - all recipes owned by the user, newest first.
func (r *RecipeRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = $1 ORDER BY id DESC`

	conn, rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "error listing recipes")
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	recipes := make([]domain.Recipe, 0)

	for rows.(pgx.Rows).Next() {
		var recipe domain.Recipe

		err = scanRecipe(rows.(pgx.Rows), &recipe)
		if err != nil {
			return nil, err
		}

		recipes = append(recipes, recipe)
	}

	if err = rows.(pgx.Rows).Err(); err != nil {
		return nil, errors.Wrap(err, "error reading recipe rows")
	}

	for i := range recipes {
		err = r.loadAttachments(ctx, &recipes[i])
		if err != nil {
			return nil, err
		}
	}

	return recipes, nil
}

// GetByID - one recipe with its attachments. Returns ErrNotFound when the
// recipe does not exist or belongs to another user.
func (r *RecipeRepository) GetByID(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1 AND user_id = $2`

	conn, rows, err := r.db.Query(ctx, query, recipeID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "error querying recipe")
	}

	var recipe domain.Recipe

	func() {
		defer conn.(*pgxpool.Conn).Release()
		defer rows.(pgx.Rows).Close()

		if !rows.(pgx.Rows).Next() {
			err = rows.(pgx.Rows).Err()
			if err == nil {
				err = ErrNotFound
			}

			return
		}

		err = scanRecipe(rows.(pgx.Rows), &recipe)
	}()

	if err != nil {
		return nil, err
	}

	err = r.loadAttachments(ctx, &recipe)
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

// attach - upsert the recipe's tags and ingredients by (user, name) and link
// them to the recipe inside the caller's transaction.
func (r *RecipeRepository) attach(ctx context.Context, tx dbx.Transaction, recipe *domain.Recipe) error {
	for i, tag := range recipe.Tags {
		id, err := upsertNamed(ctx, tx, "tags", recipe.UserID, tag.Name)
		if err != nil {
			return err
		}

		_, err = tx.TxExec(ctx, `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, recipe.ID, id)
		if err != nil {
			return err
		}

		recipe.Tags[i].ID = id
		recipe.Tags[i].UserID = recipe.UserID
	}

	for i, ingredient := range recipe.Ingredients {
		id, err := upsertNamed(ctx, tx, "ingredients", recipe.UserID, ingredient.Name)
		if err != nil {
			return err
		}

		_, err = tx.TxExec(ctx, `INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, recipe.ID, id)
		if err != nil {
			return err
		}

		recipe.Ingredients[i].ID = id
		recipe.Ingredients[i].UserID = recipe.UserID
	}

	return nil
}

func (r *RecipeRepository) loadAttachments(ctx context.Context, recipe *domain.Recipe) error {
	tags, err := r.listLinked(ctx, "tags", "recipe_tags", "tag_id", recipe.ID)
	if err != nil {
		return err
	}

	ingredients, err := r.listLinked(ctx, "ingredients", "recipe_ingredients", "ingredient_id", recipe.ID)
	if err != nil {
		return err
	}

	recipe.Tags = make([]domain.Tag, len(tags))
	for i, item := range tags {
		recipe.Tags[i] = domain.Tag(item)
	}

	recipe.Ingredients = make([]domain.Ingredient, len(ingredients))
	for i, item := range ingredients {
		recipe.Ingredients[i] = domain.Ingredient(item)
	}

	return nil
}

type namedItem struct {
	ID     int64
	UserID int64
	Name   string
}

func (r *RecipeRepository) listLinked(ctx context.Context, table, joinTable, joinColumn string, recipeID int64) ([]namedItem, error) {
	query := `SELECT t.id, t.user_id, t.name FROM ` + table + ` t
		JOIN ` + joinTable + ` j ON j.` + joinColumn + ` = t.id
		WHERE j.recipe_id = $1
		ORDER BY t.name`

	conn, rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing linked %s", table)
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	return scanNamedItems(rows.(pgx.Rows))
}

// upsertNamed - insert a (user, name) row into tags or ingredients, or reuse
// the existing one. The no-op update makes RETURNING yield the id either way.
func upsertNamed(ctx context.Context, tx dbx.Transaction, table string, userID int64, name string) (int64, error) {
	query := `INSERT INTO ` + table + ` (user_id, name) VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	rows, err := tx.TxQuery(ctx, query, userID, name)
	if err != nil {
		return 0, errors.Wrapf(err, "error upserting into %s", table)
	}

	var id int64

	err = scanSingle(rows.(pgx.Rows), &id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func scanRecipe(rows pgx.Rows, recipe *domain.Recipe) error {
	err := rows.Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.TimeMinutes, &recipe.Description, &recipe.Price, &recipe.Link, &recipe.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "error scanning recipe row")
	}

	return nil
}

func scanNamedItems(rows pgx.Rows) ([]namedItem, error) {
	items := make([]namedItem, 0)

	for rows.Next() {
		var item namedItem

		err := rows.Scan(&item.ID, &item.UserID, &item.Name)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading rows")
	}

	return items, nil
}

// scanSingle - scan exactly one row and close the cursor.
func scanSingle(rows pgx.Rows, dest ...any) error {
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return errors.Wrap(err, "error reading row")
		}

		return ErrNotFound
	}

	err := rows.Scan(dest...)
	if err != nil {
		return errors.Wrap(err, "error scanning row")
	}

	return nil
}
