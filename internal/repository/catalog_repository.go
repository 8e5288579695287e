package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/pkg/errors"
)

// CatalogRepository - Postgres persistence for the per-user tag and
// ingredient catalogs. Both tables share the same shape, so the queries are
// generic over the table name.
type CatalogRepository struct {
	db dbx.InstanceManager
}

// NewCatalogRepository - CatalogRepository constructor.
func NewCatalogRepository(db dbx.InstanceManager) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListTags - all tags owned by the user, sorted by name.
func (r *CatalogRepository) ListTags(ctx context.Context, userID int64) ([]domain.Tag, error) {
	items, err := r.list(ctx, "tags", userID)
	if err != nil {
		return nil, err
	}

	tags := make([]domain.Tag, len(items))
	for i, item := range items {
		tags[i] = domain.Tag(item)
	}

	return tags, nil
}

// ListIngredients - all ingredients owned by the user, sorted by name.
func (r *CatalogRepository) ListIngredients(ctx context.Context, userID int64) ([]domain.Ingredient, error) {
	items, err := r.list(ctx, "ingredients", userID)
	if err != nil {
		return nil, err
	}

	ingredients := make([]domain.Ingredient, len(items))
	for i, item := range items {
		ingredients[i] = domain.Ingredient(item)
	}

	return ingredients, nil
}

// CreateTag - insert a tag. Returns ErrDuplicateName when the user already
// has a tag with that name.
func (r *CatalogRepository) CreateTag(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	item, err := r.create(ctx, "tags", userID, name)
	if err != nil {
		return nil, err
	}

	tag := domain.Tag(*item)

	return &tag, nil
}

// CreateIngredient - insert an ingredient. Returns ErrDuplicateName when the
// user already has an ingredient with that name.
func (r *CatalogRepository) CreateIngredient(ctx context.Context, userID int64, name string) (*domain.Ingredient, error) {
	item, err := r.create(ctx, "ingredients", userID, name)
	if err != nil {
		return nil, err
	}

	ingredient := domain.Ingredient(*item)

	return &ingredient, nil
}

// RenameTag - change a tag's name. Returns ErrNotFound for foreign or missing
// tags and ErrDuplicateName on collision.
func (r *CatalogRepository) RenameTag(ctx context.Context, userID, tagID int64, name string) error {
	return r.rename(ctx, "tags", userID, tagID, name)
}

// RenameIngredient - change an ingredient's name. Same error contract as
// RenameTag.
func (r *CatalogRepository) RenameIngredient(ctx context.Context, userID, ingredientID int64, name string) error {
	return r.rename(ctx, "ingredients", userID, ingredientID, name)
}

// DeleteTag - remove a tag owned by the user.
func (r *CatalogRepository) DeleteTag(ctx context.Context, userID, tagID int64) error {
	return r.delete(ctx, "tags", userID, tagID)
}

// DeleteIngredient - remove an ingredient owned by the user.
func (r *CatalogRepository) DeleteIngredient(ctx context.Context, userID, ingredientID int64) error {
	return r.delete(ctx, "ingredients", userID, ingredientID)
}

func (r *CatalogRepository) list(ctx context.Context, table string, userID int64) ([]namedItem, error) {
	query := `SELECT id, user_id, name FROM ` + table + ` WHERE user_id = $1 ORDER BY name`

	conn, rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing %s", table)
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	return scanNamedItems(rows.(pgx.Rows))
}

func (r *CatalogRepository) create(ctx context.Context, table string, userID int64, name string) (*namedItem, error) {
	query := `INSERT INTO ` + table + ` (user_id, name) VALUES ($1, $2) RETURNING id`

	conn, rows, err := r.db.Query(ctx, query, userID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}

		return nil, errors.Wrapf(err, "error inserting into %s", table)
	}

	defer conn.(*pgxpool.Conn).Release()

	item := namedItem{UserID: userID, Name: name}

	err = scanSingle(rows.(pgx.Rows), &item.ID)
	if err != nil {
		// pgx defers statement errors until the rows are read
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}

		return nil, err
	}

	return &item, nil
}

func (r *CatalogRepository) rename(ctx context.Context, table string, userID, id int64, name string) error {
	query := `UPDATE ` + table + ` SET name = $1 WHERE id = $2 AND user_id = $3`

	affected, err := r.db.Exec(ctx, query, name, id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}

		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *CatalogRepository) delete(ctx context.Context, table string, userID, id int64) error {
	query := `DELETE FROM ` + table + ` WHERE id = $1 AND user_id = $2`

	affected, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
