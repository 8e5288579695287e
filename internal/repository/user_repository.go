package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/pkg/errors"
)

// UserRepository - Postgres persistence for users.
type UserRepository struct {
	db dbx.InstanceManager
}

// NewUserRepository - UserRepository constructor.
func NewUserRepository(db dbx.InstanceManager) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, is_active, is_staff, created_at`

// Create - insert a new user. Returns ErrEmailTaken when the email is
// already registered.
func (r *UserRepository) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	query := `INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING ` + userColumns

	conn, rows, err := r.db.Query(ctx, query, email, name, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}

		return nil, errors.Wrap(err, "error inserting user")
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	user, err := scanUser(rows.(pgx.Rows))
	if err != nil {
		// pgx defers statement errors until the rows are read
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetByEmail - fetch a user by email. Returns ErrNotFound when missing.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	conn, rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, errors.Wrap(err, "error querying user by email")
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	return scanUser(rows.(pgx.Rows))
}

// GetByID - fetch a user by id. Returns ErrNotFound when missing.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	conn, rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, errors.Wrap(err, "error querying user by id")
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	return scanUser(rows.(pgx.Rows))
}

// Update - update name and, when non-empty, the password hash.
func (r *UserRepository) Update(ctx context.Context, id int64, name, passwordHash string) error {
	var (
		affected int64
		err      error
	)

	if passwordHash != "" {
		affected, err = r.db.Exec(ctx, `UPDATE users SET name = $1, password_hash = $2 WHERE id = $3`, name, passwordHash, id)
	} else {
		affected, err = r.db.Exec(ctx, `UPDATE users SET name = $1 WHERE id = $2`, name, id)
	}

	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(rows pgx.Rows) (*domain.User, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "error reading user row")
		}

		return nil, ErrNotFound
	}

	var user domain.User

	err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.IsActive, &user.IsStaff, &user.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "error scanning user row")
	}

	return &user, nil
}
