package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/pkg/errors"
)

// TokenRepository - Postgres persistence for API token digests.
type TokenRepository struct {
	db dbx.InstanceManager
}

// NewTokenRepository - TokenRepository constructor.
func NewTokenRepository(db dbx.InstanceManager) *TokenRepository {
	return &TokenRepository{db: db}
}

// Store - persist a token digest for a user.
func (r *TokenRepository) Store(ctx context.Context, digest string, userID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO auth_tokens (digest, user_id) VALUES ($1, $2)`, digest, userID)
	return err
}

// LookupUser - resolve a token digest to its active owner.
// Returns ErrNotFound for unknown digests and deactivated accounts.
func (r *TokenRepository) LookupUser(ctx context.Context, digest string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		JOIN auth_tokens ON auth_tokens.user_id = users.id
		WHERE auth_tokens.digest = $1 AND users.is_active`

	conn, rows, err := r.db.Query(ctx, query, digest)
	if err != nil {
		return nil, errors.Wrap(err, "error resolving auth token")
	}

	defer conn.(*pgxpool.Conn).Release()
	defer rows.(pgx.Rows).Close()

	return scanUser(rows.(pgx.Rows))
}

// Revoke - drop every token issued to a user.
func (r *TokenRepository) Revoke(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}
