package repository

import "github.com/pkg/errors"

var (
	// ErrNotFound - no row matched, or the row belongs to another user.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken - a user with that email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDuplicateName - a tag or ingredient with that name already exists
	// for the user.
	ErrDuplicateName = errors.New("name already in use")
)

// uniqueViolation - Postgres error code for unique constraint violations.
const uniqueViolation = "23505"
