package domain

import "time"

// User - an account identified by email. Authentication uses email plus
// password; the clear-text password never leaves the API boundary.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
}

// Recipe - a recipe owned by a single user. Price is carried as the decimal
// string produced by Postgres (numeric(5,2)) to avoid float rounding.
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Description string
	Price       string
	Link        string
	Tags        []Tag
	Ingredients []Ingredient
	CreatedAt   time.Time
}

// Tag - per-user label attachable to recipes.
type Tag struct {
	ID     int64
	UserID int64
	Name   string
}

// Ingredient - per-user ingredient attachable to recipes.
type Ingredient struct {
	ID     int64
	UserID int64
	Name   string
}
