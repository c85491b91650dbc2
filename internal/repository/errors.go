package repository

import "errors"

// ErrNotFound is returned when a query for a single entity finds no rows.
// Services translate it into app_errors.ErrNotFound.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("repository: duplicate")
