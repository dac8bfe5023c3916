// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates caller-supplied input was rejected.
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates the operation collides with one already in progress.
var ErrConflict = errors.New("conflict: operation already in progress")
