// Package apperr defines the error kinds shared across ChefKnight packages.
package apperr

import "errors"

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotFound        = errors.New("not found")
	ErrNoRemote        = errors.New("no remote configured")
	ErrSync            = errors.New("sync failed")
	ErrFilesystem      = errors.New("filesystem error")
	ErrParseWarning    = errors.New("malformed frontmatter")
)
