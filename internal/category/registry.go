// Package category holds the static registry of content categories and keeps
// their backing directories in place.
package category

import (
	"fmt"
	"path/filepath"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/storage"
)

// Registry maps category names to their descriptions and directories.
// It is immutable after construction.
type Registry struct {
	store  storage.Provider
	order  []models.Category
	byName map[string]models.Category
}

// NewRegistry builds a registry over store. Names must be unique, non-empty,
// single path segments.
func NewRegistry(store storage.Provider, categories []models.Category) (*Registry, error) {
	r := &Registry{
		store:  store,
		order:  make([]models.Category, 0, len(categories)),
		byName: make(map[string]models.Category, len(categories)),
	}
	for _, c := range categories {
		if c.Name == "" || c.Name != filepath.Base(c.Name) || c.Name[0] == '.' {
			return nil, fmt.Errorf("category: invalid name %q", c.Name)
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("category: duplicate name %q", c.Name)
		}
		c.Dir = filepath.Join(store.Root(), c.Name)
		r.order = append(r.order, c)
		r.byName[c.Name] = c
	}
	return r, nil
}

// List returns the categories in declaration order.
func (r *Registry) List() []models.Category {
	out := make([]models.Category, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns the category names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	for i, c := range r.order {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the named category.
func (r *Registry) Lookup(name string) (models.Category, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// EnsureDirs creates every missing category directory. Directories that do
// not belong to a category are left alone.
func (r *Registry) EnsureDirs() error {
	for _, c := range r.order {
		if err := r.store.EnsureDir(c.Name); err != nil {
			return fmt.Errorf("%w: ensure %s: %w", apperr.ErrFilesystem, c.Name, err)
		}
	}
	return nil
}
