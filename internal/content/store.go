// Package content reads category documents from the content root.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/category"
	"github.com/starford/chefknight/internal/checksum"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/parser"
	"github.com/starford/chefknight/internal/storage"
)

// Store reads documents through a storage.Provider. It holds no state of its
// own; every call goes to disk.
type Store struct {
	registry *category.Registry
	fs       storage.Provider
	logger   *slog.Logger
}

// NewStore creates a content store.
func NewStore(registry *category.Registry, fs storage.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{registry: registry, fs: fs, logger: logger}
}

// ListDocuments returns the sorted document stems of a category.
func (s *Store) ListDocuments(cat string) ([]string, error) {
	if _, ok := s.registry.Lookup(cat); !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidCategory, cat)
	}
	stems, err := s.fs.ListStems(cat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrFilesystem, err)
	}
	return stems, nil
}

// ReadDocument loads and parses category/stem.md. Malformed frontmatter is
// logged and yields empty metadata with the raw text as body.
func (s *Store) ReadDocument(cat, stem string) (*models.Document, error) {
	if _, ok := s.registry.Lookup(cat); !ok {
		return nil, fmt.Errorf("%w: %w: %q", apperr.ErrNotFound, apperr.ErrInvalidCategory, cat)
	}
	if !validStem(stem) {
		return nil, fmt.Errorf("%w: document %q", apperr.ErrNotFound, stem)
	}

	rel := path.Join(cat, stem+".md")
	data, err := s.fs.Read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrFilesystem, err)
	}

	res, err := parser.Parse(data)
	if err != nil {
		s.logger.Warn("frontmatter parse failed",
			slog.String("kind", "ParseWarning"),
			slog.String("path", rel),
			slog.String("error", err.Error()))
	}

	return &models.Document{
		Category: cat,
		Stem:     stem,
		Path:     rel,
		Metadata: res.Metadata,
		Body:     res.Body,
		Title:    res.Title,
		Links:    res.Links,
		Checksum: checksum.Sum(data),
	}, nil
}

func validStem(stem string) bool {
	return stem != "" &&
		!strings.HasPrefix(stem, ".") &&
		!strings.ContainsAny(stem, `/\`)
}
