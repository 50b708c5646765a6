// Package status composes the category registry, content store and
// repository manager into one snapshot.
package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/chefknight/internal/models"
)

// Categories ensures and names the known categories.
type Categories interface {
	EnsureDirs() error
	Names() []string
}

// Documents lists the document stems of a category.
type Documents interface {
	ListDocuments(category string) ([]string, error)
}

// Folders lists every directory directly under the content root.
type Folders interface {
	ListDirs() ([]string, error)
}

// Repository reports version-control state.
type Repository interface {
	Status(ctx context.Context) (models.RepoState, error)
}

// Aggregator builds status snapshots. It keeps no state between calls.
type Aggregator struct {
	categories Categories
	documents  Documents
	folders    Folders
	repo       Repository
	version    string
	logger     *slog.Logger
	now        func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(categories Categories, documents Documents, folders Folders, repo Repository, version string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		categories: categories,
		documents:  documents,
		folders:    folders,
		repo:       repo,
		version:    version,
		logger:     logger,
		now:        time.Now,
	}
}

// GetStatus ensures category directories, lists their documents and queries
// the repository, in that order.
//
// A filesystem failure returns an error snapshot with no partial data. A
// repository failure returns a warning snapshot that still carries the
// filesystem view.
func (a *Aggregator) GetStatus(ctx context.Context) *models.Snapshot {
	if err := a.categories.EnsureDirs(); err != nil {
		return a.failed(err)
	}

	content := make(map[string][]string)
	for _, name := range a.categories.Names() {
		stems, err := a.documents.ListDocuments(name)
		if err != nil {
			return a.failed(err)
		}
		content[name] = stems
	}

	folders, err := a.folders.ListDirs()
	if err != nil {
		return a.failed(err)
	}

	snap := &models.Snapshot{
		Status:    models.StatusOK,
		Version:   a.version,
		Folders:   folders,
		Content:   content,
		Timestamp: unixSeconds(a.now()),
	}

	state, err := a.repo.Status(ctx)
	if err != nil {
		a.logger.Warn("repository state unavailable", slog.String("error", err.Error()))
		snap.Status = models.StatusWarning
		snap.Message = err.Error()
		return snap
	}
	snap.Git = &state
	return snap
}

func (a *Aggregator) failed(err error) *models.Snapshot {
	a.logger.Error("status failed", slog.String("error", err.Error()))
	return &models.Snapshot{Status: models.StatusError, Message: err.Error()}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
