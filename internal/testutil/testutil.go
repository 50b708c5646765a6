// Package testutil provides shared test helpers for content roots, journals
// and fully wired services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/chefknight/internal/category"
	"github.com/starford/chefknight/internal/content"
	"github.com/starford/chefknight/internal/gitrepo"
	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/status"
	"github.com/starford/chefknight/internal/storage"
	"github.com/starford/chefknight/internal/wikiservice"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestJournal creates a temporary SQLite journal that is closed on cleanup.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary content root with a storage.Provider.
func TestRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteDoc writes content to root/rel, creating parent directories.
func WriteDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Env is a fully wired service over a temporary content root.
type Env struct {
	Root    string
	Service *wikiservice.Service
	Repo    *gitrepo.Manager
	Journal *journal.DB
}

// TestService wires the default categories, a fresh repository manager and a
// temporary journal. events may be nil.
func TestService(t *testing.T, events wikiservice.SyncPublisher) *Env {
	t.Helper()
	root, fs := TestRoot(t)
	logger := Logger()

	reg, err := category.NewRegistry(fs, models.DefaultCategories())
	if err != nil {
		t.Fatal(err)
	}
	store := content.NewStore(reg, fs, logger)
	repo := gitrepo.New(gitrepo.Options{Root: root, Logger: logger})
	db := TestJournal(t)

	svc := wikiservice.New(wikiservice.Deps{
		Registry: reg,
		Store:    store,
		Status:   status.NewAggregator(reg, store, fs, repo, "test", logger),
		Repo:     repo,
		Journal:  db,
		Events:   events,
		Logger:   logger,
	})
	return &Env{Root: root, Service: svc, Repo: repo, Journal: db}
}
