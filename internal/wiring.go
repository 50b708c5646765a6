package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/chefknight/internal/category"
	"github.com/starford/chefknight/internal/content"
	"github.com/starford/chefknight/internal/gitrepo"
	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/render"
	"github.com/starford/chefknight/internal/status"
	"github.com/starford/chefknight/internal/storage"
	"github.com/starford/chefknight/internal/wikiservice"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// stack is the set of components every command runs on.
type stack struct {
	store   storage.Provider
	repo    *gitrepo.Manager
	journal *journal.DB
	svc     *wikiservice.Service
}

func (s *stack) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
}

// buildStack wires storage, registry, content store, repository manager,
// journal and wiki service. events may be nil.
func buildStack(cfg *Config, logger *slog.Logger, events wikiservice.SyncPublisher) (*stack, error) {
	if err := os.MkdirAll(cfg.Content.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create content root: %w", err)
	}
	fs, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	reg, err := category.NewRegistry(fs, cfg.Content.CategoryList())
	if err != nil {
		return nil, fmt.Errorf("init categories: %w", err)
	}
	store := content.NewStore(reg, fs, logger)
	repo := gitrepo.New(gitrepo.Options{
		Root:          fs.Root(),
		Remote:        cfg.Git.Remote,
		DefaultBranch: cfg.Git.DefaultBranch,
		AuthorName:    cfg.Git.AuthorName,
		AuthorEmail:   cfg.Git.AuthorEmail,
		Timeout:       cfg.Git.Timeout,
		Logger:        logger,
	})

	s := &stack{store: fs, repo: repo}
	deps := wikiservice.Deps{
		Registry: reg,
		Store:    store,
		Status:   status.NewAggregator(reg, store, fs, repo, cfg.App.Version, logger),
		Repo:     repo,
		Renderer: render.New(cfg.Render.Options()...),
		Events:   events,
		Logger:   logger,
	}
	if cfg.SQLite.Path != "" {
		db, err := journal.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		s.journal = db
		deps.Journal = db
	}
	s.svc = wikiservice.New(deps)
	return s, nil
}
