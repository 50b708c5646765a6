// Package wikiservice is the facade shared by the HTTP and MCP surfaces.
package wikiservice

import (
	"context"
	"log/slog"

	"github.com/starford/chefknight/internal/category"
	"github.com/starford/chefknight/internal/content"
	"github.com/starford/chefknight/internal/gitrepo"
	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/render"
	"github.com/starford/chefknight/internal/sse"
	"github.com/starford/chefknight/internal/status"
)

// CategorySummary is a category with its current document count.
type CategorySummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Documents   int    `json:"documents"`
}

// SyncPublisher receives pull and push results.
type SyncPublisher interface {
	PublishSync(eventType string, result any)
}

// Deps holds the collaborators of a Service. Journal and Events are optional.
type Deps struct {
	Registry *category.Registry
	Store    *content.Store
	Status   *status.Aggregator
	Repo     *gitrepo.Manager
	Renderer *render.Renderer
	Journal  journal.Journal
	Events   SyncPublisher
	Logger   *slog.Logger
}

// Service coordinates content reads and repository sync.
type Service struct {
	registry *category.Registry
	store    *content.Store
	status   *status.Aggregator
	repo     *gitrepo.Manager
	renderer *render.Renderer
	journal  journal.Journal
	events   SyncPublisher
	logger   *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := d.Renderer
	if renderer == nil {
		renderer = render.New()
	}
	return &Service{
		registry: d.Registry,
		store:    d.Store,
		status:   d.Status,
		repo:     d.Repo,
		renderer: renderer,
		journal:  d.Journal,
		events:   d.Events,
		logger:   logger,
	}
}

// Status returns a fresh status snapshot.
func (s *Service) Status(ctx context.Context) *models.Snapshot {
	return s.status.GetStatus(ctx)
}

// Categories lists the registry with per-category document counts.
func (s *Service) Categories(_ context.Context) ([]CategorySummary, error) {
	cats := s.registry.List()
	out := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		stems, err := s.store.ListDocuments(c.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, CategorySummary{Name: c.Name, Description: c.Description, Documents: len(stems)})
	}
	return out, nil
}

// ListDocuments returns the sorted stems of a category.
func (s *Service) ListDocuments(_ context.Context, cat string) ([]string, error) {
	return s.store.ListDocuments(cat)
}

// GetDocument reads one document, optionally rendering its body to HTML.
// A render failure is logged and leaves HTML empty.
func (s *Service) GetDocument(_ context.Context, cat, stem string, renderHTML bool) (*models.Document, error) {
	doc, err := s.store.ReadDocument(cat, stem)
	if err != nil {
		return nil, err
	}
	if renderHTML {
		html, err := s.renderer.Render(doc.Body)
		if err != nil {
			s.logger.Warn("render failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		} else {
			doc.HTML = html
		}
	}
	return doc, nil
}

// Pull pulls from the remote, journals the outcome and publishes it.
func (s *Service) Pull(ctx context.Context) models.PullResult {
	res := s.repo.Pull(ctx)
	s.record(journal.FromPull(res))
	if s.events != nil {
		s.events.PublishSync(sse.SyncPulled, res)
	}
	return res
}

// Push commits and pushes, journals the outcome and publishes it.
func (s *Service) Push(ctx context.Context, message string) models.PushResult {
	res := s.repo.Push(ctx, message)
	s.record(journal.FromPush(res))
	if s.events != nil {
		s.events.PublishSync(sse.SyncPushed, res)
	}
	return res
}

// History returns recent journal entries, newest first. Without a journal
// it returns an empty list.
func (s *Service) History(_ context.Context, limit int) ([]journal.Entry, error) {
	if s.journal == nil {
		return []journal.Entry{}, nil
	}
	return s.journal.Recent(limit)
}

// record never fails the sync operation it describes.
func (s *Service) record(e journal.Entry) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Record(e); err != nil {
		s.logger.Warn("journal record failed", slog.String("kind", e.Kind), slog.String("error", err.Error()))
	}
}
