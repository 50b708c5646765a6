// Package gitrepo manages the git working directory that backs the content
// root: it opens or initializes the repository on demand, reports its state,
// and runs commit/push/pull cycles.
//
// Nothing is cached between calls. Every operation re-opens the repository
// so external edits and git commands run outside this process are always
// reflected.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/models"
)

// Defaults applied by New when the corresponding option is empty.
const (
	DefaultRemote      = "origin"
	DefaultBranch      = "main"
	DefaultMessage     = "Update via UI"
	DefaultAuthorName  = "ChefKnight"
	DefaultAuthorEmail = "chefknight@localhost"

	shortHashLen = 7
)

// Options configures a Manager.
type Options struct {
	Root          string
	Remote        string
	DefaultBranch string
	AuthorName    string
	AuthorEmail   string
	// Timeout bounds pull and push network operations. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Manager owns the lifecycle of the repository at Root.
type Manager struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Manager. The repository is not touched until the first call.
func New(opts Options) *Manager {
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = DefaultBranch
	}
	if opts.AuthorName == "" {
		opts.AuthorName = DefaultAuthorName
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = DefaultAuthorEmail
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{opts: opts, logger: logger.With(slog.String("component", "gitrepo"))}
}

// open opens the repository at Root, initializing it in place when none
// exists. Existing files in the working directory are left untouched.
func (m *Manager) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(m.opts.Root)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("gitrepo: open %s: %w", m.opts.Root, err)
	}

	repo, err = git.PlainInitWithOptions(m.opts.Root, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(m.opts.DefaultBranch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: init %s: %w", m.opts.Root, err)
	}
	m.logger.Info("initialized repository",
		slog.String("root", m.opts.Root),
		slog.String("branch", m.opts.DefaultBranch))
	return repo, nil
}

// Status reports branch, short commit, dirty and empty flags.
func (m *Manager) Status(_ context.Context) (models.RepoState, error) {
	repo, err := m.open()
	if err != nil {
		return models.RepoState{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return models.RepoState{}, fmt.Errorf("gitrepo: worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return models.RepoState{}, fmt.Errorf("gitrepo: status: %w", err)
	}
	dirty := !st.IsClean()

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return models.EmptyRepoState(dirty), nil
	}
	if err != nil {
		return models.RepoState{}, fmt.Errorf("gitrepo: head: %w", err)
	}

	branch := "HEAD"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return models.RepoState{
		Branch: branch,
		Commit: shortHash(head.Hash()),
		Dirty:  dirty,
	}, nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (m *Manager) CommitCount(_ context.Context) (int, error) {
	repo, err := m.open()
	if err != nil {
		return 0, err
	}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("gitrepo: head: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return 0, fmt.Errorf("gitrepo: log: %w", err)
	}
	n := 0
	err = iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	return n, err
}

func (m *Manager) signature() *object.Signature {
	return &object.Signature{
		Name:  m.opts.AuthorName,
		Email: m.opts.AuthorEmail,
		When:  time.Now(),
	}
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.opts.Timeout)
}

func (m *Manager) noRemoteMessage() string {
	return fmt.Sprintf("No remote named '%s' found", m.opts.Remote)
}

// requireRemote returns an error wrapping apperr.ErrNoRemote when the
// configured remote is absent, and apperr.ErrSync for other lookup failures.
func (m *Manager) requireRemote(repo *git.Repository) error {
	_, err := repo.Remote(m.opts.Remote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("%w: %s", apperr.ErrNoRemote, m.opts.Remote)
	}
	if err != nil {
		return fmt.Errorf("%w: remote %s: %w", apperr.ErrSync, m.opts.Remote, err)
	}
	return nil
}

func shortHash(h plumbing.Hash) string {
	s := h.String()
	if len(s) > shortHashLen {
		return s[:shortHashLen]
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
