package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/models"
)

// Push stages every working-tree change, commits it with message, and pushes
// the current branch to the configured remote.
//
// A clean tree is a no-op. A missing remote still commits locally and
// reports the commit as not pushed. Backend failures come back as
// ok=false results, never as errors.
func (m *Manager) Push(ctx context.Context, message string) models.PushResult {
	if strings.TrimSpace(message) == "" {
		message = DefaultMessage
	}

	repo, err := m.open()
	if err != nil {
		return m.pushFailed("", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return m.pushFailed("", fmt.Errorf("gitrepo: worktree: %w", err))
	}
	st, err := wt.Status()
	if err != nil {
		return m.pushFailed("", fmt.Errorf("gitrepo: status: %w", err))
	}
	if st.IsClean() {
		return models.PushResult{OK: true, Outcome: models.OutcomeNoop, Message: "No changes to commit"}
	}

	if err := stageAll(wt, st); err != nil {
		return m.pushFailed("", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: m.signature()})
	if err != nil {
		return m.pushFailed("", fmt.Errorf("gitrepo: commit: %w", err))
	}
	commit := shortHash(hash)
	m.logger.Info("committed changes",
		slog.String("commit", commit),
		slog.String("message", firstLine(message)),
		slog.Int("paths", len(st)))

	err = m.requireRemote(repo)
	switch {
	case errors.Is(err, apperr.ErrNoRemote):
		return models.PushResult{
			OK:      true,
			Outcome: models.OutcomeNoRemote,
			Message: fmt.Sprintf("Committed %s but not pushed: %s", commit, m.noRemoteMessage()),
			Commit:  commit,
		}
	case err != nil:
		return m.pushFailed(commit, err)
	}

	head, err := repo.Head()
	if err != nil {
		return m.pushFailed(commit, fmt.Errorf("gitrepo: head: %w", err))
	}
	if !head.Name().IsBranch() {
		return m.pushFailed(commit, errors.New("gitrepo: HEAD is detached"))
	}

	entry, err := m.pushBranch(ctx, repo, head.Name(), hash)
	if err != nil {
		return m.pushFailed(commit, err)
	}
	m.logger.Info("pushed changes",
		slog.String("remote", m.opts.Remote),
		slog.String("ref", entry.Ref),
		slog.String("flags", entry.Flags.String()))

	return models.PushResult{
		OK:      true,
		Outcome: models.OutcomeOK,
		Message: fmt.Sprintf("Committed and pushed %s to %s", commit, m.opts.Remote),
		Commit:  commit,
		Pushed:  true,
		Entries: []models.PushEntry{entry},
	}
}

// stageAll adds new and modified paths and removes deleted ones, the
// equivalent of `git add -A`.
func stageAll(wt *git.Worktree, st git.Status) error {
	for path, fs := range st {
		var err error
		switch fs.Worktree {
		case git.Unmodified:
			continue
		case git.Deleted:
			_, err = wt.Remove(path)
		default:
			_, err = wt.Add(path)
		}
		if err != nil {
			return fmt.Errorf("gitrepo: stage %s: %w", path, err)
		}
	}
	return nil
}

// pushBranch pushes branch to the remote and describes the ref update.
func (m *Manager) pushBranch(ctx context.Context, repo *git.Repository, branch plumbing.ReferenceName, head plumbing.Hash) (models.PushEntry, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	entry := models.PushEntry{Ref: branch.String()}
	old, err := m.remoteHead(ctx, repo, branch)
	if err != nil {
		return entry, err
	}

	spec := config.RefSpec(fmt.Sprintf("%s:%s", branch, branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: m.opts.Remote,
		RefSpecs:   []config.RefSpec{spec},
	})

	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		entry.Flags = models.PushUpToDate
		entry.Summary = "[up to date]"
	case err != nil:
		return entry, fmt.Errorf("%w: push %s: %w", apperr.ErrSync, branch.Short(), err)
	case old.IsZero():
		entry.Flags = models.PushNewHead
		entry.Summary = "[new branch]"
	default:
		entry.Flags = models.PushFastForward
		entry.Summary = shortHash(old) + ".." + shortHash(head)
	}
	return entry, nil
}

// remoteHead asks the remote which commit it holds for branch. The local
// tracking ref is not consulted since it is stale until the next fetch. A
// branch or repository the remote does not have yields the zero hash.
func (m *Manager) remoteHead(ctx context.Context, repo *git.Repository, branch plumbing.ReferenceName) (plumbing.Hash, error) {
	remote, err := repo.Remote(m.opts.Remote)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: remote %s: %w", apperr.ErrSync, m.opts.Remote, err)
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return plumbing.ZeroHash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: list %s: %w", apperr.ErrSync, m.opts.Remote, err)
	}
	for _, ref := range refs {
		if ref.Name() == branch {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, nil
}

func (m *Manager) pushFailed(commit string, err error) models.PushResult {
	m.logger.Error("push failed", slog.String("commit", commit), slog.String("error", err.Error()))
	msg := "Push failed: " + err.Error()
	if commit != "" {
		msg = fmt.Sprintf("Committed %s locally but push failed: %s", commit, err.Error())
	}
	return models.PushResult{
		OK:      false,
		Outcome: models.OutcomeSyncError,
		Message: msg,
		Commit:  commit,
	}
}
