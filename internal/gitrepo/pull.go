package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/models"
)

// Pull fetches from the configured remote and fast-forwards the current
// branch. Each remote-tracking ref is reported with how it moved.
func (m *Manager) Pull(ctx context.Context) models.PullResult {
	repo, err := m.open()
	if err != nil {
		return m.pullFailed(err)
	}

	err = m.requireRemote(repo)
	switch {
	case errors.Is(err, apperr.ErrNoRemote):
		m.logger.Warn("pull skipped", slog.String("reason", m.noRemoteMessage()))
		return models.PullResult{OK: false, Outcome: models.OutcomeNoRemote, Message: m.noRemoteMessage()}
	case err != nil:
		return m.pullFailed(err)
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return m.pullFailed(fmt.Errorf("gitrepo: head: %w", err))
	}
	if head.Type() != plumbing.SymbolicReference {
		return m.pullFailed(errors.New("gitrepo: HEAD is detached"))
	}
	branch := head.Target()

	wt, err := repo.Worktree()
	if err != nil {
		return m.pullFailed(fmt.Errorf("gitrepo: worktree: %w", err))
	}

	before, err := m.trackingRefs(repo)
	if err != nil {
		return m.pullFailed(err)
	}

	pullCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	err = wt.PullContext(pullCtx, &git.PullOptions{
		RemoteName:    m.opts.Remote,
		ReferenceName: branch,
	})
	upToDate := errors.Is(err, git.NoErrAlreadyUpToDate)
	if err != nil && !upToDate {
		return m.pullFailed(fmt.Errorf("%w: pull %s: %w", apperr.ErrSync, branch.Short(), err))
	}

	after, err := m.trackingRefs(repo)
	if err != nil {
		return m.pullFailed(err)
	}
	entries := m.fetchEntries(repo, before, after)

	msg := fmt.Sprintf("Pulled %s from %s", branch.Short(), m.opts.Remote)
	if upToDate {
		msg = "Already up to date"
	}
	m.logger.Info("pull finished",
		slog.String("remote", m.opts.Remote),
		slog.String("branch", branch.Short()),
		slog.Bool("up_to_date", upToDate),
		slog.Int("refs", len(entries)))

	return models.PullResult{OK: true, Outcome: models.OutcomeOK, Message: msg, Entries: entries}
}

// trackingRefs snapshots refs/remotes/<remote>/*.
func (m *Manager) trackingRefs(repo *git.Repository) (map[plumbing.ReferenceName]plumbing.Hash, error) {
	iter, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: references: %w", err)
	}
	prefix := "refs/remotes/" + m.opts.Remote + "/"
	out := make(map[plumbing.ReferenceName]plumbing.Hash)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && strings.HasPrefix(ref.Name().String(), prefix) {
			out[ref.Name()] = ref.Hash()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: references: %w", err)
	}
	return out, nil
}

// fetchEntries compares tracking refs before and after a fetch.
func (m *Manager) fetchEntries(repo *git.Repository, before, after map[plumbing.ReferenceName]plumbing.Hash) []models.FetchEntry {
	names := make([]plumbing.ReferenceName, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	entries := make([]models.FetchEntry, 0, len(names))
	for _, name := range names {
		newHash := after[name]
		entry := models.FetchEntry{Ref: name.Short(), Commit: shortHash(newHash)}

		oldHash, existed := before[name]
		if !existed {
			entry.Flags = models.FetchNewHead
			entry.Note = "[new branch]"
			entries = append(entries, entry)
			continue
		}

		old := shortHash(oldHash)
		entry.OldCommit = &old
		switch {
		case oldHash == newHash:
			entry.Flags = models.FetchHeadUpToDate
			entry.Note = "[up to date]"
		case isAncestor(repo, oldHash, newHash):
			entry.Flags = models.FetchFastForward
			entry.Note = "fast-forward"
		default:
			entry.Flags = models.FetchForcedUpdate
			entry.Note = "forced update"
		}
		entries = append(entries, entry)
	}
	return entries
}

func isAncestor(repo *git.Repository, ancestor, descendant plumbing.Hash) bool {
	a, err := repo.CommitObject(ancestor)
	if err != nil {
		return false
	}
	d, err := repo.CommitObject(descendant)
	if err != nil {
		return false
	}
	ok, err := a.IsAncestor(d)
	return err == nil && ok
}

func (m *Manager) pullFailed(err error) models.PullResult {
	m.logger.Error("pull failed", slog.String("error", err.Error()))
	return models.PullResult{
		OK:      false,
		Outcome: models.OutcomeSyncError,
		Message: "Pull failed: " + err.Error(),
	}
}
