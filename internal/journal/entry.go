package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/chefknight/internal/models"
)

// Kinds of journaled operations.
const (
	KindPull = "pull"
	KindPush = "push"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 50

// Entry is one recorded sync operation.
type Entry struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	OK        bool               `json:"ok"`
	Outcome   models.SyncOutcome `json:"outcome"`
	Message   string             `json:"message"`
	Commit    string             `json:"commit,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Journal is the subset of *DB used by the wiki service.
type Journal interface {
	Record(e Entry) (Entry, error)
	Recent(limit int) ([]Entry, error)
}

var _ Journal = (*DB)(nil)

// FromPull builds an entry describing a pull result.
func FromPull(r models.PullResult) Entry {
	return Entry{Kind: KindPull, OK: r.OK, Outcome: r.Outcome, Message: r.Message}
}

// FromPush builds an entry describing a push result.
func FromPush(r models.PushResult) Entry {
	return Entry{Kind: KindPush, OK: r.OK, Outcome: r.Outcome, Message: r.Message, Commit: r.Commit}
}

// Record stores e, assigning an ID and timestamp when they are empty.
func (db *DB) Record(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO sync_events (id, kind, ok, outcome, message, commit_sha, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.OK, string(e.Outcome), e.Message, e.Commit, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("journal: record %s: %w", e.Kind, err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, kind, ok, outcome, message, commit_sha, created_at
		FROM sync_events
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var outcome string
		if err := rows.Scan(&e.ID, &e.Kind, &e.OK, &outcome, &e.Message, &e.Commit, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Outcome = models.SyncOutcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
