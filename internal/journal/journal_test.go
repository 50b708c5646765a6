package journal

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/chefknight/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sync_events`).Scan(&count); err != nil {
		t.Fatalf("sync_events table missing: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	db := testDB(t)
	e, err := db.Record(FromPush(models.PushResult{
		OK: true, Outcome: models.OutcomeNoRemote, Message: "Committed abc1234 but not pushed", Commit: "abc1234",
	}))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", e.ID, err)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	r := got[0]
	if r.ID != e.ID || r.Kind != KindPush || !r.OK || r.Outcome != models.OutcomeNoRemote || r.Commit != "abc1234" {
		t.Errorf("round trip = %+v", r)
	}
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	db := testDB(t)
	msgs := []string{"first", "second", "third"}
	for _, m := range msgs {
		if _, err := db.Record(FromPull(models.PullResult{Outcome: models.OutcomeSyncError, Message: m})); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "third" || got[1].Message != "second" {
		t.Errorf("order = %q, %q", got[0].Message, got[1].Message)
	}
	if got[0].Kind != KindPull || got[0].OK {
		t.Errorf("entry = %+v", got[0])
	}
}

func TestRecentEmpty(t *testing.T) {
	db := testDB(t)
	got, err := db.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recent on empty journal = %#v, want empty slice", got)
	}
}
