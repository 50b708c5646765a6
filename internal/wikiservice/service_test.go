package wikiservice_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/sse"
	"github.com/starford/chefknight/internal/testutil"
)

type capture struct {
	mu     sync.Mutex
	events []string
}

func (c *capture) PublishSync(eventType string, _ any) {
	c.mu.Lock()
	c.events = append(c.events, eventType)
	c.mu.Unlock()
}

func TestGetDocumentRendersHTML(t *testing.T) {
	env := testutil.TestService(t, nil)
	testutil.WriteDoc(t, env.Root, "kingdoms/north.md", "---\ntitle: North\n---\n# The North\n\nCold lands.")

	doc, err := env.Service.GetDocument(context.Background(), "kingdoms", "north", false)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.HTML != "" {
		t.Errorf("html rendered without request: %q", doc.HTML)
	}

	doc, err = env.Service.GetDocument(context.Background(), "kingdoms", "north", true)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !strings.Contains(doc.HTML, "<h1") || !strings.Contains(doc.HTML, "Cold lands.") {
		t.Errorf("html = %q", doc.HTML)
	}
	if doc.Metadata["title"] != "North" {
		t.Errorf("metadata = %v", doc.Metadata)
	}
}

func TestGetDocumentErrors(t *testing.T) {
	env := testutil.TestService(t, nil)

	_, err := env.Service.GetDocument(context.Background(), "dragons", "smaug", false)
	if !errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrInvalidCategory) {
		t.Errorf("unknown category err = %v", err)
	}
	_, err = env.Service.GetDocument(context.Background(), "items", "ghost", false)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing stem err = %v", err)
	}
}

func TestCategoriesCountsDocuments(t *testing.T) {
	env := testutil.TestService(t, nil)
	testutil.WriteDoc(t, env.Root, "foods/stew.md", "stew")
	testutil.WriteDoc(t, env.Root, "foods/bread.md", "bread")

	cats, err := env.Service.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != len(models.DefaultCategories()) {
		t.Fatalf("len = %d", len(cats))
	}
	if cats[0].Name != "kingdoms" {
		t.Errorf("order not preserved: first = %q", cats[0].Name)
	}
	for _, c := range cats {
		want := 0
		if c.Name == "foods" {
			want = 2
		}
		if c.Documents != want {
			t.Errorf("%s documents = %d, want %d", c.Name, c.Documents, want)
		}
	}
}

func TestPushAndPullAreJournaledAndPublished(t *testing.T) {
	events := &capture{}
	env := testutil.TestService(t, events)
	ctx := context.Background()

	noop := env.Service.Push(ctx, "")
	if !noop.OK || noop.Outcome != models.OutcomeNoop {
		t.Fatalf("first push = %+v", noop)
	}

	testutil.WriteDoc(t, env.Root, "characters/hero.md", "---\ntitle: Hero\n---\nBody")
	pushed := env.Service.Push(ctx, "add hero")
	if !pushed.OK || pushed.Outcome != models.OutcomeNoRemote {
		t.Fatalf("second push = %+v", pushed)
	}

	pulled := env.Service.Pull(ctx)
	if pulled.OK || pulled.Outcome != models.OutcomeNoRemote {
		t.Fatalf("pull = %+v", pulled)
	}

	hist, err := env.Service.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("history len = %d, want 3", len(hist))
	}
	if hist[0].Kind != journal.KindPull || hist[1].Commit != pushed.Commit || hist[2].Outcome != models.OutcomeNoop {
		t.Errorf("history = %+v", hist)
	}

	want := []string{sse.SyncPushed, sse.SyncPushed, sse.SyncPulled}
	if strings.Join(events.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events.events, want)
	}
}

func TestStatusEndToEnd(t *testing.T) {
	env := testutil.TestService(t, nil)
	testutil.WriteDoc(t, env.Root, "characters/hero.md", "---\ntitle: Hero\n---\nBody")

	snap := env.Service.Status(context.Background())
	if snap.Status != models.StatusOK {
		t.Fatalf("status = %s (%s)", snap.Status, snap.Message)
	}
	if snap.Version != "test" {
		t.Errorf("version = %q", snap.Version)
	}
	found := false
	for _, s := range snap.Content["characters"] {
		if s == "hero" {
			found = true
		}
	}
	if !found {
		t.Errorf("content.characters = %v", snap.Content["characters"])
	}
	if snap.Git == nil || !snap.Git.Empty || snap.Git.Branch != models.None {
		t.Errorf("git = %+v", snap.Git)
	}
}
