package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/testutil"
	"github.com/starford/chefknight/internal/wikiservice"
)

func testServer(t *testing.T) (*Server, *testutil.Env) {
	t.Helper()
	env := testutil.TestService(t, nil)
	return New(env.Service, "test"), env
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper; invoke the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_status":
		result, err = srv.getStatus(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "pull":
		result, err = srv.pull(ctx, req)
	case "push":
		result, err = srv.push(ctx, req)
	case "sync_history":
		result, err = srv.syncHistory(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeResult(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
}

func TestGetStatus(t *testing.T) {
	srv, env := testServer(t)
	testutil.WriteDoc(t, env.Root, "characters/hero.md", "---\ntitle: Hero\n---\nBody")

	var snap models.Snapshot
	decodeResult(t, callTool(t, srv, "get_status", nil), &snap)
	if snap.Status != models.StatusOK {
		t.Fatalf("status = %q (%s)", snap.Status, snap.Message)
	}
	if len(snap.Content["characters"]) != 1 || snap.Content["characters"][0] != "hero" {
		t.Errorf("content.characters = %v", snap.Content["characters"])
	}
}

func TestListCategoriesAndDocuments(t *testing.T) {
	srv, env := testServer(t)
	testutil.WriteDoc(t, env.Root, "abilities/fireball.md", "boom")

	var cats []wikiservice.CategorySummary
	decodeResult(t, callTool(t, srv, "list_categories", nil), &cats)
	if len(cats) != len(models.DefaultCategories()) {
		t.Errorf("categories = %d", len(cats))
	}

	var stems []string
	decodeResult(t, callTool(t, srv, "list_documents", map[string]any{"category": "abilities"}), &stems)
	if len(stems) != 1 || stems[0] != "fireball" {
		t.Errorf("stems = %v", stems)
	}

	res := callTool(t, srv, "list_documents", map[string]any{"category": "dragons"})
	if !res.IsError || !strings.Contains(resultText(res), "unknown category") {
		t.Errorf("unknown category result = %q", resultText(res))
	}

	res = callTool(t, srv, "list_documents", map[string]any{})
	if !res.IsError {
		t.Error("missing category argument should fail")
	}
}

func TestReadDocument(t *testing.T) {
	srv, env := testServer(t)
	testutil.WriteDoc(t, env.Root, "armour/plate.md", "---\ntitle: Plate\nweight: 30\n---\n# Plate\n\nHeavy.")

	var doc models.Document
	decodeResult(t, callTool(t, srv, "read_document", map[string]any{
		"category": "armour", "stem": "plate", "render": true,
	}), &doc)
	if doc.Metadata["title"] != "Plate" || doc.Metadata["weight"] != float64(30) {
		t.Errorf("metadata = %v", doc.Metadata)
	}
	if !strings.Contains(doc.HTML, "Heavy.") {
		t.Errorf("html = %q", doc.HTML)
	}

	res := callTool(t, srv, "read_document", map[string]any{"category": "armour", "stem": "ghost"})
	if !res.IsError || !strings.Contains(resultText(res), "not found") {
		t.Errorf("missing stem result = %q", resultText(res))
	}
}

func TestPushPullAndHistory(t *testing.T) {
	srv, env := testServer(t)

	var pulled models.PullResult
	decodeResult(t, callTool(t, srv, "pull", nil), &pulled)
	if pulled.OK || pulled.Outcome != models.OutcomeNoRemote {
		t.Errorf("pull = %+v", pulled)
	}

	testutil.WriteDoc(t, env.Root, "items/ring.md", "ring")
	var pushed models.PushResult
	decodeResult(t, callTool(t, srv, "push", map[string]any{"message": "add ring"}), &pushed)
	if !pushed.OK || pushed.Outcome != models.OutcomeNoRemote || pushed.Commit == "" {
		t.Errorf("push = %+v", pushed)
	}

	var hist []journal.Entry
	decodeResult(t, callTool(t, srv, "sync_history", map[string]any{"limit": float64(1)}), &hist)
	if len(hist) != 1 || hist[0].Kind != journal.KindPush || hist[0].Commit != pushed.Commit {
		t.Errorf("history = %+v", hist)
	}
}

func TestDocumentFormatContract(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_document_format", nil))
	if !strings.Contains(text, "ChefKnight Document Format") {
		t.Errorf("contract text = %q", text)
	}

	contents, err := srv.readDocumentFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}

func TestCategoriesResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readCategoriesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] = %T", contents[0])
	}
	if tc.URI != CategoriesURI || !strings.Contains(tc.Text, `"kingdoms"`) {
		t.Errorf("resource = %+v", tc)
	}
}
