package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/models"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Content.Root = filepath.Join(t.TempDir(), "data")
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "journal.db")
	cfg.Static.Dir = t.TempDir()
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPHandlerRoutes(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Static.Dir, "index.html"), "<html>chefknight</html>")
	writeFile(t, filepath.Join(cfg.Content.Root, "characters", "hero.md"), "---\ntitle: Hero\n---\nBody")

	st, err := buildStack(cfg, newLogger(cfg, &bytes.Buffer{}), nil)
	if err != nil {
		t.Fatalf("buildStack: %v", err)
	}
	defer st.Close()
	h := newHTTPHandler(cfg, st.svc, st.store, nil)

	tests := []struct {
		target string
		code   int
		want   string
	}{
		{"/health/live", http.StatusOK, `"ok"`},
		{"/health/ready", http.StatusOK, `"ok"`},
		{"/api/status", http.StatusOK, `"hero"`},
		{"/api/content/characters/hero", http.StatusOK, `"title":"Hero"`},
		{"/api/content/nowhere/hero", http.StatusNotFound, `"error"`},
		{"/", http.StatusOK, "chefknight"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d (body %s)", w.Code, tt.code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body %q missing %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestHTTPHandlerWithoutStaticDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Static.Dir = filepath.Join(t.TempDir(), "missing")

	st, err := buildStack(cfg, newLogger(cfg, &bytes.Buffer{}), nil)
	if err != nil {
		t.Fatalf("buildStack: %v", err)
	}
	defer st.Close()
	h := newHTTPHandler(cfg, st.svc, st.store, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", w.Code)
	}
}

func TestExecStatusPushAndHistory(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Content.Root, "foods", "stew.md"), "stew")
	ctx := context.Background()

	var out bytes.Buffer
	if err := Exec(ctx, StatusOperation(), WithConfig(cfg), WithOutput(&out)); err != nil {
		t.Fatalf("Exec status: %v", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if snap.Status != models.StatusOK || snap.Version != Version {
		t.Errorf("snapshot = %+v", snap)
	}

	out.Reset()
	if err := Exec(ctx, PushOperation("from cli"), WithConfig(cfg), WithOutput(&out)); err != nil {
		t.Fatalf("Exec push: %v", err)
	}
	var pushed models.PushResult
	if err := json.Unmarshal(out.Bytes(), &pushed); err != nil {
		t.Fatalf("decode push: %v", err)
	}
	if !pushed.OK || pushed.Outcome != models.OutcomeNoRemote {
		t.Errorf("push = %+v", pushed)
	}

	out.Reset()
	if err := Exec(ctx, PullOperation(), WithConfig(cfg), WithOutput(&out)); err != nil {
		t.Fatalf("Exec pull: %v", err)
	}
	var pulled models.PullResult
	if err := json.Unmarshal(out.Bytes(), &pulled); err != nil {
		t.Fatalf("decode pull: %v", err)
	}
	if pulled.OK || pulled.Outcome != models.OutcomeNoRemote {
		t.Errorf("pull = %+v", pulled)
	}

	db, err := journal.Open(cfg.SQLite.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	entries, err := db.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Kind != journal.KindPull || entries[1].Commit != pushed.Commit {
		t.Errorf("journal = %+v", entries)
	}
}

func TestExecRequiresConfig(t *testing.T) {
	if err := Exec(context.Background(), StatusOperation()); err == nil {
		t.Error("Exec without config should fail")
	}
}
