package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves the bundled frontend.
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a handler rooted at dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Available reports whether the static directory exists.
func (h *StaticHandler) Available() bool {
	info, err := os.Stat(h.dir)
	return err == nil && info.IsDir()
}

// Mount registers GET / (index.html) and GET /static/* on r.
func (h *StaticHandler) Mount(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/static/*", h.ServeFile)
}

// Index handles GET /.
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	abs := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(abs); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// ServeFile handles GET /static/*.
func (h *StaticHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.safePath(chi.URLParam(r, "*"))
	if !ok {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// safePath resolves rel under the static dir, rejecting traversal.
func (h *StaticHandler) safePath(rel string) (string, bool) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", false
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", false
	}
	root := filepath.Clean(h.dir)
	abs := filepath.Join(root, cleaned)
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", false
	}
	return abs, true
}
