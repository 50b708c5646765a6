package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/checksum"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/wikiservice"
)

const maxPushBody = 64 << 10

// Handler holds API route handlers.
type Handler struct {
	svc *wikiservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *wikiservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Status handles GET /api/status. Warnings are still 200; only a filesystem
// failure is a 500.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Status(r.Context())
	code := http.StatusOK
	if snap.Status == models.StatusError {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, snap)
}

// Pull handles POST /api/pull. Failures are reported in the body.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Pull(r.Context()))
}

// Push handles POST /api/push.
//
// The message comes from the msg or message query parameter, or from a JSON
// body with the same keys. Failures are reported in the body.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	req, err := readPushRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Push(r.Context(), req.Text()))
}

func readPushRequest(w http.ResponseWriter, r *http.Request) (PushRequest, error) {
	q := r.URL.Query()
	req := PushRequest{Msg: q.Get("msg"), Message: q.Get("message")}
	if req.Text() != "" || r.Body == nil {
		return req, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBody))
	if err != nil {
		return req, errors.New("failed to read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, errors.New("invalid JSON body")
	}
	return req, nil
}

// History handles GET /api/history?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.History(r.Context(), limit)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		slog.Error("list categories failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: cats})
}

// ListDocuments handles GET /api/content/{category}.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	cat := chi.URLParam(r, "category")
	stems, err := h.svc.ListDocuments(r.Context(), cat)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCategory) {
			writeError(w, http.StatusNotFound, "unknown category")
			return
		}
		slog.Error("list documents failed", slog.String("category", cat), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Category: cat, Documents: stems})
}

// GetDocument handles GET /api/content/{category}/{stem}. With ?render=html
// the response also carries the rendered body.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	cat := chi.URLParam(r, "category")
	stem := chi.URLParam(r, "stem")
	renderHTML := r.URL.Query().Get("render") == "html"

	doc, err := h.svc.GetDocument(r.Context(), cat, stem, renderHTML)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("get document failed",
			slog.String("category", cat),
			slog.String("stem", stem),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	etag := checksum.ETag(doc.Checksum)
	w.Header().Set("ETag", etag)
	if !renderHTML && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
