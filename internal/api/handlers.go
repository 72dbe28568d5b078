package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codemark/codemark/internal/apperr"
	"github.com/codemark/codemark/internal/noteservice"
	"github.com/codemark/codemark/internal/sse"
	"github.com/codemark/codemark/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *noteservice.Service
	broker *sse.Broker
}

// NewHandler creates a Handler. broker may be nil when events are not wired.
func NewHandler(svc *noteservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func (h *Handler) publish(kind, id, displayPath string) {
	if h.broker != nil {
		h.broker.PublishNote(kind, id, displayPath)
	}
}

// ListNotes handles GET /notes, optionally filtered by ?file=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	if file := r.URL.Query().Get("file"); file != "" {
		writeJSON(w, http.StatusOK, map[string]any{"notes": h.svc.GetNotesInFile(r.Context(), file)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": h.svc.GetAllNotes(r.Context())})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n := h.svc.GetNote(r.Context(), id)
	if n == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	n, err := h.svc.AddNote(r.Context(), req.File, req.Content, store.AddOptions{
		ParentID: req.ParentID,
		NoteID:   req.NoteID,
		Line:     req.Line,
		Author:   req.Author,
		Type:     req.Type,
		Tags:     req.Tags,
		Related:  req.Related,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("parent not found"))
			return
		}
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.KindCreated, n.ID, n.DisplayPath)
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	n, err := h.svc.UpdateNote(r.Context(), id, req.Content)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.KindUpdated, n.ID, n.DisplayPath)
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.KindDeleted, id, "")
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles POST /notes/{id}/move.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.File == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("file is required"))
		return
	}

	n, err := h.svc.MoveNote(r.Context(), id, req.File, req.Line)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("move note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.KindMoved, n.ID, n.DisplayPath)
	writeJSON(w, http.StatusOK, n)
}

// Backlinks handles GET /notes/{id}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{"backlinks": h.svc.GetBacklinks(r.Context(), id)})
}

// Children handles GET /notes/{id}/children.
func (h *Handler) Children(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{"children": h.svc.GetChildren(r.Context(), id)})
}

// Related handles GET /notes/{id}/related?depth=N.
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	depth, _ := strconv.Atoi(r.URL.Query().Get("depth"))
	writeJSON(w, http.StatusOK, map[string]any{"related": h.svc.GetRelated(r.Context(), id, depth)})
}

// Search handles GET /search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, map[string]any{"results": h.svc.Search(r.Context(), q, limit)})
}

// Graph handles GET /graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.LinkGraph(r.Context()))
}

// Orphans handles GET /orphans.
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"orphans": h.svc.GetOrphans(r.Context())})
}

// Popular handles GET /popular?limit=.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, map[string]any{"popular": h.svc.GetPopular(r.Context(), limit)})
}

// Project handles GET /project.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	root := h.svc.GetProjectRoot(r.Context())
	if root == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no project root"))
		return
	}
	writeJSON(w, http.StatusOK, root)
}
