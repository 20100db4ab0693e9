// Package handler maps the HTTP surface onto the registry operations.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quire/internal/registry/models"
	dErrors "quire/pkg/domain-errors"
	"quire/pkg/platform/httputil"
	"quire/pkg/requestcontext"
)

// Service defines the registry operations the handler dispatches to.
type Service interface {
	Create(ctx context.Context, title, docType string, urls []string) (models.Document, error)
	Get(ctx context.Context, id string) (models.Document, error)
	List(ctx context.Context) ([]models.Summary, error)
	ReplaceSelections(ctx context.Context, id string, selections []models.Selection) error
	TransitionStatus(ctx context.Context, id string, newStatus models.Status) error
}

// Handler handles the document endpoints.
type Handler struct {
	logger   *slog.Logger
	registry Service
}

// New creates a document Handler.
func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// Register mounts the document routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/selections", h.handleReplaceSelections)
		r.Put("/{id}/status", h.handleTransitionStatus)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index, err := h.registry.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list documents failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, index)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateDocumentRequest
	if err := httputil.Decode(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create document request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.registry.Create(ctx, req.Title, req.Type, req.URLs)
	if err != nil {
		h.logger.ErrorContext(ctx, "create document failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := h.registry.Get(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get document failed",
				"request_id", requestcontext.RequestID(ctx),
				"document_id", id,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleReplaceSelections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req models.ReplaceSelectionsRequest
	if err := httputil.Decode(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid replace selections request",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if err := h.registry.ReplaceSelections(ctx, id, req.Selections); err != nil {
		h.logger.ErrorContext(ctx, "replace selections failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w)
}

func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req models.TransitionStatusRequest
	if err := httputil.Decode(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid status transition request",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "unknown status value",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"status", req.Status,
		)
		httputil.WriteError(w, err)
		return
	}

	if err := h.registry.TransitionStatus(ctx, id, status); err != nil {
		h.logger.ErrorContext(ctx, "status transition failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w)
}
