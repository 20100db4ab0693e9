// Package service implements the document registry: the five operations and
// the consistency protocol between the primary records and the index record.
//
// The registry is logically single-threaded. Go's HTTP server is not, so the
// registry serializes its operations behind one mutex; every operation runs
// to completion before the next starts, and the read-modify-write of the
// index record is one critical section per operation.
//
// The index and a primary record are two independent kv entries and the kv
// contract has no multi-key transactions, so the two dual-write operations
// each fix a write order and accept a named crash window:
//
//   - Create writes the index first, then the primary record. A crash in
//     between leaves an id listed whose Get is NotFound (the create window).
//   - TransitionStatus writes the primary record first, then the index. A
//     crash in between leaves Get showing the new status while List still
//     shows the old one (the status window).
//
// No retries and no rollback: a failed write surfaces as an error and the
// window is the accepted cost. Readers must tolerate both windows.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"quire/internal/event"
	"quire/internal/registry/metrics"
	"quire/internal/registry/models"
	"quire/internal/registry/store"
	"quire/pkg/requestcontext"
)

// Store is the two-namespace persistence surface the registry mutates.
type Store interface {
	GetDocument(ctx context.Context, id string) (models.Document, error)
	PutDocument(ctx context.Context, doc models.Document) error
	GetIndex(ctx context.Context) ([]models.Summary, error)
	PutIndex(ctx context.Context, index []models.Summary) error
}

// Events receives lifecycle notifications. Implementations must not block.
type Events interface {
	Record(eventType event.Type, documentID, status string)
}

type noopEvents struct{}

func (noopEvents) Record(event.Type, string, string) {}

// Registry owns the document aggregate. One instance is the only writer of
// its kv address space.
type Registry struct {
	mu      sync.Mutex
	store   Store
	events  Events
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// New creates a Registry. events, m and tracer may be nil; nil disables the
// corresponding concern.
func New(s Store, events Events, m *metrics.Metrics, tracer trace.Tracer, logger *slog.Logger) *Registry {
	if events == nil {
		events = noopEvents{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("registry")
	}
	return &Registry{
		store:   s,
		events:  events,
		metrics: m,
		tracer:  tracer,
		logger:  logger,
	}
}

// Create registers a new document with status Pending and prepends its
// projection to the index. Write order: index record first, then primary
// record (the create window, see the package comment).
func (r *Registry) Create(ctx context.Context, title, docType string, urls []string) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := requestcontext.Now(ctx).UTC()
	doc := models.Document{
		ID:        newDocumentID(now),
		Title:     title,
		Type:      docType,
		Status:    models.StatusPending,
		CreatedAt: now,
		URLs:      urls,
	}

	ctx, span := r.tracer.Start(ctx, "registry.create",
		trace.WithAttributes(attribute.String("document.id", doc.ID)))
	defer span.End()

	index, err := r.store.GetIndex(ctx)
	if err != nil {
		return models.Document{}, fmt.Errorf("create %q: %w", doc.ID, err)
	}
	index = append([]models.Summary{models.Summarize(doc)}, index...)
	if err := r.store.PutIndex(ctx, index); err != nil {
		return models.Document{}, fmt.Errorf("create %q: %w", doc.ID, err)
	}
	if err := r.store.PutDocument(ctx, doc); err != nil {
		// The id is now listed but unreadable: the create window.
		return models.Document{}, fmt.Errorf("create %q: %w", doc.ID, err)
	}

	if r.metrics != nil {
		r.metrics.DocumentsCreated.Inc()
		r.metrics.IndexSize.Set(float64(len(index)))
	}
	r.events.Record(event.TypeDocumentCreated, doc.ID, string(doc.Status))
	r.logger.InfoContext(ctx, "document created",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", doc.ID,
		"type", docType,
	)
	return doc, nil
}

// Get reads the primary record. Pure read, no side effects.
func (r *Registry) Get(ctx context.Context, id string) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "registry.get",
		trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	return r.store.GetDocument(ctx, id)
}

// List reads the index record. Pure read; an untouched registry lists empty.
func (r *Registry) List(ctx context.Context) ([]models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "registry.list")
	defer span.End()

	return r.store.GetIndex(ctx)
}

// ReplaceSelections replaces the document's selections wholesale. Selections
// are not projected into the index, so only the primary record is written.
// A missing id is a silent no-op success.
func (r *Registry) ReplaceSelections(ctx context.Context, id string, selections []models.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "registry.replace_selections",
		trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	doc, err := r.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.DebugContext(ctx, "replace selections on unknown document, ignoring",
			"document_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("replace selections %q: %w", id, err)
	}

	if selections == nil {
		selections = []models.Selection{}
	}
	doc.Selections = selections
	if err := r.store.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("replace selections %q: %w", id, err)
	}

	if r.metrics != nil {
		r.metrics.SelectionsReplaced.Inc()
	}
	r.events.Record(event.TypeSelectionsReplaced, id, "")
	return nil
}

// TransitionStatus sets the document's status and propagates it into the
// index projection, leaving order and every other projection untouched.
// Write order: primary record first, then index (the status window, see the
// package comment). A missing id is a silent no-op success.
func (r *Registry) TransitionStatus(ctx context.Context, id string, newStatus models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "registry.transition_status",
		trace.WithAttributes(
			attribute.String("document.id", id),
			attribute.String("document.status", string(newStatus)),
		))
	defer span.End()

	doc, err := r.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.DebugContext(ctx, "status transition on unknown document, ignoring",
			"document_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("transition status %q: %w", id, err)
	}

	doc.Status = newStatus
	if err := r.store.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("transition status %q: %w", id, err)
	}

	index, err := r.store.GetIndex(ctx)
	if err != nil {
		// Primary already carries the new status: the status window.
		return fmt.Errorf("transition status %q: %w", id, err)
	}
	for i := range index {
		if index[i].ID == id {
			index[i].Status = newStatus
		}
	}
	if err := r.store.PutIndex(ctx, index); err != nil {
		return fmt.Errorf("transition status %q: %w", id, err)
	}

	if r.metrics != nil {
		r.metrics.StatusTransitions.WithLabelValues(string(newStatus)).Inc()
	}
	r.events.Record(event.TypeStatusChanged, id, string(newStatus))
	r.logger.InfoContext(ctx, "document status changed",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", id,
		"status", string(newStatus),
	)
	return nil
}

// newDocumentID builds a time-ordered id with a random suffix so two creates
// in the same millisecond cannot collide.
func newDocumentID(now time.Time) string {
	return fmt.Sprintf("doc_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
