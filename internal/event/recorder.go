package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "quire_events_dropped_total",
	Help: "Lifecycle events dropped because the recorder buffer was full",
})

const defaultBufferSize = 256

// Recorder buffers events and publishes them from a background worker.
// Record drops on a full buffer rather than blocking the caller.
type Recorder struct {
	inbox     chan Event
	publisher Publisher
	logger    *slog.Logger
}

// NewRecorder creates a recorder feeding the given publisher. bufferSize <= 0
// selects the default.
func NewRecorder(publisher Publisher, logger *slog.Logger, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Recorder{
		inbox:     make(chan Event, bufferSize),
		publisher: publisher,
		logger:    logger,
	}
}

// Record enqueues an event, assigning its ID and timestamp. Never blocks.
func (r *Recorder) Record(eventType Type, documentID, status string) {
	e := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		DocumentID: documentID,
		Status:     status,
		At:         time.Now().UTC(),
	}
	select {
	case r.inbox <- e:
	default:
		droppedEvents.Inc()
		r.logger.Warn("event buffer full, dropping event",
			"type", string(eventType),
			"document_id", documentID,
		)
	}
}

// Run consumes the inbox until ctx is canceled, then drains what is already
// buffered and closes the publisher.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return r.publisher.Close()
		case e := <-r.inbox:
			r.publish(ctx, e)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.inbox:
			r.publish(context.Background(), e)
		default:
			return
		}
	}
}

func (r *Recorder) publish(ctx context.Context, e Event) {
	if err := r.publisher.Publish(ctx, e); err != nil {
		r.logger.Error("publish event failed",
			"type", string(e.Type),
			"document_id", e.DocumentID,
			"error", err.Error(),
		)
	}
}
