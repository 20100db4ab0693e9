package event

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (p *capturingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *capturingPublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderDeliversEvents(t *testing.T) {
	publisher := &capturingPublisher{}
	recorder := NewRecorder(publisher, discardLogger(), 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- recorder.Run(ctx) }()

	recorder.Record(TypeDocumentCreated, "doc_1", "Pending")
	recorder.Record(TypeStatusChanged, "doc_1", "Processed")

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	events := publisher.snapshot()
	assert.Equal(t, TypeDocumentCreated, events[0].Type)
	assert.Equal(t, "doc_1", events[0].DocumentID)
	assert.Equal(t, "Pending", events[0].Status)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].At.IsZero())
	assert.Equal(t, TypeStatusChanged, events[1].Type)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, publisher.closed)
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	publisher := &capturingPublisher{}
	// Worker never started: the buffer fills and stays full.
	recorder := NewRecorder(publisher, discardLogger(), 2)

	for i := 0; i < 10; i++ {
		recorder.Record(TypeDocumentCreated, "doc_overflow", "Pending")
	}

	// Record never blocked; only the buffered two are pending.
	assert.Len(t, recorder.inbox, 2)
}

func TestRecorderDrainsBufferedEventsOnShutdown(t *testing.T) {
	publisher := &capturingPublisher{}
	recorder := NewRecorder(publisher, discardLogger(), 16)

	recorder.Record(TypeSelectionsReplaced, "doc_1", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, recorder.Run(ctx))

	events := publisher.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, TypeSelectionsReplaced, events[0].Type)
	assert.True(t, publisher.closed)
}
