// Package event provides the fire-and-forget lifecycle event trail. Mutating
// registry operations record an event; a background worker hands it to the
// configured publisher. Recording never fails or delays the operation that
// produced it.
package event

import (
	"context"
	"time"
)

// Type identifies what happened to a document.
type Type string

const (
	TypeDocumentCreated    Type = "document.created"
	TypeStatusChanged      Type = "document.status_changed"
	TypeSelectionsReplaced Type = "document.selections_replaced"
)

// Event is one lifecycle occurrence.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	DocumentID string    `json:"documentId"`
	Status     string    `json:"status,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers events somewhere durable enough for observability.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
