// Package models holds the registry's domain types and wire DTOs.
package models

import (
	"encoding/json"
	"time"

	dErrors "quire/pkg/domain-errors"
)

// Status is the document processing state. All transitions between the three
// values are permitted; Pending is the initial state.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusProcessed   Status = "Processed"
	StatusNeedsReview Status = "NeedsReview"
)

// ParseStatus validates a client-supplied status value at the trust boundary.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusProcessed, StatusNeedsReview:
		return Status(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "Invalid status")
	}
}

// Selection is a client-authored annotation attached to a document: geometry
// plus a label and a kind discriminator (e.g. rectangle vs point). Uniqueness
// of IDs is the client's business; the registry stores what it is given.
type Selection struct {
	ID     int       `json:"id"`
	Color  string    `json:"color"`
	Points []float64 `json:"points"`
	Text   string    `json:"text"`
	Type   string    `json:"type"`
}

// Document is the primary record, keyed by ID. Title, Type, URLs and
// CreatedAt are immutable after creation; Status moves via the transition
// operation and Selections via full replacement.
type Document struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	URLs           []string        `json:"urls"`
	AnalysisResult json.RawMessage `json:"analysisResult,omitempty"`
	// omitzero, not omitempty: a document that never had selections omits the
	// field, while an explicit replacement with zero selections keeps "[]".
	Selections []Selection `json:"selections,omitzero"`
}

// Summary is the projection of a document stored in the index record. It
// carries everything except selections and the analysis payload, so selection
// updates provably never touch the index.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	URLs      []string  `json:"urls"`
}

// Summarize projects a document into its index entry.
func Summarize(doc Document) Summary {
	return Summary{
		ID:        doc.ID,
		Title:     doc.Title,
		Type:      doc.Type,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		URLs:      doc.URLs,
	}
}
