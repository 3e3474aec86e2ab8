package store

import (
	"context"
	"time"
)

// Store persists standoff annotations produced by conversion runs
type Store interface {
	Close() error

	// Runs
	BeginRun(ctx context.Context, r Run) error
	Runs(ctx context.Context) ([]Run, error)

	// Documents
	PutDocument(ctx context.Context, d Document) error
	GetDocument(ctx context.Context, runID, docID string, tagIndex int) (Document, bool, error)
	ListDocuments(ctx context.Context, runID string) ([]Document, error)

	// Entities
	EntitiesByType(ctx context.Context, runID, entityType string) ([]Entity, error)
}

// Run represents one invocation converting a set of documents
type Run struct {
	ID         string // ULID
	StartedAt  time.Time
	TagIndices []int
	Source     string
}

// Document holds the entities produced for one document and tag column.
// PutDocument replaces any entities stored for the same
// (RunID, DocID, TagIndex).
type Document struct {
	RunID    string
	DocID    string
	TagIndex int
	Entities []Entity
}

// Entity represents a stored text-bound annotation
type Entity struct {
	DocID string
	ID    int
	Type  string
	Start int
	End   int
	Text  string
}
