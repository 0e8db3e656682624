package pipeline

import (
	"context"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Store is the document store the pipeline reads from and writes to
type Store interface {
	// FindAll returns every record of the collection.
	FindAll(ctx context.Context) ([]*event.Record, error)

	// DeleteByIDs removes the records with the given ids and returns how many
	// were removed.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// UpdateFields sets the given dotted field paths on one record and stamps
	// its updatedAt.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	// Count returns the number of records.
	Count(ctx context.Context) (int64, error)

	// CountWithContact returns the number of records with at least one
	// non-empty, non-sentinel contact channel.
	CountWithContact(ctx context.Context) (int64, error)
}

// Archiver keeps a copy of documents before they are deleted
type Archiver interface {
	Archive(ctx context.Context, runID string, deletions []Deletion) error
}
