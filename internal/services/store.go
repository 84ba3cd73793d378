package services

import (
	"context"

	"wayfare-backend/internal/models"
)

// EntryStore is the data access surface the scheduling engine consumes. The
// concrete Postgres implementation lives in internal/database; tests use
// in-memory fakes. Every method is a single-entry atomic operation — batch
// work (synthesis, cascade) is a sequence of these with no cross-entry
// transaction, so callers tolerate partial completion.
type EntryStore interface {
	// ListScheduledEntries returns the trip's scheduled entries, each with
	// its resolved (active) option.
	ListScheduledEntries(ctx context.Context, tripID string) ([]models.ScheduledEntry, error)

	// GetEntry returns one entry with its resolved option.
	GetEntry(ctx context.Context, entryID string) (*models.ScheduledEntry, error)

	// CreateEntryWithOption inserts an entry and its option atomically, so a
	// crash can never leave a half-written entry without content.
	CreateEntryWithOption(ctx context.Context, entry *models.Entry, option *models.EntryOption) error

	// UpdateEntryTimes moves an entry's time range.
	UpdateEntryTimes(ctx context.Context, entryID string, start, end int64) error

	// UnscheduleEntry moves an entry back to the ideas backlog.
	UnscheduleEntry(ctx context.Context, entryID string) error

	// ListLinkedEntries returns all entries linked to the given anchor flight.
	ListLinkedEntries(ctx context.Context, flightID string) ([]models.Entry, error)

	// DeleteEntry removes an entry and its options.
	DeleteEntry(ctx context.Context, entryID string) error
}
