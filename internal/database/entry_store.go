package database

import (
	"context"
	"database/sql"
	"fmt"

	"wayfare-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// EntryStore is the Postgres-backed data access layer the scheduling engine
// uses. Each method is a single atomic operation; multi-entry flows (transfer
// synthesis, cascades) are sequences of these and tolerate partial completion.
type EntryStore struct {
	db *sqlx.DB
}

// NewEntryStore creates an entry store over an open database handle.
func NewEntryStore(db *sqlx.DB) *EntryStore {
	return &EntryStore{db: db}
}

// ListScheduledEntries returns a trip's scheduled entries with their resolved
// options, ordered by start time. The resolved option is the one with the
// lowest position; entries without any option are skipped.
func (s *EntryStore) ListScheduledEntries(ctx context.Context, tripID string) ([]models.ScheduledEntry, error) {
	var entries []models.Entry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT * FROM entries
		WHERE trip_id = $1 AND scheduled = TRUE
		ORDER BY start_time
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	var options []models.EntryOption
	err = s.db.SelectContext(ctx, &options, `
		SELECT DISTINCT ON (o.entry_id) o.*
		FROM entry_options o
		JOIN entries e ON e.id = o.entry_id
		WHERE e.trip_id = $1 AND e.scheduled = TRUE
		ORDER BY o.entry_id, o.position
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry options: %w", err)
	}

	byEntry := make(map[string]models.EntryOption, len(options))
	for _, o := range options {
		byEntry[o.EntryID] = o
	}

	result := make([]models.ScheduledEntry, 0, len(entries))
	for _, e := range entries {
		option, ok := byEntry[e.ID]
		if !ok {
			continue
		}
		result = append(result, models.ScheduledEntry{Entry: e, Option: option})
	}
	return result, nil
}

// GetEntry returns one entry with its resolved option.
func (s *EntryStore) GetEntry(ctx context.Context, entryID string) (*models.ScheduledEntry, error) {
	var entry models.Entry
	err := s.db.GetContext(ctx, &entry, `SELECT * FROM entries WHERE id = $1`, entryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("entry not found: %s", entryID)
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	var option models.EntryOption
	err = s.db.GetContext(ctx, &option, `
		SELECT * FROM entry_options
		WHERE entry_id = $1
		ORDER BY position
		LIMIT 1
	`, entryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("entry %s has no options", entryID)
		}
		return nil, fmt.Errorf("failed to get entry option: %w", err)
	}

	return &models.ScheduledEntry{Entry: entry, Option: option}, nil
}

// CreateEntryWithOption inserts an entry and its option in one transaction,
// so a crash can never leave an entry without content.
func (s *EntryStore) CreateEntryWithOption(ctx context.Context, entry *models.Entry, option *models.EntryOption) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO entries (id, trip_id, start_time, end_time, locked, scheduled,
			day_index, linked_flight_id, link_role, from_entry_id, to_entry_id,
			created_at, updated_at)
		VALUES (:id, :trip_id, :start_time, :end_time, :locked, :scheduled,
			:day_index, :linked_flight_id, :link_role, :from_entry_id, :to_entry_id,
			:created_at, :updated_at)
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO entry_options (id, entry_id, position, name, category,
			departure_location, arrival_location, departure_timezone, arrival_timezone,
			departure_terminal, arrival_terminal, checkin_hours, checkout_minutes,
			chosen_mode, distance_km, encoded_path, candidate_modes,
			latitude, longitude, address, created_at, updated_at)
		VALUES (:id, :entry_id, :position, :name, :category,
			:departure_location, :arrival_location, :departure_timezone, :arrival_timezone,
			:departure_terminal, :arrival_terminal, :checkin_hours, :checkout_minutes,
			:chosen_mode, :distance_km, :encoded_path, :candidate_modes,
			:latitude, :longitude, :address, :created_at, :updated_at)
	`, option)
	if err != nil {
		return fmt.Errorf("failed to insert entry option: %w", err)
	}

	return tx.Commit()
}

// UpdateEntryTimes moves an entry's time range.
func (s *EntryStore) UpdateEntryTimes(ctx context.Context, entryID string, start, end int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET start_time = $1, end_time = $2, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $3
	`, start, end, entryID)
	if err != nil {
		return fmt.Errorf("failed to update entry times: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry not found: %s", entryID)
	}
	return nil
}

// UnscheduleEntry moves an entry back to the ideas backlog.
func (s *EntryStore) UnscheduleEntry(ctx context.Context, entryID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET scheduled = FALSE, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $1
	`, entryID)
	if err != nil {
		return fmt.Errorf("failed to unschedule entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry not found: %s", entryID)
	}
	return nil
}

// ListLinkedEntries returns all entries linked to the given anchor flight.
func (s *EntryStore) ListLinkedEntries(ctx context.Context, flightID string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT * FROM entries
		WHERE linked_flight_id = $1
		ORDER BY start_time
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry; its options go with it via ON DELETE CASCADE.
func (s *EntryStore) DeleteEntry(ctx context.Context, entryID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry not found: %s", entryID)
	}
	return nil
}
