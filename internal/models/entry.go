package models

import "time"

// LinkRole identifies how a derived entry relates to its anchor flight
type LinkRole string

const (
	LinkRoleCheckin  LinkRole = "checkin"
	LinkRoleCheckout LinkRole = "checkout"
)

// Entry represents a scheduled or unscheduled block of time on a trip's
// timeline. Times are UTC unix seconds; local wall-clock interpretation
// depends on the per-day effective time zone of the trip.
type Entry struct {
	ID        string `json:"id" db:"id"`
	TripID    string `json:"trip_id" db:"trip_id"`
	StartTime int64  `json:"start_time" db:"start_time"`
	EndTime   int64  `json:"end_time" db:"end_time"`

	// A locked entry's time range is immutable by automated resolution
	// (cascade or recommendations). Only explicit user edits may move it.
	Locked bool `json:"locked" db:"locked"`

	// Unscheduled entries sit in the ideas backlog, off the timeline.
	Scheduled bool `json:"scheduled" db:"scheduled"`

	// DayIndex is used only when the trip has no fixed calendar dates.
	DayIndex *int `json:"day_index,omitempty" db:"day_index"`

	// Link to an anchor flight for derived checkin/checkout blocks.
	LinkedFlightID *string `json:"linked_flight_id,omitempty" db:"linked_flight_id"`
	LinkRole       *string `json:"link_role,omitempty" db:"link_role"`

	// The two entries a transfer bridges.
	FromEntryID *string `json:"from_entry_id,omitempty" db:"from_entry_id"`
	ToEntryID   *string `json:"to_entry_id,omitempty" db:"to_entry_id"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// Start returns the entry start as a time.Time in UTC.
func (e *Entry) Start() time.Time {
	return time.Unix(e.StartTime, 0).UTC()
}

// End returns the entry end as a time.Time in UTC.
func (e *Entry) End() time.Time {
	return time.Unix(e.EndTime, 0).UTC()
}

// DurationMinutes returns the entry length in minutes.
func (e *Entry) DurationMinutes() float64 {
	return float64(e.EndTime-e.StartTime) / 60.0
}

// IsLinkedTo reports whether this entry is a derived block of the given flight.
func (e *Entry) IsLinkedTo(flightID string, role LinkRole) bool {
	return e.LinkedFlightID != nil && *e.LinkedFlightID == flightID &&
		e.LinkRole != nil && LinkRole(*e.LinkRole) == role
}

// ScheduledEntry is the resolved view the scheduling engine operates on: an
// entry plus its single authoritative option. The underlying model allows
// several competing options per entry for voting; picking the active one
// happens in the store, never inside the engine.
type ScheduledEntry struct {
	Entry  Entry       `json:"entry"`
	Option EntryOption `json:"option"`
}
