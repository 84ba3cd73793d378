package models

import "encoding/json"

// Category tags for entry options. Activities carry free-form categories;
// these are the ones the scheduling engine gives special treatment.
const (
	CategoryFlight   = "flight"
	CategoryTransfer = "transfer"
	CategoryHotel    = "hotel"
)

// IsTransportCategory reports whether a category represents a travel leg.
// The synthesizer never chains a transfer onto another transport block.
func IsTransportCategory(category string) bool {
	switch category {
	case CategoryTransfer, "travel", "transport":
		return true
	}
	return false
}

// CandidateMode is one travel mode with real route data, kept on a transfer
// option so the mode can be re-selected later without re-querying.
type CandidateMode struct {
	Mode        string  `json:"mode"`
	DurationMin float64 `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Path        string  `json:"path,omitempty"`
}

// EntryOption is the descriptive content attached to an entry. An entry may
// have several options for voting; the engine sees one resolved option.
type EntryOption struct {
	ID       string `json:"id" db:"id"`
	EntryID  string `json:"entry_id" db:"entry_id"`
	Position int    `json:"position" db:"position"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`

	// Flight fields. A flight option always carries both time zones.
	DepartureLocation *string `json:"departure_location,omitempty" db:"departure_location"`
	ArrivalLocation   *string `json:"arrival_location,omitempty" db:"arrival_location"`
	DepartureTimezone *string `json:"departure_timezone,omitempty" db:"departure_timezone"`
	ArrivalTimezone   *string `json:"arrival_timezone,omitempty" db:"arrival_timezone"`
	DepartureTerminal *string `json:"departure_terminal,omitempty" db:"departure_terminal"`
	ArrivalTerminal   *string `json:"arrival_terminal,omitempty" db:"arrival_terminal"`
	CheckinHours      *int    `json:"checkin_hours,omitempty" db:"checkin_hours"`
	CheckoutMinutes   *int    `json:"checkout_minutes,omitempty" db:"checkout_minutes"`

	// Transfer fields. ChosenMode must be present in CandidateModes when the
	// candidate set is non-empty.
	ChosenMode     *string         `json:"chosen_mode,omitempty" db:"chosen_mode"`
	DistanceKm     *float64        `json:"distance_km,omitempty" db:"distance_km"`
	EncodedPath    *string         `json:"encoded_path,omitempty" db:"encoded_path"`
	CandidateModes json.RawMessage `json:"candidate_modes,omitempty" db:"candidate_modes"`

	// Generic activity fields
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
	Address   *string  `json:"address,omitempty" db:"address"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// ParseCandidateModes decodes the stored candidate-mode set. A missing or
// empty column yields an empty slice, not an error.
func (o *EntryOption) ParseCandidateModes() ([]CandidateMode, error) {
	if len(o.CandidateModes) == 0 {
		return nil, nil
	}
	var modes []CandidateMode
	if err := json.Unmarshal(o.CandidateModes, &modes); err != nil {
		return nil, err
	}
	return modes, nil
}

// SetCandidateModes encodes and stores the candidate-mode set.
func (o *EntryOption) SetCandidateModes(modes []CandidateMode) error {
	data, err := json.Marshal(modes)
	if err != nil {
		return err
	}
	o.CandidateModes = data
	return nil
}

// IsFlight reports whether the option describes a flight.
func (o *EntryOption) IsFlight() bool {
	return o.Category == CategoryFlight
}
