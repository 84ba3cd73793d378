package models

// Trip is the container for a timeline of entries. It also holds the
// scheduling policy defaults consumed by the travel-inference engine.
type Trip struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Name    string `json:"name" db:"name"`

	// Policy defaults
	WalkThresholdMin    int    `json:"walk_threshold_min" db:"walk_threshold_min"`
	DefaultCheckinHours int    `json:"default_checkin_hours" db:"default_checkin_hours"`
	DefaultCheckoutMin  int    `json:"default_checkout_min" db:"default_checkout_min"`
	HomeTimezone        string `json:"home_timezone" db:"home_timezone"`

	// Calendar dates ("2006-01-02"). When absent, entry days are tracked as
	// offsets from a symbolic reference date instead of real calendar dates.
	StartDate *string `json:"start_date,omitempty" db:"start_date"`
	EndDate   *string `json:"end_date,omitempty" db:"end_date"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// HasFixedDates reports whether the trip is pinned to real calendar dates.
func (t *Trip) HasFixedDates() bool {
	return t.StartDate != nil && t.EndDate != nil
}
