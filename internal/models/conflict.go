package models

// ConflictInfo quantifies how much a placed entry's required travel time
// exceeds the available gaps around it. Computed on demand, never persisted.
type ConflictInfo struct {
	EntryID         string  `json:"entry_id"`
	EntryName       string  `json:"entry_name"`
	DiscrepancyMin  int     `json:"discrepancy_min"`
	TravelBeforeMin float64 `json:"travel_before_min"`
	TravelAfterMin  float64 `json:"travel_after_min"`

	// Raw gaps in minutes, rounded. Nil means no neighbor on that side
	// (an unbounded gap).
	PrevGapMin *float64 `json:"prev_gap_min,omitempty"`
	NextGapMin *float64 `json:"next_gap_min,omitempty"`
}

// Fits reports whether the placement needs no adjustment.
func (c *ConflictInfo) Fits() bool {
	return c.DiscrepancyMin <= 0
}

// ScheduleChange is one concrete time edit proposed by a recommendation.
// Times are UTC unix seconds.
type ScheduleChange struct {
	EntryID  string `json:"entry_id"`
	NewStart int64  `json:"new_start"`
	NewEnd   int64  `json:"new_end"`
}

// Recommendation is a candidate schedule edit that reclaims the conflict's
// discrepancy. An empty change list means "unschedule this entry" — callers
// must not interpret it as a no-op time edit.
type Recommendation struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Changes     []ScheduleChange `json:"changes"`
}
