package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"wayfare-backend/internal/models"
	"wayfare-backend/internal/schedule"

	"github.com/google/uuid"
)

// OverlapReport flags a synthesized transfer that runs past the next entry's
// start. Synthesis detects and reports overlaps; resolving them is left to
// the conflict/recommendation flow.
type OverlapReport struct {
	TransferID  string `json:"transfer_id"`
	NextEntryID string `json:"next_entry_id"`
	OverlapMin  int    `json:"overlap_min"`
}

// SynthesisResult is the outcome of one synthesis pass over a trip.
type SynthesisResult struct {
	Created  []models.ScheduledEntry `json:"created"`
	Overlaps []OverlapReport         `json:"overlaps"`
}

// TransportSynthesizer walks a trip's timeline and fills gaps between
// consecutive same-day activities with transfer entries backed by real
// travel data.
type TransportSynthesizer struct {
	store    EntryStore
	resolver *ModeResolver
}

// NewTransportSynthesizer creates a synthesizer over the given store and
// route resolver
func NewTransportSynthesizer(store EntryStore, resolver *ModeResolver) *TransportSynthesizer {
	return &TransportSynthesizer{store: store, resolver: resolver}
}

// SynthesizeTransfers ensures every pair of chronologically consecutive,
// same-day, non-transport entries without an existing bridging transfer gets
// one. Per-pair failures (unresolvable endpoints, no route, a failed write)
// skip that pair and continue, so one bad leg never blocks the rest of the
// trip. Cancellation stops before the next pair; entries already created
// stay valid.
func (ts *TransportSynthesizer) SynthesizeTransfers(ctx context.Context, trip models.Trip) (*SynthesisResult, error) {
	entries, err := ts.store.ListScheduledEntries(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	result := &SynthesisResult{
		Created:  []models.ScheduledEntry{},
		Overlaps: []OverlapReport{},
	}
	if len(entries) < 2 {
		return result, nil
	}

	zones, err := DayZones(trip, entries)
	if err != nil {
		return nil, err
	}
	buckets, err := schedule.PartitionByDay(entries, zones)
	if err != nil {
		return nil, err
	}

	log.Printf("🧭 Synthesizing transfers for trip %s (%d entries, %d days)", trip.ID, len(entries), len(buckets))

	for _, day := range schedule.SortedDays(zones) {
		dayEntries := buckets[day]
		if len(dayEntries) < 2 {
			continue
		}
		if err := ts.synthesizeDay(ctx, trip, dayEntries, result); err != nil {
			return result, err
		}
	}

	log.Printf("✅ Synthesis complete: %d transfers created, %d overlaps detected", len(result.Created), len(result.Overlaps))
	return result, nil
}

func (ts *TransportSynthesizer) synthesizeDay(ctx context.Context, trip models.Trip, dayEntries []models.ScheduledEntry, result *SynthesisResult) error {
	// Checkin/checkout sub-blocks are folded into their anchor flight: the
	// checkout's end is when travel can begin after landing, the checkin's
	// start is the deadline for reaching the next flight.
	checkoutEnd := make(map[string]time.Time)
	checkinStart := make(map[string]time.Time)
	var main []models.ScheduledEntry
	for _, e := range dayEntries {
		if e.Entry.LinkedFlightID != nil && e.Entry.LinkRole != nil {
			switch models.LinkRole(*e.Entry.LinkRole) {
			case models.LinkRoleCheckout:
				checkoutEnd[*e.Entry.LinkedFlightID] = e.Entry.End()
				continue
			case models.LinkRoleCheckin:
				checkinStart[*e.Entry.LinkedFlightID] = e.Entry.Start()
				continue
			}
		}
		main = append(main, e)
	}

	for i := 0; i+1 < len(main); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, b := main[i], main[i+1]

		// Never chain a transfer onto another transport block.
		if models.IsTransportCategory(a.Option.Category) || models.IsTransportCategory(b.Option.Category) {
			continue
		}
		if hasBridgingTransfer(dayEntries, a.Entry.End(), b.Entry.Start()) {
			continue
		}

		from := departurePoint(a)
		to := arrivalPoint(b)
		if !from.Resolved() || !to.Resolved() {
			log.Printf("⚠️  Skipping pair %s → %s: unresolvable endpoint", a.Option.Name, b.Option.Name)
			continue
		}

		transportStart := a.Entry.End()
		if a.Option.IsFlight() {
			if end, ok := checkoutEnd[a.Entry.ID]; ok {
				transportStart = end
			}
		}
		deadline := b.Entry.Start()
		if b.Option.IsFlight() {
			if start, ok := checkinStart[b.Entry.ID]; ok {
				// A checkin window that already covers the gap means the
				// traveler is heading to the airport anyway.
				deadline = start
			}
		}
		if !transportStart.Before(deadline) {
			continue
		}

		modes := ts.resolver.ResolveModes(ctx, from, to, []TravelMode{ModeWalk, ModeTransit}, &transportStart)
		chosen := PickSynthesisMode(modes, trip.WalkThresholdMin)
		if chosen == nil {
			continue
		}

		blockMin := transferBlockMinutes(chosen.DurationMin)
		end := transportStart.Add(time.Duration(blockMin) * time.Minute)

		entry := models.Entry{
			ID:          uuid.New().String(),
			TripID:      trip.ID,
			StartTime:   transportStart.Unix(),
			EndTime:     end.Unix(),
			Scheduled:   true,
			Locked:      false,
			FromEntryID: &main[i].Entry.ID,
			ToEntryID:   &main[i+1].Entry.ID,
			CreatedAt:   time.Now().Unix(),
			UpdatedAt:   time.Now().Unix(),
		}
		option := buildTransferOption(entry.ID, chosen, modes, from, to, b)
		if err := ts.store.CreateEntryWithOption(ctx, &entry, &option); err != nil {
			// One bad write must not block unrelated legs.
			log.Printf("❌ Failed to create transfer %s → %s: %v", a.Option.Name, b.Option.Name, err)
			continue
		}

		result.Created = append(result.Created, models.ScheduledEntry{Entry: entry, Option: option})
		if end.After(b.Entry.Start()) {
			overlap := int(math.Round(end.Sub(b.Entry.Start()).Minutes()))
			result.Overlaps = append(result.Overlaps, OverlapReport{
				TransferID:  entry.ID,
				NextEntryID: b.Entry.ID,
				OverlapMin:  overlap,
			})
			log.Printf("⚠️  Transfer to %s overlaps its start by %d min", b.Option.Name, overlap)
		}
	}
	return nil
}

// transferBlockMinutes rounds a travel duration up to a 5-minute boundary
// with a 5-minute floor, giving minor padding and a legible block length.
func transferBlockMinutes(durationMin float64) int {
	block := int(math.Ceil(durationMin/5.0)) * 5
	if block < 5 {
		block = 5
	}
	return block
}

// hasBridgingTransfer reports whether a transport entry already starts
// within the gap.
func hasBridgingTransfer(dayEntries []models.ScheduledEntry, gapStart, gapEnd time.Time) bool {
	for _, e := range dayEntries {
		if !models.IsTransportCategory(e.Option.Category) {
			continue
		}
		start := e.Entry.Start()
		if !start.Before(gapStart) && !start.After(gapEnd) {
			return true
		}
	}
	return false
}

// departurePoint resolves where travel leaves from after entry a. A flight's
// effective location is where it lands, not where it took off.
func departurePoint(a models.ScheduledEntry) RoutePoint {
	if a.Option.IsFlight() && a.Option.ArrivalLocation != nil && *a.Option.ArrivalLocation != "" {
		return RoutePoint{Address: *a.Option.ArrivalLocation}
	}
	return fallbackPoint(a, a.Option.ArrivalLocation)
}

// arrivalPoint resolves where travel must reach before entry b. For a flight
// that is its departure airport.
func arrivalPoint(b models.ScheduledEntry) RoutePoint {
	if b.Option.IsFlight() && b.Option.DepartureLocation != nil && *b.Option.DepartureLocation != "" {
		return RoutePoint{Address: *b.Option.DepartureLocation}
	}
	return fallbackPoint(b, b.Option.DepartureLocation)
}

func fallbackPoint(e models.ScheduledEntry, lastResort *string) RoutePoint {
	if e.Option.Latitude != nil && e.Option.Longitude != nil {
		return RoutePoint{Lat: e.Option.Latitude, Lng: e.Option.Longitude}
	}
	if e.Option.Address != nil && *e.Option.Address != "" {
		return RoutePoint{Address: *e.Option.Address}
	}
	if e.Option.Name != "" {
		return RoutePoint{Address: e.Option.Name}
	}
	if lastResort != nil && *lastResort != "" {
		return RoutePoint{Address: *lastResort}
	}
	return RoutePoint{}
}

func buildTransferOption(entryID string, chosen *RouteResult, all []RouteResult, from, to RoutePoint, dest models.ScheduledEntry) models.EntryOption {
	mode := string(chosen.Mode)
	distance := chosen.DistanceKm
	path := chosen.Path
	fromLabel := pointSignature(from)
	toLabel := pointSignature(to)

	option := models.EntryOption{
		ID:                uuid.New().String(),
		EntryID:           entryID,
		Position:          0,
		Name:              chosen.Mode.Emoji() + " " + chosen.Mode.Title() + " to " + shortName(dest.Option.Name),
		Category:          models.CategoryTransfer,
		DepartureLocation: &fromLabel,
		ArrivalLocation:   &toLabel,
		ChosenMode:        &mode,
		DistanceKm:        &distance,
		EncodedPath:       &path,
		CreatedAt:         time.Now().Unix(),
		UpdatedAt:         time.Now().Unix(),
	}

	// Keep the full candidate set so the user can switch modes later without
	// a fresh route query.
	candidates := make([]models.CandidateMode, 0, len(all))
	for _, r := range all {
		candidates = append(candidates, models.CandidateMode{
			Mode:        string(r.Mode),
			DurationMin: r.DurationMin,
			DistanceKm:  r.DistanceKm,
			Path:        r.Path,
		})
	}
	if err := option.SetCandidateModes(candidates); err != nil {
		log.Printf("⚠️  Failed to encode candidate modes: %v", err)
	}
	return option
}

// shortName trims an option name down to its leading segment for transfer
// labels ("Rijksmuseum, Amsterdam" → "Rijksmuseum").
func shortName(name string) string {
	if idx := strings.Index(name, ","); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	return name
}

// DayZones computes the per-day effective time zone map for a trip from its
// scheduled flights.
func DayZones(trip models.Trip, entries []models.ScheduledEntry) (map[string]string, error) {
	var flights []models.ScheduledEntry
	for _, e := range entries {
		if e.Option.IsFlight() {
			flights = append(flights, e)
		}
	}
	firstDay, lastDay, err := tripDayRange(trip, entries)
	if err != nil {
		return nil, err
	}
	return schedule.BuildDayTimezoneMap(flights, trip.HomeTimezone, firstDay, lastDay)
}

// tripDayRange determines the first and last calendar day of a trip. Trips
// without fixed dates fall back to the span of their scheduled entries read
// in the home zone, with a day of margin at the end for zone drift.
func tripDayRange(trip models.Trip, entries []models.ScheduledEntry) (string, string, error) {
	if trip.HasFixedDates() {
		return *trip.StartDate, *trip.EndDate, nil
	}
	if len(entries) == 0 {
		return "", "", fmt.Errorf("trip %s has no dates and no scheduled entries", trip.ID)
	}
	minStart := entries[0].Entry.Start()
	maxStart := entries[0].Entry.Start()
	for _, e := range entries[1:] {
		if e.Entry.Start().Before(minStart) {
			minStart = e.Entry.Start()
		}
		if e.Entry.Start().After(maxStart) {
			maxStart = e.Entry.Start()
		}
	}
	firstDay, _, err := schedule.UTCToLocal(minStart, trip.HomeTimezone)
	if err != nil {
		return "", "", err
	}
	lastDay, _, err := schedule.UTCToLocal(maxStart.Add(24*time.Hour), trip.HomeTimezone)
	if err != nil {
		return "", "", err
	}
	return firstDay, lastDay, nil
}
