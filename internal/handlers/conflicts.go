package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wayfare-backend/internal/database"
	"wayfare-backend/internal/models"
	"wayfare-backend/internal/schedule"
	"wayfare-backend/internal/services"
	"wayfare-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type AnalyzeConflictRequest struct {
	EntryID string `json:"entry_id"`
}

type AnalyzeConflictResponse struct {
	Conflict        models.ConflictInfo     `json:"conflict"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// AnalyzeConflict checks whether a placed entry leaves enough travel time to
// and from its same-day neighbors, and proposes schedule edits when it does
// not. Travel times come from fresh fastest-mode route lookups; an entry with
// no viable route on a side contributes zero required travel there. A
// detected conflict additionally pushes an FCM alert to the trip owner's
// devices, best-effort.
func AnalyzeConflict(db *sqlx.DB, store *database.EntryStore, resolver *services.ModeResolver, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var req AnalyzeConflictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntryID == "" {
			utils.Error(w, http.StatusBadRequest, "entry_id is required")
			return
		}

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", tripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}

		entries, err := store.ListScheduledEntries(r.Context(), tripID)
		if err != nil {
			log.Printf("❌ Failed to list entries for trip %s: %v", tripID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to list entries")
			return
		}

		zones, err := services.DayZones(trip, entries)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		buckets, err := schedule.PartitionByDay(entries, zones)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		day, dayEntries, placed := findPlacement(buckets, req.EntryID)
		if placed == nil {
			utils.Error(w, http.StatusNotFound, "Entry not scheduled on any trip day")
			return
		}

		prev, next := neighbors(dayEntries, req.EntryID)

		travelBefore := travelMinutes(r, resolver, prev, placed)
		travelAfter := travelMinutes(r, resolver, placed, next)

		var prevEnd, nextStart *time.Time
		if prev != nil {
			t := prev.Entry.End()
			prevEnd = &t
		}
		if next != nil {
			t := next.Entry.Start()
			nextStart = &t
		}

		info := schedule.AnalyzeConflict(placed.Entry.ID, placed.Option.Name,
			placed.Entry.Start(), placed.Entry.End(), prevEnd, nextStart, travelBefore, travelAfter)

		loc := time.UTC
		if l, err := time.LoadLocation(zones[day]); err == nil {
			loc = l
		}
		recs := schedule.GenerateRecommendations(info, dayEntries, placed.Entry.ID, loc)

		if fcm != nil && !info.Fits() {
			var tokens []string
			if err := db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", trip.OwnerID); err != nil {
				log.Printf("⚠️  Failed to load device tokens for user %s: %v", trip.OwnerID, err)
			} else {
				pushConflict(fcm, tokens, trip.ID, info)
			}
		}

		utils.Success(w, AnalyzeConflictResponse{
			Conflict:        info,
			Recommendations: recs,
		})
	}
}

type conflictSender interface {
	SendConflictNotification(token, tripID, entryName string, discrepancyMin int) error
}

// pushConflict alerts each of the owner's devices about a placement that does
// not fit. Push is best-effort; failures never affect the response.
func pushConflict(sender conflictSender, tokens []string, tripID string, info models.ConflictInfo) {
	if info.Fits() {
		return
	}
	for _, token := range tokens {
		if err := sender.SendConflictNotification(token, tripID, info.EntryName, info.DiscrepancyMin); err != nil {
			log.Printf("⚠️  Conflict push failed: %v", err)
		}
	}
}

// findPlacement locates the entry and its day bucket.
func findPlacement(buckets map[string][]models.ScheduledEntry, entryID string) (string, []models.ScheduledEntry, *models.ScheduledEntry) {
	for day, dayEntries := range buckets {
		for i := range dayEntries {
			if dayEntries[i].Entry.ID == entryID {
				return day, dayEntries, &dayEntries[i]
			}
		}
	}
	return "", nil, nil
}

// neighbors returns the closest non-transport entries around the placement.
// Transfers are travel time themselves, not destinations to travel between.
func neighbors(dayEntries []models.ScheduledEntry, entryID string) (prev, next *models.ScheduledEntry) {
	idx := -1
	for i := range dayEntries {
		if dayEntries[i].Entry.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	for i := idx - 1; i >= 0; i-- {
		if !models.IsTransportCategory(dayEntries[i].Option.Category) {
			prev = &dayEntries[i]
			break
		}
	}
	for i := idx + 1; i < len(dayEntries); i++ {
		if !models.IsTransportCategory(dayEntries[i].Option.Category) {
			next = &dayEntries[i]
			break
		}
	}
	return prev, next
}

// travelMinutes returns the fastest-mode travel time between two entries, or
// zero when either side is missing or no route exists.
func travelMinutes(r *http.Request, resolver *services.ModeResolver, from, to *models.ScheduledEntry) float64 {
	if from == nil || to == nil {
		return 0
	}
	origin := entryPoint(*from)
	dest := entryPoint(*to)
	if !origin.Resolved() || !dest.Resolved() {
		return 0
	}
	departure := from.Entry.End()
	results := resolver.ResolveModes(r.Context(), origin, dest,
		[]services.TravelMode{services.ModeWalk, services.ModeTransit}, &departure)
	fastest := services.PickFastestMode(results)
	if fastest == nil {
		return 0
	}
	return fastest.DurationMin
}

func entryPoint(e models.ScheduledEntry) services.RoutePoint {
	if e.Option.Latitude != nil && e.Option.Longitude != nil {
		return services.RoutePoint{Lat: e.Option.Latitude, Lng: e.Option.Longitude}
	}
	if e.Option.Address != nil && *e.Option.Address != "" {
		return services.RoutePoint{Address: *e.Option.Address}
	}
	if e.Option.Name != "" {
		return services.RoutePoint{Address: e.Option.Name}
	}
	return services.RoutePoint{}
}
