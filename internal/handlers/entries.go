package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wayfare-backend/internal/database"
	"wayfare-backend/internal/models"
	"wayfare-backend/internal/schedule"
	"wayfare-backend/internal/websocket"
	"wayfare-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreateEntryRequest struct {
	TripID    string `json:"trip_id"`
	StartDate string `json:"start_date"` // 2006-01-02, local
	StartTime string `json:"start_time"` // 15:04, local
	EndDate   string `json:"end_date"`
	EndTime   string `json:"end_time"`

	// Zone for interpreting the local times. Flights ignore this and use the
	// option's departure/arrival time zones instead.
	Timezone string `json:"timezone"`

	Locked    bool               `json:"locked"`
	Scheduled *bool              `json:"scheduled,omitempty"`
	Option    models.EntryOption `json:"option"`
}

// CreateEntry creates an entry with its option. A flight additionally gets
// derived check-in and check-out blocks linked to it, sized by the option's
// own durations or the trip defaults.
func CreateEntry(db *sqlx.DB, store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", req.TripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}
		if req.Option.Name == "" || req.Option.Category == "" {
			utils.Error(w, http.StatusBadRequest, "option name and category are required")
			return
		}

		startZone, endZone := req.Timezone, req.Timezone
		if req.Option.IsFlight() {
			if req.Option.DepartureTimezone == nil || req.Option.ArrivalTimezone == nil {
				utils.Error(w, http.StatusBadRequest, "flight options require departure and arrival time zones")
				return
			}
			startZone = *req.Option.DepartureTimezone
			endZone = *req.Option.ArrivalTimezone
		}

		start, err := schedule.LocalToUTC(req.StartDate, req.StartTime, startZone)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		end, err := schedule.LocalToUTC(req.EndDate, req.EndTime, endZone)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if !end.After(start) {
			utils.Error(w, http.StatusBadRequest, "entry must end after it starts")
			return
		}

		scheduled := true
		if req.Scheduled != nil {
			scheduled = *req.Scheduled
		}

		now := time.Now().Unix()
		entry := models.Entry{
			ID:        uuid.New().String(),
			TripID:    trip.ID,
			StartTime: start.Unix(),
			EndTime:   end.Unix(),
			Locked:    req.Locked,
			Scheduled: scheduled,
			CreatedAt: now,
			UpdatedAt: now,
		}
		option := req.Option
		option.ID = uuid.New().String()
		option.EntryID = entry.ID
		option.CreatedAt = now
		option.UpdatedAt = now

		if err := store.CreateEntryWithOption(r.Context(), &entry, &option); err != nil {
			log.Printf("❌ Failed to create entry: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to create entry")
			return
		}

		created := []models.ScheduledEntry{{Entry: entry, Option: option}}

		if option.IsFlight() && scheduled {
			children, err := createFlightChildren(r, store, trip, entry, option)
			if err != nil {
				// The flight itself is in; derived blocks are best-effort.
				log.Printf("⚠️  Failed to create linked blocks for flight %s: %v", entry.ID, err)
			}
			created = append(created, children...)
		}

		for _, e := range created {
			hub.BroadcastToTrip(trip.ID, map[string]interface{}{
				"type": "entry_created",
				"data": e,
			})
		}

		log.Printf("✅ Entry created: %s (%s)", option.Name, entry.ID)
		utils.JSON(w, http.StatusCreated, map[string]interface{}{
			"entry":   created[0],
			"created": created,
		})
	}
}

func createFlightChildren(r *http.Request, store *database.EntryStore, trip models.Trip, flight models.Entry, option models.EntryOption) ([]models.ScheduledEntry, error) {
	checkinHours := trip.DefaultCheckinHours
	if option.CheckinHours != nil {
		checkinHours = *option.CheckinHours
	}
	checkoutMinutes := trip.DefaultCheckoutMin
	if option.CheckoutMinutes != nil {
		checkoutMinutes = *option.CheckoutMinutes
	}

	checkinRole := string(models.LinkRoleCheckin)
	checkoutRole := string(models.LinkRoleCheckout)
	now := time.Now().Unix()

	checkinLabel := "🛄 Check-in · " + option.Name
	checkoutLabel := "🛬 Arrival · " + option.Name

	children := []models.ScheduledEntry{
		{
			Entry: models.Entry{
				ID:             uuid.New().String(),
				TripID:         trip.ID,
				StartTime:      flight.Start().Add(-time.Duration(checkinHours) * time.Hour).Unix(),
				EndTime:        flight.StartTime,
				Scheduled:      true,
				LinkedFlightID: &flight.ID,
				LinkRole:       &checkinRole,
				CreatedAt:      now,
				UpdatedAt:      now,
			},
			Option: models.EntryOption{
				ID:                uuid.New().String(),
				Name:              checkinLabel,
				Category:          "airport",
				DepartureLocation: option.DepartureLocation,
				CreatedAt:         now,
				UpdatedAt:         now,
			},
		},
		{
			Entry: models.Entry{
				ID:             uuid.New().String(),
				TripID:         trip.ID,
				StartTime:      flight.EndTime,
				EndTime:        flight.End().Add(time.Duration(checkoutMinutes) * time.Minute).Unix(),
				Scheduled:      true,
				LinkedFlightID: &flight.ID,
				LinkRole:       &checkoutRole,
				CreatedAt:      now,
				UpdatedAt:      now,
			},
			Option: models.EntryOption{
				ID:              uuid.New().String(),
				Name:            checkoutLabel,
				Category:        "airport",
				ArrivalLocation: option.ArrivalLocation,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
		},
	}

	var created []models.ScheduledEntry
	for i := range children {
		children[i].Option.EntryID = children[i].Entry.ID
		if err := store.CreateEntryWithOption(r.Context(), &children[i].Entry, &children[i].Option); err != nil {
			return created, err
		}
		created = append(created, children[i])
	}
	return created, nil
}

type UpdateEntryTimesRequest struct {
	StartTime int64 `json:"start_time"` // UTC unix seconds
	EndTime   int64 `json:"end_time"`
}

// UpdateEntryTimes moves an entry and runs the linked-entry cascade: a moved
// flight recomputes its check-in/check-out blocks, a moved transfer pulls its
// downstream entry along. Cascade writes are per-entry; one failed write is
// logged and skipped.
func UpdateEntryTimes(db *sqlx.DB, store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "id")

		var req UpdateEntryTimesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.EndTime <= req.StartTime {
			utils.Error(w, http.StatusBadRequest, "entry must end after it starts")
			return
		}

		current, err := store.GetEntry(r.Context(), entryID)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Entry not found")
			return
		}

		if err := store.UpdateEntryTimes(r.Context(), entryID, req.StartTime, req.EndTime); err != nil {
			log.Printf("❌ Failed to update entry %s: %v", entryID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to update entry")
			return
		}

		moved := current.Entry
		moved.StartTime = req.StartTime
		moved.EndTime = req.EndTime

		commands := cascadeFor(r, db, store, moved, current.Option)
		applied := make([]schedule.CascadeCommand, 0, len(commands))
		for _, cmd := range commands {
			if err := store.UpdateEntryTimes(r.Context(), cmd.EntryID, cmd.NewStart, cmd.NewEnd); err != nil {
				log.Printf("⚠️  Cascade write failed for entry %s: %v", cmd.EntryID, err)
				continue
			}
			applied = append(applied, cmd)
		}

		hub.BroadcastToTrip(moved.TripID, map[string]interface{}{
			"type": "entry_times_updated",
			"data": map[string]interface{}{
				"entry_id":   entryID,
				"start_time": req.StartTime,
				"end_time":   req.EndTime,
				"cascade":    applied,
			},
		})

		utils.Success(w, map[string]interface{}{
			"entry_id": entryID,
			"cascade":  applied,
		})
	}
}

// cascadeFor derives the follow-up time edits for a moved entry.
func cascadeFor(r *http.Request, db *sqlx.DB, store *database.EntryStore, moved models.Entry, option models.EntryOption) []schedule.CascadeCommand {
	if option.IsFlight() {
		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", moved.TripID); err != nil {
			log.Printf("⚠️  Cascade skipped, trip lookup failed: %v", err)
			return nil
		}
		checkinHours := trip.DefaultCheckinHours
		if option.CheckinHours != nil {
			checkinHours = *option.CheckinHours
		}
		checkoutMinutes := trip.DefaultCheckoutMin
		if option.CheckoutMinutes != nil {
			checkoutMinutes = *option.CheckoutMinutes
		}

		linked, err := store.ListLinkedEntries(r.Context(), moved.ID)
		if err != nil {
			log.Printf("⚠️  Cascade skipped, linked lookup failed: %v", err)
			return nil
		}
		cmds := schedule.CheckinCommands(moved.ID, moved.Start(), checkinHours, linked)
		return append(cmds, schedule.CheckoutCommands(moved.ID, moved.End(), checkoutMinutes, linked)...)
	}

	if models.IsTransportCategory(option.Category) && moved.ToEntryID != nil {
		next, err := store.GetEntry(r.Context(), *moved.ToEntryID)
		if err != nil {
			return nil
		}
		return schedule.TransferShiftCommands(moved, moved.End(), &next.Entry)
	}

	return nil
}

// DeleteEntry removes an entry. Deleting a flight removes its derived
// check-in/check-out blocks too; deleting a hotel removes the trip's other
// night blocks for the same hotel.
func DeleteEntry(db *sqlx.DB, store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "id")

		current, err := store.GetEntry(r.Context(), entryID)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Entry not found")
			return
		}

		deleted := []string{entryID}

		if current.Option.IsFlight() {
			linked, err := store.ListLinkedEntries(r.Context(), entryID)
			if err != nil {
				log.Printf("⚠️  Failed to list linked entries for flight %s: %v", entryID, err)
			}
			for _, child := range linked {
				if err := store.DeleteEntry(r.Context(), child.ID); err != nil {
					log.Printf("⚠️  Failed to delete linked entry %s: %v", child.ID, err)
					continue
				}
				deleted = append(deleted, child.ID)
			}
		}

		if current.Option.Category == models.CategoryHotel {
			siblings, err := hotelSiblings(db, current.Entry.TripID, entryID, current.Option.Name)
			if err != nil {
				log.Printf("⚠️  Failed to find hotel night blocks: %v", err)
			}
			for _, siblingID := range siblings {
				if err := store.DeleteEntry(r.Context(), siblingID); err != nil {
					log.Printf("⚠️  Failed to delete night block %s: %v", siblingID, err)
					continue
				}
				deleted = append(deleted, siblingID)
			}
		}

		if err := store.DeleteEntry(r.Context(), entryID); err != nil {
			log.Printf("❌ Failed to delete entry %s: %v", entryID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to delete entry")
			return
		}

		hub.BroadcastToTrip(current.Entry.TripID, map[string]interface{}{
			"type": "entries_deleted",
			"data": map[string]interface{}{"entry_ids": deleted},
		})

		log.Printf("🗑️  Deleted entry %s (+%d dependents)", entryID, len(deleted)-1)
		utils.Success(w, map[string]interface{}{"deleted": deleted})
	}
}

// hotelSiblings finds the trip's other night blocks carrying the same hotel
// option name.
func hotelSiblings(db *sqlx.DB, tripID, entryID, hotelName string) ([]string, error) {
	var ids []string
	err := db.Select(&ids, `
		SELECT e.id FROM entries e
		JOIN entry_options o ON o.entry_id = e.id
		WHERE e.trip_id = $1 AND e.id <> $2 AND o.category = $3 AND o.name = $4
	`, tripID, entryID, models.CategoryHotel, hotelName)
	return ids, err
}

// ScheduleEntry places a backlog entry onto the timeline at the given times.
func ScheduleEntry(db *sqlx.DB, store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "id")

		var req UpdateEntryTimesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.EndTime <= req.StartTime {
			utils.Error(w, http.StatusBadRequest, "entry must end after it starts")
			return
		}

		current, err := store.GetEntry(r.Context(), entryID)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Entry not found")
			return
		}

		_, err = db.Exec(`
			UPDATE entries
			SET scheduled = TRUE, start_time = $1, end_time = $2,
				updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
			WHERE id = $3
		`, req.StartTime, req.EndTime, entryID)
		if err != nil {
			log.Printf("❌ Failed to schedule entry %s: %v", entryID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to schedule entry")
			return
		}

		hub.BroadcastToTrip(current.Entry.TripID, map[string]interface{}{
			"type": "entry_scheduled",
			"data": map[string]interface{}{
				"entry_id":   entryID,
				"start_time": req.StartTime,
				"end_time":   req.EndTime,
			},
		})

		utils.Success(w, map[string]interface{}{"entry_id": entryID, "scheduled": true})
	}
}

// UnscheduleEntry moves an entry back to the ideas backlog.
func UnscheduleEntry(store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "id")

		current, err := store.GetEntry(r.Context(), entryID)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Entry not found")
			return
		}

		if err := store.UnscheduleEntry(r.Context(), entryID); err != nil {
			log.Printf("❌ Failed to unschedule entry %s: %v", entryID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to unschedule entry")
			return
		}

		hub.BroadcastToTrip(current.Entry.TripID, map[string]interface{}{
			"type": "entry_unscheduled",
			"data": map[string]interface{}{"entry_id": entryID},
		})

		utils.Success(w, map[string]interface{}{"entry_id": entryID, "scheduled": false})
	}
}

type ApplyRecommendationRequest struct {
	Changes []models.ScheduleChange `json:"changes"`
}

// ApplyRecommendation applies a chosen recommendation's change list. An empty
// list is the skip proposal: the entry is unscheduled, not time-edited.
func ApplyRecommendation(store *database.EntryStore, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "id")

		var req ApplyRecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		current, err := store.GetEntry(r.Context(), entryID)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Entry not found")
			return
		}

		if len(req.Changes) == 0 {
			if err := store.UnscheduleEntry(r.Context(), entryID); err != nil {
				log.Printf("❌ Failed to unschedule entry %s: %v", entryID, err)
				utils.Error(w, http.StatusInternalServerError, "Failed to unschedule entry")
				return
			}
			hub.BroadcastToTrip(current.Entry.TripID, map[string]interface{}{
				"type": "entry_unscheduled",
				"data": map[string]interface{}{"entry_id": entryID},
			})
			utils.Success(w, map[string]interface{}{"entry_id": entryID, "scheduled": false})
			return
		}

		var applied []models.ScheduleChange
		for _, change := range req.Changes {
			if err := store.UpdateEntryTimes(r.Context(), change.EntryID, change.NewStart, change.NewEnd); err != nil {
				log.Printf("⚠️  Recommendation change failed for entry %s: %v", change.EntryID, err)
				continue
			}
			applied = append(applied, change)
		}

		hub.BroadcastToTrip(current.Entry.TripID, map[string]interface{}{
			"type": "recommendation_applied",
			"data": map[string]interface{}{
				"entry_id": entryID,
				"changes":  applied,
			},
		})

		utils.Success(w, map[string]interface{}{"entry_id": entryID, "applied": applied})
	}
}
