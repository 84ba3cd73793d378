package handlers

import (
	"fmt"
	"log"
	"net/http"

	"wayfare-backend/internal/models"
	"wayfare-backend/internal/services"
	"wayfare-backend/internal/websocket"
	"wayfare-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// SynthesizeTransfers runs the transfer synthesizer over a trip, broadcasts
// the created entries, and pushes a notification for every detected overlap.
func SynthesizeTransfers(db *sqlx.DB, synth *services.TransportSynthesizer, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", tripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}

		result, err := synth.SynthesizeTransfers(r.Context(), trip)
		if err != nil {
			log.Printf("❌ Synthesis failed for trip %s: %v", tripID, err)
			utils.Error(w, http.StatusInternalServerError, "Transfer synthesis failed")
			return
		}

		for _, created := range result.Created {
			hub.BroadcastToTrip(tripID, map[string]interface{}{
				"type": "entry_created",
				"data": created,
			})
		}
		if len(result.Overlaps) > 0 {
			hub.BroadcastToTrip(tripID, map[string]interface{}{
				"type": "transfer_overlaps",
				"data": result.Overlaps,
			})
			notifyOverlaps(db, fcm, trip, result.Overlaps)
		}

		utils.Success(w, result)
	}
}

// notifyOverlaps pushes an FCM alert per overlap to the trip owner's devices.
// Push is best-effort; failures never affect the response.
func notifyOverlaps(db *sqlx.DB, fcm *services.FCMService, trip models.Trip, overlaps []services.OverlapReport) {
	if fcm == nil {
		return
	}

	var tokens []string
	if err := db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", trip.OwnerID); err != nil {
		log.Printf("⚠️  Failed to load device tokens for user %s: %v", trip.OwnerID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	body := fmt.Sprintf("%d transfer(s) on %s run past the next entry's start.", len(overlaps), trip.Name)
	if err := fcm.SendMulticast(tokens, "Tight connections", body, map[string]string{
		"type":    "transfer_overlap",
		"trip_id": trip.ID,
	}); err != nil {
		log.Printf("⚠️  Overlap push failed: %v", err)
	}
}
