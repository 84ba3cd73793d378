package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wayfare-backend/internal/database"
	"wayfare-backend/internal/middleware"
	"wayfare-backend/internal/models"
	"wayfare-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreateTripRequest struct {
	Name                string  `json:"name"`
	HomeTimezone        string  `json:"home_timezone"`
	WalkThresholdMin    *int    `json:"walk_threshold_min,omitempty"`
	DefaultCheckinHours *int    `json:"default_checkin_hours,omitempty"`
	DefaultCheckoutMin  *int    `json:"default_checkout_min,omitempty"`
	StartDate           *string `json:"start_date,omitempty"`
	EndDate             *string `json:"end_date,omitempty"`
}

func CreateTrip(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateTripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			utils.Error(w, http.StatusBadRequest, "name is required")
			return
		}
		if _, err := time.LoadLocation(req.HomeTimezone); req.HomeTimezone == "" || err != nil {
			utils.Error(w, http.StatusBadRequest, "home_timezone must be a valid IANA zone")
			return
		}
		if (req.StartDate == nil) != (req.EndDate == nil) {
			utils.Error(w, http.StatusBadRequest, "start_date and end_date must be set together")
			return
		}

		trip := models.Trip{
			ID:                  uuid.New().String(),
			OwnerID:             claims.UserID,
			Name:                req.Name,
			HomeTimezone:        req.HomeTimezone,
			WalkThresholdMin:    20,
			DefaultCheckinHours: 2,
			DefaultCheckoutMin:  45,
			StartDate:           req.StartDate,
			EndDate:             req.EndDate,
			CreatedAt:           time.Now().Unix(),
			UpdatedAt:           time.Now().Unix(),
		}
		if req.WalkThresholdMin != nil {
			trip.WalkThresholdMin = *req.WalkThresholdMin
		}
		if req.DefaultCheckinHours != nil {
			trip.DefaultCheckinHours = *req.DefaultCheckinHours
		}
		if req.DefaultCheckoutMin != nil {
			trip.DefaultCheckoutMin = *req.DefaultCheckoutMin
		}

		_, err := db.NamedExec(`
			INSERT INTO trips (id, owner_id, name, walk_threshold_min, default_checkin_hours,
				default_checkout_min, home_timezone, start_date, end_date, created_at, updated_at)
			VALUES (:id, :owner_id, :name, :walk_threshold_min, :default_checkin_hours,
				:default_checkout_min, :home_timezone, :start_date, :end_date, :created_at, :updated_at)
		`, trip)
		if err != nil {
			log.Printf("❌ Failed to create trip: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to create trip")
			return
		}

		log.Printf("✅ Trip created: %s (%s)", trip.Name, trip.ID)
		utils.JSON(w, http.StatusCreated, trip)
	}
}

func GetTrip(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", tripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}

		utils.Success(w, trip)
	}
}

type UpdateTripRequest struct {
	Name                *string `json:"name,omitempty"`
	HomeTimezone        *string `json:"home_timezone,omitempty"`
	WalkThresholdMin    *int    `json:"walk_threshold_min,omitempty"`
	DefaultCheckinHours *int    `json:"default_checkin_hours,omitempty"`
	DefaultCheckoutMin  *int    `json:"default_checkout_min,omitempty"`
	StartDate           *string `json:"start_date,omitempty"`
	EndDate             *string `json:"end_date,omitempty"`
}

func UpdateTrip(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var req UpdateTripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", tripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}

		if req.Name != nil {
			trip.Name = *req.Name
		}
		if req.HomeTimezone != nil {
			if _, err := time.LoadLocation(*req.HomeTimezone); err != nil {
				utils.Error(w, http.StatusBadRequest, "home_timezone must be a valid IANA zone")
				return
			}
			trip.HomeTimezone = *req.HomeTimezone
		}
		if req.WalkThresholdMin != nil {
			trip.WalkThresholdMin = *req.WalkThresholdMin
		}
		if req.DefaultCheckinHours != nil {
			trip.DefaultCheckinHours = *req.DefaultCheckinHours
		}
		if req.DefaultCheckoutMin != nil {
			trip.DefaultCheckoutMin = *req.DefaultCheckoutMin
		}
		if req.StartDate != nil {
			trip.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			trip.EndDate = req.EndDate
		}
		trip.UpdatedAt = time.Now().Unix()

		_, err := db.NamedExec(`
			UPDATE trips SET name = :name, walk_threshold_min = :walk_threshold_min,
				default_checkin_hours = :default_checkin_hours,
				default_checkout_min = :default_checkout_min,
				home_timezone = :home_timezone, start_date = :start_date,
				end_date = :end_date, updated_at = :updated_at
			WHERE id = :id
		`, trip)
		if err != nil {
			log.Printf("❌ Failed to update trip %s: %v", tripID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to update trip")
			return
		}

		utils.Success(w, trip)
	}
}

func ListTripEntries(store *database.EntryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		entries, err := store.ListScheduledEntries(r.Context(), tripID)
		if err != nil {
			log.Printf("❌ Failed to list entries for trip %s: %v", tripID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to list entries")
			return
		}

		utils.Success(w, map[string]interface{}{
			"trip_id": tripID,
			"entries": entries,
		})
	}
}
