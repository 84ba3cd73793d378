package handlers

import (
	"net/http"
	"strconv"

	"wayfare-backend/internal/models"
	"wayfare-backend/internal/services"
	"wayfare-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// TripWeather returns the daily forecast for a coordinate across a trip's
// calendar dates.
func TripWeather(db *sqlx.DB, weather *services.WeatherService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var trip models.Trip
		if err := db.Get(&trip, "SELECT * FROM trips WHERE id = $1", tripID); err != nil {
			utils.Error(w, http.StatusNotFound, "Trip not found")
			return
		}
		if !trip.HasFixedDates() {
			utils.Error(w, http.StatusBadRequest, "trip has no calendar dates")
			return
		}

		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			utils.Error(w, http.StatusBadRequest, "lat and lng query parameters are required")
			return
		}

		forecasts, err := weather.DailyForecast(r.Context(), lat, lng, *trip.StartDate, *trip.EndDate)
		if err != nil {
			utils.Error(w, http.StatusBadGateway, "Failed to fetch forecast")
			return
		}

		utils.Success(w, map[string]interface{}{
			"trip_id":   tripID,
			"forecasts": forecasts,
		})
	}
}
