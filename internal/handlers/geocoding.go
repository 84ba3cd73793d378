package handlers

import (
	"net/http"
	"strconv"

	"wayfare-backend/internal/services"
	"wayfare-backend/pkg/utils"
)

// Geocode converts a free-form address or place name to coordinates.
func Geocode(geo *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		if address == "" {
			utils.Error(w, http.StatusBadRequest, "address query parameter is required")
			return
		}

		place, err := geo.Geocode(r.Context(), address)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Could not geocode address")
			return
		}

		utils.Success(w, place)
	}
}

// ReverseGeocode converts coordinates to a formatted address.
func ReverseGeocode(geo *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			utils.Error(w, http.StatusBadRequest, "lat and lng query parameters are required")
			return
		}

		place, err := geo.ReverseGeocode(r.Context(), lat, lng)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Could not reverse geocode coordinates")
			return
		}

		utils.Success(w, place)
	}
}
