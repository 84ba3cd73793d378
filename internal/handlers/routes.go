package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"wayfare-backend/internal/services"
	"wayfare-backend/pkg/utils"
)

type ComputeRoutesRequest struct {
	Origin      services.RoutePoint `json:"origin"`
	Destination services.RoutePoint `json:"destination"`
	Modes       []string            `json:"modes"`
	Departure   *string             `json:"departure,omitempty"` // RFC3339
}

type ComputeRoutesResponse struct {
	Results []services.RouteResult `json:"results"`
	Fastest *services.RouteResult  `json:"fastest,omitempty"`
}

// ComputeRoutes resolves route data for the requested travel modes between
// two points, with the fastest viable mode highlighted.
func ComputeRoutes(resolver *services.ModeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ComputeRoutesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !req.Origin.Resolved() || !req.Destination.Resolved() {
			utils.Error(w, http.StatusBadRequest, "origin and destination must have coordinates or an address")
			return
		}

		modes := make([]services.TravelMode, 0, len(req.Modes))
		for _, m := range req.Modes {
			switch mode := services.TravelMode(m); mode {
			case services.ModeWalk, services.ModeTransit, services.ModeDrive, services.ModeBicycle:
				modes = append(modes, mode)
			default:
				utils.Error(w, http.StatusBadRequest, "unknown travel mode: "+m)
				return
			}
		}
		if len(modes) == 0 {
			modes = []services.TravelMode{services.ModeWalk, services.ModeTransit}
		}

		var departure *time.Time
		if req.Departure != nil {
			t, err := time.Parse(time.RFC3339, *req.Departure)
			if err != nil {
				utils.Error(w, http.StatusBadRequest, "departure must be RFC3339")
				return
			}
			departure = &t
		}

		results := resolver.ResolveModes(r.Context(), req.Origin, req.Destination, modes, departure)
		if results == nil {
			results = []services.RouteResult{}
		}

		utils.Success(w, ComputeRoutesResponse{
			Results: results,
			Fastest: services.PickFastestMode(results),
		})
	}
}
