package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"wayfare-backend/internal/services"
	"wayfare-backend/pkg/utils"
)

type ExtractRequest struct {
	Document string `json:"document"`
}

// ExtractBookings turns a pasted booking confirmation into structured flight
// and hotel data ready to become entries.
func ExtractBookings(svc *services.ExtractionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Document == "" {
			utils.Error(w, http.StatusBadRequest, "document is required")
			return
		}

		result, err := svc.Extract(r.Context(), req.Document)
		if err != nil {
			log.Printf("❌ Extraction failed: %v", err)
			utils.Error(w, http.StatusBadGateway, "Failed to extract booking data")
			return
		}

		log.Printf("✅ Extracted %d flight(s), %d hotel(s)", len(result.Flights), len(result.Hotels))
		utils.Success(w, result)
	}
}
