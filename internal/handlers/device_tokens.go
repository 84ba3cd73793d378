package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"wayfare-backend/internal/middleware"
	"wayfare-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type RegisterDeviceTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterDeviceToken upserts an FCM token for the authenticated user.
func RegisterDeviceToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterDeviceTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.Error(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.Error(w, http.StatusBadRequest, "device_type must be ios or android")
			return
		}

		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (token)
			DO UPDATE SET user_id = EXCLUDED.user_id,
				device_type = EXCLUDED.device_type,
				updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		`, claims.UserID, req.Token, req.DeviceType)
		if err != nil {
			log.Printf("❌ Failed to register device token: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to register device token")
			return
		}

		utils.Success(w, map[string]interface{}{"registered": true})
	}
}
