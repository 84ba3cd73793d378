package handlers

import (
	"log"
	"net/http"

	"wayfare-backend/internal/models"
	"wayfare-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// ListUsers returns all registered users. Admin only.
func ListUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		if err := db.Select(&users, "SELECT * FROM users ORDER BY created_at"); err != nil {
			log.Printf("❌ Failed to list users: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to list users")
			return
		}

		responses := make([]models.UserResponse, 0, len(users))
		for _, u := range users {
			responses = append(responses, u.ToUserResponse())
		}

		utils.Success(w, map[string]interface{}{"users": responses})
	}
}
