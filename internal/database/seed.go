package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	memberPassword, err := bcrypt.GenerateFromPassword([]byte("member123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "traveler@wayfare.app",
			"password": string(memberPassword),
			"name":     "Demo Traveler",
			"role":     "member",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@wayfare.app",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Member: traveler@wayfare.app / member123")
	log.Println("  📧 Admin:  admin@wayfare.app / admin123")
	return nil
}
