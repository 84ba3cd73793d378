package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to database...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('member', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create trips table
		`CREATE TABLE IF NOT EXISTS trips (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			walk_threshold_min INT NOT NULL DEFAULT 20,
			default_checkin_hours INT NOT NULL DEFAULT 2,
			default_checkout_min INT NOT NULL DEFAULT 45,
			home_timezone TEXT NOT NULL DEFAULT 'UTC',
			start_date TEXT,
			end_date TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE,
			CHECK ((start_date IS NULL) = (end_date IS NULL))
		)`,

		// Create entries table
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			trip_id TEXT NOT NULL,
			start_time BIGINT NOT NULL,
			end_time BIGINT NOT NULL,
			locked BOOLEAN NOT NULL DEFAULT FALSE,
			scheduled BOOLEAN NOT NULL DEFAULT TRUE,
			day_index INT,
			linked_flight_id TEXT,
			link_role TEXT CHECK(link_role IN ('checkin', 'checkout')),
			from_entry_id TEXT,
			to_entry_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE,
			FOREIGN KEY (linked_flight_id) REFERENCES entries(id) ON DELETE CASCADE,
			FOREIGN KEY (from_entry_id) REFERENCES entries(id) ON DELETE SET NULL,
			FOREIGN KEY (to_entry_id) REFERENCES entries(id) ON DELETE SET NULL,
			CHECK (end_time > start_time),
			CHECK ((linked_flight_id IS NULL) = (link_role IS NULL))
		)`,

		// Create entry_options table
		`CREATE TABLE IF NOT EXISTS entry_options (
			id TEXT PRIMARY KEY,
			entry_id TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			departure_location TEXT,
			arrival_location TEXT,
			departure_timezone TEXT,
			arrival_timezone TEXT,
			departure_terminal TEXT,
			arrival_terminal TEXT,
			checkin_hours INT,
			checkout_minutes INT,
			chosen_mode TEXT,
			distance_km DOUBLE PRECISION,
			encoded_path TEXT,
			candidate_modes JSONB,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			address TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE,
			CHECK (category <> 'flight' OR (departure_timezone IS NOT NULL AND arrival_timezone IS NOT NULL))
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_owner_id ON trips(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_trip_id ON entries(trip_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_trip_scheduled ON entries(trip_id, scheduled, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_linked_flight ON entries(linked_flight_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_from_entry ON entries(from_entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_to_entry ON entries(to_entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_options_entry_id ON entry_options(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_options_entry_position ON entry_options(entry_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fcm_tokens_token ON fcm_tokens(token)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
