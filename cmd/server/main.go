package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"wayfare-backend/internal/database"
	"wayfare-backend/internal/handlers"
	"wayfare-backend/internal/middleware"
	"wayfare-backend/internal/services"
	"wayfare-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 WAYFARE BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	if err := database.SeedUsers(db); err != nil {
		log.Fatal(err)
	}

	// Firebase Cloud Messaging. Supports both a credentials file and base64
	// credentials for cloud deployments; push is optional either way.
	var fcmService *services.FCMService
	if fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}
		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	routesAPIKey := os.Getenv("GOOGLE_ROUTES_API_KEY")
	if routesAPIKey == "" {
		log.Println("⚠️  GOOGLE_ROUTES_API_KEY not set, route lookups will fail")
	}
	routesClient := services.NewGoogleRoutesService(routesAPIKey)
	resolver := services.NewModeResolver(routesClient)

	entryStore := database.NewEntryStore(db)
	synthesizer := services.NewTransportSynthesizer(entryStore, resolver)

	geoService, err := services.NewGeocodingService()
	if err != nil {
		log.Printf("⚠️  Geocoding disabled: %v", err)
	}

	weatherService := services.NewWeatherService()

	var extractionService *services.ExtractionService
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		llm, err := services.NewGeminiClient(context.Background(), geminiKey)
		if err != nil {
			log.Printf("⚠️  Extraction disabled: %v", err)
		} else {
			defer llm.Close()
			extractionService = services.NewExtractionService(llm)
			log.Println("✅ Booking extraction initialized")
		}
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, booking extraction disabled")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth)

		// Trips
		r.Post("/trips", handlers.CreateTrip(db))
		r.Get("/trips/{id}", handlers.GetTrip(db))
		r.Patch("/trips/{id}", handlers.UpdateTrip(db))
		r.Get("/trips/{id}/entries", handlers.ListTripEntries(entryStore))

		// Entries
		r.Post("/entries", handlers.CreateEntry(db, entryStore, wsHub))
		r.Patch("/entries/{id}/times", handlers.UpdateEntryTimes(db, entryStore, wsHub))
		r.Delete("/entries/{id}", handlers.DeleteEntry(db, entryStore, wsHub))
		r.Post("/entries/{id}/schedule", handlers.ScheduleEntry(db, entryStore, wsHub))
		r.Post("/entries/{id}/unschedule", handlers.UnscheduleEntry(entryStore, wsHub))
		r.Post("/entries/{id}/apply-recommendation", handlers.ApplyRecommendation(entryStore, wsHub))

		// Scheduling engine
		r.Post("/trips/{id}/synthesize-transfers", handlers.SynthesizeTransfers(db, synthesizer, wsHub, fcmService))
		r.Post("/trips/{id}/conflicts/analyze", handlers.AnalyzeConflict(db, entryStore, resolver, fcmService))

		// Routes
		r.Post("/routes/compute", handlers.ComputeRoutes(resolver))

		// Geocoding
		if geoService != nil {
			r.Get("/geocoding/forward", handlers.Geocode(geoService))
			r.Get("/geocoding/reverse", handlers.ReverseGeocode(geoService))
		}

		// Extraction
		if extractionService != nil {
			r.Post("/extract", handlers.ExtractBookings(extractionService))
		}

		// Weather
		r.Get("/trips/{id}/weather", handlers.TripWeather(db, weatherService))

		// FCM token registration
		r.Post("/device-tokens", handlers.RegisterDeviceToken(db))

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Get("/admin/users", handlers.ListUsers(db))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
