package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/abgandar/trackstats/internal/api"
	"github.com/abgandar/trackstats/internal/config"
	"github.com/abgandar/trackstats/internal/database"
	"github.com/abgandar/trackstats/internal/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// main is the entry point for the TrackStats backend server.
func main() {
	// --- 1. Load Configuration ---
	// A .env file is convenient during development; in production the same
	// settings come from real environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables from the system.")
	}

	cfg, err := config.New()
	if err != nil {
		// A valid configuration is required to run, so we exit if it fails.
		log.Fatalf("FATAL: Failed to load application configuration: %v", err)
	}

	// --- 2. Ensure Required Directories Exist ---
	// The server stores its database and the uploaded GPX files on disk, so
	// both directories must exist before anything else starts.
	if err := os.MkdirAll(cfg.DbPath, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory at %s: %v", cfg.DbPath, err)
	}
	if err := os.MkdirAll(cfg.GpxPath, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create GPX storage directory at %s: %v", cfg.GpxPath, err)
	}

	log.Println("INFO: Application directories verified.")

	// The broker fans processing notifications out to connected SSE clients.
	broker := realtime.NewBroker()

	// --- 3. Initialize Database Service ---
	// The database service owns the SQLite connection and serializes writes.
	dbService, err := database.NewService(filepath.Join(cfg.DbPath, "trackstats.db"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database service: %v", err)
	}
	// 'defer' ensures that Close() runs when main exits, cleanly shutting
	// down the database connection.
	defer dbService.Close()

	log.Println("INFO: Database service initialized successfully.")

	// --- 4. Initialize Database Schema ---
	// Creates the users and tracks tables if they do not already exist.
	// Safe to run on every startup.
	if err := dbService.InitSchema(); err != nil {
		log.Fatalf("FATAL: Failed to initialize database schema: %v", err)
	}

	log.Println("INFO: Database schema verified.")

	// --- 5. Set Up API Server and Routes ---
	// Create the API server, injecting the dependencies it needs.
	serverAPI := api.NewServer(cfg, dbService, broker)

	// Chi is a lightweight and powerful router for Go.
	router := chi.NewRouter()

	// Register all the application's API endpoints and middleware with the
	// router. The routing logic lives in `routes.go`.
	serverAPI.RegisterRoutes(router)

	log.Println("INFO: API routes registered.")

	// --- 6. Start the HTTP Server ---
	log.Printf("INFO: TrackStats server starting on %s", cfg.ServerAddr)

	// ListenAndServe blocks until the server is stopped or an unrecoverable
	// error occurs.
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
