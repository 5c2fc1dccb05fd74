package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // The pure Go SQLite driver
)

// Service is the central struct for managing all database interactions.
// It holds the connection to the application database and serializes write
// operations via a mutex; SQLite handles many concurrent readers but only
// one writer at a time.
type Service struct {
	dbPath string

	db        *sql.DB
	writeLock sync.Mutex
}

// NewService creates and initializes a new database service.
// It opens the database connection and prepares the service for use.
func NewService(dbPath string) (*Service, error) {
	// Foreign keys are off by default in SQLite and the tracks table relies
	// on ON DELETE CASCADE, so they must be enabled on every connection.
	// The modernc driver takes pragmas in the DSN as `_pragma=name(value)`.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", dbPath, err)
	}

	// Ping the database to ensure the connection is alive.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", dbPath, err)
	}

	return &Service{
		dbPath: dbPath,
		db:     db,
	}, nil
}

// WriteTx executes a write operation (INSERT, UPDATE, DELETE) within a
// transaction, protected by the write mutex to ensure serial access.
func (s *Service) WriteTx(writeFunc func(tx *sql.Tx) error) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Execute the provided function. If it returns an error, rollback the transaction.
	if err := writeFunc(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	// If the function was successful, commit the transaction.
	return tx.Commit()
}

// DB provides a direct, read-only connection to the database.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Close safely closes the database connection when the application shuts down.
func (s *Service) Close() {
	s.db.Close()
	log.Println("Database connection closed.")
}

// InitSchema sets up the schema if the tables don't exist.
// This is idempotent and safe to run on every application start.
func (s *Service) InitSchema() error {
	// Use the write helper to ensure this is thread-safe on first run.
	return s.WriteTx(func(tx *sql.Tx) error {
		// Users table
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				username TEXT,
				password_hash TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);`)
		if err != nil {
			return err
		}

		// Tracks table: one row per uploaded GPX document, including the
		// finalized aggregate so listings don't have to re-parse files.
		// Optional extrema/averages are NULL until data exists for them.
		_, err = tx.Exec(`
			CREATE TABLE IF NOT EXISTS tracks (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				filename TEXT NOT NULL,
				uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				total_distance REAL NOT NULL DEFAULT 0,
				elevation_gain REAL NOT NULL DEFAULT 0,
				elevation_loss REAL NOT NULL DEFAULT 0,
				max_elevation REAL,
				min_elevation REAL,
				max_velocity REAL,
				min_velocity REAL,
				max_gradient REAL,
				min_gradient REAL,
				start_time DATETIME,
				end_time DATETIME,
				total_duration_ms INTEGER NOT NULL DEFAULT 0,
				moving_duration_ms INTEGER NOT NULL DEFAULT 0,
				avg_heart_rate REAL,
				avg_cadence REAL,
				avg_temperature REAL,
				point_count INTEGER NOT NULL DEFAULT 0,
				waypoint_count INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
			);`)
		if err != nil {
			return err
		}

		return nil
	})
}
