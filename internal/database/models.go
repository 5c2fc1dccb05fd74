package database

import (
	"database/sql"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

// User represents a record in the 'users' table.
// It uses `sql.NullString` for fields that can be NULL in the database,
// such as the password for an OAuth-only user.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Username     string         `json:"username"`
	PasswordHash sql.NullString `json:"-"` // Omit from JSON responses for security
	CreatedAt    time.Time      `json:"createdAt"`
}

// Track represents a record in the 'tracks' table: one uploaded GPX document
// together with its finalized aggregate statistics. The per-point data is
// not persisted; it is recomputed from the stored file when needed.
type Track struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	Filename   string    `json:"-"` // server-side storage name, not exposed
	UploadedAt time.Time `json:"uploadedAt"`

	Stats track.AggregateStats `json:"stats"`
}
