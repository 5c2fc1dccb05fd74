package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

// DBorTx is an interface that allows functions to accept either a `*sql.DB` for single queries
// or a `*sql.Tx` for operations within a transaction. This promotes code reuse.
type DBorTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// --- User Queries ---

func (s *Service) CreateUser(db DBorTx, email, username, passwordHash string) (*User, error) {
	// An empty password hash is set to NULL in the DB for OAuth-only users.
	var hash interface{} = passwordHash
	if passwordHash == "" {
		hash = nil
	}
	query := `INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?);`
	res, err := db.Exec(query, email, username, hash)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetUserByID(db, id)
}

func (s *Service) GetUserByEmail(db DBorTx, email string) (*User, error) {
	query := `SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?;`
	user := &User{}
	err := db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err // Returns sql.ErrNoRows if not found
	}
	return user, nil
}

func (s *Service) GetUserByID(db DBorTx, id int64) (*User, error) {
	query := `SELECT id, email, username, password_hash, created_at FROM users WHERE id = ?;`
	user := &User{}
	err := db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	return user, err
}

// UpdateUser updates a user's username and/or password hash.
func (s *Service) UpdateUser(db DBorTx, userID int64, username, passwordHash string) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("UPDATE users SET ")

	var args []interface{}
	if username != "" {
		queryBuilder.WriteString("username = ? ")
		args = append(args, username)
	}

	if passwordHash != "" {
		if len(args) > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("password_hash = ? ")
		args = append(args, passwordHash)
	}

	queryBuilder.WriteString("WHERE id = ?;")
	args = append(args, userID)

	_, err := db.Exec(queryBuilder.String(), args...)
	return err
}

func (s *Service) DeleteUser(db DBorTx, userID int64) error {
	_, err := db.Exec("DELETE FROM users WHERE id = ?", userID)
	return err
}

// --- Track Queries ---

// trackColumns is the column list shared by every track SELECT so the scan
// order stays in one place.
const trackColumns = `id, user_id, name, filename, uploaded_at,
	total_distance, elevation_gain, elevation_loss,
	max_elevation, min_elevation, max_velocity, min_velocity,
	max_gradient, min_gradient, start_time, end_time,
	total_duration_ms, moving_duration_ms,
	avg_heart_rate, avg_cadence, avg_temperature,
	point_count, waypoint_count`

// CreateTrack inserts an uploaded track together with its finalized
// aggregate and returns the stored record.
func (s *Service) CreateTrack(db DBorTx, userID int64, name, filename string, stats track.AggregateStats) (*Track, error) {
	query := `INSERT INTO tracks (
		user_id, name, filename,
		total_distance, elevation_gain, elevation_loss,
		max_elevation, min_elevation, max_velocity, min_velocity,
		max_gradient, min_gradient, start_time, end_time,
		total_duration_ms, moving_duration_ms,
		avg_heart_rate, avg_cadence, avg_temperature,
		point_count, waypoint_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := db.Exec(query,
		userID, name, filename,
		stats.TotalDistance, stats.ElevationGain, stats.ElevationLoss,
		optArg(stats.MaxElevation), optArg(stats.MinElevation),
		optArg(stats.MaxVelocity), optArg(stats.MinVelocity),
		optArg(stats.MaxGradient), optArg(stats.MinGradient),
		timeArg(stats.StartTime), timeArg(stats.EndTime),
		stats.TotalDuration.Milliseconds(), stats.MovingDuration.Milliseconds(),
		optArg(stats.AvgHeartRate), optArg(stats.AvgCadence), optArg(stats.AvgTemperature),
		stats.PointCount, stats.WaypointCount,
	)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetTrackByID(db, id)
}

func (s *Service) GetTrackByID(db DBorTx, id int64) (*Track, error) {
	row := db.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?;`, id)
	return scanTrack(row)
}

// GetTracksByUserID lists a user's tracks, newest upload first.
func (s *Service) GetTracksByUserID(db DBorTx, userID int64) ([]*Track, error) {
	rows, err := db.Query(`SELECT `+trackColumns+` FROM tracks WHERE user_id = ? ORDER BY uploaded_at DESC, id DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []*Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *Service) DeleteTrack(db DBorTx, trackID int64) error {
	res, err := db.Exec("DELETE FROM tracks WHERE id = ?", trackID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("track not found")
	}
	return nil
}

// --- Scan helpers ---

// rowScanner lets scanTrack work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(row rowScanner) (*Track, error) {
	t := &Track{}
	var (
		maxEle, minEle, maxVel, minVel, maxGrad, minGrad sql.NullFloat64
		avgHR, avgCad, avgTemp                           sql.NullFloat64
		startTime, endTime                               sql.NullTime
		totalMs, movingMs                                int64
	)

	err := row.Scan(
		&t.ID, &t.UserID, &t.Name, &t.Filename, &t.UploadedAt,
		&t.Stats.TotalDistance, &t.Stats.ElevationGain, &t.Stats.ElevationLoss,
		&maxEle, &minEle, &maxVel, &minVel,
		&maxGrad, &minGrad, &startTime, &endTime,
		&totalMs, &movingMs,
		&avgHR, &avgCad, &avgTemp,
		&t.Stats.PointCount, &t.Stats.WaypointCount,
	)
	if err != nil {
		return nil, err
	}

	t.Stats.MaxElevation = fromNull(maxEle)
	t.Stats.MinElevation = fromNull(minEle)
	t.Stats.MaxVelocity = fromNull(maxVel)
	t.Stats.MinVelocity = fromNull(minVel)
	t.Stats.MaxGradient = fromNull(maxGrad)
	t.Stats.MinGradient = fromNull(minGrad)
	t.Stats.AvgHeartRate = fromNull(avgHR)
	t.Stats.AvgCadence = fromNull(avgCad)
	t.Stats.AvgTemperature = fromNull(avgTemp)
	if startTime.Valid {
		t.Stats.StartTime = startTime.Time
	}
	if endTime.Valid {
		t.Stats.EndTime = endTime.Time
	}
	t.Stats.TotalDuration = time.Duration(totalMs) * time.Millisecond
	t.Stats.MovingDuration = time.Duration(movingMs) * time.Millisecond

	return t, nil
}

// optArg converts an optional float into a NULL-able SQL argument.
func optArg(o track.OptFloat) interface{} {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// timeArg stores the zero time as NULL instead of a year-one timestamp.
func timeArg(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func fromNull(n sql.NullFloat64) track.OptFloat {
	return track.OptFloat{Valid: n.Valid, Value: n.Float64}
}
