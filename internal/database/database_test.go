package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Close)
	if err := svc.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return svc
}

func TestUserRoundTrip(t *testing.T) {
	svc := newTestService(t)

	var created *User
	err := svc.WriteTx(func(tx *sql.Tx) error {
		var err error
		created, err = svc.CreateUser(tx, "rider@example.com", "rider", "hash")
		return err
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := svc.GetUserByEmail(svc.DB(), "rider@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != created.ID || got.Username != "rider" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := svc.GetUserByEmail(svc.DB(), "nobody@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestTrackRoundTrip(t *testing.T) {
	svc := newTestService(t)

	var user *User
	if err := svc.WriteTx(func(tx *sql.Tx) error {
		var err error
		user, err = svc.CreateUser(tx, "rider@example.com", "rider", "hash")
		return err
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	stats := track.AggregateStats{
		TotalDistance:  12345.6,
		ElevationGain:  321,
		ElevationLoss:  280,
		MaxElevation:   track.OptFloat{Valid: true, Value: 900},
		MinElevation:   track.OptFloat{Valid: true, Value: 450},
		MaxVelocity:    track.OptFloat{Valid: true, Value: 42.5},
		StartTime:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		TotalDuration:  90 * time.Minute,
		MovingDuration: 80 * time.Minute,
		AvgHeartRate:   track.OptFloat{Valid: true, Value: 141.5},
		PointCount:     1500,
		WaypointCount:  2,
	}

	var created *Track
	err := svc.WriteTx(func(tx *sql.Tx) error {
		var err error
		created, err = svc.CreateTrack(tx, user.ID, "Morning Ride", "track_1.gpx", stats)
		return err
	})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}

	got, err := svc.GetTrackByID(svc.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if got.Name != "Morning Ride" || got.UserID != user.ID {
		t.Errorf("unexpected track: %+v", got)
	}
	if got.Stats.TotalDistance != stats.TotalDistance {
		t.Errorf("TotalDistance = %v, want %v", got.Stats.TotalDistance, stats.TotalDistance)
	}
	if !got.Stats.MaxVelocity.Valid || got.Stats.MaxVelocity.Value != 42.5 {
		t.Errorf("MaxVelocity = %+v", got.Stats.MaxVelocity)
	}
	// Unset optionals must come back unset, not as zero.
	if got.Stats.MinVelocity.Valid || got.Stats.AvgCadence.Valid {
		t.Errorf("unset optionals survived as values: %+v", got.Stats)
	}
	if got.Stats.MovingDuration != 80*time.Minute {
		t.Errorf("MovingDuration = %v", got.Stats.MovingDuration)
	}
	if !got.Stats.StartTime.Equal(stats.StartTime) {
		t.Errorf("StartTime = %v, want %v", got.Stats.StartTime, stats.StartTime)
	}

	list, err := svc.GetTracksByUserID(svc.DB(), user.ID)
	if err != nil {
		t.Fatalf("GetTracksByUserID: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("unexpected listing: %+v", list)
	}

	if err := svc.WriteTx(func(tx *sql.Tx) error {
		return svc.DeleteTrack(tx, created.ID)
	}); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}
	if _, err := svc.GetTrackByID(svc.DB(), created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}

	if err := svc.WriteTx(func(tx *sql.Tx) error {
		return svc.DeleteTrack(tx, created.ID)
	}); err == nil {
		t.Error("deleting a missing track should error")
	}
}

func TestUserDeleteCascadesToTracks(t *testing.T) {
	svc := newTestService(t)

	// The cascade only works if foreign-key enforcement is actually on for
	// the pooled connections.
	var fk int
	if err := svc.DB().QueryRow("PRAGMA foreign_keys;").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys pragma = %d, want 1", fk)
	}

	var user *User
	if err := svc.WriteTx(func(tx *sql.Tx) error {
		var err error
		user, err = svc.CreateUser(tx, "rider@example.com", "rider", "hash")
		if err != nil {
			return err
		}
		_, err = svc.CreateTrack(tx, user.ID, "Morning Ride", "track_1.gpx", track.AggregateStats{PointCount: 1})
		return err
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := svc.WriteTx(func(tx *sql.Tx) error {
		return svc.DeleteUser(tx, user.ID)
	}); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	list, err := svc.GetTracksByUserID(svc.DB(), user.ID)
	if err != nil {
		t.Fatalf("GetTracksByUserID: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("deleting the user left %d orphaned tracks", len(list))
	}
}
