package api

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abgandar/trackstats/internal/database"
	"github.com/abgandar/trackstats/internal/gpx"
	"github.com/abgandar/trackstats/internal/realtime"
	"github.com/abgandar/trackstats/internal/track"
	"github.com/abgandar/trackstats/internal/units"
)

// unitSystem reads the optional ?units= query parameter, defaulting to metric.
func unitSystem(r *http.Request) (units.System, error) {
	sys := units.System(r.URL.Query().Get("units"))
	if sys == "" {
		return units.Metric, nil
	}
	if !units.ValidSystem(sys) {
		return "", fmt.Errorf("unknown unit system %q", sys)
	}
	return sys, nil
}

// trackFromRequest parses the {trackID} URL parameter, loads the track and
// verifies that it belongs to the authenticated user.
func (s *Server) trackFromRequest(r *http.Request) (*database.Track, int, error) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	trackID, err := strconv.ParseInt(chi.URLParam(r, "trackID"), 10, 64)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid track ID")
	}

	t, err := s.db.GetTrackByID(s.db.DB(), trackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, http.StatusNotFound, errors.New("track not found")
		}
		return nil, http.StatusInternalServerError, err
	}

	// Tracks are private to their uploader. Report "not found" rather than
	// "forbidden" so track IDs are not enumerable.
	if t.UserID != userID {
		return nil, http.StatusNotFound, errors.New("track not found")
	}

	return t, http.StatusOK, nil
}

// handleTrackUpload is the HTTP handler for uploading a GPX document.
// It validates the file, runs the full statistics pass, stores the file and
// the finalized aggregate, and notifies the user's event stream.
func (s *Server) handleTrackUpload(w http.ResponseWriter, r *http.Request) {
	// --- 1. Authentication ---
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	// --- 2. Handle File Upload ---
	// Set a max upload size (e.g., 10 MB) to prevent abuse.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.errorJSON(w, errors.New("file is too large (max 10MB)"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("gpxFile") // "gpxFile" must match the name attribute in the form data.
	if err != nil {
		s.errorJSON(w, errors.New("invalid file upload"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	gpxBytes, err := io.ReadAll(file)
	if err != nil {
		s.errorJSON(w, errors.New("could not read uploaded file"), http.StatusInternalServerError)
		return
	}

	// --- 3. Parse & Aggregate ---
	// The full statistics pass runs here, synchronously: a single pass over
	// bounded input is cheap, and the aggregate is needed for the response.
	ingested, err := gpx.ParseBytes(gpxBytes, s.config.TrackConfig())
	if err != nil {
		s.errorJSON(w, errors.New("invalid GPX file format"), http.StatusBadRequest)
		return
	}
	if ingested.Document.Stats.PointCount == 0 {
		s.errorJSON(w, errors.New("GPX file contains no track points"), http.StatusBadRequest)
		return
	}

	// The track's display name: document name, then the uploaded filename.
	name := ingested.Name
	if name == "" {
		name = header.Filename
	}

	// --- 4. Store the File ---
	// Generate a unique, non-guessable filename.
	newFileName := fmt.Sprintf("user_%d_%d.gpx", userID, time.Now().UnixNano())
	newFilePath := filepath.Join(s.config.GpxPath, newFileName)

	if err := os.WriteFile(newFilePath, gpxBytes, 0644); err != nil {
		s.errorJSON(w, errors.New("could not save file"), http.StatusInternalServerError)
		return
	}

	// --- 5. Persist the Track Record ---
	var stored *database.Track
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		var txErr error
		stored, txErr = s.db.CreateTrack(tx, userID, name, newFileName, ingested.Document.Stats)
		return txErr
	})
	if err != nil {
		// If this fails, clean up the file we just created.
		os.Remove(newFilePath)
		s.errorJSON(w, errors.New("could not store track record"), http.StatusInternalServerError)
		return
	}

	// --- 6. Notify & Respond ---
	s.broker.NotifyUser(userID, realtime.Message{
		Type:    realtime.TypeTrackProcessed,
		Payload: envelope{"trackId": stored.ID, "name": stored.Name},
	})

	sys, err := unitSystem(r)
	if err != nil {
		sys = units.Metric
	}
	s.writeJSON(w, http.StatusCreated, envelope{"track": toTrackResponse(stored, sys)})
}

// handleListTracks returns all of the authenticated user's tracks, newest first.
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	sys, err := unitSystem(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	tracks, err := s.db.GetTracksByUserID(s.db.DB(), userID)
	if err != nil {
		s.errorJSON(w, errors.New("could not list tracks"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"tracks": toTrackResponseList(tracks, sys)})
}

// handleGetTrack returns a single track's stored aggregate.
func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	t, status, err := s.trackFromRequest(r)
	if err != nil {
		s.errorJSON(w, err, status)
		return
	}

	sys, err := unitSystem(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"track": toTrackResponse(t, sys)})
}

// handleDeleteTrack removes a track record and its stored GPX file.
func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	t, status, err := s.trackFromRequest(r)
	if err != nil {
		s.errorJSON(w, err, status)
		return
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.DeleteTrack(tx, t.ID)
	})
	if err != nil {
		s.errorJSON(w, errors.New("could not delete track"), http.StatusInternalServerError)
		return
	}

	filePath := filepath.Join(s.config.GpxPath, t.Filename)
	if err := os.Remove(filePath); err != nil {
		log.Printf("WARN: could not remove gpx file %s: %v", filePath, err)
	}

	s.broker.NotifyUser(t.UserID, realtime.Message{
		Type:    realtime.TypeTrackDeleted,
		Payload: envelope{"trackId": t.ID},
	})

	s.writeJSON(w, http.StatusOK, envelope{"message": "Track deleted successfully"})
}

// reaggregate re-runs the statistics pass over a track's stored file. The
// per-point data is not persisted, so points and series are recomputed on
// demand; for typical documents of a few thousand points this is cheaper
// than storing them.
func (s *Server) reaggregate(t *database.Track) (*track.Document, error) {
	ingested, err := gpx.ParseFile(filepath.Join(s.config.GpxPath, t.Filename), s.config.TrackConfig())
	if err != nil {
		return nil, err
	}
	return ingested.Document, nil
}

// handleGetTrackPoints returns the enriched per-point metadata for a track,
// in document order, for tooltip and label generation.
func (s *Server) handleGetTrackPoints(w http.ResponseWriter, r *http.Request) {
	t, status, err := s.trackFromRequest(r)
	if err != nil {
		s.errorJSON(w, err, status)
		return
	}

	doc, err := s.reaggregate(t)
	if err != nil {
		log.Printf("ERROR: could not reprocess track %d: %v", t.ID, err)
		s.errorJSON(w, errors.New("could not process stored track"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"points": doc.Points})
}

// handleGetTrackSeries returns one derived chart series for a track:
// ?metric=elevation|heartrate|cadence|temperature, ?x=distance|time, and the
// usual ?units= parameter for the label formatting.
func (s *Server) handleGetTrackSeries(w http.ResponseWriter, r *http.Request) {
	t, status, err := s.trackFromRequest(r)
	if err != nil {
		s.errorJSON(w, err, status)
		return
	}

	metric := track.Metric(r.URL.Query().Get("metric"))
	if !track.ValidMetric(metric) {
		s.errorJSON(w, fmt.Errorf("unknown metric %q", metric), http.StatusBadRequest)
		return
	}

	axis := track.Axis(r.URL.Query().Get("x"))
	if axis == "" {
		axis = track.AxisDistance
	}
	if !track.ValidAxis(axis) {
		s.errorJSON(w, fmt.Errorf("unknown x-axis %q", axis), http.StatusBadRequest)
		return
	}

	sys, err := unitSystem(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	doc, err := s.reaggregate(t)
	if err != nil {
		log.Printf("ERROR: could not reprocess track %d: %v", t.ID, err)
		s.errorJSON(w, errors.New("could not process stored track"), http.StatusInternalServerError)
		return
	}

	series := doc.Series(metric, axis, units.Formatter{System: sys})
	s.writeJSON(w, http.StatusOK, envelope{
		"metric": metric,
		"x":      axis,
		"series": series.Collect(),
	})
}
