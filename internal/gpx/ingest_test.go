package gpx

import (
	"testing"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trackstats-test"
     xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
  <metadata><name>Morning Ride</name></metadata>
  <wpt lat="47.0" lon="8.0"><name>Coffee stop</name></wpt>
  <trk>
    <name>Loop</name>
    <trkseg>
      <trkpt lat="0" lon="0">
        <ele>100</ele>
        <time>2025-06-01T09:00:00Z</time>
        <extensions>
          <gpxtpx:TrackPointExtension>
            <gpxtpx:hr>140</gpxtpx:hr>
            <gpxtpx:cad>80</gpxtpx:cad>
            <gpxtpx:atemp>21.5</gpxtpx:atemp>
          </gpxtpx:TrackPointExtension>
        </extensions>
      </trkpt>
      <trkpt lat="0" lon="0.001">
        <ele>110</ele>
        <time>2025-06-01T09:00:10Z</time>
      </trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="0" lon="0.002">
        <ele>112</ele>
        <time>2025-06-01T09:00:20Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseBytes(t *testing.T) {
	got, err := ParseBytes([]byte(sampleGPX), track.DefaultConfig())
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}

	if got.Name != "Morning Ride" {
		t.Errorf("Name = %q, want %q", got.Name, "Morning Ride")
	}

	s := got.Document.Stats
	if s.PointCount != 3 {
		t.Fatalf("PointCount = %d, want 3", s.PointCount)
	}
	if s.WaypointCount != 1 {
		t.Errorf("WaypointCount = %d, want 1", s.WaypointCount)
	}

	// The segment boundary must not break the accumulated time: two 10s
	// legs, both inside the moving threshold.
	if s.TotalDuration != 20*time.Second {
		t.Errorf("TotalDuration = %v, want 20s", s.TotalDuration)
	}
	if s.MovingDuration != 20*time.Second {
		t.Errorf("MovingDuration = %v, want 20s", s.MovingDuration)
	}

	if !s.MaxElevation.Valid || s.MaxElevation.Value != 112 {
		t.Errorf("MaxElevation = %+v, want 112", s.MaxElevation)
	}

	p0 := got.Document.Points[0]
	if p0.HeartRate == nil || *p0.HeartRate != 140 {
		t.Errorf("P0 heart rate = %v, want 140", p0.HeartRate)
	}
	if p0.Cadence == nil || *p0.Cadence != 80 {
		t.Errorf("P0 cadence = %v, want 80", p0.Cadence)
	}
	if p0.Temperature == nil || *p0.Temperature != 21.5 {
		t.Errorf("P0 temperature = %v, want 21.5", p0.Temperature)
	}

	p1 := got.Document.Points[1]
	if p1.HeartRate != nil {
		t.Errorf("P1 heart rate = %v, want nil", *p1.HeartRate)
	}

	// The heart rate average divides by all three points.
	if !s.AvgHeartRate.Valid || s.AvgHeartRate.Value != 140.0/3 {
		t.Errorf("AvgHeartRate = %+v, want %v", s.AvgHeartRate, 140.0/3)
	}
}

func TestParseBytesEmptyDocument(t *testing.T) {
	const empty = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trackstats-test" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`

	got, err := ParseBytes([]byte(empty), track.DefaultConfig())
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if got.Document.Stats.PointCount != 0 {
		t.Errorf("PointCount = %d, want 0", got.Document.Stats.PointCount)
	}
	if got.Document.Stats.MaxVelocity.Valid {
		t.Error("MaxVelocity should stay unset for an empty document")
	}
}

func TestParseBytesRoutes(t *testing.T) {
	const routed = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trackstats-test" xmlns="http://www.topografix.com/GPX/1/1">
  <rte>
    <rtept lat="0" lon="0"><ele>50</ele></rtept>
    <rtept lat="0" lon="0.001"><ele>60</ele></rtept>
  </rte>
</gpx>`

	got, err := ParseBytes([]byte(routed), track.DefaultConfig())
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	s := got.Document.Stats
	if s.PointCount != 2 {
		t.Fatalf("PointCount = %d, want 2", s.PointCount)
	}
	if s.ElevationGain != 10 {
		t.Errorf("ElevationGain = %v, want 10", s.ElevationGain)
	}
	if s.TotalDistance <= 0 {
		t.Error("route points should contribute distance")
	}
}

func TestParseBytesInvalid(t *testing.T) {
	if _, err := ParseBytes([]byte("not a gpx document"), track.DefaultConfig()); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}
