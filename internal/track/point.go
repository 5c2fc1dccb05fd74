// Package track implements the single-pass statistics aggregation over
// ordered GPS track samples: cumulative distance and time, instantaneous
// velocity and gradient, noise-filtered elevation gain/loss, the
// moving-vs-total duration split, and aggregate extrema and averages.
package track

import (
	"encoding/json"
	"time"

	"github.com/abgandar/trackstats/internal/geo"
)

// TrackPoint is one raw sample as delivered by the ingestion layer. It is
// treated as immutable by the aggregator. A zero Time value is the sentinel
// for an absent or malformed timestamp; elapsed-time arithmetic still works,
// it just produces a very large gap that the moving-time filter discards.
type TrackPoint struct {
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Elevation   *float64  `json:"elevation,omitempty"` // meters, nil when the sample has no elevation
	Time        time.Time `json:"time"`
	HeartRate   *int      `json:"heartRate,omitempty"`   // bpm
	Cadence     *int      `json:"cadence,omitempty"`     // rpm
	Temperature *float64  `json:"temperature,omitempty"` // °C
}

// Coordinate returns the point's horizontal position.
func (p TrackPoint) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// PointMetadata is the derived per-point record the aggregator stamps onto
// every sample it processes.
type PointMetadata struct {
	// CumulativeDistance is the total track distance in meters accumulated
	// before this point's arriving leg is added. The first point is 0.
	CumulativeDistance float64 `json:"cumulativeDistance"`
	// CumulativeTime is the elapsed time since the track start in
	// milliseconds, including gaps that exceed the moving-time threshold.
	CumulativeTime int64 `json:"cumulativeTimeMs"`
	// Velocity is the instantaneous speed in km/h over the leg arriving at
	// this point. It is 0 for the first point and for legs whose time gap
	// reaches the configured maximum interval.
	Velocity float64 `json:"velocity"`
	// Gradient is the slope percentage between the last two noise-filtered
	// elevation reference points. It is nil until a second reference exists,
	// and nil again whenever the gradient is mathematically undefined.
	Gradient *float64 `json:"gradient"`
}

// Point pairs a raw sample with its computed metadata.
type Point struct {
	TrackPoint
	Meta PointMetadata `json:"meta"`
}

// OptFloat is an explicit optional float64 for aggregate fields that have no
// value until data arrives (elevation/velocity/gradient extrema, averages).
// It replaces the ±Inf "unset" sentinels a naive implementation would use,
// so an absent value serializes as JSON null instead of leaking an infinity.
type OptFloat struct {
	Valid bool
	Value float64
}

// Set assigns a value and marks it valid.
func (o *OptFloat) Set(v float64) {
	o.Valid = true
	o.Value = v
}

// MarshalJSON renders the value, or null when unset.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON accepts either null or a number.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.Valid = false
		o.Value = 0
		return nil
	}
	o.Valid = true
	return json.Unmarshal(data, &o.Value)
}
