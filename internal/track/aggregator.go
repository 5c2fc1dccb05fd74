package track

import (
	"math"
	"time"

	"github.com/abgandar/trackstats/internal/geo"
)

// Default thresholds for the aggregation pass. A gap of 15 seconds or more
// between samples is treated as a pause, and elevation changes of 4 meters
// or less are treated as sensor jitter.
const (
	DefaultMaxPointInterval        = 15 * time.Second
	DefaultElevationNoiseThreshold = 4.0 // meters
)

// Config holds the two tunables of the aggregation pass.
type Config struct {
	// MaxPointInterval is the largest inter-sample gap still counted as
	// "moving" time. Gaps at or above it are excluded from moving time and
	// from the velocity extrema, but still count toward total time.
	MaxPointInterval time.Duration
	// ElevationNoiseThreshold is the minimum elevation change (meters)
	// between two reference points before it counts toward gain, loss and
	// gradient.
	ElevationNoiseThreshold float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxPointInterval:        DefaultMaxPointInterval,
		ElevationNoiseThreshold: DefaultElevationNoiseThreshold,
	}
}

// normalized fills in defaults for zero-valued fields so a partially
// populated Config behaves sensibly.
func (c Config) normalized() Config {
	if c.MaxPointInterval <= 0 {
		c.MaxPointInterval = DefaultMaxPointInterval
	}
	if c.ElevationNoiseThreshold <= 0 {
		c.ElevationNoiseThreshold = DefaultElevationNoiseThreshold
	}
	return c
}

// AggregateStats is the accumulator mutated once per point over the lifetime
// of one document. It persists across every segment, track and route in the
// document; it is reset only by starting a new Aggregator. After Finalize it
// must be treated as read-only.
type AggregateStats struct {
	TotalDistance float64 `json:"totalDistance"` // meters, 3D
	ElevationGain float64 `json:"elevationGain"` // meters, ≥ 0
	ElevationLoss float64 `json:"elevationLoss"` // meters, ≥ 0

	MaxElevation OptFloat `json:"maxElevation"`
	MinElevation OptFloat `json:"minElevation"`
	MaxVelocity  OptFloat `json:"maxVelocity"` // km/h
	MinVelocity  OptFloat `json:"minVelocity"` // km/h, never set from a zero-velocity sample
	MaxGradient  OptFloat `json:"maxGradient"` // percent
	MinGradient  OptFloat `json:"minGradient"` // percent

	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"`
	TotalDuration  time.Duration `json:"totalDuration"`  // sum of all inter-point gaps
	MovingDuration time.Duration `json:"movingDuration"` // sum of gaps below MaxPointInterval

	AvgHeartRate   OptFloat `json:"avgHeartRate"`   // bpm, populated by Finalize
	AvgCadence     OptFloat `json:"avgCadence"`     // rpm, populated by Finalize
	AvgTemperature OptFloat `json:"avgTemperature"` // °C, populated by Finalize

	PointCount    int `json:"pointCount"`
	WaypointCount int `json:"waypointCount"`

	// Running sums for the averages. The average denominator is the total
	// point count of the whole document, not a per-field count, so a field
	// present on only some points dilutes its own average. That matches the
	// historical behavior downstream consumers expect.
	hrSum, cadSum, tempSum    float64
	hrSeen, cadSeen, tempSeen bool
}

// Aggregator is the sequential state machine that walks the samples of one
// document. The carried state (previous point, elevation reference, last
// computed gradient) deliberately survives segment boundaries: the gap
// between the last point of one segment and the first point of the next is
// part of the statistics, as if all segments were concatenated.
//
// An Aggregator is not safe for concurrent use; process one document per
// Aggregator and read the result only after Finalize.
type Aggregator struct {
	cfg       Config
	stats     AggregateStats
	points    []Point
	last      *Point
	eleRef    *TrackPoint
	lastGrad  *float64
	finalized bool
}

// NewAggregator creates an empty aggregator for one document.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg.normalized()}
}

// ProcessSegment consumes one ordered contiguous run of samples, stamping
// metadata on each and updating the aggregate. It returns the enriched
// points for this segment, in input order. It may be called any number of
// times before Finalize; carried state links the segments together.
func (a *Aggregator) ProcessSegment(points []TrackPoint) []Point {
	start := len(a.points)
	for _, p := range points {
		a.processPoint(p)
	}
	return a.points[start:]
}

// processPoint applies the per-point update rules, in order.
func (a *Aggregator) processPoint(p TrackPoint) {
	var meta PointMetadata

	// Cumulative distance is stamped before this point's arriving leg is
	// added to the total.
	meta.CumulativeDistance = a.stats.TotalDistance

	// Elevation extrema are unconditional: every sample with an elevation
	// participates, including ones the noise filter later ignores.
	if p.Elevation != nil {
		if !a.stats.MaxElevation.Valid || *p.Elevation > a.stats.MaxElevation.Value {
			a.stats.MaxElevation.Set(*p.Elevation)
		}
		if !a.stats.MinElevation.Valid || *p.Elevation < a.stats.MinElevation.Value {
			a.stats.MinElevation.Set(*p.Elevation)
		}
	}

	if a.last != nil {
		delta := geo.Distance3D(a.last.Coordinate(), p.Coordinate(), a.last.Elevation, p.Elevation)
		a.stats.TotalDistance += delta

		dt := p.Time.Sub(a.last.Time)
		if dt < 0 {
			dt = -dt
		}
		a.stats.TotalDuration += dt

		if dt < a.cfg.MaxPointInterval {
			a.stats.MovingDuration += dt
			dtMs := float64(dt) / float64(time.Millisecond)
			if dtMs > 0 {
				// delta in meters over dt in milliseconds scales to km/h.
				velocity := 3600 * delta / dtMs
				meta.Velocity = velocity
				if !a.stats.MaxVelocity.Valid || velocity > a.stats.MaxVelocity.Value {
					a.stats.MaxVelocity.Set(velocity)
				}
				// A zero-velocity sample is a pause, not the slowest moving
				// speed, so it never lowers the minimum.
				if velocity > 0 && (!a.stats.MinVelocity.Valid || velocity < a.stats.MinVelocity.Value) {
					a.stats.MinVelocity.Set(velocity)
				}
			}
		}

		meta.CumulativeTime = a.last.Meta.CumulativeTime + dt.Milliseconds()
	} else {
		// Very first point of the document.
		a.stats.StartTime = p.Time
	}

	a.applyElevationFilter(p, &meta)

	if p.HeartRate != nil {
		a.stats.hrSum += float64(*p.HeartRate)
		a.stats.hrSeen = true
	}
	if p.Cadence != nil {
		a.stats.cadSum += float64(*p.Cadence)
		a.stats.cadSeen = true
	}
	if p.Temperature != nil {
		a.stats.tempSum += *p.Temperature
		a.stats.tempSeen = true
	}

	a.stats.EndTime = p.Time
	a.stats.PointCount++

	enriched := Point{TrackPoint: p, Meta: meta}
	a.points = append(a.points, enriched)
	a.last = &a.points[len(a.points)-1]
}

// applyElevationFilter runs the noise-threshold admission check and computes
// the gradient for points that pass it. Points whose elevation change from
// the current reference stays within the threshold inherit the reference's
// last computed gradient and do not advance the reference.
func (a *Aggregator) applyElevationFilter(p TrackPoint, meta *PointMetadata) {
	if p.Elevation == nil {
		// No elevation on this sample: the reference stays put and the
		// point reports whatever gradient the reference last produced.
		meta.Gradient = copyFloat(a.lastGrad)
		return
	}

	if a.eleRef == nil {
		// First sample with an elevation becomes the initial reference.
		// No gain, loss or gradient can be computed from a single reference.
		ref := p
		a.eleRef = &ref
		meta.Gradient = nil
		return
	}

	deltaEle := *p.Elevation - *a.eleRef.Elevation
	if math.Abs(deltaEle) > a.cfg.ElevationNoiseThreshold {
		if deltaEle > 0 {
			a.stats.ElevationGain += deltaEle
		} else {
			a.stats.ElevationLoss += -deltaEle
		}

		// The gradient's run is the planar component of the 3D leg between
		// the two references: sqrt(dist3d² − rise²). A purely vertical leg
		// makes the run zero and the gradient undefined.
		dist := geo.Distance3D(a.eleRef.Coordinate(), p.Coordinate(), a.eleRef.Elevation, p.Elevation)
		runSq := dist*dist - deltaEle*deltaEle
		if runSq > 0 {
			gradient := 100 * deltaEle / math.Sqrt(runSq)
			a.lastGrad = &gradient
			if !a.stats.MaxGradient.Valid || gradient > a.stats.MaxGradient.Value {
				a.stats.MaxGradient.Set(gradient)
			}
			if !a.stats.MinGradient.Valid || gradient < a.stats.MinGradient.Value {
				a.stats.MinGradient.Set(gradient)
			}
		} else {
			a.lastGrad = nil
		}

		ref := p
		a.eleRef = &ref
	}

	meta.Gradient = copyFloat(a.lastGrad)
}

// AddWaypoints records standalone waypoints counted by the ingestion layer.
// Waypoints carry no samples, so they only affect the count.
func (a *Aggregator) AddWaypoints(n int) {
	a.stats.WaypointCount += n
}

// Finalize computes the biometric averages and seals the aggregate. It is
// idempotent. A document with zero points produces an empty aggregate with
// every optional field unset; there is no division by zero.
func (a *Aggregator) Finalize() {
	if a.finalized {
		return
	}
	a.finalized = true

	if a.stats.PointCount == 0 {
		return
	}

	n := float64(a.stats.PointCount)
	if a.stats.hrSeen {
		a.stats.AvgHeartRate.Set(a.stats.hrSum / n)
	}
	if a.stats.cadSeen {
		a.stats.AvgCadence.Set(a.stats.cadSum / n)
	}
	if a.stats.tempSeen {
		a.stats.AvgTemperature.Set(a.stats.tempSum / n)
	}
}

// Stats returns the current aggregate. Before Finalize this is a live
// snapshot; afterwards it is the sealed result.
func (a *Aggregator) Stats() AggregateStats {
	return a.stats
}

// Result finalizes the aggregator if needed and returns the completed
// document: the sealed aggregate plus every enriched point in input order.
func (a *Aggregator) Result() *Document {
	a.Finalize()
	return &Document{
		Stats:  a.stats,
		Points: a.points,
	}
}

// Document is the read-only outcome of one full aggregation pass.
type Document struct {
	Stats  AggregateStats `json:"stats"`
	Points []Point        `json:"points"`
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
