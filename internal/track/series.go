package track

// Metric selects which per-point value a derived series exposes on its
// y-axis.
type Metric string

const (
	MetricElevation   Metric = "elevation"
	MetricHeartRate   Metric = "heartrate"
	MetricCadence     Metric = "cadence"
	MetricTemperature Metric = "temperature"
)

// Axis selects the x-axis of a derived series.
type Axis string

const (
	AxisDistance Axis = "distance" // cumulative distance, meters
	AxisTime     Axis = "time"     // cumulative elapsed time, milliseconds
)

// ValidMetric reports whether m names a known series metric.
func ValidMetric(m Metric) bool {
	switch m {
	case MetricElevation, MetricHeartRate, MetricCadence, MetricTemperature:
		return true
	}
	return false
}

// ValidAxis reports whether a names a known series axis.
func ValidAxis(a Axis) bool {
	return a == AxisDistance || a == AxisTime
}

// SeriesPoint is one charting sample. X and Y are raw numbers in the core's
// units (meters or milliseconds for X, meters/bpm/rpm/°C for Y); Label is a
// presentation string built by the formatter, empty when none is supplied.
type SeriesPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// LabelFormatter turns a raw (x, y) pair into a human-readable label. Unit
// conversion lives entirely behind this interface; the core only supplies
// raw numbers.
type LabelFormatter interface {
	FormatSeriesLabel(metric Metric, axis Axis, x, y float64) string
}

// Series is a lazy, finite, restartable cursor over one metric of a
// document, in input order. Points that lack the metric are skipped.
type Series struct {
	doc       *Document
	metric    Metric
	axis      Axis
	formatter LabelFormatter
	idx       int
}

// Series creates a cursor over the given metric and axis. A nil formatter
// yields empty labels.
func (d *Document) Series(metric Metric, axis Axis, formatter LabelFormatter) *Series {
	return &Series{doc: d, metric: metric, axis: axis, formatter: formatter}
}

// Next returns the next series point and true, or a zero value and false
// once the document is exhausted.
func (s *Series) Next() (SeriesPoint, bool) {
	for s.idx < len(s.doc.Points) {
		p := s.doc.Points[s.idx]
		s.idx++

		y, ok := metricValue(p, s.metric)
		if !ok {
			continue
		}

		var x float64
		switch s.axis {
		case AxisTime:
			x = float64(p.Meta.CumulativeTime)
		default:
			x = p.Meta.CumulativeDistance
		}

		sp := SeriesPoint{X: x, Y: y}
		if s.formatter != nil {
			sp.Label = s.formatter.FormatSeriesLabel(s.metric, s.axis, x, y)
		}
		return sp, true
	}
	return SeriesPoint{}, false
}

// Reset rewinds the cursor to the first point.
func (s *Series) Reset() {
	s.idx = 0
}

// Collect drains the cursor into a slice. Convenient for JSON responses.
func (s *Series) Collect() []SeriesPoint {
	out := []SeriesPoint{}
	for {
		sp, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, sp)
	}
}

// metricValue extracts the y value for one point, reporting false when the
// point does not carry the metric.
func metricValue(p Point, m Metric) (float64, bool) {
	switch m {
	case MetricElevation:
		if p.Elevation != nil {
			return *p.Elevation, true
		}
	case MetricHeartRate:
		if p.HeartRate != nil {
			return float64(*p.HeartRate), true
		}
	case MetricCadence:
		if p.Cadence != nil {
			return float64(*p.Cadence), true
		}
	case MetricTemperature:
		if p.Temperature != nil {
			return *p.Temperature, true
		}
	}
	return 0, false
}
