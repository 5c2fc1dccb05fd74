// Package units is the thin presentation layer over the aggregator's raw
// numbers: metric/imperial conversion and duration formatting. Everything in
// here is a pure function; no unit conversion leaks into the core math.
package units

import (
	"fmt"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

// System selects the unit system used for formatted output.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// Conversion factors.
const (
	metersPerFoot = 0.3048
	kmPerMile     = 1.609344
)

// ValidSystem reports whether s names a supported unit system.
func ValidSystem(s System) bool {
	return s == Metric || s == Imperial
}

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 { return m / metersPerFoot }

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 { return km / kmPerMile }

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FormatDistance renders a distance given in meters, switching to km (or
// miles) above one kilometer.
func FormatDistance(meters float64, sys System) string {
	if sys == Imperial {
		miles := KmToMiles(meters / 1000)
		if miles < 0.19 { // below roughly 1000 ft, stay in feet
			return fmt.Sprintf("%.0f ft", MetersToFeet(meters))
		}
		return fmt.Sprintf("%.2f mi", miles)
	}
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatElevation renders an elevation in meters or feet.
func FormatElevation(meters float64, sys System) string {
	if sys == Imperial {
		return fmt.Sprintf("%.0f ft", MetersToFeet(meters))
	}
	return fmt.Sprintf("%.0f m", meters)
}

// FormatSpeed renders a speed given in km/h.
func FormatSpeed(kmh float64, sys System) string {
	if sys == Imperial {
		return fmt.Sprintf("%.1f mph", KmToMiles(kmh))
	}
	return fmt.Sprintf("%.1f km/h", kmh)
}

// FormatTemperature renders a temperature given in °C.
func FormatTemperature(celsius float64, sys System) string {
	if sys == Imperial {
		return fmt.Sprintf("%.1f °F", CelsiusToFahrenheit(celsius))
	}
	return fmt.Sprintf("%.1f °C", celsius)
}

// FormatDuration renders a duration as h:mm:ss, or m:ss under an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Formatter builds chart labels for the track series accessor in a fixed
// unit system. It satisfies track.LabelFormatter.
type Formatter struct {
	System System
}

// FormatSeriesLabel combines the converted x and y values of one series
// sample into a tooltip-style string.
func (f Formatter) FormatSeriesLabel(metric track.Metric, axis track.Axis, x, y float64) string {
	var xs string
	switch axis {
	case track.AxisTime:
		xs = FormatDuration(time.Duration(x) * time.Millisecond)
	default:
		xs = FormatDistance(x, f.System)
	}

	var ys string
	switch metric {
	case track.MetricElevation:
		ys = FormatElevation(y, f.System)
	case track.MetricHeartRate:
		ys = fmt.Sprintf("%.0f bpm", y)
	case track.MetricCadence:
		ys = fmt.Sprintf("%.0f rpm", y)
	case track.MetricTemperature:
		ys = FormatTemperature(y, f.System)
	default:
		ys = fmt.Sprintf("%.2f", y)
	}

	return fmt.Sprintf("%s: %s", xs, ys)
}
