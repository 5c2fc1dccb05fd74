package units

import (
	"math"
	"testing"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

func TestConversions(t *testing.T) {
	if got := MetersToFeet(1); math.Abs(got-3.28084) > 0.0001 {
		t.Errorf("MetersToFeet(1) = %v", got)
	}
	if got := KmToMiles(1.609344); math.Abs(got-1) > 1e-9 {
		t.Errorf("KmToMiles(1.609344) = %v", got)
	}
	if got := CelsiusToFahrenheit(0); got != 32 {
		t.Errorf("CelsiusToFahrenheit(0) = %v", got)
	}
	if got := CelsiusToFahrenheit(100); got != 212 {
		t.Errorf("CelsiusToFahrenheit(100) = %v", got)
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		sys    System
		want   string
	}{
		{500, Metric, "500 m"},
		{12345, Metric, "12.35 km"},
		{100, Imperial, "328 ft"},
		{5000, Imperial, "3.11 mi"},
	}
	for _, tt := range tests {
		if got := FormatDistance(tt.meters, tt.sys); got != tt.want {
			t.Errorf("FormatDistance(%v, %s) = %q, want %q", tt.meters, tt.sys, got, tt.want)
		}
	}
}

func TestFormatSpeedAndTemperature(t *testing.T) {
	if got := FormatSpeed(25.5, Metric); got != "25.5 km/h" {
		t.Errorf("FormatSpeed metric = %q", got)
	}
	if got := FormatSpeed(16.09344, Imperial); got != "10.0 mph" {
		t.Errorf("FormatSpeed imperial = %q", got)
	}
	if got := FormatTemperature(21.5, Metric); got != "21.5 °C" {
		t.Errorf("FormatTemperature metric = %q", got)
	}
	if got := FormatTemperature(0, Imperial); got != "32.0 °F" {
		t.Errorf("FormatTemperature imperial = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Second, "1:30"},
		{59 * time.Second, "0:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Minute, "1:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatterSeriesLabels(t *testing.T) {
	f := Formatter{System: Metric}

	got := f.FormatSeriesLabel(track.MetricElevation, track.AxisDistance, 1500, 320)
	if got != "1.50 km: 320 m" {
		t.Errorf("label = %q", got)
	}

	got = f.FormatSeriesLabel(track.MetricHeartRate, track.AxisTime, 95000, 151)
	if got != "1:35: 151 bpm" {
		t.Errorf("label = %q", got)
	}

	imp := Formatter{System: Imperial}
	got = imp.FormatSeriesLabel(track.MetricTemperature, track.AxisDistance, 0, 10)
	if got != "0 ft: 50.0 °F" {
		t.Errorf("label = %q", got)
	}
}
