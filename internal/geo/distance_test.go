package geo

import (
	"math"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinate
		wantM     float64
		tolerance float64
	}{
		{
			name:      "zero distance",
			a:         Coordinate{Lat: 48.208, Lon: 16.373},
			b:         Coordinate{Lat: 48.208, Lon: 16.373},
			wantM:     0,
			tolerance: 0.001,
		},
		{
			name: "one degree of longitude at the equator",
			a:    Coordinate{Lat: 0, Lon: 0},
			b:    Coordinate{Lat: 0, Lon: 1},
			// 2*pi*R/360
			wantM:     111194.9,
			tolerance: 1,
		},
		{
			name:      "Paris to Berlin",
			a:         Coordinate{Lat: 48.8566, Lon: 2.3522},
			b:         Coordinate{Lat: 52.52, Lon: 13.405},
			wantM:     877000,
			tolerance: 5000,
		},
		{
			name:      "short hop of roughly 111 meters",
			a:         Coordinate{Lat: 47.0, Lon: 8.0},
			b:         Coordinate{Lat: 47.001, Lon: 8.0},
			wantM:     111.19,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v ± %v", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := Coordinate{Lat: -33.8688, Lon: 151.2093}
	b := Coordinate{Lat: 51.5074, Lon: -0.1278}

	ab := Haversine(a, b)
	ba := Haversine(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Haversine not symmetric: a->b = %v, b->a = %v", ab, ba)
	}
}

func TestDistance3D(t *testing.T) {
	a := Coordinate{Lat: 0, Lon: 0}
	b := Coordinate{Lat: 0, Lon: 0}

	t.Run("pure vertical leg", func(t *testing.T) {
		got := Distance3D(a, b, floatPtr(100), floatPtr(105))
		if math.Abs(got-5) > 1e-9 {
			t.Errorf("Distance3D() = %v, want 5", got)
		}
	})

	t.Run("missing elevation degrades to surface distance", func(t *testing.T) {
		c := Coordinate{Lat: 0, Lon: 0.001}
		want := Haversine(a, c)
		if got := Distance3D(a, c, nil, floatPtr(50)); got != want {
			t.Errorf("Distance3D() with nil elevation = %v, want %v", got, want)
		}
		if got := Distance3D(a, c, floatPtr(50), nil); got != want {
			t.Errorf("Distance3D() with nil elevation = %v, want %v", got, want)
		}
	})

	t.Run("pythagorean composition", func(t *testing.T) {
		c := Coordinate{Lat: 0, Lon: 0.001}
		planar := Haversine(a, c)
		got := Distance3D(a, c, floatPtr(0), floatPtr(30))
		want := math.Sqrt(planar*planar + 30*30)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Distance3D() = %v, want %v", got, want)
		}
	})
}
