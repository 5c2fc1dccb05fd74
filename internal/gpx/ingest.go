// Package gpx is the ingestion collaborator: it parses GPX documents with
// the gpxgo library and feeds their points, in document order, through one
// statistics aggregation pass.
package gpx

import (
	"os"
	"strconv"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/abgandar/trackstats/internal/track"
)

// Ingested is the outcome of parsing and aggregating one GPX document.
type Ingested struct {
	// Name is the document's name, falling back to the first track's name.
	Name string
	// Document holds the sealed aggregate and the enriched points.
	Document *track.Document
}

// ParseBytes parses a GPX document and runs the full aggregation pass over
// it. Every track segment and every route is processed through a single
// aggregator, so statistics accumulate across all of them; standalone
// waypoints only increment the waypoint count. An empty document is not an
// error and yields an empty aggregate.
func ParseBytes(data []byte, cfg track.Config) (*Ingested, error) {
	gpxData, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	agg := track.NewAggregator(cfg)

	// Tracks first, then routes, matching the order they appear in the
	// document model. Segment boundaries do not reset the carried state.
	for _, trk := range gpxData.Tracks {
		for _, segment := range trk.Segments {
			agg.ProcessSegment(convertPoints(segment.Points))
		}
	}
	for _, route := range gpxData.Routes {
		agg.ProcessSegment(convertPoints(route.Points))
	}

	agg.AddWaypoints(len(gpxData.Waypoints))

	name := gpxData.Name
	if name == "" && len(gpxData.Tracks) > 0 {
		name = gpxData.Tracks[0].Name
	}

	return &Ingested{
		Name:     name,
		Document: agg.Result(),
	}, nil
}

// ParseFile reads a GPX file from disk and aggregates it.
func ParseFile(path string, cfg track.Config) (*Ingested, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, cfg)
}

// convertPoints maps the library's point type onto the aggregator's input
// records. Absent elevations stay nil, absent timestamps stay the zero-time
// sentinel, and the Garmin TrackPointExtension biometrics are pulled out of
// the extension tree when present.
func convertPoints(points []gpx.GPXPoint) []track.TrackPoint {
	out := make([]track.TrackPoint, 0, len(points))
	for _, p := range points {
		tp := track.TrackPoint{
			Lat:  p.Latitude,
			Lon:  p.Longitude,
			Time: p.Timestamp,
		}
		if p.Elevation.NotNull() {
			ele := p.Elevation.Value()
			tp.Elevation = &ele
		}

		ext := extensionValues(p.Extensions.Nodes)
		if v, ok := ext["hr"]; ok {
			if hr, err := strconv.Atoi(v); err == nil {
				tp.HeartRate = &hr
			}
		}
		if v, ok := ext["cad"]; ok {
			if cad, err := strconv.Atoi(v); err == nil {
				tp.Cadence = &cad
			}
		}
		if v, ok := ext["atemp"]; ok {
			if temp, err := strconv.ParseFloat(v, 64); err == nil {
				tp.Temperature = &temp
			}
		}

		out = append(out, tp)
	}
	return out
}

// extensionValues flattens an extension node tree into a map keyed by
// lower-cased local element name. Nesting (TrackPointExtension and friends)
// is walked recursively; the leaf values win.
func extensionValues(nodes []gpx.ExtensionNode) map[string]string {
	values := make(map[string]string)
	collectExtensionValues(nodes, values)
	return values
}

func collectExtensionValues(nodes []gpx.ExtensionNode, values map[string]string) {
	for _, node := range nodes {
		if data := strings.TrimSpace(node.Data); data != "" {
			values[strings.ToLower(node.XMLName.Local)] = data
		}
		if len(node.Nodes) > 0 {
			collectExtensionValues(node.Nodes, values)
		}
	}
}
