package geometry

import "encoding/json"

func coordSlice(c Coord) []float64 {
	if c.HasZ {
		return []float64{c.X, c.Y, c.Z}
	}
	return []float64{c.X, c.Y}
}

func coordsSlice(coords []Coord) [][]float64 {
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[i] = coordSlice(c)
	}
	return out
}

func ringsSlice(rings []Line) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, r := range rings {
		out[i] = coordsSlice(r.Points)
	}
	return out
}

type jsonGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func coordinates(g Geometry) any {
	switch g.Type {
	case TypePoint:
		return coordSlice(g.Point)
	case TypeLineString:
		return coordsSlice(g.Line.Points)
	case TypePolygon:
		return ringsSlice(g.Polygon.Rings)
	case TypeMultiPoint:
		return coordsSlice(g.MultiPoint)
	case TypeMultiLineString:
		lines := make([][][]float64, len(g.MultiLine))
		for i, l := range g.MultiLine {
			lines[i] = coordsSlice(l.Points)
		}
		return lines
	case TypeMultiPolygon:
		polys := make([][][][]float64, len(g.MultiPolygon))
		for i, p := range g.MultiPolygon {
			polys[i] = ringsSlice(p.Rings)
		}
		return polys
	default:
		return nil
	}
}

// GeoJSON renders the geometry as a RFC 7946 geometry object:
// {"type": "...", "coordinates": [...]}. Callers are responsible for
// reprojecting to WGS84 longitude/latitude before calling this, since
// GeoJSON mandates that coordinate reference system.
func GeoJSON(g Geometry) ([]byte, error) {
	return json.Marshal(jsonGeometry{Type: g.Type.String(), Coordinates: coordinates(g)})
}

// Feature is a GeoJSON Feature wrapping a Geometry with properties and an id.
type Feature struct {
	Geometry   Geometry
	Properties map[string]any
	ID         any
}

type jsonFeature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// GeoJSONFeature renders a Feature as a RFC 7946 Feature object.
func GeoJSONFeature(f Feature) ([]byte, error) {
	geom, err := GeoJSON(f.Geometry)
	if err != nil {
		return nil, err
	}
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	return json.Marshal(jsonFeature{Type: "Feature", ID: f.ID, Geometry: geom, Properties: props})
}

type jsonFeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// GeoJSONFeatureCollection renders a slice of Features as a RFC 7946
// FeatureCollection.
func GeoJSONFeatureCollection(features []Feature) ([]byte, error) {
	raws := make([]json.RawMessage, len(features))
	for i, f := range features {
		raw, err := GeoJSONFeature(f)
		if err != nil {
			return nil, err
		}
		raws[i] = raw
	}
	return json.Marshal(jsonFeatureCollection{Type: "FeatureCollection", Features: raws})
}
