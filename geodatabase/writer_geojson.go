package geodatabase

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// Reprojector reprojects a geometry into the coordinate system a writer
// requires (GeoJSON mandates WGS84 longitude/latitude). Passing nil
// leaves geometries in the table's declared SRID.
type Reprojector func(g geometry.Geometry, srid int) (geometry.Geometry, error)

// WriteGeoJSON streams table's features to w as a single GeoJSON
// FeatureCollection. If reproject is non-nil it is applied to each
// geometry before encoding, using info.SRID as the source reference.
func (db *DB) WriteGeoJSON(w io.Writer, table string, opts RowOptions, reproject Reprojector) error {
	info, err := db.Table(table)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(`{"type":"FeatureCollection","features":[`)
	first := true
	for feature, err := range db.Rows(table, opts) {
		if err != nil {
			return err
		}
		if !first {
			bw.WriteByte(',')
		}
		first = false

		raw, err := featureGeoJSON(feature, *info, reproject)
		if err != nil {
			return err
		}
		bw.Write(raw)
	}
	bw.WriteString(`]}`)
	return bw.Flush()
}

// WriteNDJSON streams table's features to w as newline-delimited GeoJSON
// Features, one per line — suited to piping through tools that don't hold
// the whole collection in memory.
func (db *DB) WriteNDJSON(w io.Writer, table string, opts RowOptions, reproject Reprojector) error {
	info, err := db.Table(table)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for feature, err := range db.Rows(table, opts) {
		if err != nil {
			return err
		}
		raw, err := featureGeoJSON(feature, *info, reproject)
		if err != nil {
			return err
		}
		bw.Write(raw)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func featureGeoJSON(feature Feature, info TableInfo, reproject Reprojector) ([]byte, error) {
	g := geometry.Geometry{}
	hasGeom := feature.Geometry != nil
	if hasGeom {
		g = *feature.Geometry
		if reproject != nil {
			reprojected, err := reproject(g, info.SRID)
			if err != nil {
				return nil, fmt.Errorf("geodatabase: reproject feature %d: %w", feature.FID, err)
			}
			g = reprojected
		}
	}

	var id any
	if feature.HasFID {
		id = feature.FID
	}

	var geomJSON json.RawMessage
	if hasGeom {
		raw, err := geometry.GeoJSON(g)
		if err != nil {
			return nil, err
		}
		geomJSON = raw
	} else {
		geomJSON = json.RawMessage("null")
	}

	props := feature.Attributes
	if props == nil {
		props = map[string]any{}
	}
	return json.Marshal(struct {
		Type       string          `json:"type"`
		ID         any             `json:"id,omitempty"`
		Geometry   json.RawMessage `json:"geometry"`
		Properties map[string]any  `json:"properties"`
	}{Type: "Feature", ID: id, Geometry: geomJSON, Properties: props})
}
