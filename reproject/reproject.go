// Package reproject is an optional post-processing collaborator that
// reprojects decoded geometries into WGS84 longitude/latitude, the
// coordinate system GeoJSON output requires. It never runs inside the
// decoder itself — callers compose it explicitly after decoding.
package reproject

import (
	"fmt"

	"github.com/wroge/wgs84"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// ErrUnsupportedSRID is returned when asked to reproject from a spatial
// reference this package does not know how to resolve to a wgs84.CRS.
var ErrUnsupportedSRID = fmt.Errorf("reproject: unsupported SRID")

// fromSRID resolves a numeric EPSG code to a wgs84 coordinate reference
// system. Web Mercator (3857) and its deprecated alias (900913) are the
// two systems mobile geodatabase exports are practically ever stored in;
// anything else is looked up in the EPSG registry the library carries.
func fromSRID(srid int) (wgs84.CoordinateReferenceSystem, error) {
	switch srid {
	case 3857, 900913:
		return wgs84.WebMercator, nil
	case 4326, 0:
		return wgs84.LonLat(), nil
	default:
		crs := wgs84.EPSG().Code(srid)
		if crs == nil {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedSRID, srid)
		}
		return crs, nil
	}
}

// ToWGS84 returns a copy of g with every coordinate reprojected from srid
// to WGS84 longitude/latitude (EPSG:4326). Z, if present, passes through
// the transform unchanged in magnitude (no vertical datum shift).
func ToWGS84(g geometry.Geometry, srid int) (geometry.Geometry, error) {
	from, err := fromSRID(srid)
	if err != nil {
		return geometry.Geometry{}, err
	}
	transform := wgs84.Transform(from, wgs84.LonLat())

	project := func(c geometry.Coord) geometry.Coord {
		lon, lat, z := transform(c.X, c.Y, c.Z)
		return geometry.Coord{X: lon, Y: lat, Z: z, HasZ: c.HasZ}
	}
	projectLine := func(l geometry.Line) geometry.Line {
		pts := make([]geometry.Coord, len(l.Points))
		for i, c := range l.Points {
			pts[i] = project(c)
		}
		return geometry.Line{Points: pts}
	}
	projectPolygon := func(p geometry.Polygon) geometry.Polygon {
		rings := make([]geometry.Line, len(p.Rings))
		for i, r := range p.Rings {
			rings[i] = projectLine(r)
		}
		return geometry.Polygon{Rings: rings}
	}

	switch g.Type {
	case geometry.TypePoint:
		return geometry.Geometry{Type: g.Type, Point: project(g.Point)}, nil
	case geometry.TypeLineString:
		return geometry.Geometry{Type: g.Type, Line: projectLine(g.Line)}, nil
	case geometry.TypePolygon:
		return geometry.Geometry{Type: g.Type, Polygon: projectPolygon(g.Polygon)}, nil
	case geometry.TypeMultiPoint:
		pts := make([]geometry.Coord, len(g.MultiPoint))
		for i, c := range g.MultiPoint {
			pts[i] = project(c)
		}
		return geometry.Geometry{Type: g.Type, MultiPoint: pts}, nil
	case geometry.TypeMultiLineString:
		lines := make([]geometry.Line, len(g.MultiLine))
		for i, l := range g.MultiLine {
			lines[i] = projectLine(l)
		}
		return geometry.Geometry{Type: g.Type, MultiLine: lines}, nil
	case geometry.TypeMultiPolygon:
		polys := make([]geometry.Polygon, len(g.MultiPolygon))
		for i, p := range g.MultiPolygon {
			polys[i] = projectPolygon(p)
		}
		return geometry.Geometry{Type: g.Type, MultiPolygon: polys}, nil
	default:
		return g, nil
	}
}
