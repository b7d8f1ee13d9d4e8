// Package geometry defines the decoded-geometry data model produced by the
// stgeometry decoder, the CoordinateSystem it is decoded against, and the
// WKT/WKB/GeoJSON encoders that consume it.
package geometry

import "fmt"

// Type identifies the concrete shape a Geometry value holds.
type Type int

// Geometry shape discriminants.
const (
	TypePoint Type = iota + 1
	TypeLineString
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
)

func (t Type) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypeMultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// CoordinateSystem holds the origin/scale parameters a mobile geodatabase
// table declares for its feature class, plus the spatial reference identity
// carried through for passthrough.
//
// The effective scale used to decode coordinates is XYScale*2: the encoder
// doubles the metadata scale, and that factor is not documented anywhere in
// the file format itself (see EffectiveXYScale).
type CoordinateSystem struct {
	XOrigin float64
	YOrigin float64
	XYScale float64

	ZOrigin float64
	ZScale  float64

	SRID *int
	WKT  string
}

// DefaultCoordinateSystem returns the parameters typical of a Web Mercator
// (EPSG:3857) mobile geodatabase, used whenever a table's coordinate system
// cannot be resolved from metadata.
func DefaultCoordinateSystem() CoordinateSystem {
	return CoordinateSystem{
		XOrigin: -20037700,
		YOrigin: -30241100,
		XYScale: 10000,
		ZOrigin: -100000,
		ZScale:  10000,
	}
}

// EffectiveXYScale is the divisor actually applied to raw fixed-point XY
// values during decoding. It is double the metadata XYScale; omitting the
// factor of two produces coordinates off by 2x in magnitude and in the
// wrong origin band.
func (cs CoordinateSystem) EffectiveXYScale() float64 { return cs.XYScale * 2 }

// EffectiveZScale is the divisor applied to raw fixed-point Z values.
func (cs CoordinateSystem) EffectiveZScale() float64 { return cs.ZScale }

// RawToXY converts raw encoded fixed-point integers to real-world
// coordinates: raw/(xyScale*2) + origin.
func (cs CoordinateSystem) RawToXY(rawX, rawY int64) (x, y float64) {
	scale := cs.EffectiveXYScale()
	return float64(rawX)/scale + cs.XOrigin, float64(rawY)/scale + cs.YOrigin
}

// RawToZ converts a raw encoded fixed-point Z integer to a real-world Z value.
func (cs CoordinateSystem) RawToZ(rawZ int64) float64 {
	return float64(rawZ)/cs.EffectiveZScale() + cs.ZOrigin
}

// Bounds is an axis-aligned bounding box in the coordinate system of the
// geometry it was derived from.
type Bounds struct {
	XMin, YMin, XMax, YMax float64
}

// Union returns the smallest Bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		XMin: minF(b.XMin, other.XMin),
		YMin: minF(b.YMin, other.YMin),
		XMax: maxF(b.XMax, other.XMax),
		YMax: maxF(b.YMax, other.YMax),
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Coord is a single XY (optionally Z) coordinate.
type Coord struct {
	X, Y float64
	Z    float64
	HasZ bool
}

func (c Coord) bounds() Bounds { return Bounds{c.X, c.Y, c.X, c.Y} }

// Geometry is the sum type over every shape the decoder can produce.
//
// Exactly one of Point, Line, Polygon, MultiPoint, MultiLine, or
// MultiPolygon is meaningful, selected by Type. Values are created once by
// a decode call, are never mutated afterward, and carry no identity: two
// Geometry values with equal fields are behaviorally identical.
type Geometry struct {
	Type         Type
	Point        Coord
	Line         Line
	Polygon      Polygon
	MultiPoint   []Coord
	MultiLine    []Line
	MultiPolygon []Polygon
}

// Line is an ordered, non-empty sequence of coordinates.
type Line struct {
	Points []Coord
}

// HasZ reports whether every point of the line carries a Z ordinate.
func (l Line) HasZ() bool {
	if len(l.Points) == 0 {
		return false
	}
	for _, p := range l.Points {
		if !p.HasZ {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the line.
func (l Line) Bounds() Bounds {
	b := l.Points[0].bounds()
	for _, p := range l.Points[1:] {
		b = b.Union(p.bounds())
	}
	return b
}

// Polygon is an ordered sequence of closed rings; ring 0 is the exterior,
// the rest are interior holes.
type Polygon struct {
	Rings []Line
}

// Exterior returns the outer ring, or a zero Line if the polygon has no rings.
func (p Polygon) Exterior() Line {
	if len(p.Rings) == 0 {
		return Line{}
	}
	return p.Rings[0]
}

// Interiors returns the hole rings, if any.
func (p Polygon) Interiors() []Line {
	if len(p.Rings) < 2 {
		return nil
	}
	return p.Rings[1:]
}

// HasZ reports whether every ring of the polygon carries Z ordinates.
func (p Polygon) HasZ() bool {
	if len(p.Rings) == 0 {
		return false
	}
	for _, r := range p.Rings {
		if !r.HasZ() {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() Bounds {
	b := p.Rings[0].Bounds()
	for _, r := range p.Rings[1:] {
		b = b.Union(r.Bounds())
	}
	return b
}

// HasZ reports whether the geometry carries Z ordinates, per its concrete type.
func (g Geometry) HasZ() bool {
	switch g.Type {
	case TypePoint:
		return g.Point.HasZ
	case TypeLineString:
		return g.Line.HasZ()
	case TypePolygon:
		return g.Polygon.HasZ()
	case TypeMultiPoint:
		for _, c := range g.MultiPoint {
			if !c.HasZ {
				return false
			}
		}
		return len(g.MultiPoint) > 0
	case TypeMultiLineString:
		for _, l := range g.MultiLine {
			if !l.HasZ() {
				return false
			}
		}
		return len(g.MultiLine) > 0
	case TypeMultiPolygon:
		for _, p := range g.MultiPolygon {
			if !p.HasZ() {
				return false
			}
		}
		return len(g.MultiPolygon) > 0
	default:
		return false
	}
}

// Bounds returns the axis-aligned bounding box of the geometry.
func (g Geometry) Bounds() Bounds {
	switch g.Type {
	case TypePoint:
		return g.Point.bounds()
	case TypeLineString:
		return g.Line.Bounds()
	case TypePolygon:
		return g.Polygon.Bounds()
	case TypeMultiPoint:
		b := g.MultiPoint[0].bounds()
		for _, c := range g.MultiPoint[1:] {
			b = b.Union(c.bounds())
		}
		return b
	case TypeMultiLineString:
		b := g.MultiLine[0].Bounds()
		for _, l := range g.MultiLine[1:] {
			b = b.Union(l.Bounds())
		}
		return b
	case TypeMultiPolygon:
		b := g.MultiPolygon[0].Bounds()
		for _, p := range g.MultiPolygon[1:] {
			b = b.Union(p.Bounds())
		}
		return b
	default:
		return Bounds{}
	}
}

// NewPoint constructs a Point geometry.
func NewPoint(x, y float64) Geometry {
	return Geometry{Type: TypePoint, Point: Coord{X: x, Y: y}}
}

// NewPointZ constructs a Point geometry with a Z ordinate.
func NewPointZ(x, y, z float64) Geometry {
	return Geometry{Type: TypePoint, Point: Coord{X: x, Y: y, Z: z, HasZ: true}}
}

// NewLineString constructs a LineString geometry from one part's points.
func NewLineString(points []Coord) Geometry {
	return Geometry{Type: TypeLineString, Line: Line{Points: points}}
}

// NewMultiLineString constructs a MultiLineString geometry from several parts.
func NewMultiLineString(lines []Line) Geometry {
	return Geometry{Type: TypeMultiLineString, MultiLine: lines}
}

// NewPolygon constructs a Polygon geometry from its rings.
func NewPolygon(rings []Line) Geometry {
	return Geometry{Type: TypePolygon, Polygon: Polygon{Rings: rings}}
}

// NewMultiPoint constructs a MultiPoint geometry.
func NewMultiPoint(points []Coord) Geometry {
	return Geometry{Type: TypeMultiPoint, MultiPoint: points}
}

// NewMultiPolygon constructs a MultiPolygon geometry from several polygons.
func NewMultiPolygon(polygons []Polygon) Geometry {
	return Geometry{Type: TypeMultiPolygon, MultiPolygon: polygons}
}
