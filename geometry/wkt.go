package geometry

import (
	"bytes"
	"math"
	"strconv"
)

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NULL"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type wktBuffer struct {
	bytes.Buffer
}

func (b *wktBuffer) writeCoord(c Coord) {
	b.WriteString(formatFloat(c.X))
	b.WriteByte(' ')
	b.WriteString(formatFloat(c.Y))
	if c.HasZ {
		b.WriteByte(' ')
		b.WriteString(formatFloat(c.Z))
	}
}

func (b *wktBuffer) writeCoords(coords []Coord) {
	if len(coords) == 0 {
		b.WriteString("EMPTY")
		return
	}
	b.WriteByte('(')
	b.writeCoord(coords[0])
	for _, c := range coords[1:] {
		b.WriteByte(',')
		b.writeCoord(c)
	}
	b.WriteByte(')')
}

func (b *wktBuffer) writeRings(rings []Line) {
	if len(rings) == 0 {
		b.WriteString("EMPTY")
		return
	}
	b.WriteByte('(')
	b.writeCoords(rings[0].Points)
	for _, r := range rings[1:] {
		b.WriteByte(',')
		b.writeCoords(r.Points)
	}
	b.WriteByte(')')
}

func wktTag(name string, hasZ bool) string {
	if hasZ {
		return name + " Z "
	}
	return name + " "
}

func writeWKT(b *wktBuffer, g Geometry) {
	switch g.Type {
	case TypePoint:
		b.WriteString(wktTag("POINT", g.Point.HasZ))
		b.WriteByte('(')
		b.writeCoord(g.Point)
		b.WriteByte(')')
	case TypeLineString:
		b.WriteString(wktTag("LINESTRING", g.Line.HasZ()))
		b.writeCoords(g.Line.Points)
	case TypePolygon:
		b.WriteString(wktTag("POLYGON", g.Polygon.HasZ()))
		b.writeRings(g.Polygon.Rings)
	case TypeMultiPoint:
		hasZ := g.HasZ()
		b.WriteString(wktTag("MULTIPOINT", hasZ))
		if len(g.MultiPoint) == 0 {
			b.WriteString("EMPTY")
			return
		}
		b.WriteByte('(')
		for i, c := range g.MultiPoint {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('(')
			b.writeCoord(c)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case TypeMultiLineString:
		b.WriteString(wktTag("MULTILINESTRING", g.HasZ()))
		if len(g.MultiLine) == 0 {
			b.WriteString("EMPTY")
			return
		}
		b.WriteByte('(')
		for i, l := range g.MultiLine {
			if i > 0 {
				b.WriteByte(',')
			}
			b.writeCoords(l.Points)
		}
		b.WriteByte(')')
	case TypeMultiPolygon:
		b.WriteString(wktTag("MULTIPOLYGON", g.HasZ()))
		if len(g.MultiPolygon) == 0 {
			b.WriteString("EMPTY")
			return
		}
		b.WriteByte('(')
		for i, p := range g.MultiPolygon {
			if i > 0 {
				b.WriteByte(',')
			}
			b.writeRings(p.Rings)
		}
		b.WriteByte(')')
	}
}

// WKT renders the geometry to its canonical OGC Well-Known Text form, e.g.
// "POINT (-13152949.2 5964179.3)" or "LINESTRING Z (1 2 3,4 5 6)".
func WKT(g Geometry) string {
	b := new(wktBuffer)
	writeWKT(b, g)
	return b.String()
}

// EWKT renders the geometry as WKT prefixed with its spatial reference, e.g.
// "SRID=3857;POINT (-13152949.2 5964179.3)".
func EWKT(g Geometry, srid int) string {
	b := new(wktBuffer)
	b.WriteString("SRID=")
	b.WriteString(strconv.Itoa(srid))
	b.WriteByte(';')
	writeWKT(b, g)
	return b.String()
}
