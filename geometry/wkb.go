package geometry

import (
	"bytes"
	"encoding/binary"
)

// WKB byte-order markers (OGC Well-Known Binary).
const (
	WKBBigEndian    byte = 0x00
	WKBLittleEndian byte = 0x01
)

const (
	wkbZFlag    uint32 = 0x80000000 // Z-present flag, per spec
	wkbSRIDFlag uint32 = 0x20000000 // extended-WKB (EWKB) SRID-present flag
)

func wkbTypeCode(t Type, hasZ bool) uint32 {
	code := uint32(t) // TypePoint==1 .. TypeMultiPolygon==6, matching OGC WKB codes
	if hasZ {
		code |= wkbZFlag
	}
	return code
}

type wkbWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
	xdr   byte
}

func newWKBWriter(bigEndian bool) *wkbWriter {
	if bigEndian {
		return &wkbWriter{order: binary.BigEndian, xdr: WKBBigEndian}
	}
	return &wkbWriter{order: binary.LittleEndian, xdr: WKBLittleEndian}
}

func (w *wkbWriter) writeHeader(t Type, hasZ bool, srid *int) {
	w.buf.WriteByte(w.xdr)
	code := wkbTypeCode(t, hasZ)
	if srid != nil {
		code |= wkbSRIDFlag
	}
	binary.Write(&w.buf, w.order, code)
	if srid != nil {
		binary.Write(&w.buf, w.order, uint32(*srid))
	}
}

func (w *wkbWriter) writeUint32(v uint32) { binary.Write(&w.buf, w.order, v) }

func (w *wkbWriter) writeCoord(c Coord, hasZ bool) {
	binary.Write(&w.buf, w.order, c.X)
	binary.Write(&w.buf, w.order, c.Y)
	if hasZ {
		binary.Write(&w.buf, w.order, c.Z)
	}
}

func (w *wkbWriter) writeCoords(coords []Coord, hasZ bool) {
	w.writeUint32(uint32(len(coords)))
	for _, c := range coords {
		w.writeCoord(c, hasZ)
	}
}

func (w *wkbWriter) writeRings(rings []Line, hasZ bool) {
	w.writeUint32(uint32(len(rings)))
	for _, r := range rings {
		w.writeCoords(r.Points, hasZ)
	}
}

func (w *wkbWriter) encode(g Geometry, srid *int) {
	hasZ := g.HasZ()
	w.writeHeader(g.Type, hasZ, srid)
	switch g.Type {
	case TypePoint:
		w.writeCoord(g.Point, hasZ)
	case TypeLineString:
		w.writeCoords(g.Line.Points, hasZ)
	case TypePolygon:
		w.writeRings(g.Polygon.Rings, hasZ)
	case TypeMultiPoint:
		w.writeUint32(uint32(len(g.MultiPoint)))
		for _, c := range g.MultiPoint {
			w.writeHeader(TypePoint, hasZ, nil)
			w.writeCoord(c, hasZ)
		}
	case TypeMultiLineString:
		w.writeUint32(uint32(len(g.MultiLine)))
		for _, l := range g.MultiLine {
			w.writeHeader(TypeLineString, hasZ, nil)
			w.writeCoords(l.Points, hasZ)
		}
	case TypeMultiPolygon:
		w.writeUint32(uint32(len(g.MultiPolygon)))
		for _, p := range g.MultiPolygon {
			w.writeHeader(TypePolygon, hasZ, nil)
			w.writeRings(p.Rings, hasZ)
		}
	}
}

// WKB encodes the geometry to OGC Well-Known Binary in the requested byte order.
func WKB(g Geometry, bigEndian bool) []byte {
	w := newWKBWriter(bigEndian)
	w.encode(g, nil)
	return w.buf.Bytes()
}

// EWKB encodes the geometry to extended WKB (PostGIS-style), embedding the SRID.
func EWKB(g Geometry, bigEndian bool, srid int) []byte {
	w := newWKBWriter(bigEndian)
	w.encode(g, &srid)
	return w.buf.Bytes()
}
