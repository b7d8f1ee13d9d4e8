// Package stgeometry decodes Esri mobile geodatabase ST_Geometry blobs into
// the geometry data model defined by package geometry.
package stgeometry

import (
	"encoding/binary"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// magic is the four-byte header every ST_Geometry blob must begin with.
var magic = []byte{0x64, 0x11, 0x0F, 0x00}

// coordThreshold (T) separates "this varint is part-structure metadata"
// from "this varint is a raw fixed-point coordinate". Legitimate Web
// Mercator raw coordinates comfortably exceed it; part counts and
// per-part point counts never do.
const coordThreshold uint64 = 100_000_000_000

// maxPartInfoVarints bounds how many small varints the part-info prefix
// may read before a value crosses coordThreshold, guarding against reading
// an entire malformed blob one varint at a time.
const maxPartInfoVarints = 10_000

// maxPlausiblePartCount bounds the candidate part count read as p_0; real
// files never declare anywhere near this many parts.
const maxPlausiblePartCount = 10_000

const (
	geomFlagBaseMask    = 0x0F
	geomFlagBaseLine    = 0x04
	geomFlagBasePolygon = 0x08
	geomFlagZPresent    = 0x80
)

// rawPoint is a coordinate pair still in encoded fixed-point space, before
// CoordinateSystem conversion.
type rawPoint struct {
	x, y int64
	z    int64
	hasZ bool
}

// Decode parses blob as an ST_Geometry value against cs, producing the
// geometry it encodes. cs is borrowed for the duration of the call only.
func Decode(blob []byte, cs geometry.CoordinateSystem) (geometry.Geometry, error) {
	if len(blob) < 8 {
		return geometry.Geometry{}, &BlobTooShortError{Length: len(blob)}
	}
	if !hasMagic(blob) {
		return geometry.Geometry{}, &InvalidMagicError{Observed: append([]byte(nil), blob[:4]...)}
	}
	n := binary.LittleEndian.Uint32(blob[4:8])
	if n == 0 {
		return geometry.Geometry{}, &EmptyGeometryError{}
	}

	if n == 1 && len(blob) == 30 {
		return decodePointFastPath(blob, cs)
	}
	return decodeComplex(blob, int(n), cs)
}

func hasMagic(blob []byte) bool {
	for i, b := range magic {
		if blob[i] != b {
			return false
		}
	}
	return true
}

// decodePointFastPath handles the fixed 30-byte single-point layout: bytes
// 8..17 are opaque, bytes 18.. hold two varints (raw_x, raw_y).
func decodePointFastPath(blob []byte, cs geometry.CoordinateSystem) (geometry.Geometry, error) {
	r := newVarintReader(blob, 18)
	rawX, err := r.varint()
	if err != nil {
		return geometry.Geometry{}, err
	}
	rawY, err := r.varint()
	if err != nil {
		return geometry.Geometry{}, err
	}
	x, y := cs.RawToXY(int64(rawX), int64(rawY))
	return geometry.NewPoint(x, y), nil
}

// decodeComplex handles every non-fast-path blob: lines and polygons,
// single- or multi-part.
func decodeComplex(blob []byte, n int, cs geometry.CoordinateSystem) (geometry.Geometry, error) {
	r := newVarintReader(blob, 8)

	if _, err := r.varint(); err != nil { // size hint: diagnostics only
		return geometry.Geometry{}, err
	}
	geomFlags, err := r.varint()
	if err != nil {
		return geometry.Geometry{}, err
	}
	for i := 0; i < 4; i++ { // bounding box: xmin, ymin, xmax, ymax
		if _, err := r.varint(); err != nil {
			return geometry.Geometry{}, err
		}
	}

	rawX0, rawY0, pointsPerPart, declared, err := readPartInfoPrefix(r, n)
	if err != nil {
		return geometry.Geometry{}, err
	}

	flat, signalParts, err := readCoordinateStream(r, n, rawX0, rawY0)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if len(flat) != n {
		return geometry.Geometry{}, &PointCountMismatchError{Expected: n, Observed: len(flat)}
	}

	var parts [][]rawPoint
	if declared {
		parts, err = splitByCounts(flat, pointsPerPart)
		if err != nil {
			return geometry.Geometry{}, err
		}
	} else {
		parts = signalParts
	}

	applyTrailingZ(r, geomFlags, parts)

	return assembleGeometry(geomFlags, parts, cs), nil
}

// readPartInfoPrefix reads the run of small varints following the bounding
// box, stopping at the first value that crosses coordThreshold (that value
// and the varint after it are the first coordinate pair). It returns
// whether a plausible declared part structure was found.
func readPartInfoPrefix(r *varintReader, n int) (rawX0, rawY0 int64, pointsPerPart []int, declared bool, err error) {
	start := r.offset()
	var small []uint64
	for {
		if len(small) > maxPartInfoVarints {
			return 0, 0, nil, false, &PartInfoRunawayError{Offset: start, Count: len(small)}
		}
		v, verr := r.varint()
		if verr != nil {
			return 0, 0, nil, false, verr
		}
		if v > coordThreshold {
			rawX0 = int64(v)
			vy, verr := r.varint()
			if verr != nil {
				return 0, 0, nil, false, verr
			}
			rawY0 = int64(vy)
			break
		}
		small = append(small, v)
	}

	if len(small) == 0 {
		return rawX0, rawY0, []int{n}, false, nil
	}
	m := small[0]
	k := uint64(len(small))
	if m > 0 && m < maxPlausiblePartCount && k > m {
		sum := uint64(0)
		counts := make([]int, m)
		for i := uint64(0); i < m; i++ {
			counts[i] = int(small[1+i])
			sum += small[1+i]
		}
		if sum == uint64(n) {
			return rawX0, rawY0, counts, true, nil
		}
	}
	return rawX0, rawY0, []int{n}, false, nil
}

// readCoordinateStream decodes the N-1 remaining coordinate pairs
// following (rawX0, rawY0), implementing the Part-Open / Absolute-Pending
// state machine from §4.3.2: a lone absolute reset is an in-part refresh,
// while two consecutive absolute resets close the current part and open a
// new one.
func readCoordinateStream(r *varintReader, n int, rawX0, rawY0 int64) (flat []rawPoint, parts [][]rawPoint, err error) {
	curr := rawPoint{x: rawX0, y: rawY0}
	current := []rawPoint{curr}
	var finishedParts [][]rawPoint
	var pending *rawPoint

	flat = append(flat, curr)

	for emitted := 1; emitted < n; emitted++ {
		v1, verr := r.varint()
		if verr != nil {
			return nil, nil, verr
		}
		v2, verr := r.varint()
		if verr != nil {
			return nil, nil, verr
		}

		if v1 > coordThreshold {
			next := rawPoint{x: int64(v1), y: int64(v2)}
			if pending != nil {
				current = append(current, *pending)
				flat = append(flat, *pending)
				finishedParts = append(finishedParts, current)
				current = nil
				curr = next
				p := next
				pending = &p
				continue
			}
			curr = next
			p := next
			pending = &p
			continue
		}

		curr.x += zigzagDecode(v1)
		curr.y += zigzagDecode(v2)
		if pending != nil {
			current = append(current, *pending)
			flat = append(flat, *pending)
			pending = nil
		}
		current = append(current, curr)
		flat = append(flat, curr)
	}

	if pending != nil {
		current = append(current, *pending)
		flat = append(flat, *pending)
	}
	finishedParts = append(finishedParts, current)

	return flat, finishedParts, nil
}

// splitByCounts re-slices a flat, ordered point sequence into parts of the
// declared sizes, used when the part-info prefix yielded an accepted
// candidate structure.
func splitByCounts(flat []rawPoint, counts []int) ([][]rawPoint, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != len(flat) {
		return nil, &PointCountMismatchError{Expected: total, Observed: len(flat)}
	}
	parts := make([][]rawPoint, len(counts))
	offset := 0
	for i, c := range counts {
		parts[i] = flat[offset : offset+c]
		offset += c
	}
	return parts, nil
}

// applyTrailingZ attempts the best-effort Z decode described in §4.3.3: N
// further zigzag-signed varints trailing the XY stream, scaled by the
// coordinate system's Z parameters. Any failure is swallowed and the
// geometry is left without Z, since the exact trailing layout is not
// confirmed against a corpus.
func applyTrailingZ(r *varintReader, geomFlags uint64, parts [][]rawPoint) {
	if geomFlags&geomFlagZPresent == 0 {
		return
	}
	for _, part := range parts {
		for i := range part {
			v, err := r.varint()
			if err != nil {
				for _, p := range parts {
					for j := range p {
						p[j].z, p[j].hasZ = 0, false
					}
				}
				return
			}
			part[i].z = zigzagDecode(v)
			part[i].hasZ = true
		}
	}
}

func assembleGeometry(geomFlags uint64, parts [][]rawPoint, cs geometry.CoordinateSystem) geometry.Geometry {
	base := geomFlags & geomFlagBaseMask

	lines := make([]geometry.Line, len(parts))
	for i, part := range parts {
		lines[i] = geometry.Line{Points: toCoords(part, cs)}
	}

	if base == geomFlagBasePolygon {
		return geometry.NewPolygon(lines)
	}
	if len(lines) == 1 {
		return geometry.NewLineString(lines[0].Points)
	}
	return geometry.NewMultiLineString(lines)
}

func toCoords(part []rawPoint, cs geometry.CoordinateSystem) []geometry.Coord {
	coords := make([]geometry.Coord, len(part))
	for i, p := range part {
		x, y := cs.RawToXY(p.x, p.y)
		c := geometry.Coord{X: x, Y: y}
		if p.hasZ {
			c.Z = cs.RawToZ(p.z)
			c.HasZ = true
		}
		coords[i] = c
	}
	return coords
}
