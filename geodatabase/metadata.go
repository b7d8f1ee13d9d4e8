package geodatabase

import (
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/text/encoding/unicode"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// geometryTypeNames maps the geometry_type code recorded in
// st_geometry_columns (or the GDB_Items type hint) to its variant name.
// 2005 is an alias for 1005 observed in practice.
var geometryTypeNames = map[int]string{
	1: "Point", 2: "LineString", 3: "Polygon",
	4: "MultiPoint", 5: "MultiLineString", 6: "MultiPolygon",
	1001: "PointZ", 1002: "LineStringZ", 1003: "PolygonZ",
	1004: "MultiPointZ", 1005: "MultiLineStringZ", 1006: "MultiPolygonZ",
	2005: "MultiLineStringZ",
}

func geometryTypeName(code int) string {
	if name, ok := geometryTypeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", code)
}

var (
	xmlWKID    = regexp.MustCompile(`<WKID>(\d+)</WKID>`)
	xmlWKT     = regexp.MustCompile(`<WKT>([^<]+)</WKT>`)
	xmlXOrigin = regexp.MustCompile(`<XOrigin>([^<]+)`)
	xmlYOrigin = regexp.MustCompile(`<YOrigin>([^<]+)`)
	xmlXYScale = regexp.MustCompile(`<XYScale>([^<]+)`)
	xmlZOrigin = regexp.MustCompile(`<ZOrigin>([^<]+)`)
	xmlZScale  = regexp.MustCompile(`<ZScale>([^<]+)`)
)

// decodeItemDefinition turns a GDB_Items.Definition column value into text.
// ArcGIS commonly stores these item definitions as UTF-16LE, but some
// writers leave them as plain UTF-8 text; a BOM-less UTF-16 blob decodes
// to garbage as UTF-8. Text that starts with '<' followed by a non-NUL byte
// is taken as plain text; anything else is tried as UTF-16LE, falling back
// to the raw bytes whenever that decode doesn't look like XML.
func decodeItemDefinition(raw []byte) string {
	if len(raw) >= 2 && raw[0] == '<' && raw[1] != 0 {
		return string(raw)
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	if out, err := decoder.Bytes(raw); err == nil && len(out) > 0 && out[0] == '<' {
		return string(out)
	}
	return string(raw)
}

func extractFloat(xml string, re *regexp.Regexp, fallback float64) float64 {
	m := re.FindStringSubmatch(xml)
	if m == nil {
		return fallback
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return fallback
	}
	return v
}

// parseCoordinateSystem extracts CoordinateSystem parameters from a
// GDB_Items item-definition XML document. Origin and scale fields absent
// from the document take fallback's values; SRID and WKT are left unset
// when the document does not carry them.
func parseCoordinateSystem(raw []byte, fallback geometry.CoordinateSystem) geometry.CoordinateSystem {
	xml := decodeItemDefinition(raw)

	cs := geometry.CoordinateSystem{
		XOrigin: extractFloat(xml, xmlXOrigin, fallback.XOrigin),
		YOrigin: extractFloat(xml, xmlYOrigin, fallback.YOrigin),
		XYScale: extractFloat(xml, xmlXYScale, fallback.XYScale),
		ZOrigin: extractFloat(xml, xmlZOrigin, fallback.ZOrigin),
		ZScale:  extractFloat(xml, xmlZScale, fallback.ZScale),
	}
	if m := xmlWKID.FindStringSubmatch(xml); m != nil {
		if srid, err := strconv.Atoi(m[1]); err == nil {
			cs.SRID = &srid
		}
	}
	if m := xmlWKT.FindStringSubmatch(xml); m != nil {
		cs.WKT = m[1]
	}
	return cs
}
