package geodatabase

import (
	"database/sql"
	"encoding/binary"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

func pointGeometryFixture() geometry.Geometry {
	return geometry.Geometry{
		Type:  geometry.TypePoint,
		Point: geometry.Coord{X: -13152949.20, Y: 5964179.30},
	}
}

func TestWriteGeoPackageSchemaAndRows(t *testing.T) {
	db := openFixture(t)

	outPath := filepath.Join(t.TempDir(), "out.gpkg")
	if err := db.WriteGeoPackage(outPath, "Points", RowOptions{}, nil); err != nil {
		t.Fatal(err)
	}

	out, err := sql.Open("sqlite", outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	var dataType, srsIDText string
	if err := out.QueryRow(`SELECT data_type, srs_id FROM gpkg_contents WHERE table_name = 'Points'`).
		Scan(&dataType, &srsIDText); err != nil {
		t.Fatalf("gpkg_contents row missing: %v", err)
	}
	if dataType != "features" {
		t.Fatalf("data_type = %q, want features", dataType)
	}
	if srsIDText != "3857" {
		t.Fatalf("srs_id = %q, want 3857", srsIDText)
	}

	var geomType string
	if err := out.QueryRow(
		`SELECT geometry_type_name FROM gpkg_geometry_columns WHERE table_name = 'Points' AND column_name = 'shape'`,
	).Scan(&geomType); err != nil {
		t.Fatalf("gpkg_geometry_columns row missing: %v", err)
	}
	if geomType != "POINT" {
		t.Fatalf("geometry_type_name = %q, want POINT", geomType)
	}

	rows, err := out.Query(`SELECT shape FROM Points ORDER BY fid`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			t.Fatal(err)
		}
		blobs = append(blobs, blob)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if len(blobs) != 2 {
		t.Fatalf("got %d rows in output table, want 2", len(blobs))
	}

	var sawGeomRow, sawNullRow bool
	for _, blob := range blobs {
		if blob == nil {
			sawNullRow = true
			continue
		}
		sawGeomRow = true
		if len(blob) < 8 {
			t.Fatalf("geopackage blob too short: %d bytes", len(blob))
		}
		if blob[0] != 'G' || blob[1] != 'P' {
			t.Fatalf("geopackage magic = %q, want GP", blob[:2])
		}
		if blob[2] != 0 {
			t.Fatalf("version byte = %d, want 0", blob[2])
		}
		if blob[3] != 0x01 {
			t.Fatalf("flags byte = %#x, want 0x01 (little-endian, no envelope)", blob[3])
		}
		srid := binary.LittleEndian.Uint32(blob[4:8])
		if srid != 3857 {
			t.Fatalf("srid in header = %d, want 3857", srid)
		}

		wkb := blob[8:]
		if len(wkb) < 21 {
			t.Fatalf("wkb body too short for a Point: %d bytes", len(wkb))
		}
		if wkb[0] != 0x01 {
			t.Fatalf("wkb byte order = %#x, want 0x01 (little-endian)", wkb[0])
		}
		wkbType := binary.LittleEndian.Uint32(wkb[1:5])
		if wkbType != 1 {
			t.Fatalf("wkb type = %d, want 1 (Point)", wkbType)
		}
	}
	if !sawGeomRow || !sawNullRow {
		t.Fatalf("expected one geometry row and one null row, got blobs=%v", blobs)
	}
}

func TestEncodeGeoPackageBinaryHeader(t *testing.T) {
	g := pointGeometryFixture()
	blob := encodeGeoPackageBinary(g, 4326)

	if len(blob) < 8 {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if string(blob[:2]) != "GP" {
		t.Fatalf("magic = %q, want GP", blob[:2])
	}
	if srid := binary.LittleEndian.Uint32(blob[4:8]); srid != 4326 {
		t.Fatalf("srid = %d, want 4326", srid)
	}
}
