package geodatabase

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// openFixture builds a minimal in-memory geodatabase: a GDB_Items table
// (required for validation), an st_geometry_columns table declaring one
// geometry table, and the table itself with one point row and one row
// whose geometry is null.
func openFixture(t *testing.T) *DB {
	t.Helper()

	raw, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { raw.Close() })

	stmts := []string{
		`CREATE TABLE GDB_Items (Name TEXT, Definition TEXT)`,
		`CREATE TABLE st_geometry_columns (table_name TEXT, column_name TEXT, geometry_type INTEGER, srid INTEGER)`,
		`INSERT INTO st_geometry_columns VALUES ('Points', 'shape', 1, 3857)`,
		`CREATE TABLE Points (OBJECTID INTEGER PRIMARY KEY, name TEXT, shape BLOB)`,
	}
	for _, s := range stmts {
		if _, err := raw.Exec(s); err != nil {
			t.Fatal(err)
		}
	}

	blob := pointBlobFixture(t)
	if _, err := raw.Exec(`INSERT INTO Points (name, shape) VALUES (?, ?)`, "a", blob); err != nil {
		t.Fatal(err)
	}
	if _, err := raw.Exec(`INSERT INTO Points (name, shape) VALUES (?, ?)`, "b", nil); err != nil {
		t.Fatal(err)
	}

	db, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// pointBlobFixture builds the 30-byte single-point ST_Geometry blob from
// the seed scenario used throughout the decoder tests.
func pointBlobFixture(t *testing.T) []byte {
	t.Helper()
	blob := []byte{0x64, 0x11, 0x0F, 0x00, 1, 0, 0, 0}
	blob = append(blob, make([]byte, 10)...)
	blob = appendVarintForTest(blob, 137695015937)
	blob = appendVarintForTest(blob, 724105586082)
	return blob
}

func appendVarintForTest(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func TestOpenValidatesGDBItems(t *testing.T) {
	_, err := Open("file::memory:?cache=shared&mode=memory&_nonexistent=1")
	if err == nil {
		t.Fatal("expected Open of a bare SQLite file with no GDB_Items to fail")
	}
}

func TestOpenAndTables(t *testing.T) {
	db := openFixture(t)
	tables := db.Tables()
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if tables[0].Name != "Points" {
		t.Fatalf("table name = %q, want Points", tables[0].Name)
	}
	if !tables[0].HasGeometry() || tables[0].GeometryColumn != "shape" {
		t.Fatalf("geometry column = %q, want shape", tables[0].GeometryColumn)
	}
	if tables[0].RowCount != 2 {
		t.Fatalf("row count = %d, want 2", tables[0].RowCount)
	}
}

func TestRowsDecodesGeometryAndSkipsNull(t *testing.T) {
	db := openFixture(t)

	var features []Feature
	for f, err := range db.Rows("Points", RowOptions{}) {
		if err != nil {
			t.Fatal(err)
		}
		features = append(features, f)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}

	var withGeom, withoutGeom int
	for _, f := range features {
		if f.Geometry != nil {
			withGeom++
		} else {
			withoutGeom++
		}
	}
	if withGeom != 1 || withoutGeom != 1 {
		t.Fatalf("withGeom=%d withoutGeom=%d, want 1 and 1", withGeom, withoutGeom)
	}
}
