package geodatabase

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

// openOptionsFixture builds an in-memory geodatabase with three Points
// rows: a valid point blob, a structurally invalid blob (bad magic, so
// stgeometry.Decode fails), and a null geometry.
func openOptionsFixture(t *testing.T, dsn string, opts ...Option) *DB {
	t.Helper()

	raw, err := sql.Open("sqlite", dsn)
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

	badBlob := []byte{0x00, 0x00, 0x00, 0x00, 1, 0, 0, 0}
	rows := []struct {
		name string
		blob any
	}{
		{"a", pointBlobFixture(t)},
		{"bad", badBlob},
		{"c", nil},
	}
	for _, r := range rows {
		if _, err := raw.Exec(`INSERT INTO Points (name, shape) VALUES (?, ?)`, r.name, r.blob); err != nil {
			t.Fatal(err)
		}
	}

	db, err := Open(dsn, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRowsDefaultPolicyNeverSurfacesDecodeErrors(t *testing.T) {
	db := openOptionsFixture(t, "file:options-default?mode=memory&cache=shared")

	var features []Feature
	for f, err := range db.Rows("Points", RowOptions{}) {
		if err != nil {
			t.Fatalf("unexpected scan-level error under default policy: %v", err)
		}
		features = append(features, f)
	}
	if len(features) != 3 {
		t.Fatalf("got %d features, want 3", len(features))
	}

	var withGeom int
	for _, f := range features {
		if f.Geometry != nil {
			withGeom++
		}
	}
	if withGeom != 1 {
		t.Fatalf("withGeom = %d, want 1 (the bad-magic and null rows should decode to nil)", withGeom)
	}
}

func TestRowsStrictDecodingSurfacesError(t *testing.T) {
	db := openOptionsFixture(t, "file:options-strict?mode=memory&cache=shared", WithStrictDecoding())

	var sawDecodeErr bool
	var count int
	for f, err := range db.Rows("Points", RowOptions{}) {
		count++
		if err != nil {
			sawDecodeErr = true
			if f.Attributes["name"] != "bad" {
				t.Fatalf("decode error surfaced for row %v, want the bad-magic row", f.Attributes)
			}
			continue
		}
	}
	if !sawDecodeErr {
		t.Fatal("expected WithStrictDecoding to surface a decode error through the iterator")
	}
	if count != 3 {
		t.Fatalf("got %d yields, want 3 (strict decoding marks the row as failed, it doesn't stop the scan)", count)
	}
}

func TestRowOptionsWhereNarrowsQuery(t *testing.T) {
	db := openOptionsFixture(t, "file:options-where?mode=memory&cache=shared")

	var names []string
	for f, err := range db.Rows("Points", RowOptions{Where: "name = 'a'"}) {
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, fmt.Sprint(f.Attributes["name"]))
	}
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("got %v, want exactly [a]", names)
	}
}

func TestRowOptionsLimitNarrowsQuery(t *testing.T) {
	db := openOptionsFixture(t, "file:options-limit?mode=memory&cache=shared")

	var count int
	for _, err := range db.Rows("Points", RowOptions{Limit: 1}) {
		if err != nil {
			t.Fatal(err)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("got %d rows with Limit: 1, want 1", count)
	}
}

func TestRowOptionsColumnsNarrowsAttributes(t *testing.T) {
	db := openOptionsFixture(t, "file:options-columns?mode=memory&cache=shared")

	for f, err := range db.Rows("Points", RowOptions{Columns: []string{"name"}}) {
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := f.Attributes["name"]; !ok {
			t.Fatalf("attributes missing requested column: %v", f.Attributes)
		}
	}
}
