package geodatabase

import (
	"database/sql"
	"encoding/binary"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// WriteGeoPackage writes table's features to a new OGC GeoPackage file at
// outPath, encoding geometries as GeoPackage binary (a small header
// wrapping standard WKB) in a single feature table named after table.
func (db *DB) WriteGeoPackage(outPath, table string, opts RowOptions, reproject Reprojector) error {
	info, err := db.Table(table)
	if err != nil {
		return err
	}

	out, err := sql.Open("sqlite", outPath)
	if err != nil {
		return fmt.Errorf("geodatabase: create geopackage %s: %w", outPath, err)
	}
	defer out.Close()

	srid := info.SRID
	if !info.HasSRID {
		srid = 0
	}
	if err := createGeoPackageSchema(out, table, *info, srid); err != nil {
		return err
	}

	insertSQL, err := gpkgInsertStatement(table, info.Columns, *info)
	if err != nil {
		return err
	}
	stmt, err := out.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for feature, err := range db.Rows(table, opts) {
		if err != nil {
			return err
		}
		var geomBlob any
		if feature.Geometry != nil {
			g := *feature.Geometry
			if reproject != nil {
				if g, err = reproject(g, srid); err != nil {
					return fmt.Errorf("geodatabase: reproject feature %d: %w", feature.FID, err)
				}
			}
			geomBlob = encodeGeoPackageBinary(g, int32(srid))
		}

		args := make([]any, 0, len(info.Columns)+1)
		args = append(args, geomBlob)
		for _, col := range info.Columns {
			if info.HasGeometry() && col == info.GeometryColumn {
				continue
			}
			args = append(args, feature.Attributes[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("geodatabase: insert feature %d: %w", feature.FID, err)
		}
	}
	return nil
}

func createGeoPackageSchema(out *sql.DB, table string, info TableInfo, srid int) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL, srs_id INTEGER NOT NULL PRIMARY KEY,
			organization TEXT NOT NULL, organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL, description TEXT)`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY, data_type TEXT NOT NULL,
			identifier TEXT UNIQUE, description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE, srs_id INTEGER)`,
		`CREATE TABLE IF NOT EXISTS gpkg_geometry_columns (
			table_name TEXT NOT NULL, column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL, srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL, m TINYINT NOT NULL,
			PRIMARY KEY (table_name, column_name))`,
	}
	for _, s := range stmts {
		if _, err := out.Exec(s); err != nil {
			return fmt.Errorf("geodatabase: create geopackage schema: %w", err)
		}
	}

	if _, err := out.Exec(
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition)
		 VALUES (?, ?, 'EPSG', ?, '')`, fmt.Sprintf("EPSG:%d", srid), srid, srid); err != nil {
		return err
	}
	if _, err := out.Exec(
		`INSERT OR REPLACE INTO gpkg_contents (table_name, data_type, identifier, srs_id) VALUES (?, 'features', ?, ?)`,
		table, table, srid); err != nil {
		return err
	}
	if info.HasGeometry() {
		if _, err := out.Exec(
			`INSERT OR REPLACE INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m)
			 VALUES (?, ?, ?, ?, 0, 0)`,
			table, info.GeometryColumn, gpkgGeometryTypeName(info.GeometryTypeCode), srid); err != nil {
			return err
		}
	}

	var cols []string
	if info.HasGeometry() {
		cols = append(cols, fmt.Sprintf("%q GEOMETRY", info.GeometryColumn))
	}
	for _, c := range info.Columns {
		if info.HasGeometry() && c == info.GeometryColumn {
			continue
		}
		cols = append(cols, fmt.Sprintf("%q", c))
	}
	createTable := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (fid INTEGER PRIMARY KEY AUTOINCREMENT", table)
	for _, c := range cols {
		createTable += ", " + c
	}
	createTable += ")"
	_, err := out.Exec(createTable)
	return err
}

func gpkgInsertStatement(table string, columns []string, info TableInfo) (string, error) {
	var names []string
	if info.HasGeometry() {
		names = append(names, info.GeometryColumn)
	}
	for _, c := range columns {
		if info.HasGeometry() && c == info.GeometryColumn {
			continue
		}
		names = append(names, c)
	}
	placeholders := ""
	quoted := ""
	for i, n := range names {
		if i > 0 {
			placeholders += ", "
			quoted += ", "
		}
		placeholders += "?"
		quoted += fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", table, quoted, placeholders), nil
}

func gpkgGeometryTypeName(code int) string {
	switch code % 1000 {
	case 1:
		return "POINT"
	case 2:
		return "LINESTRING"
	case 3:
		return "POLYGON"
	case 4:
		return "MULTIPOINT"
	case 5:
		return "MULTILINESTRING"
	case 6:
		return "MULTIPOLYGON"
	default:
		return "GEOMETRY"
	}
}

// encodeGeoPackageBinary wraps geometry WKB in the small GeoPackage
// binary header (OGC GeoPackage §2.1.3): magic "GP", version, flags
// (little-endian, no envelope), the SRS id, then the WKB body.
func encodeGeoPackageBinary(g geometry.Geometry, srid int32) []byte {
	header := make([]byte, 8)
	header[0] = 'G'
	header[1] = 'P'
	header[2] = 0    // version
	header[3] = 0x01 // flags: little-endian, envelope indicator 0
	binary.LittleEndian.PutUint32(header[4:8], uint32(srid))
	return append(header, geometry.WKB(g, false)...)
}
