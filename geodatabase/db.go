// Package geodatabase opens Esri mobile geodatabase (.geodatabase) files —
// ordinary SQLite databases carrying ST_Geometry blobs and an ArcGIS
// system-table schema — and exposes their feature tables as decoded
// geometries and attributes.
package geodatabase

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// DB is an open mobile geodatabase file.
type DB struct {
	sqlDB  *sql.DB
	path   string
	cfg    *config
	tables map[string]*TableInfo
	stats  *metricsState
}

// TableInfo describes one table found in the geodatabase.
type TableInfo struct {
	Name             string
	GeometryColumn   string
	GeometryType     string
	GeometryTypeCode int
	SRID             int
	HasSRID          bool
	CoordSystem      geometry.CoordinateSystem
	Columns          []string
	RowCount         int64
}

// HasGeometry reports whether the table carries a geometry column.
func (t TableInfo) HasGeometry() bool { return t.GeometryColumn != "" }

// Open opens the mobile geodatabase file at path, validating that it
// carries the GDB_Items system table every geodatabase must have.
func Open(path string, opts ...Option) (*DB, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("geodatabase: open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("geodatabase: open %s: %w", path, err)
	}

	db := &DB{sqlDB: sqlDB, path: path, cfg: cfg}
	if err := db.validate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.loadTables(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if cfg.registerer != nil {
		collector := newCollector(db)
		if err := cfg.registerer.Register(collector); err != nil {
			cfg.log.Warn("geodatabase: failed to register metrics collector", "error", err)
		}
	}
	return db, nil
}

func (db *DB) validate() error {
	var name string
	err := db.sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='GDB_Items'`).Scan(&name)
	if err != nil {
		return &NotAGeodatabaseError{Path: db.path}
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (db *DB) Close() error { return db.sqlDB.Close() }

// Tables returns every table the geodatabase declares. The order of the
// returned slice is not defined and may differ between calls.
func (db *DB) Tables() []TableInfo {
	out := make([]TableInfo, 0, len(db.tables))
	for _, t := range db.tables {
		out = append(out, *t)
	}
	return out
}

// Table looks up a table by name, case-insensitively.
func (db *DB) Table(name string) (*TableInfo, error) {
	t, ok := db.tables[strings.ToLower(name)]
	if !ok {
		return nil, &TableNotFoundError{Name: name}
	}
	cp := *t
	return &cp, nil
}

func (db *DB) loadTables() error {
	db.tables = make(map[string]*TableInfo)

	geomInfo, err := db.loadGeometryColumns()
	if err != nil {
		db.cfg.log.Warn("geodatabase: st_geometry_columns unavailable", "error", err)
		geomInfo = map[string]geomColumnInfo{}
	}

	rows, err := db.sqlDB.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table'
		AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		AND name NOT LIKE 'GDB\_%' ESCAPE '\'
		AND name NOT LIKE 'st\_%' ESCAPE '\'
	`)
	if err != nil {
		return fmt.Errorf("geodatabase: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("geodatabase: list tables: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range names {
		info, err := db.buildTableInfo(name, geomInfo)
		if err != nil {
			return err
		}
		db.tables[strings.ToLower(name)] = info
	}
	return nil
}

type geomColumnInfo struct {
	column string
	typ    int
	srid   int
}

func (db *DB) loadGeometryColumns() (map[string]geomColumnInfo, error) {
	rows, err := db.sqlDB.Query(`SELECT table_name, column_name, geometry_type, srid FROM st_geometry_columns`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]geomColumnInfo{}
	for rows.Next() {
		var table, column string
		var typ, srid int
		if err := rows.Scan(&table, &column, &typ, &srid); err != nil {
			return nil, err
		}
		out[table] = geomColumnInfo{column: column, typ: typ, srid: srid}
	}
	return out, rows.Err()
}

func (db *DB) buildTableInfo(name string, geomInfo map[string]geomColumnInfo) (*TableInfo, error) {
	columns, err := db.columnNames(name)
	if err != nil {
		return nil, err
	}
	rowCount, err := db.rowCount(name)
	if err != nil {
		return nil, err
	}

	info := &TableInfo{Name: name, Columns: columns, RowCount: rowCount}

	if gi, ok := geomInfo[name]; ok {
		info.GeometryColumn = gi.column
		info.GeometryTypeCode = gi.typ
		info.GeometryType = geometryTypeName(gi.typ)
		info.SRID = gi.srid
		info.HasSRID = true
		info.CoordSystem = db.lookupCoordinateSystem(name)
	} else {
		for _, c := range columns {
			if strings.EqualFold(c, "shape") {
				info.GeometryColumn = c
				info.CoordSystem = db.lookupCoordinateSystem(name)
				break
			}
		}
	}
	return info, nil
}

func (db *DB) columnNames(table string) ([]string, error) {
	rows, err := db.sqlDB.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (db *DB) rowCount(table string) (int64, error) {
	var n int64
	err := db.sqlDB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", table)).Scan(&n)
	return n, err
}

// lookupCoordinateSystem resolves a table's CoordinateSystem from its
// GDB_Items definition, trying both the "main."-qualified and bare table
// name the way ArcGIS writers inconsistently record it. Falls back to the
// configured default when no definition is found.
func (db *DB) lookupCoordinateSystem(table string) geometry.CoordinateSystem {
	var raw []byte
	for _, candidate := range []string{"main." + table, table} {
		err := db.sqlDB.QueryRow(`SELECT Definition FROM GDB_Items WHERE Name = ?`, candidate).Scan(&raw)
		if err == nil && len(raw) > 0 {
			return parseCoordinateSystem(raw, db.cfg.defaultCS)
		}
	}
	return db.cfg.defaultCS
}
