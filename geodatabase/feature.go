package geodatabase

import (
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
	"github.com/foundatron/MobileGeodatabaseLib/stgeometry"
)

// Feature is one row of a geodatabase table: its decoded geometry (nil for
// a null blob, which is not an error) plus its non-geometry attributes.
type Feature struct {
	FID        int64
	HasFID     bool
	Geometry   *geometry.Geometry
	Attributes map[string]any
}

// RowOptions narrows a Rows scan.
type RowOptions struct {
	Columns []string // attribute columns to include; nil selects all
	Where   string   // SQL WHERE clause, without the WHERE keyword
	Limit   int64    // 0 means unbounded
}

// Rows iterates the features of table, decoding each row's geometry
// column against the table's resolved CoordinateSystem. A decode failure
// is, by default (see WithStrictDecoding), reported through the logger
// and the feature is yielded with a nil Geometry rather than aborting the
// scan — the policy §7 describes as typical for enclosing readers.
//
// The sequence's error slot carries only scan-level failures (a broken
// connection, a malformed query); per-row decode failures never appear
// there unless WithStrictDecoding was set.
func (db *DB) Rows(table string, opts RowOptions) iter.Seq2[Feature, error] {
	return func(yield func(Feature, error) bool) {
		info, err := db.Table(table)
		if err != nil {
			yield(Feature{}, err)
			return
		}

		query, err := buildRowQuery(table, *info, opts)
		if err != nil {
			yield(Feature{}, err)
			return
		}

		rows, err := db.sqlDB.Query(query)
		if err != nil {
			yield(Feature{}, fmt.Errorf("geodatabase: query %s: %w", table, err))
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			yield(Feature{}, err)
			return
		}

		for rows.Next() {
			feature, decodeErr, err := db.scanFeature(rows, cols, *info)
			if err != nil {
				yield(Feature{}, err)
				return
			}
			if decodeErr != nil {
				if !db.cfg.decodeBestEffort {
					if !yield(feature, decodeErr) {
						return
					}
					continue
				}
				db.cfg.log.Warn("geodatabase: geometry decode failed",
					"table", table, "fid", feature.FID, "error", decodeErr)
				db.metricsDecodeFailure()
			} else if feature.Geometry != nil {
				db.metricsDecodeSuccess()
			}
			if !yield(feature, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Feature{}, err)
		}
	}
}

func buildRowQuery(table string, info TableInfo, opts RowOptions) (string, error) {
	var cols []string
	if len(opts.Columns) > 0 {
		cols = append(cols, opts.Columns...)
		if info.HasGeometry() && !containsFold(cols, info.GeometryColumn) {
			cols = append(cols, info.GeometryColumn)
		}
		if !containsFold(cols, "OBJECTID") && containsFold(info.Columns, "OBJECTID") {
			cols = append([]string{"OBJECTID"}, cols...)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if len(cols) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", c)
		}
	}
	fmt.Fprintf(&b, " FROM %q", table)
	if opts.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(opts.Where)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return b.String(), nil
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func (db *DB) scanFeature(rows *sql.Rows, cols []string, info TableInfo) (Feature, error, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Feature{}, nil, err
	}

	feature := Feature{Attributes: make(map[string]any, len(cols))}
	var decodeErr error

	for i, col := range cols {
		v := values[i]
		switch {
		case info.HasGeometry() && strings.EqualFold(col, info.GeometryColumn):
			blob, ok := v.([]byte)
			if ok && len(blob) > 0 {
				g, err := stgeometry.Decode(blob, info.CoordSystem)
				if err != nil {
					decodeErr = err
				} else {
					feature.Geometry = &g
				}
			}
		case strings.EqualFold(col, "OBJECTID"):
			if fid, ok := asInt64(v); ok {
				feature.FID = fid
				feature.HasFID = true
			} else {
				feature.Attributes[col] = v
			}
		default:
			feature.Attributes[col] = v
		}
	}
	return feature, decodeErr, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
