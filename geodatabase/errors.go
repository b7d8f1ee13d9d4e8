package geodatabase

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Open and table lookups.
var (
	ErrNotAGeodatabase = errors.New("geodatabase: not a valid mobile geodatabase")
	ErrTableNotFound   = errors.New("geodatabase: table not found")
)

// NotAGeodatabaseError reports that a file opened successfully as SQLite
// but is missing the GDB_Items system table mobile geodatabases require.
type NotAGeodatabaseError struct {
	Path string
}

func (e *NotAGeodatabaseError) Error() string {
	return fmt.Sprintf("geodatabase: %s is missing GDB_Items, not a valid geodatabase", e.Path)
}
func (e *NotAGeodatabaseError) Unwrap() error { return ErrNotAGeodatabase }

// TableNotFoundError reports a lookup for a table absent from the schema.
type TableNotFoundError struct {
	Name string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("geodatabase: table not found: %s", e.Name)
}
func (e *TableNotFoundError) Unwrap() error { return ErrTableNotFound }
