package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn indicates a required score column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnexpectedColumn indicates the header carries a column outside the schema.
	ErrUnexpectedColumn = errors.New("unexpected column")
	// ErrBlankCell indicates an empty cell where a score was expected.
	ErrBlankCell = errors.New("blank cell")
	// ErrNonNumeric indicates a cell that does not parse as a number.
	ErrNonNumeric = errors.New("non-numeric cell")
	// ErrOutOfRange indicates a score outside the configured bounds.
	ErrOutOfRange = errors.New("score out of range")
	// ErrEmptyTable indicates a file with a header but no data rows.
	ErrEmptyTable = errors.New("table has no rows")
	// ErrUnsupportedFormat indicates no loader is registered for the file extension.
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrUnknownColumn is returned when a frame is asked for a column it does not hold.
	ErrUnknownColumn = errors.New("unknown column")
)

// LoadError describes why a table could not be loaded. No partial table is
// ever returned alongside it.
type LoadError struct {
	Path   string
	Row    int // 1-based data row; 0 when the header is at fault
	Column string
	Value  string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load error"
	}
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q, value %q: %v", e.Path, e.Row, e.Column, e.Value, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Path, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }
