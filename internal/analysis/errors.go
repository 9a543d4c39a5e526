package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow indicates a non-positive subset window size.
	ErrInvalidWindow = errors.New("invalid subset window")
	// ErrInvalidOption indicates an out-of-domain analysis parameter.
	ErrInvalidOption = errors.New("invalid option")
)

// InsufficientDataError indicates an operation needs more rows than the frame holds.
type InsufficientDataError struct {
	Op   string
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need at least %d rows, have %d", e.Op, e.Need, e.Have)
}
