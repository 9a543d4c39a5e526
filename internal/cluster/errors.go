package cluster

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/scorelens-cli/internal/analysis"
)

var (
	// ErrInvalidK indicates a cluster count below one.
	ErrInvalidK = errors.New("invalid cluster count")
	// ErrInvalidOption indicates an out-of-domain fitting parameter.
	ErrInvalidOption = errors.New("invalid clustering option")
)

// InsufficientDataError is returned when k exceeds the number of rows.
type InsufficientDataError = analysis.InsufficientDataError

// ConvergenceWarning reports a fit that hit its iteration cap before the
// assignments stabilized. It is informational; the result is still usable.
type ConvergenceWarning struct {
	K       int
	MaxIter int
	Restart int
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("k-means with k=%d did not converge within %d iterations (restart %d)", w.K, w.MaxIter, w.Restart)
}
