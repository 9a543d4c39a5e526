package analysis

import (
	"fmt"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across columns.
type CorrMatrix struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Rows    int       `json:"rows" yaml:"rows"`
	Values  [][]Value `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// At returns the coefficient for the named pair.
func (m *CorrMatrix) At(a, b string) (Value, error) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return Value{}, fmt.Errorf("%w: %q ~ %q", dataset.ErrUnknownColumn, a, b)
	}
	return m.Values[ia][ib], nil
}

// Correlate computes pairwise Pearson coefficients between all columns of f.
// A pair involving a zero-variance column, or a frame of fewer than two
// rows, yields an undefined coefficient rather than zero.
func Correlate(f dataset.Frame) (*CorrMatrix, error) {
	names := f.Columns()
	n := len(names)
	cols := make([][]float64, n)
	degenerate := make([]bool, n)
	for i, name := range names {
		xs, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = xs
		degenerate[i] = len(xs) < 2 || floats.Max(xs) == floats.Min(xs)
	}
	m := &CorrMatrix{Columns: names, Rows: f.Len(), Values: make([][]Value, n)}
	for i := range m.Values {
		m.Values[i] = make([]Value, n)
	}
	for a := 0; a < n; a++ {
		if !degenerate[a] {
			m.Values[a][a] = Defined(1)
		}
		for b := a + 1; b < n; b++ {
			if degenerate[a] || degenerate[b] {
				continue
			}
			r := stat.Correlation(cols[a], cols[b], nil)
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			m.Values[a][b] = Defined(r)
			m.Values[b][a] = m.Values[a][b]
		}
	}
	return m, nil
}

// Subgroups holds the whole-table correlation next to the correlations of
// the first and last windows of rows in load order.
type Subgroups struct {
	All        *CorrMatrix `json:"all" yaml:"all"`
	Bottom     *CorrMatrix `json:"bottom" yaml:"bottom"`
	Top        *CorrMatrix `json:"top" yaml:"top"`
	BottomRows []int       `json:"bottom_rows" yaml:"bottom_rows"`
	TopRows    []int       `json:"top_rows" yaml:"top_rows"`
}

// SubgroupCorrelations correlates the whole table, its first bottom rows and
// its last top rows. Window sizes are caller-supplied; no default is assumed.
func SubgroupCorrelations(t *dataset.Table, bottom, top int) (*Subgroups, error) {
	if bottom < 1 || top < 1 {
		return nil, fmt.Errorf("%w: bottom=%d top=%d", ErrInvalidWindow, bottom, top)
	}
	if bottom > t.Len() {
		return nil, &InsufficientDataError{Op: "bottom window", Need: bottom, Have: t.Len()}
	}
	if top > t.Len() {
		return nil, &InsufficientDataError{Op: "top window", Need: top, Have: t.Len()}
	}
	all, err := Correlate(t)
	if err != nil {
		return nil, fmt.Errorf("correlate all rows: %w", err)
	}
	head := t.Head(bottom)
	low, err := Correlate(head)
	if err != nil {
		return nil, fmt.Errorf("correlate bottom window: %w", err)
	}
	tail := t.Tail(top)
	high, err := Correlate(tail)
	if err != nil {
		return nil, fmt.Errorf("correlate top window: %w", err)
	}
	return &Subgroups{All: all, Bottom: low, Top: high, BottomRows: head.Indices(), TopRows: tail.Indices()}, nil
}
