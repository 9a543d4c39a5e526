package dataset

import (
	"fmt"
	"math"
)

// Canonical column positions. Every Table stores its scores in this order
// regardless of the order they appeared in the source file.
const (
	EssayCol = iota
	InterviewCol
	TotalCol
	numCols
)

// Frame is a read-only, ordered view of score rows. Both *Table and *Subset
// implement it so the analysis functions accept either.
type Frame interface {
	// Len reports the number of rows in the frame.
	Len() int
	// Columns returns the column names in canonical order.
	Columns() []string
	// Column returns a copy of the named column's values in row order.
	Column(name string) ([]float64, error)
	// Row returns a copy of row i (0-based within the frame).
	Row(i int) []float64
	// Index maps frame row i to its position in the source table.
	Index(i int) int
}

// Table is an immutable in-memory score table.
type Table struct {
	name    string
	columns []string
	rows    [][]float64
}

// NewTable builds a table from already validated rows. Rows are copied.
func NewTable(name string, columns []string, rows [][]float64) (*Table, error) {
	if len(columns) != numCols {
		return nil, fmt.Errorf("new table: want %d columns, got %d", numCols, len(columns))
	}
	cp := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != numCols {
			return nil, fmt.Errorf("new table: row %d has %d fields, want %d", i, len(r), numCols)
		}
		cp[i] = append([]float64(nil), r...)
	}
	return &Table{name: name, columns: append([]string(nil), columns...), rows: cp}, nil
}

// Name returns the table's source name (usually the file base name).
func (t *Table) Name() string { return t.name }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

func (t *Table) Column(name string) ([]float64, error) {
	j, err := columnIndex(t.columns, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

func (t *Table) Row(i int) []float64 { return append([]float64(nil), t.rows[i]...) }

func (t *Table) Index(i int) int { return i }

// Head returns the first n rows (fewer if the table is shorter).
func (t *Table) Head(n int) *Subset {
	return t.Slice(0, n)
}

// Tail returns the last n rows (fewer if the table is shorter).
func (t *Table) Tail(n int) *Subset {
	return t.Slice(len(t.rows)-n, len(t.rows))
}

// Slice returns rows [from, to), clamped to the table bounds.
func (t *Table) Slice(from, to int) *Subset {
	if from < 0 {
		from = 0
	}
	if to > len(t.rows) {
		to = len(t.rows)
	}
	var idx []int
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return &Subset{table: t, idx: idx}
}

// Select returns the listed rows in the given order.
func (t *Table) Select(idx []int) (*Subset, error) {
	for _, i := range idx {
		if i < 0 || i >= len(t.rows) {
			return nil, fmt.Errorf("select: row %d out of range [0,%d)", i, len(t.rows))
		}
	}
	return &Subset{table: t, idx: append([]int(nil), idx...)}, nil
}

// TotalMismatches returns the rows whose total differs from essay+interview
// by more than tol. The relation is observed, never enforced.
func (t *Table) TotalMismatches(tol float64) []int {
	var out []int
	for i, r := range t.rows {
		if math.Abs(r[EssayCol]+r[InterviewCol]-r[TotalCol]) > tol {
			out = append(out, i)
		}
	}
	return out
}

// Subset is a read-only view of selected table rows. Row order follows the
// selection, which for Head/Tail/Slice is the original load order.
type Subset struct {
	table *Table
	idx   []int
}

func (s *Subset) Len() int { return len(s.idx) }

func (s *Subset) Columns() []string { return s.table.Columns() }

func (s *Subset) Column(name string) ([]float64, error) {
	j, err := columnIndex(s.table.columns, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s.idx))
	for i, r := range s.idx {
		out[i] = s.table.rows[r][j]
	}
	return out, nil
}

func (s *Subset) Row(i int) []float64 { return s.table.Row(s.idx[i]) }

func (s *Subset) Index(i int) int { return s.idx[i] }

// Indices returns the source row indices covered by the subset.
func (s *Subset) Indices() []int { return append([]int(nil), s.idx...) }

// Points copies the named columns of f into one slice per row, in frame
// order. A nil or empty cols selects every column. The returned names are the
// table's spelling of each selected column.
func Points(f Frame, cols []string) ([][]float64, []string, error) {
	all := f.Columns()
	if len(cols) == 0 {
		cols = all
	}
	pos := make([]int, len(cols))
	names := make([]string, len(cols))
	for k, name := range cols {
		j, err := columnIndex(all, name)
		if err != nil {
			return nil, nil, err
		}
		pos[k], names[k] = j, all[j]
	}
	out := make([][]float64, f.Len())
	for i := range out {
		row := f.Row(i)
		p := make([]float64, len(pos))
		for k, j := range pos {
			p[k] = row[j]
		}
		out[i] = p
	}
	return out, names, nil
}

func columnIndex(columns []string, name string) (int, error) {
	key := foldHeader(name)
	for j, c := range columns {
		if foldHeader(c) == key {
			return j, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}
