package dataset

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Schema names the three score columns and bounds each sub-score.
type Schema struct {
	Essay     string
	Interview string
	Total     string
	// Min and Max bound each sub-score. The total is bounded by their sums.
	Min float64
	Max float64
}

// DefaultSchema matches the reference spreadsheet: two sub-scores in [0, 50]
// and their total.
func DefaultSchema() Schema {
	return Schema{Essay: "Redação", Interview: "Entrevista", Total: "Total", Min: 0, Max: 50}
}

// Columns returns the schema names in canonical order.
func (s Schema) Columns() []string { return []string{s.Essay, s.Interview, s.Total} }

func (s Schema) bounds(col int) (float64, float64) {
	if col == TotalCol {
		return 2 * s.Min, 2 * s.Max
	}
	return s.Min, s.Max
}

// Options controls how a table file is read.
type Options struct {
	Schema Schema
	// Delimiter for CSV. If 0, inferred from the extension (',' or '\t' for .tsv).
	Delimiter rune
	// DecimalSeparator for numeric cells. If 0, ',' and '.' are both accepted.
	DecimalSeparator rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	Logger     *zap.Logger
}

// DefaultOptions returns the reference schema with auto-detected separators.
func DefaultOptions() Options {
	return Options{Schema: DefaultSchema(), SheetIndex: 1}
}

// Loader reads one table format.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Load selects a loader by file name and reads the table. Any malformed cell
// fails the whole load with a *LoadError.
func Load(path string, opt Options) (*Table, error) {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			t, err := l.Load(path, opt)
			if err != nil {
				return nil, err
			}
			opt.Logger.Debug("table loaded", zap.String("path", path), zap.Int("rows", t.Len()))
			return t, nil
		}
	}
	return nil, &LoadError{Path: filepath.Base(path), Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))}
}

// tableBuilder turns raw header/record strings into a validated Table. It is
// shared by the CSV and XLSX readers.
type tableBuilder struct {
	name string
	opt  Options
	pos  [numCols]int // source column for each canonical column
	rows [][]float64
}

func newTableBuilder(name string, header []string, opt Options) (*tableBuilder, error) {
	b := &tableBuilder{name: name, opt: opt}
	want := opt.Schema.Columns()
	for j := range b.pos {
		b.pos[j] = -1
	}
	for i, h := range header {
		key := foldHeader(h)
		if key == "" {
			continue
		}
		matched := false
		for j, w := range want {
			if key == foldHeader(w) {
				if b.pos[j] >= 0 {
					return nil, &LoadError{Path: name, Column: strings.TrimSpace(h), Err: fmt.Errorf("%w: duplicate header", ErrUnexpectedColumn)}
				}
				b.pos[j] = i
				matched = true
				break
			}
		}
		if !matched {
			return nil, &LoadError{Path: name, Column: strings.TrimSpace(h), Err: ErrUnexpectedColumn}
		}
	}
	for j, p := range b.pos {
		if p < 0 {
			return nil, &LoadError{Path: name, Column: want[j], Err: ErrMissingColumn}
		}
	}
	return b, nil
}

// add validates one record. rowNum is the 1-based data row used in errors.
func (b *tableBuilder) add(rowNum int, rec []string) error {
	names := b.opt.Schema.Columns()
	row := make([]float64, numCols)
	for j, p := range b.pos {
		raw := ""
		if p < len(rec) {
			raw = strings.TrimSpace(rec[p])
		}
		if raw == "" {
			return &LoadError{Path: b.name, Row: rowNum, Column: names[j], Err: ErrBlankCell}
		}
		x, ok := parseNumeric(raw, b.opt.DecimalSeparator)
		if !ok {
			return &LoadError{Path: b.name, Row: rowNum, Column: names[j], Value: raw, Err: ErrNonNumeric}
		}
		lo, hi := b.opt.Schema.bounds(j)
		if x < lo || x > hi {
			return &LoadError{Path: b.name, Row: rowNum, Column: names[j], Value: raw,
				Err: fmt.Errorf("%w: want [%g, %g]", ErrOutOfRange, lo, hi)}
		}
		row[j] = x
	}
	b.rows = append(b.rows, row)
	return nil
}

func (b *tableBuilder) table() (*Table, error) {
	if len(b.rows) == 0 {
		return nil, &LoadError{Path: b.name, Err: ErrEmptyTable}
	}
	return NewTable(b.name, b.opt.Schema.Columns(), b.rows)
}

// foldHeader normalizes a column name for comparison: NFC, trimmed, lower case.
func foldHeader(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// parseNumeric accepts plain and locale-formatted decimals ("7.5", "7,5").
// Thousands separators are not expected for scores and are rejected.
func parseNumeric(s string, dec rune) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", ""))
	switch dec {
	case 0:
		if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
			raw = strings.Replace(raw, ",", ".", 1)
		}
	case '.':
	default:
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
