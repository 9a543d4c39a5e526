package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DescribeOptions controls the optional robust outlier pass.
type DescribeOptions struct {
	// OutlierThreshold is the robust |z| above which a row is flagged. 0 disables flagging.
	OutlierThreshold float64
	// OutlierMinRows is the smallest column size the MAD estimate is trusted on.
	OutlierMinRows int
}

// DefaultDescribeOptions flags rows with robust |z| > 3.5 on columns of 8+ rows.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{OutlierThreshold: 3.5, OutlierMinRows: 8}
}

// Summary holds per-column descriptive statistics for one frame.
type Summary struct {
	Rows    int           `json:"rows" yaml:"rows"`
	Columns []ColumnStats `json:"columns" yaml:"columns"`
}

// ColumnStats captures the describe() statistics of one numeric column.
type ColumnStats struct {
	Name     string         `json:"name" yaml:"name"`
	Count    int            `json:"count" yaml:"count"`
	Mean     Value          `json:"mean" yaml:"mean"`
	Std      Value          `json:"std" yaml:"std"`
	Min      Value          `json:"min" yaml:"min"`
	P25      Value          `json:"p25" yaml:"p25"`
	P50      Value          `json:"p50" yaml:"p50"`
	P75      Value          `json:"p75" yaml:"p75"`
	Max      Value          `json:"max" yaml:"max"`
	Skewness Value          `json:"skewness" yaml:"skewness"`
	Outliers OutlierSummary `json:"outliers" yaml:"outliers"`
}

// OutlierSummary reports rows whose robust z-score (median/MAD) exceeds Threshold.
type OutlierSummary struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Count     int     `json:"count" yaml:"count"`
	MaxAbsZ   Value   `json:"max_abs_z" yaml:"max_abs_z"`
	Rows      []int   `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Stat names used by Summary.Map, in presentation order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max", "skew"}

// Describe computes count, mean, sample std, min, quartiles, max and
// skewness for every column of f. Statistics that need more rows than the
// frame holds come back undefined rather than failing the call.
func Describe(f dataset.Frame, opt DescribeOptions) (*Summary, error) {
	s := &Summary{Rows: f.Len()}
	for _, name := range f.Columns() {
		xs, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cs := describeColumn(name, xs)
		if opt.OutlierThreshold > 0 {
			cs.Outliers = robustOutliers(f, xs, opt)
		}
		s.Columns = append(s.Columns, cs)
	}
	return s, nil
}

func describeColumn(name string, xs []float64) ColumnStats {
	cs := ColumnStats{Name: name, Count: len(xs)}
	if len(xs) == 0 {
		return cs
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	cs.Mean = Defined(stat.Mean(xs, nil))
	cs.Min = Defined(sorted[0])
	cs.Max = Defined(sorted[len(sorted)-1])
	cs.P25 = Defined(quantile(sorted, 0.25))
	cs.P50 = Defined(quantile(sorted, 0.5))
	cs.P75 = Defined(quantile(sorted, 0.75))
	if len(xs) < 2 {
		return cs
	}
	std := stat.StdDev(xs, nil)
	cs.Std = Defined(std)
	// The adjusted Fisher-Pearson coefficient divides by n-2 and by std.
	if len(xs) >= 3 && !constant(sorted) {
		cs.Skewness = Defined(stat.Skew(xs, nil))
	}
	return cs
}

// Column returns the stats for the named column.
func (s *Summary) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Map flattens the summary into column -> stat name -> value.
func (s *Summary) Map() map[string]map[string]Value {
	out := make(map[string]map[string]Value, len(s.Columns))
	for _, c := range s.Columns {
		out[c.Name] = map[string]Value{
			"count": Defined(float64(c.Count)),
			"mean":  c.Mean,
			"std":   c.Std,
			"min":   c.Min,
			"25%":   c.P25,
			"50%":   c.P50,
			"75%":   c.P75,
			"max":   c.Max,
			"skew":  c.Skewness,
		}
	}
	return out
}

func robustOutliers(f dataset.Frame, xs []float64, opt DescribeOptions) OutlierSummary {
	out := OutlierSummary{Threshold: opt.OutlierThreshold}
	if len(xs) < opt.OutlierMinRows || len(xs) == 0 {
		return out
	}
	median, mad := medianMAD(xs)
	if mad == 0 {
		return out
	}
	maxAbsZ := 0.0
	for i, v := range xs {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > opt.OutlierThreshold {
			out.Count++
			out.Rows = append(out.Rows, f.Index(i))
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	out.MaxAbsZ = Defined(maxAbsZ)
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between the order statistics of sorted
// (the "linear" method: position q*(n-1)).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func constant(sorted []float64) bool {
	return len(sorted) > 0 && floats.Max(sorted) == floats.Min(sorted)
}
