package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one equal-width histogram bucket, [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// DensityPoint is one sample of the estimated density curve.
type DensityPoint struct {
	X       float64 `json:"x" yaml:"x"`
	Density float64 `json:"density" yaml:"density"`
}

// Dist is the histogram and kernel density estimate of one column.
type Dist struct {
	Column    string         `json:"column" yaml:"column"`
	Count     int            `json:"count" yaml:"count"`
	Bins      []Bin          `json:"bins" yaml:"bins"`
	Bandwidth Value          `json:"bandwidth" yaml:"bandwidth"`
	Density   []DensityPoint `json:"density,omitempty" yaml:"density,omitempty"`
	Note      string         `json:"note,omitempty" yaml:"note,omitempty"`
}

// Distribution bins the named column into equal-width buckets spanning its
// range and evaluates a Gaussian KDE on points evenly spaced x values.
// A constant column gets a single-bin histogram and no density.
func Distribution(f dataset.Frame, column string, bins, points int) (*Dist, error) {
	if bins < 1 {
		return nil, fmt.Errorf("%w: bins=%d", ErrInvalidOption, bins)
	}
	if points < 2 {
		return nil, fmt.Errorf("%w: points=%d", ErrInvalidOption, points)
	}
	xs, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	d := &Dist{Column: column, Count: len(xs)}
	if len(xs) == 0 {
		d.Note = "no rows"
		return d, nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	if lo == hi {
		d.Bins = []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(xs)}}
		d.Note = "constant column; density omitted"
		return d, nil
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// Histogram bins are half-open; nudge the last edge so max is counted.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	d.Bins = make([]Bin, bins)
	for i := range d.Bins {
		d.Bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	d.Bins[bins-1].Hi = hi

	bw := stat.StdDev(xs, nil) * math.Pow(float64(len(xs)), -1.0/5.0)
	d.Bandwidth = Defined(bw)
	kde := &stats.KDE{Sample: stats.Sample{Xs: sorted}, Bandwidth: bw}
	grid := floats.Span(make([]float64, points), lo-3*bw, hi+3*bw)
	d.Density = make([]DensityPoint, points)
	for i, x := range grid {
		d.Density[i] = DensityPoint{X: x, Density: kde.PDF(x)}
	}
	return d, nil
}
