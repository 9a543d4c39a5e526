package analysis

import (
	"errors"
	"testing"
)

func TestDistributionCountsSumToRows(t *testing.T) {
	tbl := newTable(t, scoreRows(29))
	for _, bins := range []int{1, 5, 10, 29} {
		d, err := Distribution(tbl, "Total", bins, 64)
		if err != nil {
			t.Fatalf("Distribution(bins=%d): %v", bins, err)
		}
		if len(d.Bins) != bins {
			t.Fatalf("bins = %d, want %d", len(d.Bins), bins)
		}
		sum := 0
		for i, b := range d.Bins {
			sum += b.Count
			if b.Hi < b.Lo {
				t.Fatalf("bin %d inverted: %+v", i, b)
			}
		}
		if sum != 29 {
			t.Fatalf("bins=%d: counts sum to %d, want 29", bins, sum)
		}
	}
}

func TestDistributionCountsMaximumInLastBin(t *testing.T) {
	tbl := newTable(t, [][]float64{{0, 0, 0}, {10, 0, 10}, {10, 0, 10}, {5, 0, 5}})
	d, err := Distribution(tbl, "Redação", 2, 16)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if d.Bins[0].Count != 1 || d.Bins[1].Count != 3 {
		t.Fatalf("bins = %+v", d.Bins)
	}
	if d.Bins[1].Hi != 10 {
		t.Fatalf("last edge = %v, want 10", d.Bins[1].Hi)
	}
}

func TestDistributionDensity(t *testing.T) {
	tbl := newTable(t, scoreRows(29))
	d, err := Distribution(tbl, "Redação", 10, 400)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if !d.Bandwidth.Valid || d.Bandwidth.V <= 0 {
		t.Fatalf("bandwidth = %v", d.Bandwidth)
	}
	if len(d.Density) != 400 {
		t.Fatalf("density points = %d", len(d.Density))
	}
	// Trapezoidal area under the curve should be close to one.
	area := 0.0
	for i := 1; i < len(d.Density); i++ {
		p, q := d.Density[i-1], d.Density[i]
		if q.Density < 0 {
			t.Fatalf("negative density at %v", q.X)
		}
		area += (q.X - p.X) * (p.Density + q.Density) / 2
	}
	if !near(area, 1, 0.02) {
		t.Fatalf("density area = %v", area)
	}
}

func TestDistributionConstantColumn(t *testing.T) {
	tbl := newTable(t, [][]float64{{5, 25, 30}, {6, 25, 31}, {7, 25, 32}})
	d, err := Distribution(tbl, "Entrevista", 10, 32)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if len(d.Bins) != 1 || d.Bins[0].Count != 3 {
		t.Fatalf("bins = %+v", d.Bins)
	}
	if len(d.Density) != 0 || d.Bandwidth.Valid || d.Note == "" {
		t.Fatalf("constant column should omit density: %+v", d)
	}
}

func TestDistributionRejectsBadOptions(t *testing.T) {
	tbl := newTable(t, scoreRows(5))
	if _, err := Distribution(tbl, "Total", 0, 10); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Distribution(tbl, "Total", 3, 1); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Distribution(tbl, "Nome", 3, 10); err == nil {
		t.Fatalf("expected unknown column error")
	}
}
