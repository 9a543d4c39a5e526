package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/scorelens-cli/internal/analysis"
	"github.com/KaramelBytes/scorelens-cli/internal/cluster"
	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Params carries every knob of a full pipeline run.
type Params struct {
	BottomWindow   int
	TopWindow      int
	TotalTolerance float64
	Describe       analysis.DescribeOptions
	HistogramBins  int
	DensityPoints  int
	Elbow          cluster.ElbowOptions
	Cluster        cluster.Options
}

// DefaultParams matches the defaults of the config layer.
func DefaultParams() Params {
	return Params{
		BottomWindow:   11,
		TopWindow:      11,
		TotalTolerance: 0.01,
		Describe:       analysis.DefaultDescribeOptions(),
		HistogramBins:  10,
		DensityPoints:  64,
		Elbow:          cluster.DefaultElbowOptions(),
		Cluster:        cluster.DefaultOptions(),
	}
}

// Report is the outcome of one run. Sections that were not computed are nil.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Source      string    `json:"source" yaml:"source"`
	Rows        int       `json:"rows" yaml:"rows"`
	Columns     []string  `json:"columns" yaml:"columns"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Summary       *analysis.Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Subgroups     *analysis.Subgroups  `json:"subgroups,omitempty" yaml:"subgroups,omitempty"`
	Distributions []*analysis.Dist     `json:"distributions,omitempty" yaml:"distributions,omitempty"`
	BoxBy         string               `json:"box_by,omitempty" yaml:"box_by,omitempty"`
	BoxOf         string               `json:"box_of,omitempty" yaml:"box_of,omitempty"`
	Box           []analysis.GroupBox  `json:"box,omitempty" yaml:"box,omitempty"`
	Elbow         []cluster.ElbowPoint `json:"elbow,omitempty" yaml:"elbow,omitempty"`
	Clusters      *cluster.Result      `json:"clusters,omitempty" yaml:"clusters,omitempty"`
	Notes         []string             `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// New starts a report for t with a fresh run ID and the integrity notes
// every report carries.
func New(t *dataset.Table, tolerance float64) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		Source:      t.Name(),
		Rows:        t.Len(),
		Columns:     t.Columns(),
		GeneratedAt: time.Now().UTC(),
	}
	if bad := t.TotalMismatches(tolerance); len(bad) > 0 {
		cols := t.Columns()
		r.Notef("rows %s: %s differs from %s + %s by more than %g",
			joinInts(bad), cols[dataset.TotalCol], cols[dataset.EssayCol], cols[dataset.InterviewCol], tolerance)
	}
	return r
}

// Notef appends a formatted note.
func (r *Report) Notef(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Build runs descriptive statistics, subgroup correlation, distributions,
// the grouped box summary, the elbow sweep and the final clustering over t.
// Windows and cluster counts larger than the table are capped at its row
// count with a note; values below one still fail.
func Build(t *dataset.Table, p Params, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := New(t, p.TotalTolerance)
	log.Debug("report started", zap.String("run_id", r.RunID), zap.String("source", r.Source), zap.Int("rows", r.Rows))

	if err := r.AddSummary(t, p.Describe); err != nil {
		return nil, err
	}
	n := t.Len()
	bottom, top := p.BottomWindow, p.TopWindow
	if bottom > n {
		r.Notef("bottom window capped at %d rows (table has %d rows)", n, n)
		bottom = n
	}
	if top > n {
		r.Notef("top window capped at %d rows (table has %d rows)", n, n)
		top = n
	}
	if err := r.AddSubgroups(t, bottom, top); err != nil {
		return nil, err
	}
	if err := r.AddDistributions(t, p.HistogramBins, p.DensityPoints); err != nil {
		return nil, err
	}
	cols := t.Columns()
	if err := r.AddBox(t, cols[dataset.EssayCol], cols[dataset.InterviewCol]); err != nil {
		return nil, err
	}

	eo := p.Elbow
	eo.Logger = log
	if eo.MaxK > n {
		r.Notef("elbow sweep capped at k=%d (table has %d rows)", n, n)
		eo.MaxK = n
	}
	if err := r.AddElbow(t, eo); err != nil {
		return nil, err
	}

	co := p.Cluster
	co.Logger = log
	if co.K > n {
		r.Notef("clusters capped at k=%d (table has %d rows)", n, n)
		co.K = n
	}
	if err := r.AddClusters(t, co); err != nil {
		return nil, err
	}
	log.Debug("report finished", zap.String("run_id", r.RunID), zap.Int("notes", len(r.Notes)))
	return r, nil
}

// AddSummary computes descriptive statistics and notes flagged outliers.
func (r *Report) AddSummary(f dataset.Frame, opt analysis.DescribeOptions) error {
	s, err := analysis.Describe(f, opt)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	r.Summary = s
	for _, c := range s.Columns {
		if c.Outliers.Count > 0 {
			r.Notef("%s: rows %s exceed robust |z| > %.1f", c.Name, joinInts(c.Outliers.Rows), c.Outliers.Threshold)
		}
	}
	return nil
}

// AddSubgroups correlates the whole table and its first and last windows.
func (r *Report) AddSubgroups(t *dataset.Table, bottom, top int) error {
	sg, err := analysis.SubgroupCorrelations(t, bottom, top)
	if err != nil {
		return fmt.Errorf("subgroup correlation: %w", err)
	}
	r.Subgroups = sg
	return nil
}

// AddDistributions bins every column and estimates its density.
func (r *Report) AddDistributions(f dataset.Frame, bins, points int) error {
	for _, col := range f.Columns() {
		d, err := analysis.Distribution(f, col, bins, points)
		if err != nil {
			return fmt.Errorf("distribution of %s: %w", col, err)
		}
		if d.Note != "" {
			r.Notef("%s: %s", col, d.Note)
		}
		r.Distributions = append(r.Distributions, d)
	}
	return nil
}

// AddBox summarizes column of per distinct value of column by.
func (r *Report) AddBox(f dataset.Frame, by, of string) error {
	box, err := analysis.BoxByGroup(f, by, of)
	if err != nil {
		return fmt.Errorf("box summary: %w", err)
	}
	r.BoxBy, r.BoxOf, r.Box = by, of, box
	return nil
}

// AddElbow records the inertia sweep.
func (r *Report) AddElbow(f dataset.Frame, opt cluster.ElbowOptions) error {
	pts, err := cluster.Elbow(f, opt)
	if err != nil {
		return fmt.Errorf("elbow: %w", err)
	}
	r.Elbow = pts
	for _, p := range pts {
		if !p.Converged {
			r.Notef("elbow: k=%d did not converge within %d iterations", p.K, opt.MaxIter)
		}
	}
	return nil
}

// AddClusters runs the final k-means fit.
func (r *Report) AddClusters(f dataset.Frame, opt cluster.Options) error {
	res, err := cluster.KMeans(f, opt)
	if err != nil {
		return fmt.Errorf("kmeans: %w", err)
	}
	r.Clusters = res
	if w := res.Warning(); w != nil {
		r.Notef("%v", w)
	}
	if opt.Seed == nil {
		r.Notef("clustering ran without a seed; labels may differ between runs")
	}
	return nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
