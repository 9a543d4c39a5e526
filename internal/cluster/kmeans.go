package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Options configures a k-means fit.
type Options struct {
	// K is the number of clusters; 1 <= K <= rows.
	K int
	// Init selects the seeding policy for each restart.
	Init InitMethod
	// NInit is the number of independent restarts; the lowest inertia wins.
	NInit int
	// MaxIter caps the Lloyd iterations of a single restart.
	MaxIter int
	// Seed makes the fit reproducible. Nil draws a fresh seed, so repeated
	// runs may differ; that is expected.
	Seed *int64
	// Columns restricts the feature space. Empty means every column.
	Columns []string
	// Workers bounds how many restarts run at once. <= 1 runs them in order.
	Workers int
	Logger  *zap.Logger
}

// DefaultOptions mirrors the reference clustering run: five clusters,
// k-means++ seeding, ten restarts of at most 500 iterations.
func DefaultOptions() Options {
	return Options{K: 5, Init: InitKMeansPlusPlus, NInit: 10, MaxIter: 500, Workers: 1}
}

// Seed returns a pointer to v for Options.Seed.
func Seed(v int64) *int64 { return &v }

// Result is an immutable clustering outcome.
type Result struct {
	K       int      `json:"k" yaml:"k"`
	Columns []string `json:"columns" yaml:"columns"`
	// Labels[i] is the cluster of frame row i; Rows[i] is that row's table index.
	Labels     []int       `json:"labels" yaml:"labels"`
	Rows       []int       `json:"rows" yaml:"rows"`
	Centroids  [][]float64 `json:"centroids" yaml:"centroids"`
	Sizes      []int       `json:"sizes" yaml:"sizes"`
	Inertia    float64     `json:"inertia" yaml:"inertia"`
	Iterations int         `json:"iterations" yaml:"iterations"`
	Converged  bool        `json:"converged" yaml:"converged"`
	Restarts   int         `json:"restarts" yaml:"restarts"`
	// Restart is the index of the winning restart.
	Restart int `json:"restart" yaml:"restart"`
	MaxIter int `json:"max_iter" yaml:"max_iter"`
}

// Assignment returns the table row index -> cluster label mapping.
func (r *Result) Assignment() map[int]int {
	out := make(map[int]int, len(r.Labels))
	for i, l := range r.Labels {
		out[r.Rows[i]] = l
	}
	return out
}

// Members returns the table row indices assigned to cluster c, in load order.
func (r *Result) Members(c int) []int {
	var out []int
	for i, l := range r.Labels {
		if l == c {
			out = append(out, r.Rows[i])
		}
	}
	return out
}

// Warning returns a *ConvergenceWarning when the winning restart hit its
// iteration cap, nil otherwise.
func (r *Result) Warning() *ConvergenceWarning {
	if r.Converged {
		return nil
	}
	return &ConvergenceWarning{K: r.K, MaxIter: r.MaxIter, Restart: r.Restart}
}

// fit is the outcome of one Lloyd run.
type fit struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
	converged  bool
}

// KMeans clusters the rows of f with Lloyd's algorithm and returns the best
// of opt.NInit restarts. Ties in inertia go to the earliest restart.
func KMeans(f dataset.Frame, opt Options) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := validate(opt.K, opt.NInit, opt.MaxIter, opt.Init); err != nil {
		return nil, err
	}
	points, cols, err := dataset.Points(f, opt.Columns)
	if err != nil {
		return nil, err
	}
	if opt.K > len(points) {
		return nil, &InsufficientDataError{Op: "kmeans", Need: opt.K, Have: len(points)}
	}

	seeds := deriveSeeds(opt.Seed, opt.NInit)
	fits := mapTrials(opt.Workers, opt.NInit, func(i int) fit {
		ft := lloyd(points, opt.K, opt.Init, opt.MaxIter, newRand(seeds[i]))
		log.Debug("kmeans restart",
			zap.Int("k", opt.K),
			zap.Int("restart", i),
			zap.Float64("inertia", ft.inertia),
			zap.Int("iterations", ft.iterations),
			zap.Bool("converged", ft.converged))
		return ft
	})
	best := bestFit(fits)
	ft := fits[best]

	res := &Result{
		K:          opt.K,
		Columns:    cols,
		Labels:     ft.labels,
		Rows:       make([]int, len(points)),
		Centroids:  ft.centroids,
		Sizes:      make([]int, opt.K),
		Inertia:    ft.inertia,
		Iterations: ft.iterations,
		Converged:  ft.converged,
		Restarts:   opt.NInit,
		Restart:    best,
		MaxIter:    opt.MaxIter,
	}
	for i, l := range ft.labels {
		res.Rows[i] = f.Index(i)
		res.Sizes[l]++
	}
	if w := res.Warning(); w != nil {
		log.Warn("kmeans did not converge", zap.Error(w))
	}
	return res, nil
}

// bestFit returns the index of the lowest inertia; ties go to the earliest.
func bestFit(fits []fit) int {
	best := 0
	for i := 1; i < len(fits); i++ {
		if fits[i].inertia < fits[best].inertia {
			best = i
		}
	}
	return best
}

func validate(k, nInit, maxIter int, init InitMethod) error {
	if k < 1 {
		return fmt.Errorf("%w: k=%d", ErrInvalidK, k)
	}
	if nInit < 1 {
		return fmt.Errorf("%w: n_init=%d", ErrInvalidOption, nInit)
	}
	if maxIter < 1 {
		return fmt.Errorf("%w: max_iter=%d", ErrInvalidOption, maxIter)
	}
	if !init.valid() {
		return fmt.Errorf("%w: init=%q", ErrInvalidOption, init)
	}
	return nil
}

// lloyd runs one restart from centroids drawn by init.
func lloyd(points [][]float64, k int, init InitMethod, maxIter int, rng *rand.Rand) fit {
	return lloydFrom(points, init.seed(points, k, rng), maxIter)
}

// lloydFrom iterates from the given centroids, which it takes ownership of.
// Assignment stability is judged on the output of consecutive assignment
// steps. The returned centroids are always the means of the returned labels,
// and no cluster is left empty. Inertia never exceeds that of the starting
// centroids under nearest-centroid assignment.
func lloydFrom(points, centroids [][]float64, maxIter int) fit {
	n := len(points)
	labels := make([]int, n)
	prev := make([]int, n)

	ft := fit{}
	for it := 1; it <= maxIter; it++ {
		assign(points, centroids, labels)
		ft.iterations = it
		if it > 1 && slices.Equal(labels, prev) {
			ft.converged = true
			break
		}
		copy(prev, labels)
		update(points, labels, centroids)
	}
	if !ft.converged {
		assign(points, centroids, labels)
		ft.converged = slices.Equal(labels, prev)
	}
	update(points, labels, centroids)

	ft.labels = labels
	ft.centroids = centroids
	for i, p := range points {
		ft.inertia += sqDist(p, centroids[labels[i]])
	}
	return ft
}

// assign labels every point with its nearest centroid. Exact ties go to the
// lowest centroid index.
func assign(points, centroids [][]float64, labels []int) {
	for i, p := range points {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centroids {
			if d := sqDist(p, ctr); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
	}
}

// update reseeds empty clusters and moves every centroid to the mean of its
// members. An empty cluster takes the point farthest from its current
// centroid among clusters that hold more than one point.
func update(points [][]float64, labels []int, centroids [][]float64) {
	k := len(centroids)
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, p := range points {
			if sizes[labels[i]] < 2 {
				continue
			}
			if d := sqDist(p, centroids[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		sizes[labels[far]]--
		labels[far] = c
		sizes[c] = 1
	}
	for c := range centroids {
		for j := range centroids[c] {
			centroids[c][j] = 0
		}
	}
	for i, p := range points {
		floats.Add(centroids[labels[i]], p)
	}
	for c := range centroids {
		floats.Scale(1/float64(sizes[c]), centroids[c])
	}
}
