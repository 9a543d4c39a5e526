package cluster

import (
	"fmt"
	"math/rand/v2"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"go.uber.org/zap"
)

// ElbowOptions configures the inertia sweep over cluster counts.
type ElbowOptions struct {
	// MaxK is the largest count tried; counts run 1..MaxK.
	MaxK int
	// MaxIter caps each single-pass fit.
	MaxIter int
	// NInit is the number of fits per count; the lowest inertia is kept.
	NInit   int
	Seed    *int64
	Columns []string
	// Workers bounds how many fits of one count run at once.
	Workers int
	Logger  *zap.Logger
}

// DefaultElbowOptions sweeps k = 1..9 with ten randomly seeded fits per
// count and the usual 300-iteration cap.
func DefaultElbowOptions() ElbowOptions {
	return ElbowOptions{MaxK: 9, MaxIter: 300, NInit: 10, Workers: 1}
}

// ElbowPoint is the inertia of one cluster count.
type ElbowPoint struct {
	K          int     `json:"k" yaml:"k"`
	Inertia    float64 `json:"inertia" yaml:"inertia"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Converged  bool    `json:"converged" yaml:"converged"`
}

// Elbow fits k-means for every count in 1..MaxK with random seeding and
// returns the best inertia of each count, ordered by count. Choosing k from
// the curve is left to the caller.
//
// The first fit of each count k > 1 starts from the best k-1 centroids plus
// one randomly drawn row. Lloyd iterations never raise inertia, so the
// sequence is non-increasing in k.
func Elbow(f dataset.Frame, opt ElbowOptions) ([]ElbowPoint, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxK < 1 {
		return nil, fmt.Errorf("%w: max k=%d", ErrInvalidK, opt.MaxK)
	}
	if err := validate(1, opt.NInit, opt.MaxIter, InitRandom); err != nil {
		return nil, err
	}
	points, _, err := dataset.Points(f, opt.Columns)
	if err != nil {
		return nil, err
	}
	if opt.MaxK > len(points) {
		return nil, &InsufficientDataError{Op: "elbow", Need: opt.MaxK, Have: len(points)}
	}

	seeds := deriveSeeds(opt.Seed, opt.MaxK*opt.NInit)
	out := make([]ElbowPoint, 0, opt.MaxK)
	var prev [][]float64
	for k := 1; k <= opt.MaxK; k++ {
		base := (k - 1) * opt.NInit
		fits := mapTrials(opt.Workers, opt.NInit, func(r int) fit {
			rng := newRand(seeds[base+r])
			if r == 0 && prev != nil {
				return lloydFrom(points, extend(prev, points, rng), opt.MaxIter)
			}
			return lloyd(points, k, InitRandom, opt.MaxIter, rng)
		})
		ft := fits[bestFit(fits)]
		prev = ft.centroids
		log.Debug("elbow count",
			zap.Int("k", k),
			zap.Float64("inertia", ft.inertia),
			zap.Bool("converged", ft.converged))
		out = append(out, ElbowPoint{K: k, Inertia: ft.inertia, Iterations: ft.iterations, Converged: ft.converged})
	}
	return out, nil
}

// extend copies centroids and appends one uniformly drawn row.
func extend(centroids, points [][]float64, rng *rand.Rand) [][]float64 {
	out := make([][]float64, 0, len(centroids)+1)
	for _, c := range centroids {
		out = append(out, clone(c))
	}
	return append(out, clone(points[rng.IntN(len(points))]))
}
