package cluster

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// InitMethod selects how a restart picks its starting centroids.
type InitMethod string

const (
	InitKMeansPlusPlus InitMethod = "k-means++"
	InitRandom         InitMethod = "random"
)

// ParseInit maps a user-supplied name to an InitMethod.
func ParseInit(s string) (InitMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "k-means++", "kmeans++", "plusplus", "++":
		return InitKMeansPlusPlus, nil
	case "random":
		return InitRandom, nil
	}
	return "", fmt.Errorf("%w: unknown init %q (want k-means++ or random)", ErrInvalidOption, s)
}

func (m InitMethod) valid() bool {
	return m == InitKMeansPlusPlus || m == InitRandom
}

func (m InitMethod) seed(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	if m == InitRandom {
		return seedRandom(points, k, rng)
	}
	return seedPlusPlus(points, k, rng)
}

// seedRandom picks k distinct rows uniformly at random.
func seedRandom(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(points))
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = clone(points[perm[c]])
	}
	return centroids
}

// seedPlusPlus draws the first centroid uniformly and each next one with
// probability proportional to its squared distance from the nearest chosen
// centroid. When every remaining distance is zero an unchosen row is drawn
// uniformly instead.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	first := rng.IntN(n)
	chosen[first] = true
	centroids := [][]float64{clone(points[first])}

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		next := -1
		if total := floats.Sum(d2); total > 0 {
			r := rng.Float64() * total
			for i, w := range d2 {
				if w == 0 {
					continue
				}
				next = i
				if r -= w; r < 0 {
					break
				}
			}
		} else {
			free := make([]int, 0, n)
			for i, used := range chosen {
				if !used {
					free = append(free, i)
				}
			}
			next = free[rng.IntN(len(free))]
		}
		chosen[next] = true
		c := clone(points[next])
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 { return append([]float64(nil), p...) }
