package cluster

import (
	"math/rand/v2"

	"github.com/sourcegraph/conc/iter"
)

// seedStream is the fixed second PCG word; only the first word varies with the user seed.
const seedStream = 0x5c0e1e75

// deriveSeeds draws n per-trial seeds from one master stream so every trial
// gets the same seed no matter how the trials are scheduled.
func deriveSeeds(seed *int64, n int) []uint64 {
	var master *rand.Rand
	if seed != nil {
		master = rand.New(rand.NewPCG(uint64(*seed), seedStream))
	} else {
		master = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = master.Uint64()
	}
	return out
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seedStream))
}

// mapTrials runs fn for every trial, at most workers at a time, and returns
// the results in trial order.
func mapTrials[T any](workers, n int, fn func(trial int) T) []T {
	if workers <= 1 || n <= 1 {
		out := make([]T, n)
		for i := range out {
			out[i] = fn(i)
		}
		return out
	}
	trials := make([]int, n)
	for i := range trials {
		trials[i] = i
	}
	m := iter.Mapper[int, T]{MaxGoroutines: workers}
	return m.Map(trials, func(i *int) T { return fn(*i) })
}
