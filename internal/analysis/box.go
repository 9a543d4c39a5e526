package analysis

import (
	"sort"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
)

// GroupBox is the five-number summary of one column for a single value of
// the grouping column.
type GroupBox struct {
	Key    float64 `json:"key" yaml:"key"`
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	P25    float64 `json:"p25" yaml:"p25"`
	Median float64 `json:"median" yaml:"median"`
	P75    float64 `json:"p75" yaml:"p75"`
	Max    float64 `json:"max" yaml:"max"`
}

// BoxByGroup summarizes column of for every distinct value of column by,
// ascending by key.
func BoxByGroup(f dataset.Frame, by, of string) ([]GroupBox, error) {
	keys, err := f.Column(by)
	if err != nil {
		return nil, err
	}
	vals, err := f.Column(of)
	if err != nil {
		return nil, err
	}
	groups := make(map[float64][]float64)
	for i, k := range keys {
		groups[k] = append(groups[k], vals[i])
	}
	order := make([]float64, 0, len(groups))
	for k := range groups {
		order = append(order, k)
	}
	sort.Float64s(order)

	out := make([]GroupBox, 0, len(order))
	for _, k := range order {
		g := groups[k]
		sort.Float64s(g)
		out = append(out, GroupBox{
			Key:    k,
			Count:  len(g),
			Min:    g[0],
			P25:    quantile(g, 0.25),
			Median: quantile(g, 0.5),
			P75:    quantile(g, 0.75),
			Max:    g[len(g)-1],
		})
	}
	return out, nil
}
