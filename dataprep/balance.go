// Package dataprep implements the dataset preparation pipeline that sits
// in front of the classifier: class rebalancing, label encoding, and the
// deterministic train/test split. Every function takes a dataset and
// returns a new one; nothing here mutates its input.
package dataprep

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/tsawler/go-vintner/tabular"
)

// ResampleMode describes how a single class is brought to the target
// row count.
type ResampleMode int

const (
	Unchanged ResampleMode = iota
	Oversample
	Undersample
)

func (m ResampleMode) String() string {
	switch m {
	case Unchanged:
		return "Unchanged"
	case Oversample:
		return "Oversample"
	case Undersample:
		return "Undersample"
	default:
		return "Unknown"
	}
}

// ClassPlan is the per-class entry of a BalancingPlan.
type ClassPlan struct {
	Count  int          // rows currently carrying the label
	Target int          // requested rows
	Mode   ResampleMode // how to get from Count to Target
	Factor int          // whole-number replication factor, oversampling only
}

// BalancingPlan maps every label value present in a distribution to the
// resampling action that brings it to the target count.
type BalancingPlan map[float64]ClassPlan

// PlanBalance derives a BalancingPlan from a class distribution and a
// single target count. Classes below the target are replicated by a
// whole-number factor ceil(target/count), deliberately over-shooting
// rather than trimming; classes above the target are marked for random
// subsampling without replacement.
func PlanBalance(dist tabular.Distribution, target int) (BalancingPlan, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: balancing target must be positive, got %d", tabular.ErrConfiguration, target)
	}

	plan := make(BalancingPlan, len(dist))
	for label, count := range dist {
		cp := ClassPlan{Count: count, Target: target}
		switch {
		case count < target:
			cp.Mode = Oversample
			cp.Factor = (target + count - 1) / count
		case count > target:
			cp.Mode = Undersample
		default:
			cp.Mode = Unchanged
		}
		plan[label] = cp
	}
	return plan, nil
}

// Rebalance returns a new dataset in which every class present in ds has
// at least target rows: minority classes are duplicated whole
// (replication factor ceil(target/count), so the result may over-shoot),
// majority classes are subsampled to exactly target rows using the seeded
// generator, and classes already at target pass through unchanged. Row
// order across class groups is not specified. The balancer never invents
// rows: every output row is a literal copy of an input row.
func Rebalance(ds *tabular.Dataset, target int, seed int64) (*tabular.Dataset, error) {
	plan, err := PlanBalance(ds.Distribution(), target)
	if err != nil {
		return nil, err
	}

	groups := make(map[float64][]int)
	for i := 0; i < ds.Len(); i++ {
		label := ds.Label(i)
		groups[label] = append(groups[label], i)
	}

	// Iterate classes in ascending label order so the same seed always
	// consumes the generator identically.
	labels := make([]float64, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	rng := rand.New(rand.NewSource(seed))
	var selected []int
	for _, label := range labels {
		group := groups[label]
		cp := plan[label]
		switch cp.Mode {
		case Oversample:
			for rep := 0; rep < cp.Factor; rep++ {
				selected = append(selected, group...)
			}
		case Undersample:
			drawn, err := sampleWithoutReplacement(group, cp.Target, rng)
			if err != nil {
				return nil, err
			}
			selected = append(selected, drawn...)
		default:
			selected = append(selected, group...)
		}
	}

	return ds.Select(selected)
}

// sampleWithoutReplacement draws n distinct elements from group using the
// supplied generator.
func sampleWithoutReplacement(group []int, n int, rng *rand.Rand) ([]int, error) {
	if n > len(group) {
		return nil, fmt.Errorf("%w: cannot draw %d rows from a class with %d", tabular.ErrConfiguration, n, len(group))
	}
	perm := rng.Perm(len(group))
	drawn := make([]int, n)
	for i := 0; i < n; i++ {
		drawn[i] = group[perm[i]]
	}
	return drawn, nil
}
