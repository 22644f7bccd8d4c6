package dataprep

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/go-vintner/tabular"
)

// OneHot is a row-major one-hot label matrix aligned 1:1 with the rows of
// the dataset it was derived from. Classes holds the original label
// values in ascending order; the encoded value of a label is its index in
// Classes, so column index i of a one-hot row corresponds to Classes[i].
type OneHot struct {
	Data    [][]float64
	Classes []float64
}

// Width returns the number of distinct classes.
func (oh *OneHot) Width() int {
	return len(oh.Classes)
}

// ArgMax returns the encoded class index of row i.
func (oh *OneHot) ArgMax(i int) int {
	return argMax(oh.Data[i])
}

// EncodeLabels remaps the label column of ds to a contiguous zero-based
// integer range, preserving the relative order of the original distinct
// values, and builds the matching one-hot matrix in the dataset's
// existing row order. The returned dataset is a new value; ds is left
// untouched.
func EncodeLabels(ds *tabular.Dataset) (*tabular.Dataset, *OneHot, error) {
	n := ds.Len()
	seen := make(map[float64]bool)
	for i := 0; i < n; i++ {
		v := ds.Label(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: non-finite label in row %d", tabular.ErrSchema, i)
		}
		seen[v] = true
	}
	if len(seen) == 0 {
		return nil, nil, fmt.Errorf("%w: cannot encode labels of an empty dataset", tabular.ErrConfiguration)
	}

	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	index := make(map[float64]int, len(classes))
	for i, v := range classes {
		index[v] = i
	}

	encoded := make([]float64, n)
	oneHot := make([][]float64, n)
	for i := 0; i < n; i++ {
		cls := index[ds.Label(i)]
		encoded[i] = float64(cls)
		row := make([]float64, len(classes))
		row[cls] = 1
		oneHot[i] = row
	}

	relabeled, err := ds.WithLabels(encoded)
	if err != nil {
		return nil, nil, err
	}
	return relabeled, &OneHot{Data: oneHot, Classes: classes}, nil
}

// Encoded pairs a row-major feature matrix with a row-aligned one-hot
// label matrix, the shape the trainer consumes.
type Encoded struct {
	Features [][]float64
	Labels   [][]float64
}

// Encode builds the feature and one-hot matrices for a dataset whose
// label column has already been remapped to the zero-based range
// [0, classCount). It is the step applied to each half of a split.
func Encode(ds *tabular.Dataset, classCount int) (*Encoded, error) {
	if classCount <= 0 {
		return nil, fmt.Errorf("%w: class count must be positive, got %d", tabular.ErrConfiguration, classCount)
	}

	n := ds.Len()
	features := make([][]float64, n)
	labels := make([][]float64, n)
	for i := 0; i < n; i++ {
		v := ds.Label(i)
		cls := int(v)
		if math.IsNaN(v) || float64(cls) != v || cls < 0 || cls >= classCount {
			return nil, fmt.Errorf("%w: label %v in row %d is not an encoded class in [0, %d)", tabular.ErrSchema, v, i, classCount)
		}
		features[i] = ds.Features(i)
		row := make([]float64, classCount)
		row[cls] = 1
		labels[i] = row
	}
	return &Encoded{Features: features, Labels: labels}, nil
}

// argMax returns the index of the largest value in v.
func argMax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
