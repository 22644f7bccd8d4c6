package dataprep

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tsawler/go-vintner/tabular"
)

// Split partitions ds into train and test subsets. A seeded permutation
// of the row indices is generated, the first round(n*fraction) permuted
// rows form the training set and the remainder the test set, so the two
// halves cover every source row exactly once. The same seed, fraction and
// input always produce the identical partition.
func Split(ds *tabular.Dataset, fraction float64, seed int64) (train, test *tabular.Dataset, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("%w: split fraction must be in (0,1), got %v", tabular.ErrConfiguration, fraction)
	}
	n := ds.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: cannot split an empty dataset", tabular.ErrConfiguration)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTrain := int(math.Round(float64(n) * fraction))

	train, err = ds.Select(perm[:nTrain])
	if err != nil {
		return nil, nil, err
	}
	test, err = ds.Select(perm[nTrain:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
