package tabular

import (
	"fmt"

	montanastats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for a single column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics for every column of the
// dataset, in declaration order. The dataset must be non-empty.
func Summarize(ds *Dataset) ([]Summary, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot summarize an empty dataset", ErrConfiguration)
	}

	summaries := make([]Summary, 0, len(ds.columns))
	for _, name := range ds.columns {
		vals, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		data := montanastats.Float64Data(vals)

		mean, err := montanastats.Mean(data)
		if err != nil {
			return nil, fmt.Errorf("mean of %q failed: %v", name, err)
		}
		median, err := montanastats.Median(data)
		if err != nil {
			return nil, fmt.Errorf("median of %q failed: %v", name, err)
		}
		stddev, err := montanastats.StdDevS(data)
		if err != nil {
			// Sample standard deviation needs at least two values.
			stddev = 0
		}
		min, err := montanastats.Min(data)
		if err != nil {
			return nil, fmt.Errorf("min of %q failed: %v", name, err)
		}
		max, err := montanastats.Max(data)
		if err != nil {
			return nil, fmt.Errorf("max of %q failed: %v", name, err)
		}

		summaries = append(summaries, Summary{
			Column: name,
			Count:  len(vals),
			Mean:   mean,
			Median: median,
			StdDev: stddev,
			Min:    min,
			Max:    max,
		})
	}
	return summaries, nil
}

// CorrelationMatrix computes the Pearson correlation between every pair of
// feature columns. It returns the column names and a square matrix
// aligned with them.
func CorrelationMatrix(ds *Dataset) ([]string, [][]float64, error) {
	if ds.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: correlation requires at least two rows", ErrConfiguration)
	}

	names := ds.FeatureColumns()
	cols := make([][]float64, len(names))
	for i, name := range names {
		vals, err := ds.Column(name)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = vals
	}

	corr := make([][]float64, len(names))
	for i := range names {
		corr[i] = make([]float64, len(names))
		for j := range names {
			if i == j {
				corr[i][j] = 1
				continue
			}
			corr[i][j] = stat.Correlation(cols[i], cols[j], nil)
		}
	}
	return names, corr, nil
}
