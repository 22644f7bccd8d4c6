package tabular

import (
	"fmt"
	"math"
	"sort"
)

// Dataset is an immutable in-memory table of named numeric columns with a
// designated label column. Every transform in the pipeline returns a new
// Dataset rather than mutating in place, so intermediate stages never
// alias each other's storage.
type Dataset struct {
	columns  []string
	colIndex map[string]int
	rows     [][]float64
	label    string
}

// Distribution maps a label value to the number of rows carrying it.
// It is derived on demand from a Dataset and never stored, so it cannot
// go stale.
type Distribution map[float64]int

// NewDataset creates a Dataset from column names and row-major values.
// The column set must be non-empty and free of duplicates, labelColumn
// must name one of the columns, and every row must have exactly one value
// per column. Row and column slices are copied.
func NewDataset(columns []string, rows [][]float64, labelColumn string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: dataset requires at least one column", ErrSchema)
	}

	colIndex := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, exists := colIndex[name]; exists {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, name)
		}
		colIndex[name] = i
	}

	if _, ok := colIndex[labelColumn]; !ok {
		return nil, fmt.Errorf("%w: label column %q not present", ErrSchema, labelColumn)
	}

	copied := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrSchema, i, len(row), len(columns))
		}
		copied[i] = make([]float64, len(row))
		copy(copied[i], row)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Dataset{
		columns:  cols,
		colIndex: colIndex,
		rows:     copied,
		label:    labelColumn,
	}, nil
}

// Len returns the number of rows.
func (ds *Dataset) Len() int {
	return len(ds.rows)
}

// Columns returns a copy of the column names in declaration order.
func (ds *Dataset) Columns() []string {
	cols := make([]string, len(ds.columns))
	copy(cols, ds.columns)
	return cols
}

// LabelColumn returns the name of the designated label column.
func (ds *Dataset) LabelColumn() string {
	return ds.label
}

// FeatureColumns returns the column names excluding the label column,
// preserving declaration order.
func (ds *Dataset) FeatureColumns() []string {
	cols := make([]string, 0, len(ds.columns)-1)
	for _, name := range ds.columns {
		if name != ds.label {
			cols = append(cols, name)
		}
	}
	return cols
}

// Row returns a copy of row i.
func (ds *Dataset) Row(i int) []float64 {
	row := make([]float64, len(ds.rows[i]))
	copy(row, ds.rows[i])
	return row
}

// Label returns the label value of row i.
func (ds *Dataset) Label(i int) float64 {
	return ds.rows[i][ds.colIndex[ds.label]]
}

// Features returns a copy of row i with the label column removed.
func (ds *Dataset) Features(i int) []float64 {
	labelIdx := ds.colIndex[ds.label]
	feats := make([]float64, 0, len(ds.rows[i])-1)
	for j, v := range ds.rows[i] {
		if j != labelIdx {
			feats = append(feats, v)
		}
	}
	return feats
}

// Column returns a copy of the named column's values.
func (ds *Dataset) Column(name string) ([]float64, error) {
	idx, ok := ds.colIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: no column %q", ErrSchema, name)
	}
	vals := make([]float64, len(ds.rows))
	for i, row := range ds.rows {
		vals[i] = row[idx]
	}
	return vals, nil
}

// FeatureMatrix returns the feature values of all rows as a row-major
// matrix, columns ordered as in FeatureColumns.
func (ds *Dataset) FeatureMatrix() [][]float64 {
	m := make([][]float64, len(ds.rows))
	for i := range ds.rows {
		m[i] = ds.Features(i)
	}
	return m
}

// Distribution counts rows per distinct label value.
func (ds *Dataset) Distribution() Distribution {
	dist := make(Distribution)
	for i := range ds.rows {
		dist[ds.Label(i)]++
	}
	return dist
}

// Classes returns the distinct label values present, in ascending order.
func (ds *Dataset) Classes() []float64 {
	dist := ds.Distribution()
	classes := make([]float64, 0, len(dist))
	for v := range dist {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	return classes
}

// Select returns a new Dataset containing copies of the rows at the given
// indices, in the given order. Indices may repeat, which duplicates rows;
// this is how over-sampling materializes replicas.
func (ds *Dataset) Select(indices []int) (*Dataset, error) {
	rows := make([][]float64, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(ds.rows) {
			return nil, fmt.Errorf("%w: row index %d out of range [0, %d)", ErrConfiguration, idx, len(ds.rows))
		}
		rows[i] = ds.rows[idx]
	}
	return NewDataset(ds.columns, rows, ds.label)
}

// WithLabels returns a new Dataset identical to ds except that the label
// column is replaced by newLabels, which must have one value per row.
func (ds *Dataset) WithLabels(newLabels []float64) (*Dataset, error) {
	if len(newLabels) != len(ds.rows) {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrShapeMismatch, len(newLabels), len(ds.rows))
	}
	labelIdx := ds.colIndex[ds.label]
	rows := make([][]float64, len(ds.rows))
	for i, row := range ds.rows {
		r := make([]float64, len(row))
		copy(r, row)
		r[labelIdx] = newLabels[i]
		rows[i] = r
	}
	return NewDataset(ds.columns, rows, ds.label)
}

// CheckFinite verifies that every value in the dataset is finite. It is
// intended for loaders handing raw data to the pipeline.
func (ds *Dataset) CheckFinite() error {
	for i, row := range ds.rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite value in row %d column %q", ErrSchema, i, ds.columns[j])
			}
		}
	}
	return nil
}
