// Package wine loads the UCI wine-quality measurement files and turns
// them into tabular datasets for the pipeline: one dataset keyed on the
// discrete quality score, one on the red/white category.
package wine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/tsawler/go-vintner/tabular"
)

// Column names of the datasets this package produces.
const (
	QualityColumn = "quality"
	TypeColumn    = "type"
)

// Category codes used in the type dataset's label column.
const (
	Red   = 0
	White = 1
)

// Record is one measured wine sample. The csv tags match the UCI
// winequality headers; Type is present only in merged red/white files.
type Record struct {
	FixedAcidity       float64 `csv:"fixed acidity"`
	VolatileAcidity    float64 `csv:"volatile acidity"`
	CitricAcid         float64 `csv:"citric acid"`
	ResidualSugar      float64 `csv:"residual sugar"`
	Chlorides          float64 `csv:"chlorides"`
	FreeSulfurDioxide  float64 `csv:"free sulfur dioxide"`
	TotalSulfurDioxide float64 `csv:"total sulfur dioxide"`
	Density            float64 `csv:"density"`
	PH                 float64 `csv:"pH"`
	Sulphates          float64 `csv:"sulphates"`
	Alcohol            float64 `csv:"alcohol"`
	Quality            float64 `csv:"quality"`
	Type               string  `csv:"type,omitempty"`
}

// featureColumns lists the chemical measurement columns in file order.
var featureColumns = []string{
	"fixed acidity",
	"volatile acidity",
	"citric acid",
	"residual sugar",
	"chlorides",
	"free sulfur dioxide",
	"total sulfur dioxide",
	"density",
	"pH",
	"sulphates",
	"alcohol",
}

// features returns the measurement values in featureColumns order.
func (r *Record) features() []float64 {
	return []float64{
		r.FixedAcidity,
		r.VolatileAcidity,
		r.CitricAcid,
		r.ResidualSugar,
		r.Chlorides,
		r.FreeSulfurDioxide,
		r.TotalSulfurDioxide,
		r.Density,
		r.PH,
		r.Sulphates,
		r.Alcohol,
	}
}

// Load reads wine records from a delimited file. The UCI per-color files
// use ';' as separator, merged files typically ','.
func Load(path string, separator rune) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = separator

	var records []*Record
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s contains no records", tabular.ErrSchema, path)
	}
	return records, nil
}

// QualityDataset builds a dataset labeled with the quality score.
func QualityDataset(records []*Record) (*tabular.Dataset, error) {
	columns := append(append([]string{}, featureColumns...), QualityColumn)
	rows := make([][]float64, len(records))
	for i, r := range records {
		rows[i] = append(r.features(), r.Quality)
	}
	return newChecked(columns, rows, QualityColumn)
}

// TypeDataset builds a dataset labeled with the wine category, encoded
// as Red (0) or White (1). Every record must carry a type value.
func TypeDataset(records []*Record) (*tabular.Dataset, error) {
	columns := append(append([]string{}, featureColumns...), TypeColumn)
	rows := make([][]float64, len(records))
	for i, r := range records {
		code, err := typeCode(r.Type)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows[i] = append(r.features(), code)
	}
	return newChecked(columns, rows, TypeColumn)
}

// Tagged returns a copy of records with the type column set, for merging
// the per-color UCI files into one categorized dataset.
func Tagged(records []*Record, wineType string) []*Record {
	tagged := make([]*Record, len(records))
	for i, r := range records {
		c := *r
		c.Type = wineType
		tagged[i] = &c
	}
	return tagged
}

func typeCode(wineType string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(wineType)) {
	case "red":
		return Red, nil
	case "white":
		return White, nil
	default:
		return 0, fmt.Errorf("%w: unknown wine type %q", tabular.ErrSchema, wineType)
	}
}

func newChecked(columns []string, rows [][]float64, label string) (*tabular.Dataset, error) {
	ds, err := tabular.NewDataset(columns, rows, label)
	if err != nil {
		return nil, err
	}
	if err := ds.CheckFinite(); err != nil {
		return nil, err
	}
	return ds, nil
}
