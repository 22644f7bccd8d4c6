package training

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Accuracy returns the fraction of rows whose predicted argmax class
// equals the true argmax class. Comparing argmax indices rather than
// thresholding probabilities keeps the metric correct for any class
// count.
func Accuracy(probs, targets *mat.Dense) float64 {
	rows, _ := probs.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if rowArgMax(probs, i) == rowArgMax(targets, i) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// ConfusionMatrix accumulates per-class prediction counts.
// Matrix[true][predicted] counts rows with that true/predicted pair.
type ConfusionMatrix struct {
	NumClasses   int
	Matrix       [][]int
	TotalSamples int
}

// NewConfusionMatrix creates an empty numClasses x numClasses matrix.
func NewConfusionMatrix(numClasses int) (*ConfusionMatrix, error) {
	if numClasses < 2 {
		return nil, fmt.Errorf("confusion matrix requires at least 2 classes, got %d", numClasses)
	}
	m := make([][]int, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	return &ConfusionMatrix{NumClasses: numClasses, Matrix: m}, nil
}

// Update accumulates a batch of predictions. probs holds probability rows
// and targets the matching one-hot rows; both must be NumClasses wide.
func (cm *ConfusionMatrix) Update(probs, targets *mat.Dense) error {
	pr, pc := probs.Dims()
	tr, tc := targets.Dims()
	if pr != tr {
		return fmt.Errorf("row count mismatch: %d predictions, %d targets", pr, tr)
	}
	if pc != cm.NumClasses || tc != cm.NumClasses {
		return fmt.Errorf("class count mismatch: expected %d, got %d predicted / %d true", cm.NumClasses, pc, tc)
	}

	for i := 0; i < pr; i++ {
		pred := rowArgMax(probs, i)
		truth := rowArgMax(targets, i)
		cm.Matrix[truth][pred]++
		cm.TotalSamples++
	}
	return nil
}

// GetAccuracy returns overall classification accuracy.
func (cm *ConfusionMatrix) GetAccuracy() float64 {
	if cm.TotalSamples == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < cm.NumClasses; i++ {
		correct += cm.Matrix[i][i]
	}
	return float64(correct) / float64(cm.TotalSamples)
}

// Precision returns the precision of a single class: of all rows
// predicted as class, the fraction truly in it.
func (cm *ConfusionMatrix) Precision(class int) float64 {
	predicted := 0
	for i := 0; i < cm.NumClasses; i++ {
		predicted += cm.Matrix[i][class]
	}
	if predicted == 0 {
		return 0
	}
	return float64(cm.Matrix[class][class]) / float64(predicted)
}

// Recall returns the recall of a single class: of all rows truly in
// class, the fraction predicted as it.
func (cm *ConfusionMatrix) Recall(class int) float64 {
	actual := 0
	for j := 0; j < cm.NumClasses; j++ {
		actual += cm.Matrix[class][j]
	}
	if actual == 0 {
		return 0
	}
	return float64(cm.Matrix[class][class]) / float64(actual)
}

// rowArgMax returns the column index of the largest value in row i.
func rowArgMax(m *mat.Dense, i int) int {
	_, cols := m.Dims()
	best := 0
	for j := 1; j < cols; j++ {
		if m.At(i, j) > m.At(i, best) {
			best = j
		}
	}
	return best
}
