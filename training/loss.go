// Package training builds, trains and evaluates feed-forward classifiers
// over encoded datasets: classifier configuration, cross-entropy losses,
// the epoch loop with per-epoch history, argmax metrics, and
// training-curve rendering.
package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-vintner/tabular"
)

// LossKind selects the loss minimized during training.
type LossKind int

const (
	CategoricalCrossEntropy LossKind = iota
	BinaryCrossEntropy
)

func (lk LossKind) String() string {
	switch lk {
	case CategoricalCrossEntropy:
		return "CategoricalCrossEntropy"
	case BinaryCrossEntropy:
		return "BinaryCrossEntropy"
	default:
		return "Unknown"
	}
}

// lossEpsilon guards the logarithms against zero probabilities.
const lossEpsilon = 1e-10

// Compute evaluates the loss between predicted probability rows and
// one-hot target rows. Both matrices must be identically shaped.
func (lk LossKind) Compute(probs, targets *mat.Dense) (float64, error) {
	pr, pc := probs.Dims()
	tr, tc := targets.Dims()
	if pr != tr || pc != tc {
		return 0, fmt.Errorf("%w: predictions are %dx%d, targets are %dx%d", tabular.ErrShapeMismatch, pr, pc, tr, tc)
	}
	if pr == 0 {
		return 0, fmt.Errorf("%w: cannot compute loss over zero rows", tabular.ErrConfiguration)
	}

	switch lk {
	case CategoricalCrossEntropy:
		return categoricalCrossEntropy(probs, targets), nil
	case BinaryCrossEntropy:
		return binaryCrossEntropy(probs, targets), nil
	default:
		return 0, fmt.Errorf("%w: unknown loss kind %d", tabular.ErrConfiguration, lk)
	}
}

// categoricalCrossEntropy computes -(1/N) * sum over rows of
// log p[true class], the standard cross-entropy between one-hot targets
// and predicted distributions.
func categoricalCrossEntropy(probs, targets *mat.Dense) float64 {
	rows, cols := probs.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if targets.At(i, j) == 0 {
				continue
			}
			p := probs.At(i, j)
			if p < lossEpsilon {
				p = lossEpsilon
			}
			total += -targets.At(i, j) * math.Log(p)
		}
	}
	return total / float64(rows)
}

// binaryCrossEntropy computes the mean over all entries of
// -(y*log p + (1-y)*log(1-p)). For width-2 softmax outputs this equals
// the categorical cross-entropy, since the two probabilities sum to 1.
func binaryCrossEntropy(probs, targets *mat.Dense) float64 {
	rows, cols := probs.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			p := probs.At(i, j)
			if p < lossEpsilon {
				p = lossEpsilon
			}
			if p > 1-lossEpsilon {
				p = 1 - lossEpsilon
			}
			y := targets.At(i, j)
			total += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		}
	}
	return total / float64(rows*cols)
}
