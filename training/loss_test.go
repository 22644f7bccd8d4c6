package training

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-vintner/tabular"
)

func TestLossKindString(t *testing.T) {
	if CategoricalCrossEntropy.String() != "CategoricalCrossEntropy" {
		t.Errorf("unexpected name: %s", CategoricalCrossEntropy)
	}
	if BinaryCrossEntropy.String() != "BinaryCrossEntropy" {
		t.Errorf("unexpected name: %s", BinaryCrossEntropy)
	}
}

func TestCategoricalCrossEntropyKnownValues(t *testing.T) {
	probs := mat.NewDense(2, 3, []float64{
		0.7, 0.2, 0.1,
		0.1, 0.8, 0.1,
	})
	targets := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 1, 0,
	})

	loss, err := CategoricalCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	want := -(math.Log(0.7) + math.Log(0.8)) / 2
	if math.Abs(loss-want) > 1e-9 {
		t.Errorf("expected loss %v, got %v", want, loss)
	}
}

func TestCategoricalCrossEntropyPerfectPrediction(t *testing.T) {
	probs := mat.NewDense(1, 2, []float64{1, 0})
	targets := mat.NewDense(1, 2, []float64{1, 0})

	loss, err := CategoricalCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(loss) > 1e-9 {
		t.Errorf("expected zero loss for a perfect prediction, got %v", loss)
	}
}

func TestCategoricalCrossEntropyClampsZeroProbability(t *testing.T) {
	probs := mat.NewDense(1, 2, []float64{0, 1})
	targets := mat.NewDense(1, 2, []float64{1, 0})

	loss, err := CategoricalCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.IsInf(loss, 0) || math.IsNaN(loss) {
		t.Errorf("zero probability produced non-finite loss %v", loss)
	}
	want := -math.Log(lossEpsilon)
	if math.Abs(loss-want) > 1e-6 {
		t.Errorf("expected clamped loss %v, got %v", want, loss)
	}
}

func TestBinaryCrossEntropyKnownValues(t *testing.T) {
	probs := mat.NewDense(1, 2, []float64{0.9, 0.1})
	targets := mat.NewDense(1, 2, []float64{1, 0})

	loss, err := BinaryCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Mean over both entries of -(y log p + (1-y) log(1-p)).
	want := -(math.Log(0.9) + math.Log(0.9)) / 2
	if math.Abs(loss-want) > 1e-9 {
		t.Errorf("expected loss %v, got %v", want, loss)
	}
}

func TestBinaryEqualsCategoricalForSoftmaxPairs(t *testing.T) {
	// With two probabilities summing to 1 the two losses coincide, which
	// is what lets the softmax head serve the binary task.
	probs := mat.NewDense(3, 2, []float64{
		0.9, 0.1,
		0.3, 0.7,
		0.5, 0.5,
	})
	targets := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
	})

	bce, err := BinaryCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	cce, err := CategoricalCrossEntropy.Compute(probs, targets)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(bce-cce) > 1e-9 {
		t.Errorf("binary %v and categorical %v disagree on softmax pairs", bce, cce)
	}
}

func TestLossShapeMismatch(t *testing.T) {
	probs := mat.NewDense(2, 3, nil)
	targets := mat.NewDense(2, 2, nil)
	if _, err := CategoricalCrossEntropy.Compute(probs, targets); !errors.Is(err, tabular.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
