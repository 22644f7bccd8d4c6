// Package optimizer implements first-order gradient optimizers over
// gonum matrices. Parameters are updated in place; state (momentum,
// variance) lives on the optimizer and is sized lazily from the first
// step.
package optimizer

import "gonum.org/v1/gonum/mat"

// Optimizer is the common interface for all optimizers.
type Optimizer interface {
	// Step applies one update. params and grads must be index-aligned
	// and identically shaped; params are modified in place.
	Step(params, grads []*mat.Dense) error

	// GetStepCount returns the number of completed optimization steps.
	GetStepCount() uint64

	// UpdateLearningRate updates the learning rate, which is useful for
	// learning rate scheduling.
	UpdateLearningRate(lr float64)
}

// dims returns the total element count of a matrix.
func dims(m *mat.Dense) int {
	r, c := m.Dims()
	return r * c
}
