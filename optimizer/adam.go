package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LearningRate float64
	Beta1        float64 // Momentum decay (typically 0.9)
	Beta2        float64 // Variance decay (typically 0.999)
	Epsilon      float64 // Small constant to prevent division by zero (typically 1e-8)
	WeightDecay  float64 // Decoupled weight decay coefficient
}

// DefaultAdamConfig returns default Adam optimizer configuration.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		WeightDecay:  0.0,
	}
}

// Adam implements the Adam update rule with bias-corrected first and
// second moment estimates.
type Adam struct {
	config AdamConfig

	momentum []*mat.Dense // First moment estimate per parameter tensor
	variance []*mat.Dense // Second moment estimate per parameter tensor

	stepCount uint64
}

// NewAdam creates a new Adam optimizer. Moment buffers are allocated on
// the first Step call, sized to the parameter tensors it receives.
func NewAdam(config AdamConfig) (*Adam, error) {
	if config.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", config.LearningRate)
	}
	if config.Beta1 < 0 || config.Beta1 >= 1 {
		return nil, fmt.Errorf("beta1 must be in [0,1), got %f", config.Beta1)
	}
	if config.Beta2 < 0 || config.Beta2 >= 1 {
		return nil, fmt.Errorf("beta2 must be in [0,1), got %f", config.Beta2)
	}
	if config.Epsilon <= 0 {
		return nil, fmt.Errorf("epsilon must be positive, got %g", config.Epsilon)
	}
	return &Adam{config: config}, nil
}

// Step performs a single Adam optimization step, updating params in
// place.
func (a *Adam) Step(params, grads []*mat.Dense) error {
	if len(params) != len(grads) {
		return fmt.Errorf("gradient count (%d) doesn't match parameter count (%d)", len(grads), len(params))
	}

	if a.momentum == nil {
		a.momentum = make([]*mat.Dense, len(params))
		a.variance = make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Dims()
			a.momentum[i] = mat.NewDense(r, c, nil)
			a.variance[i] = mat.NewDense(r, c, nil)
		}
	}
	if len(a.momentum) != len(params) {
		return fmt.Errorf("optimizer state holds %d tensors, got %d parameters", len(a.momentum), len(params))
	}

	a.stepCount++
	t := float64(a.stepCount)
	bc1 := 1 - math.Pow(a.config.Beta1, t)
	bc2 := 1 - math.Pow(a.config.Beta2, t)

	for i, p := range params {
		g := grads[i]
		if dims(p) != dims(g) {
			pr, pc := p.Dims()
			gr, gc := g.Dims()
			return fmt.Errorf("parameter %d is %dx%d but gradient is %dx%d", i, pr, pc, gr, gc)
		}

		m := a.momentum[i]
		v := a.variance[i]
		rows, cols := p.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				grad := g.At(r, c)
				if a.config.WeightDecay > 0 {
					grad += a.config.WeightDecay * p.At(r, c)
				}

				mNew := a.config.Beta1*m.At(r, c) + (1-a.config.Beta1)*grad
				vNew := a.config.Beta2*v.At(r, c) + (1-a.config.Beta2)*grad*grad
				m.Set(r, c, mNew)
				v.Set(r, c, vNew)

				mHat := mNew / bc1
				vHat := vNew / bc2
				p.Set(r, c, p.At(r, c)-a.config.LearningRate*mHat/(math.Sqrt(vHat)+a.config.Epsilon))
			}
		}
	}
	return nil
}

// GetStepCount returns the current step count.
func (a *Adam) GetStepCount() uint64 {
	return a.stepCount
}

// UpdateLearningRate updates the learning rate.
func (a *Adam) UpdateLearningRate(lr float64) {
	a.config.LearningRate = lr
}
