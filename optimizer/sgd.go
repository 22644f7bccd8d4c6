package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LearningRate float64
	Momentum     float64 // Momentum coefficient (0 for vanilla SGD)
	WeightDecay  float64 // L2 regularization coefficient
	Nesterov     bool    // Whether to use Nesterov momentum
}

// DefaultSGDConfig returns default SGD optimizer configuration.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{
		LearningRate: 0.01,
		Momentum:     0.0,
		WeightDecay:  0.0,
		Nesterov:     false,
	}
}

// SGD implements stochastic gradient descent with optional classical or
// Nesterov momentum.
type SGD struct {
	config SGDConfig

	momentum []*mat.Dense // allocated only when Momentum > 0

	stepCount uint64
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) (*SGD, error) {
	if config.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", config.LearningRate)
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		return nil, fmt.Errorf("momentum must be in [0,1), got %f", config.Momentum)
	}
	if config.Nesterov && config.Momentum == 0 {
		return nil, fmt.Errorf("nesterov momentum requires a non-zero momentum coefficient")
	}
	return &SGD{config: config}, nil
}

// Step performs a single SGD optimization step, updating params in
// place.
func (s *SGD) Step(params, grads []*mat.Dense) error {
	if len(params) != len(grads) {
		return fmt.Errorf("gradient count (%d) doesn't match parameter count (%d)", len(grads), len(params))
	}

	if s.config.Momentum > 0 && s.momentum == nil {
		s.momentum = make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Dims()
			s.momentum[i] = mat.NewDense(r, c, nil)
		}
	}

	s.stepCount++
	for i, p := range params {
		g := grads[i]
		if dims(p) != dims(g) {
			pr, pc := p.Dims()
			gr, gc := g.Dims()
			return fmt.Errorf("parameter %d is %dx%d but gradient is %dx%d", i, pr, pc, gr, gc)
		}

		rows, cols := p.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				grad := g.At(r, c)
				if s.config.WeightDecay > 0 {
					grad += s.config.WeightDecay * p.At(r, c)
				}

				update := grad
				if s.config.Momentum > 0 {
					buf := s.momentum[i]
					vel := s.config.Momentum*buf.At(r, c) + grad
					buf.Set(r, c, vel)
					if s.config.Nesterov {
						update = grad + s.config.Momentum*vel
					} else {
						update = vel
					}
				}
				p.Set(r, c, p.At(r, c)-s.config.LearningRate*update)
			}
		}
	}
	return nil
}

// GetStepCount returns the current step count.
func (s *SGD) GetStepCount() uint64 {
	return s.stepCount
}

// UpdateLearningRate updates the learning rate.
func (s *SGD) UpdateLearningRate(lr float64) {
	s.config.LearningRate = lr
}
