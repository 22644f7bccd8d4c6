package optimizer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// quadratic is the loss 0.5*sum(p^2); its gradient is p itself, so any
// working optimizer must drive the parameters toward zero.
func quadraticGrad(p *mat.Dense) *mat.Dense {
	r, c := p.Dims()
	g := mat.NewDense(r, c, nil)
	g.Copy(p)
	return g
}

func quadraticLoss(p *mat.Dense) float64 {
	raw := p.RawMatrix()
	var sum float64
	for _, v := range raw.Data {
		sum += v * v
	}
	return 0.5 * sum
}

func TestAdamConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*AdamConfig)
	}{
		{"ZeroLearningRate", func(c *AdamConfig) { c.LearningRate = 0 }},
		{"NegativeBeta1", func(c *AdamConfig) { c.Beta1 = -0.1 }},
		{"Beta1TooLarge", func(c *AdamConfig) { c.Beta1 = 1 }},
		{"Beta2TooLarge", func(c *AdamConfig) { c.Beta2 = 1.5 }},
		{"ZeroEpsilon", func(c *AdamConfig) { c.Epsilon = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultAdamConfig()
			tc.modify(&cfg)
			if _, err := NewAdam(cfg); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestAdamReducesQuadraticLoss(t *testing.T) {
	cfg := DefaultAdamConfig()
	cfg.LearningRate = 0.1
	adam, err := NewAdam(cfg)
	if err != nil {
		t.Fatalf("NewAdam failed: %v", err)
	}

	p := mat.NewDense(2, 3, []float64{1, -2, 3, -1, 2, -3})
	initial := quadraticLoss(p)

	for i := 0; i < 200; i++ {
		if err := adam.Step([]*mat.Dense{p}, []*mat.Dense{quadraticGrad(p)}); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	final := quadraticLoss(p)
	if final >= initial/100 {
		t.Errorf("loss barely moved: %v to %v", initial, final)
	}
	if adam.GetStepCount() != 200 {
		t.Errorf("expected 200 steps, got %d", adam.GetStepCount())
	}
}

func TestAdamStepValidation(t *testing.T) {
	adam, err := NewAdam(DefaultAdamConfig())
	if err != nil {
		t.Fatalf("NewAdam failed: %v", err)
	}

	p := mat.NewDense(2, 2, nil)
	t.Run("CountMismatch", func(t *testing.T) {
		if err := adam.Step([]*mat.Dense{p}, nil); err == nil {
			t.Error("expected error for mismatched counts")
		}
	})
	t.Run("ShapeMismatch", func(t *testing.T) {
		g := mat.NewDense(3, 3, nil)
		if err := adam.Step([]*mat.Dense{p}, []*mat.Dense{g}); err == nil {
			t.Error("expected error for mismatched shapes")
		}
	})
}

func TestSGDConfigValidation(t *testing.T) {
	t.Run("ZeroLearningRate", func(t *testing.T) {
		cfg := DefaultSGDConfig()
		cfg.LearningRate = 0
		if _, err := NewSGD(cfg); err == nil {
			t.Error("expected configuration error")
		}
	})
	t.Run("NesterovWithoutMomentum", func(t *testing.T) {
		cfg := DefaultSGDConfig()
		cfg.Nesterov = true
		if _, err := NewSGD(cfg); err == nil {
			t.Error("expected configuration error")
		}
	})
}

func TestSGDReducesQuadraticLoss(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  SGDConfig
	}{
		{"Vanilla", SGDConfig{LearningRate: 0.1}},
		{"Momentum", SGDConfig{LearningRate: 0.1, Momentum: 0.9}},
		{"Nesterov", SGDConfig{LearningRate: 0.1, Momentum: 0.9, Nesterov: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sgd, err := NewSGD(tc.cfg)
			if err != nil {
				t.Fatalf("NewSGD failed: %v", err)
			}

			p := mat.NewDense(1, 2, []float64{4, -4})
			initial := quadraticLoss(p)
			for i := 0; i < 100; i++ {
				if err := sgd.Step([]*mat.Dense{p}, []*mat.Dense{quadraticGrad(p)}); err != nil {
					t.Fatalf("Step failed: %v", err)
				}
			}
			if final := quadraticLoss(p); final >= initial/10 {
				t.Errorf("loss barely moved: %v to %v", initial, final)
			}
		})
	}
}

func TestUpdateLearningRate(t *testing.T) {
	adam, err := NewAdam(DefaultAdamConfig())
	if err != nil {
		t.Fatalf("NewAdam failed: %v", err)
	}
	adam.UpdateLearningRate(0.5)

	// A single step from p=1 with gradient 1 moves by roughly lr after
	// bias correction.
	p := mat.NewDense(1, 1, []float64{1})
	g := mat.NewDense(1, 1, []float64{1})
	if err := adam.Step([]*mat.Dense{p}, []*mat.Dense{g}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if math.Abs(p.At(0, 0)-0.5) > 1e-6 {
		t.Errorf("expected parameter near 0.5 after one step with lr 0.5, got %v", p.At(0, 0))
	}
}
