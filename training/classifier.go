package training

import (
	"fmt"

	"github.com/tsawler/go-vintner/engine"
	"github.com/tsawler/go-vintner/layers"
	"github.com/tsawler/go-vintner/tabular"
)

// ClassifierConfig is the immutable description of a feed-forward
// classifier experiment. It is created once per experiment and consumed
// by BuildClassifier and the Trainer; nothing mutates it.
type ClassifierConfig struct {
	FeatureWidth int              // input feature count
	HiddenLayers int              // number of dense hidden layers
	HiddenWidth  int              // units per hidden layer
	Activation   layers.LayerType // hidden activation: ReLU, Tanh or Sigmoid
	L2Penalty    float64          // L2 coefficient on hidden weights, 0 disables
	OutputWidth  int              // class count; the binary task uses 2
	Loss         LossKind
	Epochs       int
}

// Validate checks the configuration's scalar parameters.
func (cfg ClassifierConfig) Validate() error {
	if cfg.FeatureWidth <= 0 {
		return fmt.Errorf("%w: feature width must be positive, got %d", tabular.ErrConfiguration, cfg.FeatureWidth)
	}
	if cfg.HiddenLayers < 0 {
		return fmt.Errorf("%w: hidden layer count cannot be negative, got %d", tabular.ErrConfiguration, cfg.HiddenLayers)
	}
	if cfg.HiddenLayers > 0 && cfg.HiddenWidth <= 0 {
		return fmt.Errorf("%w: hidden width must be positive, got %d", tabular.ErrConfiguration, cfg.HiddenWidth)
	}
	if cfg.HiddenLayers > 0 && !cfg.Activation.IsActivation() {
		return fmt.Errorf("%w: %s is not a hidden activation", tabular.ErrConfiguration, cfg.Activation)
	}
	if cfg.L2Penalty < 0 {
		return fmt.Errorf("%w: L2 penalty cannot be negative, got %v", tabular.ErrConfiguration, cfg.L2Penalty)
	}
	if cfg.OutputWidth < 2 {
		return fmt.Errorf("%w: output width must be at least 2, got %d", tabular.ErrConfiguration, cfg.OutputWidth)
	}
	if cfg.Loss != CategoricalCrossEntropy && cfg.Loss != BinaryCrossEntropy {
		return fmt.Errorf("%w: unknown loss kind %d", tabular.ErrConfiguration, cfg.Loss)
	}
	if cfg.Epochs <= 0 {
		return fmt.Errorf("%w: epoch count must be positive, got %d", tabular.ErrConfiguration, cfg.Epochs)
	}
	return nil
}

// BuildClassifier constructs an untrained model from the configuration:
// hidden dense layers with the configured activation and optional L2
// penalty, then an unpenalized dense output layer under a softmax so the
// outputs read as class probabilities even in the binary case. Weight
// initialization is seeded for reproducible experiments.
func BuildClassifier(cfg ClassifierConfig, seed int64) (*engine.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := layers.NewModelBuilder(cfg.FeatureWidth)
	for i := 0; i < cfg.HiddenLayers; i++ {
		builder.AddDense(cfg.HiddenWidth, true, cfg.L2Penalty, fmt.Sprintf("hidden_%d", i+1))
		if _, err := builder.AddActivation(cfg.Activation, fmt.Sprintf("%s_%d", cfg.Activation, i+1)); err != nil {
			return nil, fmt.Errorf("%w: %v", tabular.ErrConfiguration, err)
		}
	}
	builder.AddDense(cfg.OutputWidth, true, 0, "output")
	builder.AddSoftmax("softmax")

	spec, err := builder.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier: %v", err)
	}
	return engine.NewModel(spec, seed)
}
