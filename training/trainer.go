package training

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-vintner/engine"
	"github.com/tsawler/go-vintner/optimizer"
	"github.com/tsawler/go-vintner/tabular"
)

// EpochMetrics holds the metrics of a single training epoch.
type EpochMetrics struct {
	Epoch    int
	Loss     float64
	Accuracy float64
	Duration time.Duration
}

// Trainer runs the training loop for a classifier. It assumes an already
// class-balanced input and applies no reweighting of its own.
type Trainer struct {
	model     *engine.Model
	optimizer optimizer.Optimizer
	config    ClassifierConfig

	// Verbose prints a per-epoch summary to stdout.
	Verbose bool
}

// NewTrainer creates a Trainer for the given model and optimizer. The
// model must have been built from the same configuration.
func NewTrainer(model *engine.Model, opt optimizer.Optimizer, cfg ClassifierConfig) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil || model.State() == engine.Unbuilt {
		return nil, fmt.Errorf("%w: trainer requires a built model", tabular.ErrConfiguration)
	}
	if model.Spec().InputWidth != cfg.FeatureWidth {
		return nil, fmt.Errorf("%w: model input width %d does not match configured feature width %d",
			tabular.ErrShapeMismatch, model.Spec().InputWidth, cfg.FeatureWidth)
	}
	if model.Spec().OutputWidth != cfg.OutputWidth {
		return nil, fmt.Errorf("%w: model output width %d does not match configured output width %d",
			tabular.ErrShapeMismatch, model.Spec().OutputWidth, cfg.OutputWidth)
	}
	return &Trainer{model: model, optimizer: opt, config: cfg}, nil
}

// Fit performs the configured number of full passes over the training
// set, minimizing the configured loss, and returns the per-epoch history
// of training loss and accuracy. Calling Fit on an already trained model
// continues training from the current weights.
//
// The context is checked between epochs: on cancellation Fit stops,
// leaves the model in the Trained state reflecting the completed epochs,
// and returns the partial history alongside the context's error.
func (t *Trainer) Fit(ctx context.Context, features, labels [][]float64) ([]EpochMetrics, error) {
	x, y, err := t.matrices(features, labels)
	if err != nil {
		return nil, err
	}

	history := make([]EpochMetrics, 0, t.config.Epochs)
	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		start := time.Now()
		probs, grads, err := t.model.Backprop(x, y)
		if err != nil {
			return history, fmt.Errorf("epoch %d backprop failed: %w", epoch, err)
		}

		loss, err := t.config.Loss.Compute(probs, y)
		if err != nil {
			return history, err
		}
		loss += t.model.L2Loss()
		acc := Accuracy(probs, y)

		if err := t.optimizer.Step(t.model.Parameters(), engine.FlattenGradients(grads)); err != nil {
			return history, fmt.Errorf("epoch %d optimizer step failed: %v", epoch, err)
		}
		t.model.MarkTrained()

		m := EpochMetrics{Epoch: epoch, Loss: loss, Accuracy: acc, Duration: time.Since(start)}
		history = append(history, m)

		if t.Verbose {
			fmt.Printf("[%3d/%d] loss: %.5f, accuracy: %.5f\n", epoch+1, t.config.Epochs, m.Loss, m.Accuracy)
		}
	}
	return history, nil
}

// Evaluate computes (loss, accuracy) once over a held-out set. The loss
// is the configured cross-entropy alone; the L2 penalty is part of the
// training objective and is not charged against held-out data. Accuracy
// is the fraction of rows whose predicted argmax class equals the true
// argmax class. The model must be in the Trained state.
func (t *Trainer) Evaluate(features, labels [][]float64) (loss, accuracy float64, err error) {
	if t.model.State() != engine.Trained {
		return 0, 0, fmt.Errorf("%w: evaluate requires a trained model, state is %s", tabular.ErrConfiguration, t.model.State())
	}

	x, y, err := t.matrices(features, labels)
	if err != nil {
		return 0, 0, err
	}

	probs, err := t.model.Forward(x)
	if err != nil {
		return 0, 0, err
	}
	loss, err = t.config.Loss.Compute(probs, y)
	if err != nil {
		return 0, 0, err
	}
	return loss, Accuracy(probs, y), nil
}

// matrices validates the batch against the configuration and converts it
// to the engine's matrix form.
func (t *Trainer) matrices(features, labels [][]float64) (*mat.Dense, *mat.Dense, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d feature rows and %d label rows", tabular.ErrShapeMismatch, len(features), len(labels))
	}
	if len(features[0]) != t.config.FeatureWidth {
		return nil, nil, fmt.Errorf("%w: features have %d columns, configuration expects %d",
			tabular.ErrShapeMismatch, len(features[0]), t.config.FeatureWidth)
	}
	if len(labels[0]) != t.config.OutputWidth {
		return nil, nil, fmt.Errorf("%w: label matrix is %d wide, configuration expects %d",
			tabular.ErrShapeMismatch, len(labels[0]), t.config.OutputWidth)
	}

	x, err := engine.MatrixFromRows(features)
	if err != nil {
		return nil, nil, err
	}
	y, err := engine.MatrixFromRows(labels)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
