// Package checkpoints persists trained models as JSON: the compiled
// layer specification, every parameter tensor, and the training state
// reached when the checkpoint was taken.
package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tsawler/go-vintner/engine"
	"github.com/tsawler/go-vintner/layers"
)

// Checkpoint represents a complete model state including weights and
// training metadata.
type Checkpoint struct {
	// Model architecture and weights
	ModelSpec *layers.ModelSpec `json:"model_spec"`
	Weights   []WeightTensor    `json:"weights"`

	// Training state
	TrainingState TrainingState `json:"training_state"`

	// Metadata
	Metadata CheckpointMetadata `json:"metadata"`
}

// WeightTensor represents a model parameter tensor with its data.
type WeightTensor struct {
	Name  string    `json:"name"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Data  []float64 `json:"data"`
	Layer string    `json:"layer"`
	Type  string    `json:"type"` // "weight" or "bias"
}

// TrainingState captures the training progress at checkpoint time.
type TrainingState struct {
	Epochs        int     `json:"epochs"`
	LearningRate  float64 `json:"learning_rate"`
	FinalLoss     float64 `json:"final_loss"`
	FinalAccuracy float64 `json:"final_accuracy"`
}

// CheckpointMetadata contains checkpoint metadata.
type CheckpointMetadata struct {
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// FromModel builds a checkpoint from a model by walking its dense layers
// and collecting weight and bias tensors in parameter order.
func FromModel(model *engine.Model, state TrainingState) (*Checkpoint, error) {
	if model == nil || model.State() == engine.Unbuilt {
		return nil, fmt.Errorf("cannot checkpoint an unbuilt model")
	}

	spec := model.Spec()
	params := model.Parameters()

	var weights []WeightTensor
	paramIndex := 0
	for _, layerSpec := range spec.Layers {
		if layerSpec.Type != layers.Dense {
			continue
		}
		if paramIndex >= len(params) {
			return nil, fmt.Errorf("insufficient parameter tensors for dense layer %s", layerSpec.Name)
		}

		w := params[paramIndex]
		rows, cols := w.Dims()
		data := make([]float64, rows*cols)
		copy(data, w.RawMatrix().Data)
		weights = append(weights, WeightTensor{
			Name:  fmt.Sprintf("%s.weight", layerSpec.Name),
			Rows:  rows,
			Cols:  cols,
			Data:  data,
			Layer: layerSpec.Name,
			Type:  "weight",
		})
		paramIndex++

		if layerSpec.UseBias() {
			if paramIndex >= len(params) {
				return nil, fmt.Errorf("insufficient parameter tensors for dense layer bias %s", layerSpec.Name)
			}
			b := params[paramIndex]
			br, bc := b.Dims()
			bdata := make([]float64, br*bc)
			copy(bdata, b.RawMatrix().Data)
			weights = append(weights, WeightTensor{
				Name:  fmt.Sprintf("%s.bias", layerSpec.Name),
				Rows:  br,
				Cols:  bc,
				Data:  bdata,
				Layer: layerSpec.Name,
				Type:  "bias",
			})
			paramIndex++
		}
	}

	return &Checkpoint{
		ModelSpec:     spec,
		Weights:       weights,
		TrainingState: state,
		Metadata: CheckpointMetadata{
			Version:   "1.0.0",
			Framework: "go-vintner",
			CreatedAt: time.Now(),
		},
	}, nil
}

// RestoreModel rebuilds an executable model from a checkpoint, copying
// the saved tensors over the freshly initialized parameters. A model
// checkpointed after training is restored in the Trained state.
func RestoreModel(checkpoint *Checkpoint) (*engine.Model, error) {
	if checkpoint.ModelSpec == nil || !checkpoint.ModelSpec.Compiled {
		return nil, fmt.Errorf("checkpoint has no compiled model spec")
	}

	model, err := engine.NewModel(checkpoint.ModelSpec, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild model: %v", err)
	}

	params := model.Parameters()
	if len(params) != len(checkpoint.Weights) {
		return nil, fmt.Errorf("checkpoint has %d tensors, model expects %d", len(checkpoint.Weights), len(params))
	}
	for i, wt := range checkpoint.Weights {
		rows, cols := params[i].Dims()
		if rows != wt.Rows || cols != wt.Cols {
			return nil, fmt.Errorf("tensor %s is %dx%d, model expects %dx%d", wt.Name, wt.Rows, wt.Cols, rows, cols)
		}
		if len(wt.Data) != wt.Rows*wt.Cols {
			return nil, fmt.Errorf("tensor %s has %d values for shape %dx%d", wt.Name, len(wt.Data), wt.Rows, wt.Cols)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				params[i].Set(r, c, wt.Data[r*cols+c])
			}
		}
	}

	if checkpoint.TrainingState.Epochs > 0 {
		model.MarkTrained()
	}
	return model, nil
}

// SaveCheckpoint writes a checkpoint to disk as indented JSON.
func SaveCheckpoint(checkpoint *Checkpoint, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // Pretty print JSON

	if err := encoder.Encode(checkpoint); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint from disk.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %v", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}
	return &checkpoint, nil
}
