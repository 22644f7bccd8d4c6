// Package layers defines neural network models as pure configuration.
// A ModelBuilder assembles LayerSpecs and Compile turns them into a
// ModelSpec with widths and parameter counts resolved; execution lives in
// the engine package.
package layers

import "fmt"

// LayerType represents the type of neural network layer.
type LayerType int

const (
	Dense LayerType = iota
	ReLU
	Tanh
	Sigmoid
	Softmax
)

func (lt LayerType) String() string {
	switch lt {
	case Dense:
		return "Dense"
	case ReLU:
		return "ReLU"
	case Tanh:
		return "Tanh"
	case Sigmoid:
		return "Sigmoid"
	case Softmax:
		return "Softmax"
	default:
		return "Unknown"
	}
}

// IsActivation reports whether the layer type is an elementwise
// activation usable between dense layers.
func (lt LayerType) IsActivation() bool {
	return lt == ReLU || lt == Tanh || lt == Sigmoid
}

// LayerSpec defines layer configuration for the engine. This is pure
// configuration - no execution logic.
type LayerSpec struct {
	Type       LayerType              `json:"type"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`

	// Width information (computed during model compilation)
	InputWidth  int `json:"input_width,omitempty"`
	OutputWidth int `json:"output_width,omitempty"`

	// Parameter metadata (computed during model compilation)
	ParameterCount int64 `json:"parameter_count,omitempty"`
}

// OutputSize returns the configured output width of a dense layer, or 0
// for activation layers. JSON round-trips decode numbers as float64, so
// both representations are accepted.
func (ls *LayerSpec) OutputSize() int {
	switch v := ls.Parameters["output_size"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// UseBias reports whether a dense layer carries a bias vector.
func (ls *LayerSpec) UseBias() bool {
	if v, ok := ls.Parameters["use_bias"].(bool); ok {
		return v
	}
	return false
}

// L2Penalty returns the L2 regularization coefficient of a dense layer,
// 0 when the layer is unpenalized.
func (ls *LayerSpec) L2Penalty() float64 {
	if v, ok := ls.Parameters["l2_penalty"].(float64); ok {
		return v
	}
	return 0
}

// ModelSpec defines a complete feed-forward model as layer configuration.
type ModelSpec struct {
	Layers []LayerSpec `json:"layers"`

	// Compiled model information
	TotalParameters int64 `json:"total_parameters"`
	InputWidth      int   `json:"input_width"`
	OutputWidth     int   `json:"output_width"`
	Compiled        bool  `json:"compiled"`
}

// DenseLayers returns the dense layers of a compiled model in order.
func (ms *ModelSpec) DenseLayers() []LayerSpec {
	var dense []LayerSpec
	for _, layer := range ms.Layers {
		if layer.Type == Dense {
			dense = append(dense, layer)
		}
	}
	return dense
}

// ModelBuilder helps construct feed-forward models.
type ModelBuilder struct {
	layers     []LayerSpec
	inputWidth int
	compiled   bool
}

// NewModelBuilder creates a new model builder for inputs of the given
// feature width.
func NewModelBuilder(inputWidth int) *ModelBuilder {
	return &ModelBuilder{
		layers:     make([]LayerSpec, 0),
		inputWidth: inputWidth,
		compiled:   false,
	}
}

// AddLayer adds a layer to the model.
func (mb *ModelBuilder) AddLayer(layer LayerSpec) *ModelBuilder {
	mb.layers = append(mb.layers, layer)
	mb.compiled = false // Invalidate compilation
	return mb
}

// AddDense adds a dense layer with the given output width. l2 sets the
// L2 penalty coefficient on the layer's weights; pass 0 to leave the
// layer unpenalized.
func (mb *ModelBuilder) AddDense(outputSize int, useBias bool, l2 float64, name string) *ModelBuilder {
	layer := LayerSpec{
		Type: Dense,
		Name: name,
		Parameters: map[string]interface{}{
			"output_size": outputSize,
			"use_bias":    useBias,
			"l2_penalty":  l2,
		},
	}
	return mb.AddLayer(layer)
}

// AddReLU adds a ReLU activation to the model.
func (mb *ModelBuilder) AddReLU(name string) *ModelBuilder {
	return mb.addActivation(ReLU, name)
}

// AddTanh adds a Tanh activation to the model.
func (mb *ModelBuilder) AddTanh(name string) *ModelBuilder {
	return mb.addActivation(Tanh, name)
}

// AddSigmoid adds a Sigmoid activation to the model.
func (mb *ModelBuilder) AddSigmoid(name string) *ModelBuilder {
	return mb.addActivation(Sigmoid, name)
}

// AddSoftmax adds a Softmax activation to the model. It normalizes each
// output row to sum to 1 so the outputs read as class probabilities.
func (mb *ModelBuilder) AddSoftmax(name string) *ModelBuilder {
	return mb.addActivation(Softmax, name)
}

// AddActivation adds the given activation layer type.
func (mb *ModelBuilder) AddActivation(t LayerType, name string) (*ModelBuilder, error) {
	if !t.IsActivation() && t != Softmax {
		return nil, fmt.Errorf("layer type %s is not an activation", t)
	}
	return mb.addActivation(t, name), nil
}

func (mb *ModelBuilder) addActivation(t LayerType, name string) *ModelBuilder {
	layer := LayerSpec{
		Type:       t,
		Name:       name,
		Parameters: map[string]interface{}{},
	}
	return mb.AddLayer(layer)
}

// Compile compiles the model and computes widths and parameter counts.
func (mb *ModelBuilder) Compile() (*ModelSpec, error) {
	if len(mb.layers) == 0 {
		return nil, fmt.Errorf("cannot compile empty model")
	}
	if mb.inputWidth <= 0 {
		return nil, fmt.Errorf("input width must be positive, got %d", mb.inputWidth)
	}

	model := &ModelSpec{
		Layers:     make([]LayerSpec, len(mb.layers)),
		InputWidth: mb.inputWidth,
		Compiled:   false,
	}
	copy(model.Layers, mb.layers)

	currentWidth := mb.inputWidth
	totalParams := int64(0)

	for i := range model.Layers {
		layer := &model.Layers[i]
		layer.InputWidth = currentWidth

		outputWidth, paramCount, err := computeLayerInfo(layer, currentWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to compute layer %d (%s) info: %v", i, layer.Name, err)
		}

		layer.OutputWidth = outputWidth
		layer.ParameterCount = paramCount
		totalParams += paramCount
		currentWidth = outputWidth
	}

	model.OutputWidth = currentWidth
	model.TotalParameters = totalParams
	model.Compiled = true
	mb.compiled = true

	return model, nil
}

// computeLayerInfo computes the output width and learnable parameter
// count for a layer.
func computeLayerInfo(layer *LayerSpec, inputWidth int) (int, int64, error) {
	switch layer.Type {
	case Dense:
		outputSize := layer.OutputSize()
		if outputSize <= 0 {
			return 0, 0, fmt.Errorf("dense layer requires a positive output_size")
		}
		if l2 := layer.L2Penalty(); l2 < 0 {
			return 0, 0, fmt.Errorf("l2_penalty cannot be negative, got %v", l2)
		}
		params := int64(inputWidth) * int64(outputSize)
		if layer.UseBias() {
			params += int64(outputSize)
		}
		return outputSize, params, nil
	case ReLU, Tanh, Sigmoid, Softmax:
		// Elementwise; width passes through, nothing learnable.
		return inputWidth, 0, nil
	default:
		return 0, 0, fmt.Errorf("unsupported layer type: %s", layer.Type.String())
	}
}
