// Package engine executes compiled layer specifications on the CPU. It
// owns the model's learnable parameters, the forward pass, and
// backpropagation; the training package drives it.
package engine

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-vintner/layers"
	"github.com/tsawler/go-vintner/tabular"
)

// ModelState tracks the model lifecycle. Evaluation is only meaningful
// once the model has seen at least one completed training epoch.
type ModelState int

const (
	Unbuilt ModelState = iota
	Built
	Trained
)

func (ms ModelState) String() string {
	switch ms {
	case Unbuilt:
		return "Unbuilt"
	case Built:
		return "Built"
	case Trained:
		return "Trained"
	default:
		return "Unknown"
	}
}

// denseParams holds the learnable parameters of a single dense layer.
// Bias is a 1 x outputWidth matrix so the optimizer can treat weights and
// biases uniformly; it is nil when the layer was built without bias.
type denseParams struct {
	weights *mat.Dense
	bias    *mat.Dense
	l2      float64
	name    string
}

// Gradients holds the parameter gradients of a single dense layer,
// shaped identically to the layer's parameters.
type Gradients struct {
	Weights *mat.Dense
	Bias    *mat.Dense
}

// Model is an executable feed-forward network built from a compiled
// ModelSpec. The zero Model is Unbuilt; NewModel returns a Built model
// with freshly initialized weights.
type Model struct {
	spec  *layers.ModelSpec
	dense []*denseParams
	state ModelState
}

// NewModel builds an executable model from a compiled spec. Weights are
// initialized with the Glorot uniform scheme using the given seed, so the
// same seed always produces the same starting point. Biases start at
// zero.
func NewModel(spec *layers.ModelSpec, seed int64) (*Model, error) {
	if spec == nil || !spec.Compiled {
		return nil, fmt.Errorf("%w: model spec must be compiled before building", tabular.ErrConfiguration)
	}

	rng := rand.New(rand.NewSource(seed))
	var dense []*denseParams
	for _, layer := range spec.Layers {
		if layer.Type != layers.Dense {
			continue
		}
		in, out := layer.InputWidth, layer.OutputWidth
		limit := math.Sqrt(6.0 / float64(in+out))
		w := mat.NewDense(in, out, nil)
		for i := 0; i < in; i++ {
			for j := 0; j < out; j++ {
				w.Set(i, j, rng.Float64()*2*limit-limit)
			}
		}
		dp := &denseParams{weights: w, l2: layer.L2Penalty(), name: layer.Name}
		if layer.UseBias() {
			dp.bias = mat.NewDense(1, out, nil)
		}
		dense = append(dense, dp)
	}

	return &Model{spec: spec, dense: dense, state: Built}, nil
}

// Spec returns the compiled specification the model was built from.
func (m *Model) Spec() *layers.ModelSpec {
	return m.spec
}

// State returns the current lifecycle state.
func (m *Model) State() ModelState {
	return m.state
}

// MarkTrained promotes the model to the Trained state. The trainer calls
// it after the first completed epoch.
func (m *Model) MarkTrained() {
	m.state = Trained
}

// Forward runs the network on a batch. x must be rows x InputWidth; the
// result is rows x OutputWidth. With a softmax output layer each result
// row sums to 1.
func (m *Model) Forward(x *mat.Dense) (*mat.Dense, error) {
	acts, err := m.forward(x)
	if err != nil {
		return nil, err
	}
	return acts[len(acts)-1], nil
}

// forward runs the network keeping every intermediate activation:
// acts[0] is the input and acts[i+1] the output of layer i.
func (m *Model) forward(x *mat.Dense) ([]*mat.Dense, error) {
	if m.state == Unbuilt {
		return nil, fmt.Errorf("%w: model has not been built", tabular.ErrConfiguration)
	}
	_, cols := x.Dims()
	if cols != m.spec.InputWidth {
		return nil, fmt.Errorf("%w: input has %d columns, model expects %d", tabular.ErrShapeMismatch, cols, m.spec.InputWidth)
	}

	acts := make([]*mat.Dense, 0, len(m.spec.Layers)+1)
	acts = append(acts, x)

	current := x
	denseIdx := 0
	for _, layer := range m.spec.Layers {
		var next *mat.Dense
		switch layer.Type {
		case layers.Dense:
			next = m.dense[denseIdx].apply(current)
			denseIdx++
		case layers.ReLU:
			next = applyElementwise(current, func(v float64) float64 {
				if v > 0 {
					return v
				}
				return 0
			})
		case layers.Tanh:
			next = applyElementwise(current, math.Tanh)
		case layers.Sigmoid:
			next = applyElementwise(current, func(v float64) float64 {
				return 1 / (1 + math.Exp(-v))
			})
		case layers.Softmax:
			next = softmaxRows(current)
		default:
			return nil, fmt.Errorf("%w: unsupported layer type %s", tabular.ErrConfiguration, layer.Type)
		}
		acts = append(acts, next)
		current = next
	}
	return acts, nil
}

// Backprop runs a forward pass and computes parameter gradients of the
// cross-entropy loss against one-hot targets. The model must end in a
// softmax layer; the combined softmax/cross-entropy gradient
// (probabilities minus targets, averaged over the batch) seeds the
// backward walk. L2 penalties configured on dense layers contribute
// 2*l2*W to their weight gradients.
func (m *Model) Backprop(x, targets *mat.Dense) (*mat.Dense, []Gradients, error) {
	last := m.spec.Layers[len(m.spec.Layers)-1]
	if last.Type != layers.Softmax {
		return nil, nil, fmt.Errorf("%w: backprop requires a softmax output layer, model ends in %s", tabular.ErrConfiguration, last.Type)
	}

	acts, err := m.forward(x)
	if err != nil {
		return nil, nil, err
	}
	probs := acts[len(acts)-1]

	n, outCols := probs.Dims()
	tr, tc := targets.Dims()
	if tr != n || tc != outCols {
		return nil, nil, fmt.Errorf("%w: targets are %dx%d, predictions are %dx%d", tabular.ErrShapeMismatch, tr, tc, n, outCols)
	}

	// Softmax + cross-entropy collapse to (p - y)/n at the logits.
	delta := mat.NewDense(n, outCols, nil)
	delta.Sub(probs, targets)
	delta.Scale(1/float64(n), delta)

	grads := make([]Gradients, len(m.dense))
	denseIdx := len(m.dense) - 1

	for li := len(m.spec.Layers) - 1; li >= 0; li-- {
		layer := m.spec.Layers[li]
		switch layer.Type {
		case layers.Softmax:
			if li != len(m.spec.Layers)-1 {
				return nil, nil, fmt.Errorf("%w: softmax is only supported as the output layer", tabular.ErrConfiguration)
			}
			// Gradient already expressed at the softmax input.
		case layers.Dense:
			dp := m.dense[denseIdx]
			input := acts[li]

			gw := &mat.Dense{}
			gw.Mul(input.T(), delta)
			if dp.l2 > 0 {
				reg := &mat.Dense{}
				reg.Scale(2*dp.l2, dp.weights)
				gw.Add(gw, reg)
			}

			g := Gradients{Weights: gw}
			if dp.bias != nil {
				g.Bias = columnSums(delta)
			}
			grads[denseIdx] = g
			denseIdx--

			next := &mat.Dense{}
			next.Mul(delta, dp.weights.T())
			delta = next
		case layers.ReLU:
			delta = hadamardDeriv(delta, acts[li+1], func(out float64) float64 {
				if out > 0 {
					return 1
				}
				return 0
			})
		case layers.Tanh:
			delta = hadamardDeriv(delta, acts[li+1], func(out float64) float64 {
				return 1 - out*out
			})
		case layers.Sigmoid:
			delta = hadamardDeriv(delta, acts[li+1], func(out float64) float64 {
				return out * (1 - out)
			})
		}
	}

	return probs, grads, nil
}

// Parameters returns the model's learnable tensors in layer order,
// weights before bias for every dense layer. The returned matrices are
// the live parameters; the optimizer updates them in place.
func (m *Model) Parameters() []*mat.Dense {
	var params []*mat.Dense
	for _, dp := range m.dense {
		params = append(params, dp.weights)
		if dp.bias != nil {
			params = append(params, dp.bias)
		}
	}
	return params
}

// FlattenGradients orders gradients to match Parameters.
func FlattenGradients(grads []Gradients) []*mat.Dense {
	var flat []*mat.Dense
	for _, g := range grads {
		flat = append(flat, g.Weights)
		if g.Bias != nil {
			flat = append(flat, g.Bias)
		}
	}
	return flat
}

// L2Loss returns the summed L2 penalty term over all penalized dense
// layers: sum over layers of l2 * sum(W^2).
func (m *Model) L2Loss() float64 {
	var total float64
	for _, dp := range m.dense {
		if dp.l2 == 0 {
			continue
		}
		raw := dp.weights.RawMatrix()
		var sum float64
		for _, v := range raw.Data {
			sum += v * v
		}
		total += dp.l2 * sum
	}
	return total
}

// Predict runs the network on a row-major feature matrix and returns the
// per-row class probability rows.
func (m *Model) Predict(features [][]float64) ([][]float64, error) {
	x, err := MatrixFromRows(features)
	if err != nil {
		return nil, err
	}
	probs, err := m.Forward(x)
	if err != nil {
		return nil, err
	}
	n, c := probs.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = probs.At(i, j)
		}
		out[i] = row
	}
	return out, nil
}

// apply computes input * W (+ bias broadcast over rows).
func (dp *denseParams) apply(input *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Mul(input, dp.weights)
	if dp.bias != nil {
		rows, cols := out.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out.Set(i, j, out.At(i, j)+dp.bias.At(0, j))
			}
		}
	}
	return out
}

// MatrixFromRows copies a row-major [][]float64 into a mat.Dense. All
// rows must share the same width.
func MatrixFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", tabular.ErrConfiguration)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: zero-width matrix", tabular.ErrConfiguration)
	}
	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", tabular.ErrShapeMismatch, i, len(row), width)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), width, data), nil
}

func applyElementwise(in *mat.Dense, f func(float64) float64) *mat.Dense {
	out := &mat.Dense{}
	out.Apply(func(_, _ int, v float64) float64 { return f(v) }, in)
	return out
}

// softmaxRows applies a numerically stable softmax to every row.
func softmaxRows(in *mat.Dense) *mat.Dense {
	rows, cols := in.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		maxVal := in.At(i, 0)
		for j := 1; j < cols; j++ {
			if v := in.At(i, j); v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for j := 0; j < cols; j++ {
			e := math.Exp(in.At(i, j) - maxVal)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < cols; j++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

// hadamardDeriv multiplies delta elementwise by the activation derivative
// computed from the activation's output.
func hadamardDeriv(delta, out *mat.Dense, deriv func(float64) float64) *mat.Dense {
	rows, cols := delta.Dims()
	res := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			res.Set(i, j, delta.At(i, j)*deriv(out.At(i, j)))
		}
	}
	return res
}

// columnSums returns the per-column sums of m as a 1 x cols matrix.
func columnSums(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(1, cols, nil)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		out.Set(0, j, sum)
	}
	return out
}
