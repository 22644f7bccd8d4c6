package layers

import (
	"encoding/json"
	"testing"
)

func TestLayerTypeString(t *testing.T) {
	cases := map[LayerType]string{
		Dense:   "Dense",
		ReLU:    "ReLU",
		Tanh:    "Tanh",
		Sigmoid: "Sigmoid",
		Softmax: "Softmax",
	}
	for lt, want := range cases {
		if got := lt.String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestIsActivation(t *testing.T) {
	for _, lt := range []LayerType{ReLU, Tanh, Sigmoid} {
		if !lt.IsActivation() {
			t.Errorf("%s should be an activation", lt)
		}
	}
	for _, lt := range []LayerType{Dense, Softmax} {
		if lt.IsActivation() {
			t.Errorf("%s should not be a hidden activation", lt)
		}
	}
}

func TestCompile(t *testing.T) {
	spec, err := NewModelBuilder(4).
		AddDense(8, true, 0.01, "hidden_1").
		AddReLU("relu_1").
		AddDense(3, true, 0, "output").
		AddSoftmax("softmax").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if !spec.Compiled {
		t.Error("spec not marked compiled")
	}
	if spec.InputWidth != 4 {
		t.Errorf("expected input width 4, got %d", spec.InputWidth)
	}
	if spec.OutputWidth != 3 {
		t.Errorf("expected output width 3, got %d", spec.OutputWidth)
	}
	// 4*8+8 for the hidden layer, 8*3+3 for the output layer.
	if spec.TotalParameters != 67 {
		t.Errorf("expected 67 parameters, got %d", spec.TotalParameters)
	}

	widths := []struct{ in, out int }{{4, 8}, {8, 8}, {8, 3}, {3, 3}}
	for i, w := range widths {
		layer := spec.Layers[i]
		if layer.InputWidth != w.in || layer.OutputWidth != w.out {
			t.Errorf("layer %d (%s): expected %dx%d, got %dx%d",
				i, layer.Name, w.in, w.out, layer.InputWidth, layer.OutputWidth)
		}
	}

	if l2 := spec.Layers[0].L2Penalty(); l2 != 0.01 {
		t.Errorf("expected L2 penalty 0.01, got %v", l2)
	}
	if !spec.Layers[0].UseBias() {
		t.Error("hidden layer should carry a bias")
	}
}

func TestCompileNoBias(t *testing.T) {
	spec, err := NewModelBuilder(5).
		AddDense(2, false, 0, "output").
		AddSoftmax("softmax").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if spec.TotalParameters != 10 {
		t.Errorf("expected 10 parameters without bias, got %d", spec.TotalParameters)
	}
}

func TestCompileErrors(t *testing.T) {
	t.Run("EmptyModel", func(t *testing.T) {
		if _, err := NewModelBuilder(4).Compile(); err == nil {
			t.Error("expected error compiling an empty model")
		}
	})

	t.Run("BadInputWidth", func(t *testing.T) {
		if _, err := NewModelBuilder(0).AddDense(2, true, 0, "d").Compile(); err == nil {
			t.Error("expected error for non-positive input width")
		}
	})

	t.Run("BadOutputSize", func(t *testing.T) {
		if _, err := NewModelBuilder(4).AddDense(0, true, 0, "d").Compile(); err == nil {
			t.Error("expected error for non-positive output size")
		}
	})

	t.Run("NegativeL2", func(t *testing.T) {
		if _, err := NewModelBuilder(4).AddDense(2, true, -0.1, "d").Compile(); err == nil {
			t.Error("expected error for negative L2 penalty")
		}
	})
}

func TestAddActivation(t *testing.T) {
	if _, err := NewModelBuilder(4).AddActivation(Tanh, "tanh_1"); err != nil {
		t.Errorf("Tanh should be accepted: %v", err)
	}
	if _, err := NewModelBuilder(4).AddActivation(Dense, "dense"); err == nil {
		t.Error("Dense should be rejected as an activation")
	}
}

func TestDenseLayers(t *testing.T) {
	spec, err := NewModelBuilder(4).
		AddDense(8, true, 0, "hidden_1").
		AddReLU("relu_1").
		AddDense(2, true, 0, "output").
		AddSoftmax("softmax").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	dense := spec.DenseLayers()
	if len(dense) != 2 {
		t.Fatalf("expected 2 dense layers, got %d", len(dense))
	}
	if dense[0].Name != "hidden_1" || dense[1].Name != "output" {
		t.Errorf("unexpected dense layer order: %s, %s", dense[0].Name, dense[1].Name)
	}
}

func TestSpecSurvivesJSONRoundTrip(t *testing.T) {
	spec, err := NewModelBuilder(4).
		AddDense(8, true, 0.001, "hidden_1").
		AddReLU("relu_1").
		AddDense(2, true, 0, "output").
		AddSoftmax("softmax").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded ModelSpec
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	// JSON turns the int output_size into a float64; the accessor must
	// still resolve it.
	if decoded.Layers[0].OutputSize() != 8 {
		t.Errorf("expected output size 8 after round trip, got %d", decoded.Layers[0].OutputSize())
	}
	if !decoded.Layers[0].UseBias() {
		t.Error("bias flag lost in round trip")
	}
	if decoded.Layers[0].L2Penalty() != 0.001 {
		t.Errorf("L2 penalty lost in round trip: %v", decoded.Layers[0].L2Penalty())
	}
}
