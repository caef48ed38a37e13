// Package nn implements the building blocks of a densenet model.
//
// This package provides:
//   - Layer interface with Input and Dense implementations
//   - Weight: named trainable parameter with value and delta
//   - Activations: Sigmoid, ReLU, SoftMax (hand-derived backward passes)
//   - Losses: SSE, CategoricalCrossentropy
//   - Initializers: RandomUniform, Zeros, Ones, Constant
//   - Registries that rebuild any of the above from a serial.Wrapped value
//
// Matrices are oriented with one row per unit and one column per sample, so
// a Dense layer processes a whole batch with a single kernel·input product.
package nn

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// Layer is the interface implemented by every model layer.
//
// A layer is unbuilt until Build materializes its weights against the width
// of the preceding layer. Forward caches the input and output needed by
// Backward.
type Layer interface {
	serial.Serializable

	// Units returns the number of nodes (output rows) of the layer.
	Units() int

	// Build materializes weights for an input of prevUnits rows. Building
	// again replaces existing weights.
	Build(prevUnits int) error

	// Built reports whether Build has run.
	Built() bool

	// Forward computes the layer output for a (prevUnits x batch) input.
	Forward(input *matrix.Matrix) (*matrix.Matrix, error)

	// Backward consumes dLoss/dOutput, writes weight deltas and returns
	// dLoss/dInput for the preceding layer.
	Backward(passBackError *matrix.Matrix) (*matrix.Matrix, error)

	// Weights returns the trainable parameters (empty when none).
	Weights() []*Weight

	// Input returns the last forward input.
	Input() *matrix.Matrix

	// Output returns the last forward output.
	Output() *matrix.Matrix
}

// layerCache holds the forward cache shared by all layers.
type layerCache struct {
	input  *matrix.Matrix
	output *matrix.Matrix
}

// Input returns the last forward input.
func (c *layerCache) Input() *matrix.Matrix { return c.input }

// Output returns the last forward output.
func (c *layerCache) Output() *matrix.Matrix { return c.output }

// InputLayer is the pass-through first layer of every model.
//
// It declares the input width and owns no parameters.
type InputLayer struct {
	layerCache
	units     int
	batchSize int
}

// NewInput creates an input layer of the given width.
//
// Panics if units is not positive.
func NewInput(units int) *InputLayer {
	if units < 1 {
		panic(fmt.Sprintf("nn.NewInput: units must be positive, got %d", units))
	}
	return &InputLayer{units: units, batchSize: 1}
}

// WithBatchSize records a preferred batch size in the layer config.
func (l *InputLayer) WithBatchSize(n int) *InputLayer {
	if n > 0 {
		l.batchSize = n
	}
	return l
}

// Units implements Layer.
func (l *InputLayer) Units() int { return l.units }

// BatchSize returns the configured batch size hint.
func (l *InputLayer) BatchSize() int { return l.batchSize }

// Build implements Layer. Input layers have nothing to build.
func (l *InputLayer) Build(int) error { return nil }

// Built implements Layer. Always true.
func (l *InputLayer) Built() bool { return true }

// Forward implements Layer: output = input = x.
func (l *InputLayer) Forward(x *matrix.Matrix) (*matrix.Matrix, error) {
	l.input = x
	l.output = x
	return x, nil
}

// Backward implements Layer. The gradient passes through unchanged.
func (l *InputLayer) Backward(passBackError *matrix.Matrix) (*matrix.Matrix, error) {
	return passBackError, nil
}

// Weights implements Layer.
func (l *InputLayer) Weights() []*Weight { return nil }

// ClassName implements serial.Serializable.
func (l *InputLayer) ClassName() string { return "Input" }

// Config implements serial.Serializable.
func (l *InputLayer) Config() serial.Config {
	return serial.Config{"numOfNodes": l.units, "batchSize": l.batchSize}
}

// Layers is the registry of layer class names.
var Layers = newLayerRegistry()

func newLayerRegistry() *serial.Registry[Layer] {
	r := serial.NewRegistry[Layer]("layer")
	r.Register("input", inputFromConfig)
	r.Register("dense", denseFromConfig)
	return r
}

func inputFromConfig(cfg serial.Config) (Layer, error) {
	units, err := cfg.Int("numOfNodes", 0)
	if err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, fmt.Errorf("numOfNodes must be positive, got %d", units)
	}
	batchSize, err := cfg.Int("batchSize", 1)
	if err != nil {
		return nil, err
	}
	return NewInput(units).WithBatchSize(batchSize), nil
}

// GetLayer reconstructs an unbuilt layer from its wrapped form.
func GetLayer(w serial.Wrapped) (Layer, error) {
	layer, err := Layers.Deserialize(w)
	return layer, configErr(err)
}
