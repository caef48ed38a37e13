// Package model orchestrates densenet layers into a trainable pipeline.
//
// A Model owns an ordered list of layers (the first is always an Input), one
// loss and one optimiser. Layers are built as they are appended, so a model
// is assembled bottom-up:
//
//	m := model.New()
//	m.AddLayer(nn.NewInput(784))
//	m.AddLayer(nn.NewDense(nn.DenseConfig{Units: 100, Activation: nn.NewSigmoid(), UseBias: true}))
//	m.AddLayer(nn.NewDense(nn.DenseConfig{Units: 10, Activation: nn.NewSigmoid(), UseBias: true}))
//	m.Compile(nn.NewSSE(), optim.NewSGD(optim.SGDConfig{LearningRate: 0.1}))
//
//	err := m.Train(model.TrainConfig{Epochs: 5, BatchSize: 32}, x, y)
//
// A Model is not safe for concurrent use. Background training goes through
// the worker package, which trains a private copy and copies the weights
// back.
package model

import (
	"fmt"
	"math"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/optim"
)

// State is the lifecycle stage of a Model.
type State int

// Model states.
const (
	Uninitialized State = iota // no layers
	LayersAdded                // layers present, loss or optimiser missing
	Compiled                   // ready to train
	Training                   // Train is running
	Trained                    // at least one Train call completed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case LayersAdded:
		return "layers-added"
	case Compiled:
		return "compiled"
	case Training:
		return "training"
	case Trained:
		return "trained"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Model is a sequential feed-forward network.
type Model struct {
	layers    []nn.Layer
	loss      nn.Loss
	optimiser optim.Optimiser
	training  bool
	trained   bool
}

// New creates an empty model.
func New() *Model {
	return &Model{}
}

// State returns the current lifecycle stage.
func (m *Model) State() State {
	switch {
	case m.training:
		return Training
	case len(m.layers) == 0:
		return Uninitialized
	case m.loss == nil || m.optimiser == nil:
		return LayersAdded
	case m.trained:
		return Trained
	default:
		return Compiled
	}
}

// AddLayer appends a layer, building it against the current output width.
//
// The first layer must be an *nn.InputLayer.
func (m *Model) AddLayer(layer nn.Layer) error {
	if len(m.layers) == 0 {
		if _, ok := layer.(*nn.InputLayer); !ok {
			return fmt.Errorf("%w: first layer must be of type Input, got %s", nn.ErrConfiguration, layer.ClassName())
		}
		m.layers = append(m.layers, layer)
		return nil
	}
	if _, ok := layer.(*nn.InputLayer); ok {
		return fmt.Errorf("%w: Input may only be the first layer", nn.ErrConfiguration)
	}
	if err := layer.Build(m.OutputLayer().Units()); err != nil {
		return err
	}
	m.layers = append(m.layers, layer)
	return nil
}

// Layers returns the layer list. The slice must not be modified.
func (m *Model) Layers() []nn.Layer {
	return m.layers
}

// InputLayer returns the first layer, or nil for an empty model.
func (m *Model) InputLayer() nn.Layer {
	if len(m.layers) == 0 {
		return nil
	}
	return m.layers[0]
}

// OutputLayer returns the last layer, or nil for an empty model.
func (m *Model) OutputLayer() nn.Layer {
	if len(m.layers) == 0 {
		return nil
	}
	return m.layers[len(m.layers)-1]
}

// Loss returns the configured loss, or nil.
func (m *Model) Loss() nn.Loss { return m.loss }

// Optimiser returns the configured optimiser, or nil.
func (m *Model) Optimiser() optim.Optimiser { return m.optimiser }

// SetLoss replaces the loss function.
func (m *Model) SetLoss(loss nn.Loss) { m.loss = loss }

// SetOptimiser replaces the optimiser.
func (m *Model) SetOptimiser(opt optim.Optimiser) { m.optimiser = opt }

// Compile sets both the loss and the optimiser.
func (m *Model) Compile(loss nn.Loss, opt optim.Optimiser) {
	m.SetLoss(loss)
	m.SetOptimiser(opt)
}

// Forward runs input through every layer and returns the final output.
//
// input must have one row per input unit and one column per sample.
func (m *Model) Forward(input *matrix.Matrix) (*matrix.Matrix, error) {
	if len(m.layers) == 0 {
		return nil, fmt.Errorf("%w: can't feed forward without any layers", nn.ErrConfiguration)
	}
	if input.Rows() != m.InputLayer().Units() {
		return nil, &matrix.ShapeError{
			Op:     "forward",
			A:      input.Shape(),
			Detail: fmt.Sprintf("input has %d rows, input layer expects %d", input.Rows(), m.InputLayer().Units()),
		}
	}

	out := input
	for i, layer := range m.layers {
		var err error
		if out, err = layer.Forward(out); err != nil {
			return nil, fmt.Errorf("layer %d (%s) forward: %w", i, layer.ClassName(), err)
		}
	}
	return out, nil
}

// backward propagates the loss gradient from the output layer down to the
// first hidden layer. Weights are not touched.
func (m *Model) backward(y, output *matrix.Matrix) (err error) {
	defer matrix.Catch(&err)

	passBackError := m.loss.Backward(y, output)
	for i := len(m.layers) - 1; i > 0; i-- {
		if passBackError, err = m.layers[i].Backward(passBackError); err != nil {
			return fmt.Errorf("layer %d (%s) backward: %w", i, m.layers[i].ClassName(), err)
		}
	}
	return nil
}

// trainableLayers returns the layers that own weights.
func (m *Model) trainableLayers() []nn.Layer {
	var out []nn.Layer
	for _, l := range m.layers {
		if len(l.Weights()) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Weights returns every weight in layer order, kernel before bias.
func (m *Model) Weights() []*nn.Weight {
	var out []*nn.Weight
	for _, l := range m.layers {
		out = append(out, l.Weights()...)
	}
	return out
}

// Reset rebuilds every parameter-owning layer with fresh initial weights.
func (m *Model) Reset() error {
	for i := 1; i < len(m.layers); i++ {
		if len(m.layers[i].Weights()) == 0 {
			continue
		}
		if err := m.layers[i].Build(m.layers[i-1].Units()); err != nil {
			return err
		}
	}
	m.trained = false
	return nil
}

// Prediction is the arg-max read-out of a single sample.
type Prediction struct {
	Class      int       // Index of the strongest output unit
	Confidence float64   // Output value of that unit
	Outputs    []float64 // Full output column
}

// Percent returns Confidence as a rounded percentage.
func (p Prediction) Percent() int {
	return int(math.Round(p.Confidence * 100))
}

// Predict runs one sample through the model and returns the arg-max class.
func (m *Model) Predict(features []float64) (Prediction, error) {
	if len(m.layers) == 0 {
		return Prediction{}, fmt.Errorf("%w: can't predict without any layers", nn.ErrConfiguration)
	}
	if len(features) != m.InputLayer().Units() {
		return Prediction{}, fmt.Errorf("%w: expected %d features, got %d",
			nn.ErrDataConsistency, m.InputLayer().Units(), len(features))
	}
	out, err := m.Forward(matrix.Column(features))
	if err != nil {
		return Prediction{}, err
	}
	value, pos := out.Max()
	return Prediction{Class: pos.Row, Confidence: value, Outputs: out.Flat()}, nil
}
