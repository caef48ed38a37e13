package model

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/optim"
	"github.com/born-ml/densenet/internal/serial"
)

// Topology is the structural description of a model: ordered layer configs
// plus the loss and optimiser, independent of weight values.
type Topology struct {
	Layers    []serial.Wrapped `json:"layers" yaml:"layers"`
	Optimiser *serial.Wrapped  `json:"optimiser,omitempty" yaml:"optimiser,omitempty"`
	Loss      *serial.Wrapped  `json:"loss,omitempty" yaml:"loss,omitempty"`
}

// WeightData carries raw parameter values: a base64 blob of float32 values
// in model weight order and one manifest entry per weight.
type WeightData struct {
	Encoded string            `json:"encoded" yaml:"encoded"`
	Config  []nn.WeightConfig `json:"config" yaml:"config"`
}

// Topology returns the model's structural description.
func (m *Model) Topology() Topology {
	t := Topology{Layers: make([]serial.Wrapped, 0, len(m.layers))}
	for _, l := range m.layers {
		t.Layers = append(t.Layers, serial.Wrap(l))
	}
	if m.optimiser != nil {
		w := serial.Wrap(m.optimiser)
		t.Optimiser = &w
	}
	if m.loss != nil {
		w := serial.Wrap(m.loss)
		t.Loss = &w
	}
	return t
}

// LoadTopology replaces the model's layers, loss and optimiser with the ones
// described by t. Every layer is freshly built, so weights are re-drawn from
// their initializers.
//
// The model is left untouched if t cannot be loaded.
func (m *Model) LoadTopology(t Topology) error {
	if m.training {
		return fmt.Errorf("%w: can't load a topology while training", nn.ErrConfiguration)
	}

	fresh := New()
	for i, w := range t.Layers {
		layer, err := nn.GetLayer(w)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if err := fresh.AddLayer(layer); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	if t.Optimiser != nil {
		opt, err := optim.GetOptimiser(*t.Optimiser)
		if err != nil {
			return err
		}
		fresh.optimiser = opt
	}
	if t.Loss != nil {
		loss, err := nn.GetLoss(*t.Loss)
		if err != nil {
			return err
		}
		fresh.loss = loss
	}

	m.layers, m.loss, m.optimiser, m.trained = fresh.layers, fresh.loss, fresh.optimiser, false
	return nil
}

// EncodeWeights packs weights into a WeightData document.
func EncodeWeights(weights []*nn.Weight) WeightData {
	var values []float64
	cfg := make([]nn.WeightConfig, 0, len(weights))
	for _, w := range weights {
		values = append(values, w.Value().Flat()...)
		cfg = append(cfg, w.WeightConfig())
	}
	return WeightData{Encoded: serial.EncodeFloat32(values), Config: cfg}
}

// EncodedWeights returns the model's weights as a WeightData document.
func (m *Model) EncodedWeights() WeightData {
	return EncodeWeights(m.Weights())
}

// DecodeWeights unpacks a WeightData document into detached weights, one per
// config entry.
func DecodeWeights(data WeightData) ([]*nn.Weight, error) {
	buf, err := serial.DecodeBytes(data.Encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nn.ErrDataConsistency, err)
	}
	values, err := serial.Float32s(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nn.ErrDataConsistency, err)
	}

	out := make([]*nn.Weight, len(data.Config))
	start := 0
	for i, cfg := range data.Config {
		if cfg.Rows < 1 || cfg.Cols < 1 {
			return nil, fmt.Errorf("%w: weight config %d (%s) has shape (%d x %d)",
				nn.ErrDataConsistency, i, cfg.Name, cfg.Rows, cfg.Cols)
		}
		end := start + cfg.Rows*cfg.Cols
		if end > len(values) {
			return nil, fmt.Errorf("%w: weight blob holds %d values, weight config %d (%s) needs %d",
				nn.ErrDataConsistency, len(values), i, cfg.Name, end)
		}
		mat, err := matrix.Shape1D(values[start:end], matrix.Shape{cfg.Rows, cfg.Cols})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", nn.ErrDataConsistency, err)
		}
		out[i] = nn.NewWeight(cfg.Name, mat)
		start = end
	}
	return out, nil
}

// LoadEncodedWeights assigns the values in data to the model's weights, in
// order.
//
// data may describe fewer weights than the model owns; the remaining weights
// keep their current values. Describing more weights than the model owns is
// an nn.ErrDataConsistency error. Nothing is assigned unless every entry
// decodes and matches the shape of the weight it targets.
func (m *Model) LoadEncodedWeights(data WeightData) error {
	current := m.Weights()
	if len(current) < len(data.Config) {
		return fmt.Errorf("%w: can't deserialise encoded weights, num of weights in model should be %d but got %d in weight config",
			nn.ErrDataConsistency, len(current), len(data.Config))
	}

	staged, err := DecodeWeights(data)
	if err != nil {
		return err
	}
	for i, w := range staged {
		if w.Shape() != current[i].Shape() {
			return &matrix.ShapeError{
				Op:     "load weights",
				A:      current[i].Shape(),
				B:      w.Shape(),
				Detail: fmt.Sprintf("weight %d (%s) is of dimensions %v not %v", i, current[i].Name(), current[i].Shape(), w.Shape()),
			}
		}
	}

	for i, w := range staged {
		if err := current[i].Update(w.Value()); err != nil {
			return err
		}
	}
	return nil
}
