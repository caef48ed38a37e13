package optim

import (
	"fmt"

	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
)

// DefaultLearningRate is used when SGDConfig.LearningRate is zero.
const DefaultLearningRate = 0.1

// SGD implements plain stochastic gradient descent.
//
// Update rule:
//
//	value = value + delta * (-learningRate)
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LearningRate: 0.5})
//	for _, layer := range trainable {
//	    opt.Update(layer)
//	}
type SGD struct {
	lr float64
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LearningRate float64 // Step size (default: 0.1)
}

// NewSGD creates a new SGD optimiser.
func NewSGD(config SGDConfig) *SGD {
	if config.LearningRate == 0 {
		config.LearningRate = DefaultLearningRate
	}
	return &SGD{lr: config.LearningRate}
}

// Update implements Optimiser.
//
// Returns an error if the layer owns no weights.
func (s *SGD) Update(layer nn.Layer) error {
	weights := layer.Weights()
	if len(weights) == 0 {
		return fmt.Errorf("%w: can't update a layer with no weights", nn.ErrConfiguration)
	}
	for _, w := range weights {
		if err := w.Update(w.Value().Add(w.Delta().MulScalar(-s.lr))); err != nil {
			return err
		}
	}
	return nil
}

// LearningRate implements Optimiser.
func (s *SGD) LearningRate() float64 {
	return s.lr
}

// SetLearningRate changes the step size.
func (s *SGD) SetLearningRate(lr float64) {
	s.lr = lr
}

// ClassName implements serial.Serializable.
func (s *SGD) ClassName() string { return "SGD" }

// Config implements serial.Serializable.
func (s *SGD) Config() serial.Config {
	return serial.Config{"learningRate": s.lr}
}
