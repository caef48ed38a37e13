// Package optim implements parameter-update rules for densenet models.
//
// An Optimiser is applied once per parameter-owning layer per training step,
// after a full backward pass has written every Weight delta:
//
//	for _, layer := range trainable {
//	    if err := opt.Update(layer); err != nil {
//	        return err
//	    }
//	}
//
// Deltas are overwritten wholesale by each backward pass, so no zero-grad
// step is needed between updates.
package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
)

// Optimiser updates the weights of one layer from their deltas.
type Optimiser interface {
	serial.Serializable

	// Update applies one step to every weight of layer.
	Update(layer nn.Layer) error

	// LearningRate returns the current step size.
	LearningRate() float64
}

// Optimisers is the registry of optimiser class names.
var Optimisers = newOptimiserRegistry()

func newOptimiserRegistry() *serial.Registry[Optimiser] {
	r := serial.NewRegistry[Optimiser]("optimiser")
	r.Register("sgd", func(cfg serial.Config) (Optimiser, error) {
		lr, err := cfg.Float("learningRate", DefaultLearningRate)
		if err != nil {
			return nil, err
		}
		return NewSGD(SGDConfig{LearningRate: lr}), nil
	})
	r.Register("adam", adamFromConfig)
	return r
}

// GetOptimiser reconstructs an optimiser from its wrapped form.
func GetOptimiser(w serial.Wrapped) (Optimiser, error) {
	opt, err := Optimisers.Deserialize(w)
	if err != nil && !errors.Is(err, nn.ErrConfiguration) {
		err = fmt.Errorf("%w: %w", nn.ErrConfiguration, err)
	}
	return opt, err
}
