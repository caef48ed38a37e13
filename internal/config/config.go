// Package config loads densenet hyperparameters from YAML.
//
// Example file:
//
//	hiddenUnits: [100]
//	activation: sigmoid
//	outputActivation: sigmoid
//	loss: sse
//	optimiser: sgd
//	learningRate: 0.1
//	epochs: 1
//	batchSize: 32
//	printEvery: 10
//
// Missing keys keep their Default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/densenet/internal/model"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/optim"
	"github.com/born-ml/densenet/internal/serial"
)

// Hyperparameters describe a dense classifier and how to train it.
type Hyperparameters struct {
	HiddenUnits      []int   `yaml:"hiddenUnits" json:"hiddenUnits"`
	Activation       string  `yaml:"activation" json:"activation"`
	OutputActivation string  `yaml:"outputActivation" json:"outputActivation"`
	Loss             string  `yaml:"loss" json:"loss"`
	Optimiser        string  `yaml:"optimiser" json:"optimiser"`
	LearningRate     float64 `yaml:"learningRate" json:"learningRate"`
	Epochs           int     `yaml:"epochs" json:"epochs"`
	BatchSize        int     `yaml:"batchSize" json:"batchSize"`
	PrintEvery       int     `yaml:"printEvery" json:"printEvery"`
	Seed             int64   `yaml:"seed" json:"seed"`
}

// Default returns the hyperparameters of the reference MNIST network:
// one hidden layer of 100 sigmoid units trained with SSE and SGD.
func Default() Hyperparameters {
	return Hyperparameters{
		HiddenUnits:      []int{100},
		Activation:       "sigmoid",
		OutputActivation: "sigmoid",
		Loss:             "sse",
		Optimiser:        "sgd",
		LearningRate:     optim.DefaultLearningRate,
		Epochs:           1,
		BatchSize:        32,
		PrintEvery:       model.DefaultPrintEvery,
		Seed:             1,
	}
}

// LoadFile reads hyperparameters from a YAML file on top of Default.
func LoadFile(path string) (Hyperparameters, error) {
	//nolint:gosec // G304: config path comes from the user
	data, err := os.ReadFile(path)
	if err != nil {
		return Hyperparameters{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML hyperparameters on top of Default. Unknown keys are
// rejected.
func Parse(data []byte) (Hyperparameters, error) {
	h := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		return Hyperparameters{}, fmt.Errorf("%w: parse config: %w", nn.ErrConfiguration, err)
	}
	if err := h.Validate(); err != nil {
		return Hyperparameters{}, err
	}
	return h, nil
}

// Marshal encodes h as YAML.
func (h Hyperparameters) Marshal() ([]byte, error) {
	return yaml.Marshal(h)
}

// Validate checks ranges and registry names.
func (h Hyperparameters) Validate() error {
	for i, u := range h.HiddenUnits {
		if u < 1 {
			return fmt.Errorf("%w: hiddenUnits[%d] must be positive, got %d", nn.ErrConfiguration, i, u)
		}
	}
	if h.LearningRate <= 0 {
		return fmt.Errorf("%w: learningRate must be positive, got %v", nn.ErrConfiguration, h.LearningRate)
	}
	if h.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be at least 1, got %d", nn.ErrConfiguration, h.Epochs)
	}
	if h.BatchSize < 0 {
		return fmt.Errorf("%w: batchSize must not be negative, got %d", nn.ErrConfiguration, h.BatchSize)
	}
	if h.PrintEvery < 0 {
		return fmt.Errorf("%w: printEvery must not be negative, got %d", nn.ErrConfiguration, h.PrintEvery)
	}
	for _, name := range []string{h.Activation, h.OutputActivation} {
		if name == "" {
			continue
		}
		if _, err := nn.GetActivation(serial.Wrapped{ClassName: name}); err != nil {
			return err
		}
	}
	if _, err := nn.GetLoss(serial.Wrapped{ClassName: h.Loss}); err != nil {
		return err
	}
	if _, err := optim.GetOptimiser(serial.Wrapped{ClassName: h.Optimiser}); err != nil {
		return err
	}
	return nil
}

// Build creates a compiled model with inputs input units, the configured
// hidden layers and an output layer of outputs units.
func (h Hyperparameters) Build(inputs, outputs int) (*model.Model, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if inputs < 1 || outputs < 1 {
		return nil, fmt.Errorf("%w: inputs and outputs must be positive, got %d and %d", nn.ErrConfiguration, inputs, outputs)
	}

	m := model.New()
	if err := m.AddLayer(nn.NewInput(inputs)); err != nil {
		return nil, err
	}
	units := append(append([]int(nil), h.HiddenUnits...), outputs)
	for i, u := range units {
		name := h.Activation
		if i == len(units)-1 {
			name = h.OutputActivation
		}
		cfg := nn.DefaultDenseConfig(u)
		if name != "" {
			act, err := nn.GetActivation(serial.Wrapped{ClassName: name})
			if err != nil {
				return nil, err
			}
			cfg.Activation = act
		}
		if err := m.AddLayer(nn.NewDense(cfg)); err != nil {
			return nil, err
		}
	}

	loss, err := nn.GetLoss(serial.Wrapped{ClassName: h.Loss})
	if err != nil {
		return nil, err
	}
	opt, err := optim.GetOptimiser(serial.Wrapped{
		ClassName: h.Optimiser,
		Config:    serial.Config{"learningRate": h.LearningRate},
	})
	if err != nil {
		return nil, err
	}
	m.Compile(loss, opt)
	return m, nil
}

// TrainConfig returns the training hyperparameters.
func (h Hyperparameters) TrainConfig() model.TrainConfig {
	return model.TrainConfig{Epochs: h.Epochs, BatchSize: h.BatchSize, PrintEvery: h.PrintEvery}
}
