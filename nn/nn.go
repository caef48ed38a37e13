// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
)

// Errors.
var (
	// ErrConfiguration reports an invalid setup, such as training an
	// uncompiled model or an unknown class name.
	ErrConfiguration = nn.ErrConfiguration

	// ErrDataConsistency reports inconsistent data, such as mismatched
	// sample counts or a weight document that does not fit the model.
	ErrDataConsistency = nn.ErrDataConsistency

	// ErrNotBuilt reports use of a layer whose weights do not exist yet.
	ErrNotBuilt = nn.ErrNotBuilt
)

// Wrapped is the className + config form of a serializable value.
type Wrapped = serial.Wrapped

// Config is the key/value config of a serializable value.
type Config = serial.Config

// Layers

// Layer is a node in a sequential model.
type Layer = nn.Layer

// InputLayer declares the input width of a model.
type InputLayer = nn.InputLayer

// NewInput creates an Input layer with the given number of features.
func NewInput(units int) *InputLayer {
	return nn.NewInput(units)
}

// Dense is a fully connected layer.
type Dense = nn.Dense

// DenseConfig configures a Dense layer.
type DenseConfig = nn.DenseConfig

// DefaultDenseConfig returns a biased, linear config with default initializers.
func DefaultDenseConfig(units int) DenseConfig {
	return nn.DefaultDenseConfig(units)
}

// NewDense creates an unbuilt Dense layer.
//
// Example:
//
//	layer := nn.NewDense(nn.DenseConfig{Units: 10, Activation: nn.NewSoftMax(), UseBias: true})
func NewDense(cfg DenseConfig) *Dense {
	return nn.NewDense(cfg)
}

// Weight is a named trainable parameter.
type Weight = nn.Weight

// WeightConfig describes one weight in an encoded weight document.
type WeightConfig = nn.WeightConfig

// GetLayer rebuilds a layer from its wrapped form.
func GetLayer(w Wrapped) (Layer, error) {
	return nn.GetLayer(w)
}

// Activations

// Activation is an element-wise or column-wise non-linearity.
type Activation = nn.Activation

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() Activation { return nn.NewSigmoid() }

// NewReLU creates a ReLU activation.
func NewReLU() Activation { return nn.NewReLU() }

// NewSoftMax creates a column-wise SoftMax activation.
func NewSoftMax() Activation { return nn.NewSoftMax() }

// GetActivation rebuilds an activation from its wrapped form.
func GetActivation(w Wrapped) (Activation, error) {
	return nn.GetActivation(w)
}

// Losses

// Loss scores outputs against targets.
type Loss = nn.Loss

// NewSSE creates a sum-of-squared-errors loss.
func NewSSE() Loss { return nn.NewSSE() }

// NewCategoricalCrossentropy creates a categorical cross-entropy loss.
func NewCategoricalCrossentropy() Loss { return nn.NewCategoricalCrossentropy() }

// GetLoss rebuilds a loss from its wrapped form.
func GetLoss(w Wrapped) (Loss, error) {
	return nn.GetLoss(w)
}

// Initializers

// Initializer produces the initial value of a weight.
type Initializer = nn.Initializer

// RandomUniform draws values uniformly from [Min, Max).
type RandomUniform = nn.RandomUniform

// Zeros fills weights with 0.
type Zeros = nn.Zeros

// Ones fills weights with 1.
type Ones = nn.Ones

// Constant fills weights with a fixed value.
type Constant = nn.Constant

// NewRandomUniform creates a RandomUniform initializer.
func NewRandomUniform(minVal, maxVal float64) *RandomUniform {
	return nn.NewRandomUniform(minVal, maxVal)
}

// NewConstant creates a Constant initializer.
func NewConstant(value float64) *Constant {
	return nn.NewConstant(value)
}

// GetInitializer rebuilds an initializer from its wrapped form.
func GetInitializer(w Wrapped) (Initializer, error) {
	return nn.GetInitializer(w)
}

// Wrap captures a layer, activation, loss or initializer as className + config.
func Wrap(s serial.Serializable) Wrapped {
	return serial.Wrap(s)
}
