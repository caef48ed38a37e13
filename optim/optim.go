// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/densenet/internal/optim"
	"github.com/born-ml/densenet/internal/serial"
)

// Optimiser updates the weights of one layer from their deltas.
type Optimiser = optim.Optimiser

// DefaultLearningRate is the SGD step size used when none is configured.
const DefaultLearningRate = optim.DefaultLearningRate

// SGD represents the Stochastic Gradient Descent optimiser.
type SGD = optim.SGD

// SGDConfig holds configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimiser.
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LearningRate: 0.1})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam represents the Adam optimiser.
type Adam = optim.Adam

// AdamConfig holds configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimiser. Zero fields take their defaults.
//
// Example:
//
//	opt := optim.NewAdam(optim.AdamConfig{LearningRate: 0.001})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// GetOptimiser rebuilds an optimiser from its className + config form.
func GetOptimiser(w serial.Wrapped) (Optimiser, error) {
	return optim.GetOptimiser(w)
}
