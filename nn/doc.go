// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides dense neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Input, Dense
//   - Activations: Sigmoid, ReLU, SoftMax
//   - Loss functions: SSE, CategoricalCrossentropy
//   - Initializers: RandomUniform, Zeros, Ones, Constant
//   - Weight, the named trainable parameter owned by a layer
//
// Every value flows as a matrix with one row per unit and one column per
// sample, so a whole batch is a single matrix.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/densenet/model"
//	    "github.com/born-ml/densenet/nn"
//	    "github.com/born-ml/densenet/optim"
//	)
//
//	func main() {
//	    m := model.New()
//	    m.AddLayer(nn.NewInput(784))
//	    m.AddLayer(nn.NewDense(nn.DenseConfig{Units: 100, Activation: nn.NewSigmoid(), UseBias: true}))
//	    m.AddLayer(nn.NewDense(nn.DenseConfig{Units: 10, Activation: nn.NewSigmoid(), UseBias: true}))
//	    m.Compile(nn.NewSSE(), optim.NewSGD(optim.SGDConfig{LearningRate: 0.1}))
//	}
//
// # Layers
//
// Input: declares the input width and passes data through
//
//	in := nn.NewInput(784)
//
// Dense: activation(kernel·input + bias), built lazily against the width of
// the previous layer
//
//	layer := nn.NewDense(nn.DefaultDenseConfig(128))
//
// # Serialization
//
// Every layer, activation, loss and initializer has a class name and a
// config. GetLayer, GetActivation, GetLoss and GetInitializer rebuild values
// from that pair; class names are matched case-insensitively.
//
// # Errors
//
// Shape violations are reported as *matrix.ShapeError (matching
// matrix.ErrShape). ErrConfiguration and ErrDataConsistency classify the
// remaining failures.
package nn
