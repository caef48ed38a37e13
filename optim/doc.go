// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training dense networks.
//
// # Overview
//
// This package contains:
//   - SGD: plain gradient descent, value -= learningRate * delta
//   - Adam: adaptive moment estimation with bias correction
//   - Optimiser interface for custom optimisers
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
//	    // ... add layers
//	    m.Compile(nn.NewSSE(), optim.NewSGD(optim.SGDConfig{LearningRate: 0.1}))
//	}
//
// # Learning Rate
//
//   - SGD: 0.1 is a good default for sigmoid networks
//   - Adam: 0.001 is a good default
//
// Optimisers serialize to a className + config pair and are rebuilt with
// GetOptimiser, so a model topology can carry its optimiser.
package optim
