// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the sequential Model and its training loop.
//
// # Overview
//
// A Model is an ordered list of layers headed by an Input layer. Compile
// attaches a loss and an optimiser; Train then runs mini-batch gradient
// descent and reports telemetry through TrainConfig.OnTrainingStep.
//
//	m := model.New()
//	m.AddLayer(nn.NewInput(2))
//	m.AddLayer(nn.NewDense(nn.DenseConfig{Units: 1, Activation: nn.NewSigmoid(), UseBias: true}))
//	m.Compile(nn.NewSSE(), optim.NewSGD(optim.SGDConfig{LearningRate: 0.5}))
//
//	err := m.Train(model.TrainConfig{
//	    Epochs:     100,
//	    PrintEvery: 10,
//	    OnTrainingStep: func(r model.StepReport) {
//	        fmt.Println(model.ProgressBar(20, r.Step+1, 100), r.Loss)
//	    },
//	}, x, y)
//
// # Persistence
//
// Topology describes the layers, loss and optimiser as className + config
// values. EncodedWeights packs every weight as base64 float32 data with a
// per-weight config. Together they rebuild an identical model in another
// process.
//
// # Background training
//
// TrainOnWorker runs the same loop on a separate goroutine that only
// exchanges plain messages with the caller, then copies the trained weights
// back into the model.
package model
