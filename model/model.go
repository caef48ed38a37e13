// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"context"

	"github.com/born-ml/densenet/internal/model"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/worker"
)

// Model is a sequential stack of layers.
type Model = model.Model

// State is the lifecycle stage of a Model.
type State = model.State

// Model states.
const (
	Uninitialized = model.Uninitialized
	LayersAdded   = model.LayersAdded
	Compiled      = model.Compiled
	Training      = model.Training
	Trained       = model.Trained
)

// DefaultPrintEvery is the report interval used when TrainConfig.PrintEvery is zero.
const DefaultPrintEvery = model.DefaultPrintEvery

// TrainConfig holds training hyperparameters and the telemetry callback.
type TrainConfig = model.TrainConfig

// StepReport is the telemetry passed to TrainConfig.OnTrainingStep.
type StepReport = model.StepReport

// Prediction is the most likely class for one sample.
type Prediction = model.Prediction

// Topology is the serializable description of a model.
type Topology = model.Topology

// WeightData is a base64 float32 weight document.
type WeightData = model.WeightData

// New creates an empty model.
func New() *Model {
	return model.New()
}

// EncodeWeights packs weights into a WeightData document.
func EncodeWeights(weights []*nn.Weight) WeightData {
	return model.EncodeWeights(weights)
}

// DecodeWeights unpacks a WeightData document into standalone weights.
func DecodeWeights(data WeightData) ([]*nn.Weight, error) {
	return model.DecodeWeights(data)
}

// ProgressBar renders "step/total[===>....] pct%" with the given bar width.
func ProgressBar(width, step, total int) string {
	return model.ProgressBar(width, step, total)
}

// TrainOnWorker trains m on a background goroutine and copies the resulting
// weights back into m. m is left untouched if training fails.
//
// Example:
//
//	err := model.TrainOnWorker(ctx, m, model.TrainConfig{Epochs: 10}, x, y)
func TrainOnWorker(ctx context.Context, m *Model, cfg TrainConfig, x, y [][]float64) error {
	return worker.Train(ctx, m, cfg, x, y)
}
