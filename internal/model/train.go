package model

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
)

// DefaultPrintEvery is the report interval used when TrainConfig.PrintEvery is zero.
const DefaultPrintEvery = 10

// StepReport is the telemetry passed to TrainConfig.OnTrainingStep.
type StepReport struct {
	Loss        float64      // Loss of the batch just trained on, before the update
	Epoch       int          // Zero-based epoch index
	TotalEpochs int          // Requested epochs
	Progress    int          // Completed steps as a rounded percentage of all steps
	Step        int          // Zero-based global step
	Weights     []*nn.Weight // Detached snapshots of every weight after the update
}

// TrainConfig holds the hyperparameters of a Train call.
type TrainConfig struct {
	Epochs int // Passes over the dataset, at least 1

	// BatchSize is the number of samples per step. Zero trains on the whole
	// dataset in a single batch.
	BatchSize int

	// PrintEvery reports every n-th step of an epoch, counting from step 0.
	// Zero means DefaultPrintEvery.
	PrintEvery int

	// OnTrainingStep, if set, receives a report every PrintEvery steps.
	// It runs on the training goroutine.
	OnTrainingStep func(StepReport)
}

// Validate checks cfg against a dataset of n samples.
func (cfg TrainConfig) Validate(n int) error {
	if cfg.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be at least 1, got %d", nn.ErrConfiguration, cfg.Epochs)
	}
	if cfg.PrintEvery < 0 {
		return fmt.Errorf("%w: printEvery must not be negative, got %d", nn.ErrConfiguration, cfg.PrintEvery)
	}
	if cfg.BatchSize != 0 && (cfg.BatchSize < 1 || cfg.BatchSize > n) {
		return fmt.Errorf("%w: batch size is out of range: 1 - %d, got %d", nn.ErrConfiguration, n, cfg.BatchSize)
	}
	return nil
}

// StepsPerEpoch returns the number of batches needed to cover n samples.
func (cfg TrainConfig) StepsPerEpoch(n int) int {
	if cfg.BatchSize == 0 || n == 0 {
		return 1
	}
	return (n + cfg.BatchSize - 1) / cfg.BatchSize
}

// Train fits the model to x and y. Each x[i] holds one sample's features and
// y[i] its expected outputs.
func (m *Model) Train(cfg TrainConfig, x, y [][]float64) error {
	return m.TrainContext(context.Background(), cfg, x, y)
}

// TrainContext is like Train but stops between steps once ctx is done,
// returning the context error. Weights keep the updates of completed steps.
func (m *Model) TrainContext(ctx context.Context, cfg TrainConfig, x, y [][]float64) error {
	if m.loss == nil || m.optimiser == nil {
		return fmt.Errorf("%w: need both a loss function and an optimiser to train, compile the model first", nn.ErrConfiguration)
	}
	if m.training {
		return fmt.Errorf("%w: model is already training", nn.ErrConfiguration)
	}
	if len(x) == 0 || len(y) == 0 || len(m.layers) < 2 {
		return nil
	}
	if err := m.validateData(x, y); err != nil {
		return err
	}
	if err := cfg.Validate(len(x)); err != nil {
		return err
	}
	if cfg.PrintEvery == 0 {
		cfg.PrintEvery = DefaultPrintEvery
	}

	m.training = true
	defer func() { m.training = false }()

	trainable := m.trainableLayers()
	steps := cfg.StepsPerEpoch(len(x))
	totalSteps := steps * cfg.Epochs

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for step := 0; step < steps; step++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("train: stopped at epoch %d step %d: %w", epoch, step, err)
			}

			xBatch, yBatch := batch(x, cfg.BatchSize, step), batch(y, cfg.BatchSize, step)
			loss, err := m.step(trainable, xBatch, yBatch)
			if err != nil {
				return fmt.Errorf("train: epoch %d step %d: %w", epoch, step, err)
			}

			if cfg.OnTrainingStep != nil && step%cfg.PrintEvery == 0 {
				global := epoch*steps + step
				cfg.OnTrainingStep(StepReport{
					Loss:        loss,
					Epoch:       epoch,
					TotalEpochs: cfg.Epochs,
					Progress:    int(math.Round(float64(global+1) / float64(totalSteps) * 100)),
					Step:        global,
					Weights:     m.snapshot(),
				})
			}
		}
	}

	m.trained = true
	return nil
}

// step runs forward, backward and the optimiser on one batch and returns the
// batch loss. xRows and yRows are sample-major and are transposed so that
// columns index samples.
func (m *Model) step(trainable []nn.Layer, xRows, yRows [][]float64) (loss float64, err error) {
	defer matrix.Catch(&err)

	xb := matrix.FromValues(xRows).Transpose()
	yb := matrix.FromValues(yRows).Transpose()

	output, err := m.Forward(xb)
	if err != nil {
		return 0, err
	}
	if err := m.backward(yb, output); err != nil {
		return 0, err
	}
	loss = m.loss.Forward(yb, output)

	for _, layer := range trainable {
		if err := m.optimiser.Update(layer); err != nil {
			return 0, fmt.Errorf("optimiser %s: %w", m.optimiser.ClassName(), err)
		}
	}
	return loss, nil
}

// validateData checks every sample up front so a bad row never aborts an
// epoch halfway.
func (m *Model) validateData(x, y [][]float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: every input must have an output, got x.length %d and y.length %d",
			nn.ErrDataConsistency, len(x), len(y))
	}
	in, out := m.InputLayer().Units(), m.OutputLayer().Units()
	for i := range x {
		if len(x[i]) != in {
			return fmt.Errorf("%w: expected %d inputs but got %d at index %d", nn.ErrDataConsistency, in, len(x[i]), i)
		}
		if len(y[i]) != out {
			return fmt.Errorf("%w: expected %d outputs but got %d at index %d", nn.ErrDataConsistency, out, len(y[i]), i)
		}
	}
	return nil
}

// batch returns the step-th slice of rows. A zero size returns all rows.
func batch(rows [][]float64, size, step int) [][]float64 {
	if size == 0 {
		return rows
	}
	start := step * size
	return rows[start:min(start+size, len(rows))]
}

func (m *Model) snapshot() []*nn.Weight {
	weights := m.Weights()
	out := make([]*nn.Weight, len(weights))
	for i, w := range weights {
		out[i] = w.Snapshot()
	}
	return out
}
