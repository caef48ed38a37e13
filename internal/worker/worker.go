// Package worker runs model training as a background job.
//
// A job never shares live objects with its caller. The caller sends a
// Request holding plain data (hyperparameters, samples, topology and encoded
// weights); the job rebuilds a private model from it, trains, and streams
// Progress messages followed by one Result. The caller copies the trained
// weights back into its own model:
//
//	job, err := worker.Start(ctx, req)
//	for p := range job.Progress() {
//		fmt.Println(p.Epoch, p.Loss)
//	}
//	res := job.Wait()
//	err = m.LoadEncodedWeights(res.Weights)
//
// Train wraps this exchange for an existing *model.Model.
package worker

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/born-ml/densenet/internal/model"
	"github.com/born-ml/densenet/internal/nn"
)

// progressBuffer is the number of Progress messages a job queues before it
// blocks on a slow reader.
const progressBuffer = 16

// Params are the hyperparameters of a training request.
type Params struct {
	Epochs     int `json:"epochs" yaml:"epochs"`
	BatchSize  int `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	PrintEvery int `json:"printEvery,omitempty" yaml:"printEvery,omitempty"`
}

// TrainConfig converts p to a model.TrainConfig without a callback.
func (p Params) TrainConfig() model.TrainConfig {
	return model.TrainConfig{Epochs: p.Epochs, BatchSize: p.BatchSize, PrintEvery: p.PrintEvery}
}

// Request describes one training job.
type Request struct {
	Params   Params           `json:"params"`
	X        [][]float64      `json:"x"`
	Y        [][]float64      `json:"y"`
	Topology model.Topology   `json:"topology"`
	Weights  model.WeightData `json:"weights"`
}

// Progress is a telemetry message emitted every PrintEvery steps.
type Progress struct {
	JobID       uuid.UUID        `json:"jobId"`
	Loss        float64          `json:"loss"`
	Epoch       int              `json:"epoch"`
	TotalEpochs int              `json:"totalEpochs"`
	Progress    int              `json:"progress"`
	Step        int              `json:"step"`
	Weights     model.WeightData `json:"weights"`
}

// Result is the final message of a job. Weights is empty when Err is set.
type Result struct {
	JobID   uuid.UUID
	Weights model.WeightData
	Err     error
}

// Job is a running training request.
type Job struct {
	id       uuid.UUID
	progress chan Progress
	done     chan struct{}
	result   Result
}

// Start rebuilds a model from req and trains it on a new goroutine.
//
// Errors in the topology or weights are returned synchronously. Training
// errors, including cancellation of ctx, are reported in the Result.
func Start(ctx context.Context, req Request) (*Job, error) {
	m := model.New()
	if err := m.LoadTopology(req.Topology); err != nil {
		return nil, fmt.Errorf("worker: load topology: %w", err)
	}
	if err := m.LoadEncodedWeights(req.Weights); err != nil {
		return nil, fmt.Errorf("worker: load weights: %w", err)
	}

	j := &Job{
		id:       uuid.New(),
		progress: make(chan Progress, progressBuffer),
		done:     make(chan struct{}),
	}
	x, y := copyRows(req.X), copyRows(req.Y)
	go j.run(ctx, m, req.Params, x, y)
	return j, nil
}

func (j *Job) run(ctx context.Context, m *model.Model, p Params, x, y [][]float64) {
	defer close(j.done)
	defer close(j.progress)

	cfg := p.TrainConfig()
	cfg.OnTrainingStep = func(r model.StepReport) {
		msg := Progress{
			JobID:       j.id,
			Loss:        r.Loss,
			Epoch:       r.Epoch,
			TotalEpochs: r.TotalEpochs,
			Progress:    r.Progress,
			Step:        r.Step,
			Weights:     model.EncodeWeights(r.Weights),
		}
		select {
		case j.progress <- msg:
		case <-ctx.Done():
		}
	}

	j.result.JobID = j.id
	if err := m.TrainContext(ctx, cfg, x, y); err != nil {
		j.result.Err = err
		return
	}
	j.result.Weights = m.EncodedWeights()
}

// ID returns the job identifier carried by every message.
func (j *Job) ID() uuid.UUID { return j.id }

// Progress returns the telemetry stream. It is closed when training ends.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Done is closed once the Result is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait discards any unread Progress messages, blocks until the job ends and
// returns its Result.
func (j *Job) Wait() Result {
	for range j.progress {
	}
	<-j.done
	return j.result
}

// Train trains m on a background job and copies the resulting weights back
// into m. cfg.OnTrainingStep, if set, is invoked on the calling goroutine
// with weight snapshots decoded from each Progress message.
//
// m is not touched until the job succeeds.
func Train(ctx context.Context, m *model.Model, cfg model.TrainConfig, x, y [][]float64) error {
	if m.Loss() == nil || m.Optimiser() == nil {
		return fmt.Errorf("%w: need both a loss function and an optimiser to train, compile the model first", nn.ErrConfiguration)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	job, err := Start(ctx, Request{
		Params:   Params{Epochs: cfg.Epochs, BatchSize: cfg.BatchSize, PrintEvery: cfg.PrintEvery},
		X:        x,
		Y:        y,
		Topology: m.Topology(),
		Weights:  m.EncodedWeights(),
	})
	if err != nil {
		return err
	}

	for p := range job.Progress() {
		if cfg.OnTrainingStep == nil {
			continue
		}
		weights, err := model.DecodeWeights(p.Weights)
		if err != nil {
			return fmt.Errorf("worker: job %s: %w", job.ID(), err)
		}
		cfg.OnTrainingStep(model.StepReport{
			Loss:        p.Loss,
			Epoch:       p.Epoch,
			TotalEpochs: p.TotalEpochs,
			Progress:    p.Progress,
			Step:        p.Step,
			Weights:     weights,
		})
	}

	res := job.Wait()
	if res.Err != nil {
		return fmt.Errorf("worker: job %s: %w", res.JobID, res.Err)
	}
	return m.LoadEncodedWeights(res.Weights)
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
