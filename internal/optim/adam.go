package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimiser.
//
// Update rule, per weight:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * delta
//	v_t = beta2 * v_{t-1} + (1-beta2) * delta²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	value = value - lr * m_hat / (sqrt(v_hat) + eps)
//
// Moment estimates live in the optimiser, keyed by Weight, and are not part
// of the serialized config. Rebuilding a layer starts its weights afresh.
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	state map[*nn.Weight]*adamState
}

type adamState struct {
	t int
	m *matrix.Matrix
	v *matrix.Matrix
}

// AdamConfig holds configuration for Adam.
type AdamConfig struct {
	LearningRate float64 // default: 0.001
	Beta1        float64 // default: 0.9
	Beta2        float64 // default: 0.999
	Eps          float64 // default: 1e-8
}

// NewAdam creates a new Adam optimiser, filling zero fields with defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.LearningRate == 0 {
		config.LearningRate = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LearningRate,
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Eps,
		state: make(map[*nn.Weight]*adamState),
	}
}

// Update implements Optimiser.
func (a *Adam) Update(layer nn.Layer) error {
	weights := layer.Weights()
	if len(weights) == 0 {
		return fmt.Errorf("%w: can't update a layer with no weights", nn.ErrConfiguration)
	}

	for _, w := range weights {
		st, ok := a.state[w]
		if !ok || st.m.Shape() != w.Shape() {
			shape := w.Shape()
			st = &adamState{m: matrix.New(shape.Rows(), shape.Cols()), v: matrix.New(shape.Rows(), shape.Cols())}
			a.state[w] = st
		}
		st.t++

		delta := w.Delta()
		st.m = st.m.MulScalar(a.beta1).Add(delta.MulScalar(1 - a.beta1))
		st.v = st.v.MulScalar(a.beta2).Add(delta.Mul(delta).MulScalar(1 - a.beta2))

		bc1 := 1 - math.Pow(a.beta1, float64(st.t))
		bc2 := 1 - math.Pow(a.beta2, float64(st.t))

		step := st.m.Map(func(m float64, i, j int) float64 {
			vHat := st.v.At(i, j) / bc2
			return a.lr * (m / bc1) / (math.Sqrt(vHat) + a.eps)
		})
		if err := w.Update(w.Value().Sub(step)); err != nil {
			return err
		}
	}
	return nil
}

// LearningRate implements Optimiser.
func (a *Adam) LearningRate() float64 {
	return a.lr
}

// ClassName implements serial.Serializable.
func (a *Adam) ClassName() string { return "Adam" }

// Config implements serial.Serializable.
func (a *Adam) Config() serial.Config {
	return serial.Config{
		"learningRate": a.lr,
		"beta1":        a.beta1,
		"beta2":        a.beta2,
		"eps":          a.eps,
	}
}

func adamFromConfig(cfg serial.Config) (Optimiser, error) {
	var c AdamConfig
	var err error
	if c.LearningRate, err = cfg.Float("learningRate", 0); err != nil {
		return nil, err
	}
	if c.Beta1, err = cfg.Float("beta1", 0); err != nil {
		return nil, err
	}
	if c.Beta2, err = cfg.Float("beta2", 0); err != nil {
		return nil, err
	}
	if c.Eps, err = cfg.Float("eps", 0); err != nil {
		return nil, err
	}
	return NewAdam(c), nil
}
