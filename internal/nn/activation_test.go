package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkActivationGradient compares Backward against the finite-difference
// gradient of L(x) = Σ g ⊙ act(x).
func checkActivationGradient(t *testing.T, newAct func() nn.Activation, x, g *matrix.Matrix) {
	t.Helper()

	act := newAct()
	act.Forward(x)
	got, err := act.Backward(g)
	require.NoError(t, err)

	want := numericGradient(t, x, func(m *matrix.Matrix) float64 {
		return newAct().Forward(m).Mul(g).Sum()
	})
	requireClose(t, want, got, 1e-4)
}

func TestSigmoid_Forward(t *testing.T) {
	s := nn.NewSigmoid()
	out := s.Forward(matrix.FromValues([][]float64{{0}, {1.5}, {-2}}))
	assert.InDelta(t, 0.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.8175744761936437, out.At(1, 0), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(2)), out.At(2, 0), 1e-12)
	assert.Same(t, out, s.Output())
}

func TestSigmoid_GradientCheck(t *testing.T) {
	x := randomMatrix(1, 4, 3, -3, 3)
	g := randomMatrix(2, 4, 3, -1, 1)
	checkActivationGradient(t, func() nn.Activation { return nn.NewSigmoid() }, x, g)
}

func TestReLU(t *testing.T) {
	r := nn.NewReLU()
	x := matrix.FromValues([][]float64{{-1, 2}, {0.5, -0.25}})
	assert.Equal(t, [][]float64{{0, 2}, {0.5, 0}}, r.Forward(x).Values())

	delta, err := r.Backward(matrix.Fill(matrix.Shape{2, 2}, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 3}, {3, 0}}, delta.Values())
}

func TestReLU_GradientCheck(t *testing.T) {
	// Keep inputs away from the kink at 0.
	x := randomMatrix(3, 3, 4, -2, 2).Map(func(v float64, _, _ int) float64 {
		if math.Abs(v) < 0.1 {
			return v + 0.5
		}
		return v
	})
	g := randomMatrix(4, 3, 4, -1, 1)
	checkActivationGradient(t, func() nn.Activation { return nn.NewReLU() }, x, g)
}

func TestSoftMax_ColumnsAreDistributions(t *testing.T) {
	s := nn.NewSoftMax()
	x := matrix.FromValues([][]float64{
		{1, 1000, -3},
		{2, 1000, 0},
		{3, 999, 5},
	})
	out := s.Forward(x)

	sums := out.SumCols()
	sums.Iterate(func(v float64, _, j int) {
		assert.InDelta(t, 1, v, 1e-12, "column %d", j)
	})
	assert.False(t, out.HasNaN(), "large inputs must not overflow")

	e := []float64{math.Exp(1), math.Exp(2), math.Exp(3)}
	total := e[0] + e[1] + e[2]
	for i := range e {
		assert.InDelta(t, e[i]/total, out.At(i, 0), 1e-12)
	}
}

func TestSoftMax_GradientCheck(t *testing.T) {
	t.Run("single column", func(t *testing.T) {
		x := randomMatrix(5, 4, 1, -2, 2)
		g := randomMatrix(6, 4, 1, -1, 1)
		checkActivationGradient(t, func() nn.Activation { return nn.NewSoftMax() }, x, g)
	})

	// Each column is an independent sample; the per-column Jacobian must
	// match the batched finite-difference gradient exactly.
	t.Run("batched columns", func(t *testing.T) {
		x := randomMatrix(7, 5, 3, -2, 2)
		g := randomMatrix(8, 5, 3, -1, 1)
		checkActivationGradient(t, func() nn.Activation { return nn.NewSoftMax() }, x, g)
	})
}

func TestActivation_BackwardBeforeForward(t *testing.T) {
	for _, act := range []nn.Activation{nn.NewSigmoid(), nn.NewReLU(), nn.NewSoftMax()} {
		_, err := act.Backward(matrix.Fill(matrix.Shape{1, 1}, 1))
		assert.ErrorIs(t, err, nn.ErrConfiguration, act.ClassName())
	}
}

func TestActivation_BackwardShapeMismatch(t *testing.T) {
	s := nn.NewSigmoid()
	s.Forward(matrix.Fill(matrix.Shape{3, 2}, 0))
	_, err := s.Backward(matrix.Fill(matrix.Shape{2, 3}, 1))
	assert.ErrorIs(t, err, matrix.ErrShape)
}

func TestActivationRegistry(t *testing.T) {
	for name, want := range map[string]string{
		"sigmoid": "Sigmoid",
		"ReLU":    "ReLU",
		"SOFTMAX": "SoftMax",
	} {
		act, err := nn.GetActivation(serial.Wrapped{ClassName: name})
		require.NoError(t, err)
		assert.Equal(t, want, act.ClassName())
	}

	_, err := nn.GetActivation(serial.Wrapped{ClassName: "tanh"})
	assert.ErrorIs(t, err, nn.ErrConfiguration)
	assert.ErrorIs(t, err, serial.ErrClassNotFound)
}
