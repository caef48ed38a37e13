package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

// numericGradient returns dF/dx by central finite differences.
func numericGradient(t *testing.T, x *matrix.Matrix, f func(*matrix.Matrix) float64) *matrix.Matrix {
	t.Helper()
	shape := x.Shape()
	grad := fd.Gradient(nil, func(v []float64) float64 {
		m, err := matrix.Shape1D(v, shape)
		require.NoError(t, err)
		return f(m)
	}, x.Flat(), &fd.Settings{Formula: fd.Central, Step: 1e-6})
	out, err := matrix.Shape1D(grad, shape)
	require.NoError(t, err)
	return out
}

func randomMatrix(seed int64, rows, cols int, min, max float64) *matrix.Matrix {
	return matrix.RandUniform(matrix.Shape{rows, cols}, min, max, rand.New(rand.NewSource(seed)))
}

func requireClose(t *testing.T, want, got *matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, want.Shape(), got.Shape())
	want.Iterate(func(v float64, i, j int) {
		require.InDelta(t, v, got.At(i, j), tol, "element (%d, %d)", i, j)
	})
}
