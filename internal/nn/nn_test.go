package nn_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func TestSSE(t *testing.T) {
	y := matrix.FromValues([][]float64{{1}, {0}})
	out := matrix.FromValues([][]float64{{0.8}, {0.3}})

	loss := nn.NewSSE()
	assert.InDelta(t, 0.065, loss.Forward(y, out), 1e-12)

	grad := loss.Backward(y, out)
	assert.InDelta(t, -0.2, grad.At(0, 0), 1e-12)
	assert.InDelta(t, 0.3, grad.At(1, 0), 1e-12)

	// Backward is the analytic gradient of Forward w.r.t. output.
	batchY := randomMatrix(11, 3, 4, 0, 1)
	batchOut := randomMatrix(12, 3, 4, 0, 1)
	want := numericGradient(t, batchOut, func(m *matrix.Matrix) float64 { return loss.Forward(batchY, m) })
	requireClose(t, want, loss.Backward(batchY, batchOut), 1e-4)
}

func TestCategoricalCrossentropy(t *testing.T) {
	y := matrix.FromValues([][]float64{{0}, {1}, {0}})
	out := matrix.FromValues([][]float64{{0.2}, {0.5}, {0.3}})

	loss := nn.NewCategoricalCrossentropy()
	assert.InDelta(t, -math.Log(0.5), loss.Forward(y, out), 1e-12)
	assert.Equal(t, [][]float64{{0}, {-2}, {0}}, loss.Backward(y, out).Values())
}

func TestLoss_ShapeMismatchPanics(t *testing.T) {
	y := matrix.Fill(matrix.Shape{2, 1}, 0)
	out := matrix.Fill(matrix.Shape{2, 3}, 0)
	assert.Panics(t, func() { nn.NewSSE().Forward(y, out) })
	assert.Panics(t, func() { nn.NewCategoricalCrossentropy().Backward(y, out) })
}

func TestInitializers(t *testing.T) {
	shape := matrix.Shape{3, 2}
	assert.Equal(t, 0.0, nn.Zeros{}.Forward(shape).Sum())
	assert.Equal(t, 6.0, nn.Ones{}.Forward(shape).Sum())
	assert.Equal(t, 1.5, nn.NewConstant(0.25).Forward(shape).Sum())

	r := nn.NewRandomUniform(-0.1, 0.1).Forward(matrix.Shape{20, 20})
	r.Iterate(func(v float64, _, _ int) {
		assert.GreaterOrEqual(t, v, -0.1)
		assert.Less(t, v, 0.1)
	})
}

func TestInitializerRegistry(t *testing.T) {
	init, err := nn.GetInitializer(serial.Wrapped{ClassName: "RandomUniform"})
	require.NoError(t, err)
	ru := init.(*nn.RandomUniform)
	assert.Equal(t, nn.DefaultUniformMin, ru.Min)
	assert.Equal(t, nn.DefaultUniformMax, ru.Max)

	init, err = nn.GetInitializer(serial.Wrap(nn.NewConstant(0.5)))
	require.NoError(t, err)
	assert.Equal(t, serial.Config{"value": 0.5}, init.Config())

	_, err = nn.GetInitializer(serial.Wrapped{ClassName: "glorot"})
	assert.ErrorIs(t, err, nn.ErrConfiguration)
}

func TestWeight(t *testing.T) {
	value := matrix.Fill(matrix.Shape{2, 3}, 1)
	w := nn.NewWeight("kernel", value)
	assert.Equal(t, "kernel", w.Name())
	assert.Equal(t, matrix.Shape{2, 3}, w.Delta().Shape())

	require.NoError(t, w.Update(matrix.Fill(matrix.Shape{2, 3}, 2)))
	assert.Same(t, value, w.Value(), "update must not re-bind the value")
	assert.Equal(t, 12.0, value.Sum())

	assert.ErrorIs(t, w.Update(matrix.Fill(matrix.Shape{3, 2}, 2)), matrix.ErrShape)
	assert.ErrorIs(t, w.SetDelta(matrix.Fill(matrix.Shape{1, 3}, 2)), matrix.ErrShape)

	assert.Equal(t, nn.WeightConfig{Name: "kernel", Rows: 2, Cols: 3, Shape: matrix.Shape{2, 3}}, w.WeightConfig())

	snap := w.Snapshot()
	require.NoError(t, w.Update(matrix.Fill(matrix.Shape{2, 3}, 0)))
	assert.Equal(t, 12.0, snap.Value().Sum(), "snapshot is detached")
}

func TestInput(t *testing.T) {
	in := nn.NewInput(4)
	assert.True(t, in.Built())
	assert.Empty(t, in.Weights())

	x := matrix.Fill(matrix.Shape{4, 2}, 1)
	out, err := in.Forward(x)
	require.NoError(t, err)
	assert.Same(t, x, out)
	assert.Same(t, x, in.Input())
	assert.Same(t, x, in.Output())

	assert.Panics(t, func() { nn.NewInput(0) })
}

func TestDense_LazyBuild(t *testing.T) {
	d := nn.NewDense(nn.DefaultDenseConfig(3))
	assert.False(t, d.Built())
	assert.Nil(t, d.Kernel())

	out, err := d.Forward(matrix.Fill(matrix.Shape{5, 1}, 1))
	require.NoError(t, err)
	assert.True(t, d.Built())
	assert.Equal(t, matrix.Shape{3, 1}, out.Shape())
	assert.Equal(t, matrix.Shape{3, 5}, d.Kernel().Shape())
	assert.Equal(t, matrix.Shape{3, 1}, d.Bias().Shape())
	assert.Equal(t, 0.0, d.Bias().Value().Sum(), "bias defaults to zeros")

	_, err = d.Forward(matrix.Fill(matrix.Shape{4, 1}, 1))
	assert.ErrorIs(t, err, matrix.ErrShape, "built layers reject a different input width")
}

func TestDense_ForwardSigmoidConstant(t *testing.T) {
	d := nn.NewDense(nn.DenseConfig{
		Units:             2,
		Activation:        nn.NewSigmoid(),
		UseBias:           true,
		KernelInitializer: nn.NewConstant(0.5),
	})
	require.NoError(t, d.Build(2))

	out, err := d.Forward(matrix.FromValues([][]float64{{1}, {2}}))
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(1.5), out.At(0, 0), 1e-12)
	assert.InDelta(t, sigmoid(1.5), out.At(1, 0), 1e-12)
	assert.InDelta(t, 0.8176, out.At(0, 0), 1e-4)
}

func TestDense_BackwardUnbuilt(t *testing.T) {
	d := nn.NewDense(nn.DefaultDenseConfig(2))
	_, err := d.Backward(matrix.Fill(matrix.Shape{2, 1}, 1))
	assert.ErrorIs(t, err, nn.ErrNotBuilt)
	assert.ErrorIs(t, err, nn.ErrConfiguration)
}

func TestDense_NoBias(t *testing.T) {
	d := nn.NewDense(nn.DenseConfig{Units: 2, KernelInitializer: nn.Ones{}})
	out, err := d.Forward(matrix.FromValues([][]float64{{1, 2}, {3, 4}}))
	require.NoError(t, err)
	assert.Nil(t, d.Bias())
	assert.Len(t, d.Weights(), 1)
	assert.Equal(t, [][]float64{{4, 6}, {4, 6}}, out.Values())
}

// TestDense_GradientCheck verifies every gradient Dense produces against
// finite differences of L = Σ g ⊙ dense(x).
func TestDense_GradientCheck(t *testing.T) {
	for _, act := range []func() nn.Activation{
		func() nn.Activation { return nil },
		func() nn.Activation { return nn.NewSigmoid() },
		func() nn.Activation { return nn.NewSoftMax() },
	} {
		d := nn.NewDense(nn.DenseConfig{Units: 3, Activation: act(), UseBias: true, BiasInitializer: nn.NewRandomUniform(-1, 1)})
		x := randomMatrix(21, 4, 2, -1, 1)
		g := randomMatrix(22, 3, 2, -1, 1)
		require.NoError(t, d.Build(4))

		kernel := d.Kernel().Value().Clone()
		bias := d.Bias().Value().Clone()

		// forwardWith evaluates the layer with explicit parameters and a fresh activation.
		forwardWith := func(k, b, in *matrix.Matrix) float64 {
			z := matrix.Dot(k, in).Add(b)
			if a := act(); a != nil {
				z = a.Forward(z)
			}
			return z.Mul(g).Sum()
		}

		_, err := d.Forward(x)
		require.NoError(t, err)
		dx, err := d.Backward(g)
		require.NoError(t, err)

		requireClose(t, numericGradient(t, kernel, func(k *matrix.Matrix) float64 { return forwardWith(k, bias, x) }), d.Kernel().Delta(), 1e-4)
		requireClose(t, numericGradient(t, bias, func(b *matrix.Matrix) float64 { return forwardWith(kernel, b, x) }), d.Bias().Delta(), 1e-4)
		requireClose(t, numericGradient(t, x, func(in *matrix.Matrix) float64 { return forwardWith(kernel, bias, in) }), dx, 1e-4)
	}
}

func TestLayerRegistry_RoundTrip(t *testing.T) {
	original := nn.NewDense(nn.DenseConfig{
		Units:             4,
		Activation:        nn.NewReLU(),
		UseBias:           false,
		KernelInitializer: nn.NewRandomUniform(-0.5, 0.25),
		BiasInitializer:   nn.Ones{},
	})

	// Through JSON, as a topology document would travel.
	data, err := json.Marshal(serial.Wrap(original))
	require.NoError(t, err)
	var wrapped serial.Wrapped
	require.NoError(t, json.Unmarshal(data, &wrapped))

	layer, err := nn.GetLayer(wrapped)
	require.NoError(t, err)
	d, ok := layer.(*nn.Dense)
	require.True(t, ok)

	assert.Equal(t, 4, d.Units())
	assert.False(t, d.UseBias())
	assert.False(t, d.Built())
	assert.Equal(t, "ReLU", d.Activation().ClassName())
	assert.Equal(t, serial.Config{"min": -0.5, "max": 0.25}, d.KernelInitializer().Config())
	assert.Equal(t, "Ones", d.BiasInitializer().ClassName())

	in, err := nn.GetLayer(serial.Wrap(nn.NewInput(7).WithBatchSize(32)))
	require.NoError(t, err)
	assert.Equal(t, 7, in.Units())
	assert.Equal(t, 32, in.(*nn.InputLayer).BatchSize())

	_, err = nn.GetLayer(serial.Wrapped{ClassName: "dense"})
	assert.Error(t, err, "dense without numOfNodes")

	_, err = nn.GetLayer(serial.Wrapped{ClassName: "conv2d"})
	assert.ErrorIs(t, err, nn.ErrConfiguration)
}

func TestDense_DefaultsFromConfig(t *testing.T) {
	layer, err := nn.GetLayer(serial.Wrapped{ClassName: "Dense", Config: serial.Config{"numOfNodes": 3}})
	require.NoError(t, err)
	d := layer.(*nn.Dense)
	assert.True(t, d.UseBias())
	assert.Nil(t, d.Activation())
	assert.Equal(t, "RandomUniform", d.KernelInitializer().ClassName())
	assert.Equal(t, "Zeros", d.BiasInitializer().ClassName())
}
