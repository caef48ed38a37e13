package nn

import (
	"math"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// Loss is a scalar objective with a hand-derived gradient.
//
// y and output share the model's output orientation: one row per output
// unit, one column per sample. Shape mismatches panic with a
// *matrix.ShapeError.
type Loss interface {
	serial.Serializable

	// Forward returns the loss value summed over all samples.
	Forward(y, output *matrix.Matrix) float64

	// Backward returns dLoss/dOutput, shaped like output.
	Backward(y, output *matrix.Matrix) *matrix.Matrix
}

// SSE is the sum of squared errors: 0.5 * Σ(y - output)².
//
// Example:
//
//	y := matrix.FromValues([][]float64{{1}, {0}})
//	out := matrix.FromValues([][]float64{{0.8}, {0.3}})
//	nn.SSE{}.Forward(y, out)  // 0.065
//	nn.SSE{}.Backward(y, out) // [[-0.2] [0.3]]
type SSE struct{}

// NewSSE creates an SSE loss.
func NewSSE() SSE {
	return SSE{}
}

// Forward implements Loss.
func (SSE) Forward(y, output *matrix.Matrix) float64 {
	matrix.SameShape("sse", y, output)
	diff := y.Sub(output)
	return 0.5 * diff.Mul(diff).Sum()
}

// Backward implements Loss: -(y - output).
func (SSE) Backward(y, output *matrix.Matrix) *matrix.Matrix {
	matrix.SameShape("sse backward", y, output)
	return y.Sub(output).MulScalar(-1)
}

// ClassName implements serial.Serializable.
func (SSE) ClassName() string { return "SSE" }

// Config implements serial.Serializable.
func (SSE) Config() serial.Config { return nil }

// CategoricalCrossentropy is Σ y ⊙ -ln(output) for one-hot or soft targets.
//
// Usually paired with a SoftMax output layer. No clipping is applied, so an
// output of exactly 0 for a positive target yields +Inf.
type CategoricalCrossentropy struct{}

// NewCategoricalCrossentropy creates a categorical cross-entropy loss.
func NewCategoricalCrossentropy() CategoricalCrossentropy {
	return CategoricalCrossentropy{}
}

// Forward implements Loss.
func (CategoricalCrossentropy) Forward(y, output *matrix.Matrix) float64 {
	matrix.SameShape("categorical crossentropy", y, output)
	negLog := output.Map(func(v float64, _, _ int) float64 { return -math.Log(v) })
	return y.Mul(negLog).Sum()
}

// Backward implements Loss: -(y / output).
func (CategoricalCrossentropy) Backward(y, output *matrix.Matrix) *matrix.Matrix {
	matrix.SameShape("categorical crossentropy backward", y, output)
	return y.Div(output).MulScalar(-1)
}

// ClassName implements serial.Serializable.
func (CategoricalCrossentropy) ClassName() string { return "CategoricalCrossentropy" }

// Config implements serial.Serializable.
func (CategoricalCrossentropy) Config() serial.Config { return nil }

// Losses is the registry of loss class names.
var Losses = newLossRegistry()

func newLossRegistry() *serial.Registry[Loss] {
	r := serial.NewRegistry[Loss]("loss")
	r.Register("sse", func(serial.Config) (Loss, error) { return SSE{}, nil })
	r.Register("categoricalcrossentropy", func(serial.Config) (Loss, error) {
		return CategoricalCrossentropy{}, nil
	})
	return r
}

// GetLoss reconstructs a loss from its wrapped form.
func GetLoss(w serial.Wrapped) (Loss, error) {
	loss, err := Losses.Deserialize(w)
	return loss, configErr(err)
}
