package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// Activation is a non-linearity with a hand-derived backward pass.
//
// Forward caches its input and output; Backward uses that cache to turn the
// gradient w.r.t. the activation output into the gradient w.r.t. its input.
//
// Example:
//
//	act := nn.NewSigmoid()
//	out := act.Forward(z)
//	dz, err := act.Backward(dOut)
type Activation interface {
	serial.Serializable

	// Forward applies the activation and caches input and output.
	Forward(input *matrix.Matrix) *matrix.Matrix

	// Backward returns the gradient w.r.t. the cached input.
	//
	// Returns ErrConfiguration if Forward has not been called.
	Backward(passBackError *matrix.Matrix) (*matrix.Matrix, error)
}

// activationCache holds the tensors shared by every activation.
type activationCache struct {
	input  *matrix.Matrix
	output *matrix.Matrix
	delta  *matrix.Matrix
}

func (c *activationCache) ready(name string) error {
	if c.input == nil || c.output == nil {
		return fmt.Errorf("%w: %s.Backward called before Forward", ErrConfiguration, name)
	}
	return nil
}

// Input returns the last forward input.
func (c *activationCache) Input() *matrix.Matrix { return c.input }

// Output returns the last forward output.
func (c *activationCache) Output() *matrix.Matrix { return c.output }

// Delta returns the last backward result.
func (c *activationCache) Delta() *matrix.Matrix { return c.delta }

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
type Sigmoid struct {
	activationCache
}

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies the sigmoid.
func (s *Sigmoid) Forward(input *matrix.Matrix) *matrix.Matrix {
	s.input = input
	s.output = input.Map(func(v float64, _, _ int) float64 {
		return 1 / (1 + math.Exp(-v))
	})
	return s.output
}

// Backward computes passBackError ⊙ σ(x)(1 - σ(x)).
func (s *Sigmoid) Backward(passBackError *matrix.Matrix) (delta *matrix.Matrix, err error) {
	if err := s.ready("Sigmoid"); err != nil {
		return nil, err
	}
	defer matrix.Catch(&err)

	dSigmoid := s.output.Map(func(v float64, _, _ int) float64 { return v * (1 - v) })
	s.delta = passBackError.Mul(dSigmoid)
	return s.delta, nil
}

// ClassName implements serial.Serializable.
func (s *Sigmoid) ClassName() string { return "Sigmoid" }

// Config implements serial.Serializable.
func (s *Sigmoid) Config() serial.Config { return nil }

// ReLU applies max(0, x) element-wise.
type ReLU struct {
	activationCache
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies the rectifier.
func (r *ReLU) Forward(input *matrix.Matrix) *matrix.Matrix {
	r.input = input
	r.output = input.Map(func(v float64, _, _ int) float64 {
		if v < 0 {
			return 0
		}
		return v
	})
	return r.output
}

// Backward computes passBackError ⊙ [x > 0].
func (r *ReLU) Backward(passBackError *matrix.Matrix) (delta *matrix.Matrix, err error) {
	if err := r.ready("ReLU"); err != nil {
		return nil, err
	}
	defer matrix.Catch(&err)

	mask := r.input.Map(func(v float64, _, _ int) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
	r.delta = passBackError.Mul(mask)
	return r.delta, nil
}

// ClassName implements serial.Serializable.
func (r *ReLU) ClassName() string { return "ReLU" }

// Config implements serial.Serializable.
func (r *ReLU) Config() serial.Config { return nil }

// SoftMax normalises each column into a probability distribution.
//
// Columns are independent samples, so a (classes x batch) input yields a
// (classes x batch) output whose columns each sum to 1. The per-column max
// is subtracted before exponentiation to avoid overflow.
type SoftMax struct {
	activationCache
}

// NewSoftMax creates a SoftMax activation.
func NewSoftMax() *SoftMax {
	return &SoftMax{}
}

// Forward applies the column-wise softmax.
func (s *SoftMax) Forward(input *matrix.Matrix) *matrix.Matrix {
	s.input = input
	shifted := input.Sub(input.MaxCols())
	exp := shifted.Map(func(v float64, _, _ int) float64 { return math.Exp(v) })
	s.output = exp.Div(exp.SumCols())
	return s.output
}

// Backward multiplies each column's incoming gradient by that column's
// softmax Jacobian diag(s) - s·sᵀ, written as s ⊙ (I - sᵀ).
//
// Every column is handled independently, which is exact for one sample per
// column. Columns are never mixed.
func (s *SoftMax) Backward(passBackError *matrix.Matrix) (delta *matrix.Matrix, err error) {
	if err := s.ready("SoftMax"); err != nil {
		return nil, err
	}
	defer matrix.Catch(&err)
	matrix.SameShape("softmax backward", s.output, passBackError)

	n := s.output.Rows()
	identity := matrix.Identity(n)
	out := matrix.New(n, s.output.Cols())
	for c := 0; c < s.output.Cols(); c++ {
		col := s.output.Col(c)
		jacobian := identity.Sub(col.Transpose()).Mul(col)
		out.SetCol(c, matrix.Dot(jacobian, passBackError.Col(c)))
	}
	s.delta = out
	return s.delta, nil
}

// ClassName implements serial.Serializable.
func (s *SoftMax) ClassName() string { return "SoftMax" }

// Config implements serial.Serializable.
func (s *SoftMax) Config() serial.Config { return nil }

// Activations is the registry of activation class names.
var Activations = newActivationRegistry()

func newActivationRegistry() *serial.Registry[Activation] {
	r := serial.NewRegistry[Activation]("activation")
	r.Register("sigmoid", func(serial.Config) (Activation, error) { return NewSigmoid(), nil })
	r.Register("relu", func(serial.Config) (Activation, error) { return NewReLU(), nil })
	r.Register("softmax", func(serial.Config) (Activation, error) { return NewSoftMax(), nil })
	return r
}

// GetActivation reconstructs an activation from its wrapped form.
func GetActivation(w serial.Wrapped) (Activation, error) {
	act, err := Activations.Deserialize(w)
	return act, configErr(err)
}
