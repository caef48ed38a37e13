package nn

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// Weight is a named trainable parameter.
//
// A Weight is the sole owner of its value matrix. Backward passes write the
// latest gradient into Delta; optimisers hand a new value to Update, which
// copies it into the existing matrix so the Weight never re-binds.
type Weight struct {
	name  string
	value *matrix.Matrix
	delta *matrix.Matrix
}

// WeightConfig describes one slice of an encoded weight blob.
type WeightConfig struct {
	Name  string       `json:"name"`
	Rows  int          `json:"rows"`
	Cols  int          `json:"cols"`
	Shape matrix.Shape `json:"shape"`
}

// NewWeight creates a Weight with a zero delta of the same shape.
func NewWeight(name string, value *matrix.Matrix) *Weight {
	return &Weight{
		name:  name,
		value: value,
		delta: matrix.New(value.Rows(), value.Cols()),
	}
}

// Name returns the parameter name (e.g. "kernel", "bias").
func (w *Weight) Name() string { return w.name }

// Value returns the current parameter matrix.
func (w *Weight) Value() *matrix.Matrix { return w.value }

// Delta returns the gradient written by the last backward pass.
func (w *Weight) Delta() *matrix.Matrix { return w.delta }

// Shape returns the parameter shape.
func (w *Weight) Shape() matrix.Shape { return w.value.Shape() }

// SetDelta stores a gradient. The shape must match the value.
func (w *Weight) SetDelta(delta *matrix.Matrix) error {
	if delta.Shape() != w.value.Shape() {
		return &matrix.ShapeError{
			Op:     "set delta",
			A:      w.value.Shape(),
			B:      delta.Shape(),
			Detail: fmt.Sprintf("weight %q is %v, gradient is %v", w.name, w.value.Shape(), delta.Shape()),
		}
	}
	w.delta = delta
	return nil
}

// Update replaces the value contents in place.
func (w *Weight) Update(value *matrix.Matrix) error {
	if err := w.value.Assign(value); err != nil {
		return fmt.Errorf("weight %q: %w", w.name, err)
	}
	return nil
}

// Snapshot returns a detached copy of the weight.
func (w *Weight) Snapshot() *Weight {
	return &Weight{name: w.name, value: w.value.Clone(), delta: w.delta.Clone()}
}

// WeightConfig returns the blob manifest entry for this weight.
func (w *Weight) WeightConfig() WeightConfig {
	shape := w.value.Shape()
	return WeightConfig{Name: w.name, Rows: shape.Rows(), Cols: shape.Cols(), Shape: shape}
}

// ClassName implements serial.Serializable.
func (w *Weight) ClassName() string { return "Weight" }

// Config implements serial.Serializable.
func (w *Weight) Config() serial.Config {
	c := w.WeightConfig()
	return serial.Config{"name": c.Name, "rows": c.Rows, "cols": c.Cols, "shape": []int{c.Rows, c.Cols}}
}
