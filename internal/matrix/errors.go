package matrix

import (
	"errors"
	"fmt"
)

// ErrShape is matched by every *ShapeError via errors.Is.
var ErrShape = errors.New("matrix: shape mismatch")

// ShapeError reports an operation whose operand shapes are incompatible.
//
// Matrix operations panic with a *ShapeError; API boundaries that accept
// user data recover it with Catch and hand it back as a regular error.
type ShapeError struct {
	Op     string // Operation that failed (e.g. "dot", "add", "assign")
	A      Shape  // Shape of the receiver / left operand
	B      Shape  // Shape of the right operand (zero if not relevant)
	Detail string // Optional human-readable detail
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("matrix: %s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("matrix: %s: %v & %v not compatible", e.Op, e.A, e.B)
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

func shapePanic(op string, a, b Shape, format string, args ...any) {
	panic(&ShapeError{Op: op, A: a, B: b, Detail: fmt.Sprintf(format, args...)})
}

// Catch converts a *ShapeError panic into an error stored in *errp.
//
// It must be called directly via defer:
//
//	func (l *Dense) Forward(x *matrix.Matrix) (out *matrix.Matrix, err error) {
//	    defer matrix.Catch(&err)
//	    ...
//	}
//
// Any other panic value is re-raised.
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(*ShapeError); ok {
		*errp = se
		return
	}
	panic(r)
}
