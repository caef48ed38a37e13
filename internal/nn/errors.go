package nn

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is to classify a failure; shape problems
// surface as matrix.ErrShape.
var (
	// ErrConfiguration covers misuse of the API: training before compile,
	// a first layer that is not Input, an out-of-range batch size, unknown
	// class names and unbuilt layers.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataConsistency covers data that disagrees with itself or with the
	// model: x/y length mismatch, per-sample width mismatch and weight
	// documents that cannot cover the model.
	ErrDataConsistency = errors.New("data consistency error")

	// ErrNotBuilt is returned when a layer is used before Build.
	ErrNotBuilt = fmt.Errorf("%w: layer not built", ErrConfiguration)
)

// configErr wraps err (typically a registry lookup failure) as a
// configuration error.
func configErr(err error) error {
	if err == nil || errors.Is(err, ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
