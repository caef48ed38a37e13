package nn

import (
	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// Default RandomUniform bounds.
const (
	DefaultUniformMin = -0.99
	DefaultUniformMax = 0.99
)

// Initializer produces the initial value of a weight matrix.
//
// Initializers are pure functions of the requested shape.
type Initializer interface {
	serial.Serializable

	// Forward returns a freshly allocated matrix of the given shape.
	Forward(shape matrix.Shape) *matrix.Matrix
}

// RandomUniform draws values uniformly from [Min, Max).
//
// This is the default kernel initializer of Dense.
type RandomUniform struct {
	Min float64
	Max float64
}

// NewRandomUniform creates a RandomUniform initializer.
func NewRandomUniform(min, max float64) *RandomUniform {
	return &RandomUniform{Min: min, Max: max}
}

// DefaultRandomUniform returns RandomUniform(-0.99, 0.99).
func DefaultRandomUniform() *RandomUniform {
	return NewRandomUniform(DefaultUniformMin, DefaultUniformMax)
}

// Forward implements Initializer.
func (r *RandomUniform) Forward(shape matrix.Shape) *matrix.Matrix {
	return matrix.RandUniform(shape, r.Min, r.Max, nil)
}

// ClassName implements serial.Serializable.
func (r *RandomUniform) ClassName() string { return "RandomUniform" }

// Config implements serial.Serializable.
func (r *RandomUniform) Config() serial.Config {
	return serial.Config{"min": r.Min, "max": r.Max}
}

// Zeros fills weights with 0. Default bias initializer of Dense.
type Zeros struct{}

// Forward implements Initializer.
func (Zeros) Forward(shape matrix.Shape) *matrix.Matrix { return matrix.Fill(shape, 0) }

// ClassName implements serial.Serializable.
func (Zeros) ClassName() string { return "Zeros" }

// Config implements serial.Serializable.
func (Zeros) Config() serial.Config { return nil }

// Ones fills weights with 1.
type Ones struct{}

// Forward implements Initializer.
func (Ones) Forward(shape matrix.Shape) *matrix.Matrix { return matrix.Fill(shape, 1) }

// ClassName implements serial.Serializable.
func (Ones) ClassName() string { return "Ones" }

// Config implements serial.Serializable.
func (Ones) Config() serial.Config { return nil }

// Constant fills weights with Value.
type Constant struct {
	Value float64
}

// NewConstant creates a Constant initializer.
func NewConstant(value float64) *Constant {
	return &Constant{Value: value}
}

// Forward implements Initializer.
func (c *Constant) Forward(shape matrix.Shape) *matrix.Matrix { return matrix.Fill(shape, c.Value) }

// ClassName implements serial.Serializable.
func (c *Constant) ClassName() string { return "Constant" }

// Config implements serial.Serializable.
func (c *Constant) Config() serial.Config {
	return serial.Config{"value": c.Value}
}

// Initializers is the registry of initializer class names.
var Initializers = newInitializerRegistry()

func newInitializerRegistry() *serial.Registry[Initializer] {
	r := serial.NewRegistry[Initializer]("initializer")
	r.Register("randomuniform", func(cfg serial.Config) (Initializer, error) {
		min, err := cfg.Float("min", DefaultUniformMin)
		if err != nil {
			return nil, err
		}
		max, err := cfg.Float("max", DefaultUniformMax)
		if err != nil {
			return nil, err
		}
		return NewRandomUniform(min, max), nil
	})
	r.Register("zeros", func(serial.Config) (Initializer, error) { return Zeros{}, nil })
	r.Register("ones", func(serial.Config) (Initializer, error) { return Ones{}, nil })
	r.Register("constant", func(cfg serial.Config) (Initializer, error) {
		v, err := cfg.Float("value", 0)
		if err != nil {
			return nil, err
		}
		return NewConstant(v), nil
	})
	return r
}

// GetInitializer reconstructs an initializer from its wrapped form.
func GetInitializer(w serial.Wrapped) (Initializer, error) {
	init, err := Initializers.Deserialize(w)
	return init, configErr(err)
}
