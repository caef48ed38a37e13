package nn

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/serial"
)

// DenseConfig configures a Dense layer.
//
// All fields are used as given: a zero UseBias means no bias. Use
// DefaultDenseConfig for the usual defaults.
type DenseConfig struct {
	Units             int         // Number of nodes
	Activation        Activation  // nil for a purely affine layer
	UseBias           bool        // Whether to add a bias vector
	KernelInitializer Initializer // nil means DefaultRandomUniform()
	BiasInitializer   Initializer // nil means Zeros
}

// DefaultDenseConfig returns a biased, linear config with default initializers.
func DefaultDenseConfig(units int) DenseConfig {
	return DenseConfig{Units: units, UseBias: true}
}

// denseParams is the built state of a Dense layer.
type denseParams struct {
	prevUnits int
	kernel    *Weight // [units, prevUnits]
	bias      *Weight // [units, 1], nil without bias
}

// Dense is a fully connected layer: activation(kernel·input + bias).
//
// Dense has an explicit two-phase lifecycle. A new layer is unbuilt and only
// holds its config; Build (or the first Forward) materializes the kernel with
// shape (units, prevUnits) and, if enabled, the bias with shape (units, 1).
//
// Example:
//
//	layer := nn.NewDense(nn.DenseConfig{Units: 3, Activation: nn.NewSigmoid(), UseBias: true})
//	out, err := layer.Forward(x) // x: (5 x batch) builds a (3 x 5) kernel
type Dense struct {
	layerCache
	units      int
	activation Activation
	useBias    bool
	kernelInit Initializer
	biasInit   Initializer
	params     *denseParams // nil while unbuilt
}

// NewDense creates an unbuilt Dense layer.
//
// Panics if cfg.Units is not positive.
func NewDense(cfg DenseConfig) *Dense {
	if cfg.Units < 1 {
		panic(fmt.Sprintf("nn.NewDense: units must be positive, got %d", cfg.Units))
	}
	d := &Dense{
		units:      cfg.Units,
		activation: cfg.Activation,
		useBias:    cfg.UseBias,
		kernelInit: cfg.KernelInitializer,
		biasInit:   cfg.BiasInitializer,
	}
	if d.kernelInit == nil {
		d.kernelInit = DefaultRandomUniform()
	}
	if d.biasInit == nil {
		d.biasInit = Zeros{}
	}
	return d
}

// Units implements Layer.
func (d *Dense) Units() int { return d.units }

// Activation returns the activation, or nil.
func (d *Dense) Activation() Activation { return d.activation }

// UseBias reports whether the layer has a bias.
func (d *Dense) UseBias() bool { return d.useBias }

// KernelInitializer returns the kernel initializer.
func (d *Dense) KernelInitializer() Initializer { return d.kernelInit }

// BiasInitializer returns the bias initializer.
func (d *Dense) BiasInitializer() Initializer { return d.biasInit }

// Build implements Layer.
func (d *Dense) Build(prevUnits int) error {
	if prevUnits < 1 {
		return fmt.Errorf("%w: Dense.Build: previous layer width must be positive, got %d", ErrConfiguration, prevUnits)
	}
	p := &denseParams{
		prevUnits: prevUnits,
		kernel:    NewWeight("kernel", d.kernelInit.Forward(matrix.Shape{d.units, prevUnits})),
	}
	if d.useBias {
		p.bias = NewWeight("bias", d.biasInit.Forward(matrix.Shape{d.units, 1}))
	}
	d.params = p
	d.input, d.output = nil, nil
	return nil
}

// Built implements Layer.
func (d *Dense) Built() bool { return d.params != nil }

// Kernel returns the kernel weight, or nil while unbuilt.
func (d *Dense) Kernel() *Weight {
	if d.params == nil {
		return nil
	}
	return d.params.kernel
}

// Bias returns the bias weight, or nil while unbuilt or unbiased.
func (d *Dense) Bias() *Weight {
	if d.params == nil {
		return nil
	}
	return d.params.bias
}

// Forward implements Layer.
//
// An unbuilt layer builds itself against input.Rows() first. The input must
// have as many rows as the kernel has columns.
func (d *Dense) Forward(input *matrix.Matrix) (out *matrix.Matrix, err error) {
	if d.params == nil {
		if err := d.Build(input.Rows()); err != nil {
			return nil, err
		}
	}
	defer matrix.Catch(&err)

	out = matrix.Dot(d.params.kernel.Value(), input)
	if d.params.bias != nil {
		out = out.Add(d.params.bias.Value())
	}
	if d.activation != nil {
		out = d.activation.Forward(out)
	}

	d.input = input
	d.output = out
	return out, nil
}

// Backward implements Layer.
//
// With delta the gradient w.r.t. the pre-activation:
//
//	kernel.delta = delta · inputᵀ
//	bias.delta   = rowSum(delta)
//	returns        kernelᵀ · delta
func (d *Dense) Backward(passBackError *matrix.Matrix) (prev *matrix.Matrix, err error) {
	if d.params == nil {
		return nil, fmt.Errorf("Dense.Backward: %w", ErrNotBuilt)
	}
	if d.input == nil {
		return nil, fmt.Errorf("%w: Dense.Backward called before Forward", ErrConfiguration)
	}
	defer matrix.Catch(&err)

	delta := passBackError
	if d.activation != nil {
		delta, err = d.activation.Backward(passBackError)
		if err != nil {
			return nil, err
		}
	}

	if err := d.params.kernel.SetDelta(matrix.Dot(delta, d.input.Transpose())); err != nil {
		return nil, err
	}
	if d.params.bias != nil {
		if err := d.params.bias.SetDelta(delta.SumRows()); err != nil {
			return nil, err
		}
	}

	return matrix.Dot(d.params.kernel.Value().Transpose(), delta), nil
}

// Weights implements Layer. Kernel first, then bias.
func (d *Dense) Weights() []*Weight {
	if d.params == nil {
		return nil
	}
	if d.params.bias != nil {
		return []*Weight{d.params.kernel, d.params.bias}
	}
	return []*Weight{d.params.kernel}
}

// ClassName implements serial.Serializable.
func (d *Dense) ClassName() string { return "Dense" }

// Config implements serial.Serializable.
func (d *Dense) Config() serial.Config {
	cfg := serial.Config{
		"numOfNodes":        d.units,
		"useBias":           d.useBias,
		"kernelInitializer": serial.Wrap(d.kernelInit),
		"biasInitializer":   serial.Wrap(d.biasInit),
	}
	if d.activation != nil {
		cfg["activation"] = serial.Wrap(d.activation)
	}
	return cfg
}

func denseFromConfig(cfg serial.Config) (Layer, error) {
	units, err := cfg.Int("numOfNodes", 0)
	if err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, fmt.Errorf("numOfNodes must be positive, got %d", units)
	}
	dc := DefaultDenseConfig(units)

	if dc.UseBias, err = cfg.Bool("useBias", true); err != nil {
		return nil, err
	}

	if w, ok, err := cfg.Wrapped("activation"); err != nil {
		return nil, err
	} else if ok {
		if dc.Activation, err = GetActivation(w); err != nil {
			return nil, err
		}
	}
	if w, ok, err := cfg.Wrapped("kernelInitializer"); err != nil {
		return nil, err
	} else if ok {
		if dc.KernelInitializer, err = GetInitializer(w); err != nil {
			return nil, err
		}
	}
	if w, ok, err := cfg.Wrapped("biasInitializer"); err != nil {
		return nil, err
	} else if ok {
		if dc.BiasInitializer, err = GetInitializer(w); err != nil {
			return nil, err
		}
	}

	return NewDense(dc), nil
}
